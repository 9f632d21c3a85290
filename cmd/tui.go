package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"yousearch/internal/config"
	"yousearch/internal/eventbus"
	"yousearch/internal/history"
	"yousearch/internal/logger"
	"yousearch/internal/platform"
	"yousearch/internal/session"
	"yousearch/internal/ui"
	"yousearch/internal/ui/views"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive search UI (default)",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// uiEvents are forwarded from the bus to the running program
var uiEvents = []eventbus.EventType{
	eventbus.EventSearchStarted,
	eventbus.EventSearchCompleted,
	eventbus.EventSearchFailed,
	eventbus.EventSessionCleared,
	eventbus.EventHelpToggled,
	eventbus.EventThemeChanged,
	eventbus.EventResultsExported,
	eventbus.EventResultOpened,
	eventbus.EventHistoryNavigated,
	eventbus.EventConfigSaved,
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)

	bus := eventbus.New(log)
	defer bus.Close()

	// Saves from the UI announce themselves on the bus
	svc := config.NewConfigServiceWithBus(cfgSvc.Path(), bus)

	store := history.New()
	if appConfig.UI.PersistHistory {
		var err error
		store, err = history.Open(filepath.Join(config.Dir(), "history.toml"))
		if err != nil {
			log.Error(err, "failed to open search history, continuing without it")
			store = history.New()
		}
	}
	store.SetLogger(log.WithName("history"))

	theme := views.NewTheme(appConfig.Theme)
	orch := session.New(newBackend(appConfig, log),
		session.WithStore(store),
		session.WithBus(bus),
		session.WithLogger(log.WithName("session")),
		session.WithCommands(session.NewExecutor(theme, platform.Clipboard{}, bus)),
		session.WithFilters(appConfig.Filters),
	)
	stopWatch := orch.Watch(ctx)
	defer stopWatch()

	model := ui.NewModel(ui.Options{
		Context:       ctx,
		Bus:           bus,
		Config:        appConfig,
		ConfigService: svc,
		Session:       orch,
		Store:         store,
		Theme:         theme,
		Logger:        log,
		Demo:          appConfig.Demo,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.SetProgram(p)

	for _, et := range uiEvents {
		unsubscribe := bus.Subscribe(et, func(e eventbus.DomainEvent) {
			p.Send(ui.EventMsg{Event: e})
		})
		defer unsubscribe()
	}

	log.Info("starting UI", "demo", appConfig.Demo, "config", svc.Path())
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			log.Info("UI stopped by signal")
			return nil
		}
		return fmt.Errorf("error running program: %w", err)
	}
	log.Info("UI exited normally")
	return nil
}
