package session

import (
	"errors"
	"fmt"

	"yousearch/internal/command"
	"yousearch/internal/domain"
	"yousearch/internal/eventbus"
	"yousearch/internal/export"
)

// ThemeSetter switches the UI theme. It is only ever called with "dark" or
// "light".
type ThemeSetter interface {
	SetTheme(theme string)
}

// Clipboard receives exported text
type Clipboard interface {
	WriteText(text string) error
}

// ErrNoClipboard is returned by export when no clipboard is available
var ErrNoClipboard = errors.New("clipboard unavailable")

// Effect is a change to session state requested by a command
type Effect int

const (
	EffectNone Effect = iota
	EffectToggleHelp
	EffectClear
)

// Executor carries out parsed commands against the external collaborators
type Executor struct {
	theme ThemeSetter
	clip  Clipboard
	bus   eventbus.EventBus
}

// NewExecutor creates an executor. Any collaborator may be nil.
func NewExecutor(theme ThemeSetter, clip Clipboard, bus eventbus.EventBus) *Executor {
	if bus == nil {
		bus = eventbus.Null{}
	}
	return &Executor{theme: theme, clip: clip, bus: bus}
}

// Execute runs cmd. snap is the session state the command acts on.
func (e *Executor) Execute(cmd command.Parsed, snap Snapshot) (Effect, error) {
	switch cmd.Type {
	case command.TypeTheme:
		theme := cmd.Arg(0)
		if theme != "dark" && theme != "light" {
			return EffectNone, nil
		}
		if e.theme != nil {
			e.theme.SetTheme(theme)
			e.bus.Publish(domain.ThemeChangedEvent{Theme: theme})
		}
		return EffectNone, nil

	case command.TypeExport:
		return EffectNone, e.export(export.ParseFormat(cmd.Arg(0)), snap)

	case command.TypeHelp:
		return EffectToggleHelp, nil

	case command.TypeClear:
		return EffectClear, nil
	}
	return EffectNone, nil
}

func (e *Executor) export(format export.Format, snap Snapshot) error {
	if snap.Results == nil {
		return nil
	}

	var text string
	switch format {
	case export.FormatJSON:
		out, err := export.JSON(snap.CleanQuery, *snap.Results)
		if err != nil {
			return err
		}
		text = out
	default:
		text = export.Markdown(snap.Web(), snap.News())
	}

	if e.clip == nil {
		return ErrNoClipboard
	}
	if err := e.clip.WriteText(text); err != nil {
		return fmt.Errorf("failed to copy results: %w", err)
	}
	e.bus.Publish(domain.ResultsExportedEvent{Format: string(format), Bytes: len(text)})
	return nil
}
