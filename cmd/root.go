// Package cmd holds the yousearch command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"

	"yousearch/internal/config"
	"yousearch/internal/domain"
	"yousearch/internal/logger"
	"yousearch/internal/youapi"
)

var (
	configFile string
	logLevel   string
	logFile    string
	demoMode   bool

	// Resolved by PersistentPreRunE for every subcommand
	appConfig *config.Config
	cfgSvc    config.ConfigService
	appLog    *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "yousearch",
	Short: "Search the web with You.com from the terminal",
	Long: `yousearch is a terminal client for the You.com Search API.

Run it without a subcommand to open the interactive search UI. The same
search backend is available as a one-shot command, an HTTP API and an MCP
stdio server.`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appLog != nil {
			_ = appLog.Close()
		}
	},
	RunE: runTUI,
}

// Execute runs the root command. Cancelling ctx stops long-running
// subcommands.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default "+filepath.Join(config.Dir(), "config.toml")+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file (the TUI defaults to yousearch.log in the config dir)")
	rootCmd.PersistentFlags().BoolVar(&demoMode, "demo", false, "serve mock results instead of calling the API")
}

// normalizeFlagName accepts config-file spellings such as --log_level
func normalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// setup loads the configuration and builds the logger. Precedence is
// flags, then YOU_API_KEY, then the config file.
func setup(cmd *cobra.Command, args []string) error {
	level, err := logger.ParseLevel(logLevel)
	if err != nil {
		return err
	}

	appLog, err = newLogger(cmd, level)
	if err != nil {
		return err
	}
	log := appLog.WithValues(logger.CommandKey, cmd.Name())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logger.WithLogger(ctx, log))

	cfgSvc = config.NewConfigService(configFile)
	appConfig, err = cfgSvc.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	appConfig.ApplyEnv(os.Getenv)
	if demoMode {
		appConfig.Demo = true
	}

	log.V(1).Info("configuration loaded", "path", cfgSvc.Path(), "demo", appConfig.Demo)
	return nil
}

// newLogger picks the log sink. The interactive UI owns the terminal, so it
// logs to a file unless told otherwise; every other command logs to stderr.
func newLogger(cmd *cobra.Command, level zapcore.Level) (*logger.Logger, error) {
	path := logFile
	if path == "" && isTUI(cmd) {
		path = filepath.Join(config.Dir(), "yousearch.log")
	}
	if path == "" {
		return logger.New(stderr(cmd), level), nil
	}
	l, err := logger.NewFile(path, level)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return l, nil
}

// isTUI reports whether cmd runs the interactive UI: the root itself or tui
func isTUI(cmd *cobra.Command) bool {
	return !cmd.HasParent() || cmd.Name() == "tui"
}

func stderr(cmd *cobra.Command) io.Writer {
	if cmd != nil {
		return cmd.ErrOrStderr()
	}
	return os.Stderr
}

// newBackend returns the demo backend or a You.com client for cfg
func newBackend(cfg *config.Config, log logr.Logger) domain.SearchBackend {
	if cfg.Demo {
		return youapi.Demo{}
	}
	opts := []youapi.Option{
		youapi.WithTimeout(cfg.RequestTimeout()),
		youapi.WithLogger(log.WithName("youapi")),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, youapi.WithBaseURL(cfg.BaseURL))
	}
	return youapi.NewClient(cfg.APIKey, opts...)
}
