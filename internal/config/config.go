package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"yousearch/internal/domain"
	"yousearch/internal/eventbus"
)

// AppName names the config and state directories
const AppName = "yousearch"

// EnvAPIKey overrides the api_key setting
const EnvAPIKey = "YOU_API_KEY"

// Config represents the application configuration
type Config struct {
	Version int            `toml:"version"`
	APIKey  string         `toml:"api_key"`
	BaseURL string         `toml:"base_url"`
	Timeout string         `toml:"timeout"` // Go duration, e.g. "30s"
	Demo    bool           `toml:"demo"`
	Theme   string         `toml:"theme"`
	Filters domain.Filters `toml:"filters"`
	UI      UISettings     `toml:"ui"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	ShowNews       bool `toml:"show_news"`
	PersistHistory bool `toml:"persist_history"`
}

// RequestTimeout parses Timeout, falling back to 30s when unset or invalid
func (c *Config) RequestTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Timeout); err == nil && d > 0 {
		return d
	}
	return 30 * time.Second
}

// ApplyEnv overrides file settings with environment variables
func (c *Config) ApplyEnv(getenv func(string) string) {
	if key := getenv(EnvAPIKey); key != "" {
		c.APIKey = key
	}
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// Dir returns the per-user yousearch directory. XDG_CONFIG_HOME is honored.
func Dir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, AppName)
}

// NewConfigService creates a config service for path, or for the default
// location when path is empty
func NewConfigService(path string) ConfigService {
	if path == "" {
		path = filepath.Join(Dir(), "config.toml")
	}
	return &configService{filePath: path}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(path string, bus eventbus.EventBus) ConfigService {
	cs := NewConfigService(path).(*configService)
	cs.bus = bus
	return cs
}

// Path returns the file Load and Save use
func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration from file, returning defaults when it does
// not exist yet
func (cs *configService) Load() (*Config, error) {
	if _, err := os.Stat(cs.filePath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return cs.LoadFromPath(cs.filePath)
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}
	if cs.bus != nil {
		cs.bus.Publish(domain.ConfigSavedEvent{Path: cs.filePath})
	}
	return nil
}

// LoadFromPath loads configuration from a specific path. Keys missing from
// the file keep their default values.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Filters.SafeSearch == "" {
		cfg.Filters.SafeSearch = domain.SafeSearchModerate
	}
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// the file may hold an API key
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Timeout: "30s",
		Theme:   "dark",
		Filters: domain.DefaultFilters(),
		UI: UISettings{
			ShowNews:       true,
			PersistHistory: true,
		},
	}
}
