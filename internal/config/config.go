package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"metagrip/internal/eventbus"
)

// Config represents the application configuration
type Config struct {
	Version      int          `toml:"version"`
	Server       Server       `toml:"server"`
	Layout       Layout       `toml:"layout"`
	UISettings   UISettings   `toml:"ui"`
	Logging      Logging      `toml:"logging"`
	LastLocation string       `toml:"last_location"` // serialized browse state restored on start
}

// Server holds the platform endpoint settings
type Server struct {
	BaseURL   string        `toml:"base_url"`
	Namespace string        `toml:"namespace"`
	Timeout   time.Duration `toml:"timeout"`
}

// Layout holds the card metrics used to derive page size, in terminal cells.
// Card sizes include margins and border.
type Layout struct {
	CardWidth         int `toml:"card_width"`
	CardHeight        int `toml:"card_height"`
	HorizontalPadding int `toml:"horizontal_padding"`
	VerticalPadding   int `toml:"vertical_padding"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	StandaloneSDK      bool          `toml:"standalone_sdk"`
	Enterprise         bool          `toml:"enterprise"`
	SplashDelay        time.Duration `toml:"splash_delay"`
	StatusPollInterval time.Duration `toml:"status_poll_interval"`
	RestoreLocation    bool          `toml:"restore_location"`
}

// Logging controls the log file sink
type Logging struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
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

// DefaultPath returns the per-user config file location
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "metagrip", "config.toml")
}

// NewConfigService creates a config service for path; an empty path uses DefaultPath
func NewConfigService(path string) ConfigService {
	if path == "" {
		path = DefaultPath()
	}
	return &configService{filePath: path}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(path string, bus eventbus.EventBus) ConfigService {
	cs := NewConfigService(path).(*configService)
	cs.bus = bus
	return cs
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration from file, returning defaults when it does not exist
func (cs *configService) Load() (*Config, error) {
	var cfg *Config
	if _, err := os.Stat(cs.filePath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		loaded, err := cs.LoadFromPath(cs.filePath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{
			Path:      cs.filePath,
			Namespace: cfg.Server.Namespace,
		})
	}

	return cfg, nil
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: cs.filePath})
	}

	return nil
}

// LoadFromPath loads configuration from a specific path.
// Keys missing from the file keep their default values.
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
	cfg.applyDefaults()

	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Server: Server{
			BaseURL:   "http://localhost:11015",
			Namespace: "default",
			Timeout:   10 * time.Second,
		},
		Layout: DefaultLayout(),
		UISettings: UISettings{
			StandaloneSDK:      true,
			SplashDelay:        time.Second,
			StatusPollInterval: 2 * time.Second,
			RestoreLocation:    true,
		},
		Logging: Logging{
			File:  "metagrip.log",
			Level: "info",
		},
	}
}

// DefaultLayout returns card metrics sized for a 3x2 grid on a 120x40 terminal
func DefaultLayout() Layout {
	return Layout{
		CardWidth:         38,
		CardHeight:        8,
		HorizontalPadding: 4,
		VerticalPadding:   10,
	}
}

// applyDefaults repairs zero values that would break paging or polling
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Server.Namespace == "" {
		c.Server.Namespace = def.Server.Namespace
	}
	if c.Server.Timeout <= 0 {
		c.Server.Timeout = def.Server.Timeout
	}
	if c.Layout.CardWidth <= 0 {
		c.Layout.CardWidth = def.Layout.CardWidth
	}
	if c.Layout.CardHeight <= 0 {
		c.Layout.CardHeight = def.Layout.CardHeight
	}
	if c.UISettings.StatusPollInterval <= 0 {
		c.UISettings.StatusPollInterval = def.UISettings.StatusPollInterval
	}
}
