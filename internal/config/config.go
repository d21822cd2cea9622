package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the demo application configuration
type Config struct {
	Version    int        `toml:"version"`
	DataFile   string     `toml:"data_file"`
	LogFile    string     `toml:"log_file"`
	Search     Search     `toml:"search"`
	UISettings UISettings `toml:"ui"`
}

// Search represents search dispatch configuration
type Search struct {
	DebounceMS int `toml:"debounce_ms"`
	MinChars   int `toml:"min_chars"`
	LatencyMS  int `toml:"latency_ms"` // simulated backend latency
}

// UISettings represents UI-related configuration
type UISettings struct {
	MaxVisible  int    `toml:"max_visible"`
	Placeholder string `toml:"placeholder"`
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
}

// configService is the concrete implementation
type configService struct {
	filePath string
}

// NewConfigService creates a new config service
func NewConfigService() ConfigService {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}

	appDir := filepath.Join(configDir, "flappy-search-bar")
	os.MkdirAll(appDir, 0755)

	return &configService{
		filePath: filepath.Join(appDir, "config.toml"),
	}
}

// Load loads the configuration from file
func (cs *configService) Load() (*Config, error) {
	if _, err := os.Stat(cs.filePath); os.IsNotExist(err) {
		// Return default config if file doesn't exist
		return DefaultConfig(), nil
	}
	return cs.LoadFromPath(cs.filePath)
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	return cs.SaveToPath(config, cs.filePath)
}

// LoadFromPath loads configuration from a specific path
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
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
		LogFile: "flappy-search-bar.log",
		Search: Search{
			DebounceMS: 300,
			MinChars:   3,
			LatencyMS:  150,
		},
		UISettings: UISettings{
			MaxVisible:  10,
			Placeholder: "Search...",
		},
	}
}

// applyDefaults fills zero-valued fields a hand-edited file may omit
func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Search.DebounceMS == 0 {
		cfg.Search.DebounceMS = def.Search.DebounceMS
	}
	if cfg.Search.MinChars == 0 {
		cfg.Search.MinChars = def.Search.MinChars
	}
	if cfg.UISettings.MaxVisible == 0 {
		cfg.UISettings.MaxVisible = def.UISettings.MaxVisible
	}
	if cfg.UISettings.Placeholder == "" {
		cfg.UISettings.Placeholder = def.UISettings.Placeholder
	}
}
