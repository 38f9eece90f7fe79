package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete pyreload configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Scan    ScanConfig    `json:"scan" mapstructure:"scan"`
	Reload  ReloadConfig  `json:"reload" mapstructure:"reload"`
	History HistoryConfig `json:"history" mapstructure:"history"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ScanConfig contains source scanning limits
type ScanConfig struct {
	// MaxFileSizeBytes caps how large a module source file may be before
	// it is rejected instead of parsed.
	MaxFileSizeBytes int `json:"maxFileSizeBytes" mapstructure:"maxFileSizeBytes"`
}

// ReloadConfig contains reload pipeline behavior
type ReloadConfig struct {
	// Skip lists dotted module paths treated as external even inside the
	// package boundary. Merged with any RELOAD.toml declaration.
	Skip []string `json:"skip" mapstructure:"skip"`

	// EvictBytecode controls __pycache__ removal before re-execution.
	EvictBytecode bool `json:"evictBytecode" mapstructure:"evictBytecode"`
}

// HistoryConfig contains session history settings
type HistoryConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// Dir is where the history database lives; empty means
	// .pyreload under the configured root.
	Dir string `json:"dir" mapstructure:"dir"`

	RetentionDays int `json:"retentionDays" mapstructure:"retentionDays"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Scan: ScanConfig{
			MaxFileSizeBytes: 1000000,
		},
		Reload: ReloadConfig{
			Skip:          []string{},
			EvictBytecode: true,
		},
		History: HistoryConfig{
			Enabled:       true,
			RetentionDays: 30,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .pyreload/config.json under root.
// A missing file yields the defaults.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", 1)
	v.SetDefault("scan.maxFileSizeBytes", 1000000)
	v.SetDefault("reload.evictBytecode", true)
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.retentionDays", 30)
	v.SetDefault("logging.format", "human")
	v.SetDefault("logging.level", "info")

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ".pyreload"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// StateDir returns the directory holding pyreload state under root, honoring
// an explicit history dir override.
func (c *Config) StateDir(root string) string {
	if c.History.Dir != "" {
		return c.History.Dir
	}
	return filepath.Join(root, ".pyreload")
}

// Save writes the configuration to .pyreload/config.json under root.
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ".pyreload")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Scan.MaxFileSizeBytes <= 0 {
		return &ConfigError{Field: "scan.maxFileSizeBytes", Message: "must be positive"}
	}
	if c.History.RetentionDays < 0 {
		return &ConfigError{Field: "history.retentionDays", Message: "must not be negative"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
