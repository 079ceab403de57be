// Package config loads the project configuration from .akaidoo/config.json.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is the persisted project configuration.
type Config struct {
	Version    int      `json:"version" mapstructure:"version"`
	AddonsPath []string `json:"addonsPath" mapstructure:"addonsPath"`
	OdooCfg    string   `json:"odooCfg" mapstructure:"odooCfg"`

	Shrink  ShrinkConfig  `json:"shrink" mapstructure:"shrink"`
	Cache   CacheConfig   `json:"cache" mapstructure:"cache"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ShrinkConfig holds shrinking defaults.
type ShrinkConfig struct {
	Level         string `json:"level" mapstructure:"level"`
	SkipImports   bool   `json:"skipImports" mapstructure:"skipImports"`
	StripMetadata bool   `json:"stripMetadata" mapstructure:"stripMetadata"`

	// AutoExpandThreshold is the relevance score at or above which the
	// harvester proposes a model for expansion.
	AutoExpandThreshold int `json:"autoExpandThreshold" mapstructure:"autoExpandThreshold"`
}

// CacheConfig holds stats cache settings.
type CacheConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" mapstructure:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Shrink: ShrinkConfig{
			Level:               "soft",
			SkipImports:         false,
			StripMetadata:       false,
			AutoExpandThreshold: 30,
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    filepath.Join(".akaidoo", "stats.db"),
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// Load reads .akaidoo/config.json under root, falling back to defaults
// when no config file exists.
func Load(root string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ".akaidoo"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Shrink.Level {
	case "none", "soft", "hard", "extreme":
	default:
		return fmt.Errorf("invalid shrink.level %q", c.Shrink.Level)
	}
	switch c.Logging.Format {
	case "human", "json":
	default:
		return fmt.Errorf("invalid logging.format %q", c.Logging.Format)
	}
	if c.Shrink.AutoExpandThreshold < 0 {
		return fmt.Errorf("shrink.autoExpandThreshold must not be negative")
	}
	if c.Cache.Enabled && c.Cache.Path == "" {
		return fmt.Errorf("cache.path required when the cache is enabled")
	}
	return nil
}

// Save writes the configuration to .akaidoo/config.json under root.
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ".akaidoo")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}
