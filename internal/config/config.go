// Package config loads the daemon configuration from
// ~/.config/pintop/config.yaml, merging file values over built-in defaults.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Hotkeys maps decoded actions to key-binding strings. Bindings use
// "mod+mod+key" form, e.g. "win+ctrl+t".
type Hotkeys struct {
	TogglePin    string `yaml:"toggle_pin"`
	OpacityUp    string `yaml:"opacity_up"`
	OpacityDown  string `yaml:"opacity_down"`
	ToggleWindow string `yaml:"toggle_window"`
}

// Config is the daemon configuration.
type Config struct {
	Hotkeys Hotkeys `yaml:"hotkeys"`

	// OpacityStep is the percent delta applied by the opacity hotkeys.
	OpacityStep int `yaml:"opacity_step"`

	// ReinforceIntervalSeconds is the period of the fallback reassertion
	// pass; event-driven passes run independently of it.
	ReinforceIntervalSeconds int `yaml:"reinforce_interval_seconds"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Hotkeys: Hotkeys{
			TogglePin:    "win+ctrl+t",
			OpacityUp:    "win+ctrl+equal",
			OpacityDown:  "win+ctrl+minus",
			ToggleWindow: "win+ctrl+h",
		},
		OpacityStep:              10,
		ReinforceIntervalSeconds: 10,
		LogLevel:                 "info",
	}
}

// DefaultConfigPath returns the standard config file location.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "pintop", "config.yaml"), nil
}

// Load reads the configuration from the standard location. A missing file
// yields the defaults.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads the configuration from path, merging over defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.OpacityStep < 1 || c.OpacityStep > 80 {
		return fmt.Errorf("opacity_step must be in [1, 80], got %d", c.OpacityStep)
	}
	if c.ReinforceIntervalSeconds < 1 {
		return fmt.Errorf("reinforce_interval_seconds must be >= 1, got %d", c.ReinforceIntervalSeconds)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level must be one of debug/info/warn/error, got %q", c.LogLevel)
	}
	return nil
}

// SlogLevel converts LogLevel to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Marshal renders the config as YAML, for `pintop config print`.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
