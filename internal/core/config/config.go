// Package config handles configuration loading and validation for taskly.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Storage backend names.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// View mode names.
const (
	ViewBoard = "board"
	ViewList  = "list"
)

// Config holds the application configuration.
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Projects ProjectsConfig `yaml:"projects"`
	Alarms   AlarmsConfig   `yaml:"alarms"`
	View     ViewConfig     `yaml:"view"`
	DataDir  string         `yaml:"-"` // set by caller, not from config file
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Backend is "json" (default) or "sqlite".
	Backend string `yaml:"backend"`
}

// ProjectsConfig controls the project set seeded on first run.
type ProjectsConfig struct {
	Defaults []string `yaml:"defaults"`
}

// AlarmsConfig controls alarm behavior.
type AlarmsConfig struct {
	// DefaultSound is used when a task alarm has no sound set.
	DefaultSound string `yaml:"default_sound"`
	// Desktop toggles system notifications: nil=enabled, false=toast only.
	Desktop *bool `yaml:"desktop"`
}

// ViewConfig controls the default rendering mode for taskly ls.
type ViewConfig struct {
	Default string `yaml:"default"`
}

// DesktopEnabled reports whether system notifications should be raised.
func (c AlarmsConfig) DesktopEnabled() bool {
	return c.Desktop == nil || *c.Desktop
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{Backend: BackendJSON},
		Projects: ProjectsConfig{
			Defaults: []string{"Work", "Personal", "Growth"},
		},
		Alarms: AlarmsConfig{DefaultSound: "beep"},
		View:   ViewConfig{Default: ViewBoard},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
