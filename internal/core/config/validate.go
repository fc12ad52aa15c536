package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/hay-kot/criterio"
)

// Validate performs structural validation of the configuration.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("storage.backend", c.Storage.Backend, oneOf(BackendJSON, BackendSQLite)),
		criterio.Run("alarms.default_sound", c.Alarms.DefaultSound, oneOf("beep", "chime", "bell")),
		criterio.Run("view.default", c.View.Default, oneOf(ViewBoard, ViewList)),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
		c.validateProjects(),
	)
}

// validateProjects rejects blank default project names.
func (c *Config) validateProjects() error {
	for _, name := range c.Projects.Defaults {
		if strings.TrimSpace(name) == "" {
			return criterio.NewFieldErrors("projects.defaults", fmt.Errorf("project names must not be blank"))
		}
	}
	return nil
}

// oneOf validates that a value is one of the allowed names.
// Empty values pass; defaults are applied elsewhere.
func oneOf(allowed ...string) func(string) error {
	return func(value string) error {
		if value == "" || slices.Contains(allowed, value) {
			return nil
		}
		return fmt.Errorf("must be one of: %s", strings.Join(allowed, ", "))
	}
}

// isDirectoryOrNotExist validates that a path is a directory or absent.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // created on first write
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}
