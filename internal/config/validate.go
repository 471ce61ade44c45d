package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateOrganize(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	if c.Paths.CategoriesFile == "" {
		return errors.New("paths.categories_file must be set")
	}
	if !strings.EqualFold(filepath.Ext(c.Paths.CategoriesFile), ".json") {
		return fmt.Errorf("paths.categories_file must be a .json file, got %q", c.Paths.CategoriesFile)
	}
	return nil
}

func (c *Config) validateOrganize() error {
	if c.Organize.ArchiveAfterDays <= 0 {
		return errors.New("organize.archive_after_days must be positive")
	}
	if strings.ContainsAny(c.Organize.ArchiveFolder, `/\`) || c.Organize.ArchiveFolder == "." || c.Organize.ArchiveFolder == ".." {
		return fmt.Errorf("organize.archive_folder must be a plain folder name, got %q", c.Organize.ArchiveFolder)
	}
	switch c.Organize.CollisionPolicy {
	case CollisionOverwrite, CollisionFail:
	default:
		return fmt.Errorf("organize.collision_policy must be %q or %q, got %q", CollisionOverwrite, CollisionFail, c.Organize.CollisionPolicy)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}
