package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOrganize()
	c.normalizeLogging()
	return c.normalizeMetrics()
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("FOLDERSORT_STATE_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.StateDir = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("FOLDERSORT_CATEGORIES"); ok && strings.TrimSpace(value) != "" {
		c.Paths.CategoriesFile = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if strings.TrimSpace(c.Paths.CategoriesFile) == "" {
		c.Paths.CategoriesFile = defaultCategoriesFile
	}

	var err error
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.CategoriesFile, err = expandPath(c.Paths.CategoriesFile); err != nil {
		return fmt.Errorf("paths.categories_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeOrganize() {
	c.Organize.ArchiveFolder = strings.TrimSpace(c.Organize.ArchiveFolder)
	if c.Organize.ArchiveFolder == "" {
		c.Organize.ArchiveFolder = defaultArchiveFolder
	}
	c.Organize.CollisionPolicy = strings.ToLower(strings.TrimSpace(c.Organize.CollisionPolicy))
	if c.Organize.CollisionPolicy == "" {
		c.Organize.CollisionPolicy = defaultCollisionPolicy
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func (c *Config) normalizeMetrics() error {
	c.Metrics.Textfile = strings.TrimSpace(c.Metrics.Textfile)
	if c.Metrics.Textfile == "" {
		return nil
	}
	var err error
	if c.Metrics.Textfile, err = expandPath(c.Metrics.Textfile); err != nil {
		return fmt.Errorf("metrics.textfile: %w", err)
	}
	return nil
}
