package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"foldersort/internal/services"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations used by the tool.
type Paths struct {
	StateDir       string `toml:"state_dir"`
	LogDir         string `toml:"log_dir"`
	CategoriesFile string `toml:"categories_file"`
}

// Organize contains defaults for organize runs. Command-line flags override
// these per invocation.
type Organize struct {
	HandleDuplicates bool   `toml:"handle_duplicates"`
	ApplyCustomRules bool   `toml:"apply_custom_rules"`
	ArchiveAfterDays int    `toml:"archive_after_days"`
	ArchiveFolder    string `toml:"archive_folder"`
	// CollisionPolicy decides what happens when a destination already exists
	// and duplicate handling is off: "overwrite" or "fail".
	CollisionPolicy string `toml:"collision_policy"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Metrics contains configuration for the Prometheus textfile export.
type Metrics struct {
	Textfile string `toml:"textfile"`
}

// Config encapsulates all configuration values for foldersort.
//
// Configuration sections by subsystem:
//   - Paths: state, log, and category table locations
//   - Organize: default organize options and archive rule
//   - Logging: log format, level, and retention
//   - Metrics: optional Prometheus textfile output
type Config struct {
	Paths    Paths    `toml:"paths"`
	Organize Organize `toml:"organize"`
	Logging  Logging  `toml:"logging"`
	Metrics  Metrics  `toml:"metrics"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, services.Wrap(services.ErrConfiguration, "config", "parse", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, services.Wrap(services.ErrConfiguration, "config", "normalize", resolvedPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, services.Wrap(services.ErrConfiguration, "config", "validate", resolvedPath, err)
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("foldersort.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LedgerPath returns the location of the undo journal database.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.Paths.StateDir, "ledger.db")
}

// LockPath returns the location of the state lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "foldersort.lock")
}

// LogPath returns the location of the rolling log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "foldersort.log")
}

// ArchiveAfter returns the age threshold of the archive rule.
func (c *Config) ArchiveAfter() time.Duration {
	return time.Duration(c.Organize.ArchiveAfterDays) * 24 * time.Hour
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
