package testsupport

import (
	"path/filepath"
	"testing"

	"foldersort/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.CategoriesFile = filepath.Join(base, "config", "categories.json")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithHandleDuplicates turns duplicate handling on by default.
func WithHandleDuplicates() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Organize.HandleDuplicates = true
	}
}

// WithCollisionPolicy overrides organize.collision_policy.
func WithCollisionPolicy(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Organize.CollisionPolicy = policy
	}
}

// WithMetricsTextfile enables the Prometheus textfile under the test base dir.
func WithMetricsTextfile() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metrics.Textfile = filepath.Join(b.baseDir, "metrics", "foldersort.prom")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
