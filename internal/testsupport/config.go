package testsupport

import (
	"path/filepath"
	"testing"

	"vpdkit/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.CacheDir = filepath.Join(base, "cache")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithMoveFiles switches organize runs from copying to moving.
func WithMoveFiles() ConfigOption {
	return func(c *config.Config) {
		c.Organize.MoveFiles = true
	}
}

// WithCopyUnused controls whether organize sets unused resources aside.
func WithCopyUnused(copy bool) ConfigOption {
	return func(c *config.Config) {
		c.Organize.CopyUnused = copy
	}
}

// WithStemFallback controls the repair stem-match fallback.
func WithStemFallback(enabled bool) ConfigOption {
	return func(c *config.Config) {
		c.Repair.StemFallback = enabled
	}
}

// WithKeepBackup controls whether organize keeps its backup on success.
func WithKeepBackup(keep bool) ConfigOption {
	return func(c *config.Config) {
		c.Organize.KeepBackup = keep
	}
}
