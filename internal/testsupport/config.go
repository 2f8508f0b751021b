package testsupport

import (
	"path/filepath"
	"testing"

	"edustream/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.MediaDir = filepath.Join(base, "media")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Publishing.IntervalMinutes = 30
	cfg.Scenario.ExclusionWindow = 2

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithPublishInterval overrides the configured publish spacing.
func WithPublishInterval(minutes int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Publishing.IntervalMinutes = minutes
	}
}

// WithExclusionWindow overrides the selector recency window.
func WithExclusionWindow(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scenario.ExclusionWindow = n
	}
}
