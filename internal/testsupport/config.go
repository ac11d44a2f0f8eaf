package testsupport

import (
	"path/filepath"
	"testing"

	"reelsmith/internal/config"
)

// ConfigOption adjusts a generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig returns a config rooted in a fresh temp directory. Every adapter
// has a placeholder key and no reachable endpoint, so tests that need a
// service must inject a fake.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(cfg.Paths.StateDir, "logs")
	cfg.Metrics.Textfile = filepath.Join(cfg.Paths.StateDir, "reelsmith.prom")
	cfg.LLM.APIKey = "test"
	cfg.Image.APIKey = "test"
	cfg.Video.APIKey = "test"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithBackend selects the snapshot backend.
func WithBackend(backend string) ConfigOption {
	return func(cfg *config.Config) { cfg.Persistence.Backend = backend }
}

// WithRedis points the redis backend at addr.
func WithRedis(addr string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Persistence.Backend = config.BackendRedis
		cfg.Persistence.RedisAddr = addr
	}
}

// BaseDir is the temp directory that holds the config's state tree.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
