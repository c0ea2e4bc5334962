package testsupport

import (
	"path/filepath"
	"testing"

	"shelfscan/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.TMDB.APIKey = "test"
	cfg.Paths.CatalogDir = filepath.Join(base, "catalog")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithOMDBKey sets the OMDB API key on the test config.
func WithOMDBKey(key string) ConfigOption {
	return func(c *config.Config) {
		c.OMDB.APIKey = key
	}
}

// WithScannerDevice pins the capture device path on the test config.
func WithScannerDevice(path string) ConfigOption {
	return func(c *config.Config) {
		c.Scanner.Device = path
	}
}
