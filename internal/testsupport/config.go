package testsupport

import (
	"path/filepath"
	"testing"

	"sortdl/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	cfg *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Library roots live under the same base as the log and state directories.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := TempDir(t)
	cfgVal := config.Default()
	cfgVal.TMDB.APIKey = "test"
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Library.MoviesDir = filepath.Join(base, "library", "movies")
	cfgVal.Library.TVDir = filepath.Join(base, "library", "tv")

	builder := &configBuilder{cfg: &cfgVal}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTMDBBaseURL points the TMDB client at a test server.
func WithTMDBBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.BaseURL = url
		b.cfg.TMDB.RequestsPerSecond = 0
	}
}

// WithDeleteUnmatched enables deletion of videos without a metadata match.
func WithDeleteUnmatched() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Organizer.DeleteUnmatched = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
