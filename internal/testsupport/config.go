package testsupport

import (
	"path/filepath"
	"testing"

	"obdexporter/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a normalized config rooted in a unique temp directory.
// Pacing is disabled so export tests run at full speed.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.AppDir = filepath.Join(base, "app")
	cfgVal.Export.PacingMillis = 0
	cfgVal.Logging.Level = "debug"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Normalize(); err != nil {
		t.Fatalf("normalize config: %v", err)
	}
	return builder.cfg
}

// WithFormatVersion overrides the container format version.
func WithFormatVersion(version int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Export.FormatVersion = version
	}
}

// WithPacing sets the delay between exported items.
func WithPacing(millis int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Export.PacingMillis = millis
	}
}

// WithoutHistory disables the run journal.
func WithoutHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Export.RecordHistory = false
	}
}

// WithOutputDir overrides the artifact directory.
func WithOutputDir(dir string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.OutputDir = dir
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.AppDir)
}
