package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"snakewatch/internal/config"
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
	cfgVal.Group.URL = "https://www.facebook.com/groups/snakespotters"
	cfgVal.Paths.InputDir = filepath.Join(base, "input")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	return builder.cfg
}

// WithGroupURL overrides the monitored group URL on the test config.
func WithGroupURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Group.URL = url
	}
}

// WithPatterns replaces the target species patterns on the test config.
func WithPatterns(patterns ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Targets.Patterns = patterns
	}
}

// WithStaffFile writes a moderator roster with the given names and points the
// config at it.
func WithStaffFile(names ...string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "staff.txt")
		var data []byte
		for _, name := range names {
			data = append(data, name...)
			data = append(data, '\n')
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			b.t.Fatalf("write staff file: %v", err)
		}
		b.cfg.Group.StaffFile = path
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
