package testsupport

import (
	"path/filepath"
	"testing"

	"curator/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test:
// one library root at <base>/library with its inbox at <base>/library/!new,
// and state, log, and trash directories under <base>.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.TrashDir = filepath.Join(base, "trash")
	cfgVal.Cleanup.TrashTarget = config.TrashTargetDir
	root := filepath.Join(base, "library")
	cfgVal.Library.Roots = []string{root}
	cfgVal.Library.NewDir = filepath.Join(root, config.Default().Library.NewDir)
	cfgVal.Dedupe.Roots = []string{root}
	cfgVal.Dedupe.DBPath = filepath.Join(cfgVal.Paths.StateDir, "md5s.sqlite")
	cfgVal.Dedupe.BackupDir = filepath.Join(cfgVal.Paths.StateDir, "backups")

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

// WithSimulate toggles simulate mode on the test config.
func WithSimulate(simulate bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Simulate = simulate
	}
}

// WithThreshold overrides the similarity threshold.
func WithThreshold(threshold int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Matching.SimilarityThreshold = threshold
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

// LibraryRoot returns the first library root of the generated config.
func LibraryRoot(cfg *config.Config) string {
	return cfg.Library.Roots[0]
}
