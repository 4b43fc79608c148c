package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"shelf/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The target folder exists and is empty; state and log directories live
// alongside it so history and lock files never land inside the target.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.TargetFolder = filepath.Join(base, "inbox")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Watch.SettleDelayMillis = 10
	cfgVal.Watch.LiveIntervalSeconds = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := os.MkdirAll(builder.cfg.TargetFolder, 0o755); err != nil {
		t.Fatalf("mkdir target: %v", err)
	}
	return builder.cfg
}

// WithMethod sets the organize method on the test config.
func WithMethod(method string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Method = method
	}
}

// WithRecursive toggles recursive scanning on the test config.
func WithRecursive(recursive bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Recursive = recursive
	}
}

// WithDeleteEmpty toggles the empty-directory pass on the test config.
func WithDeleteEmpty(deleteEmpty bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.DeleteEmpty = deleteEmpty
	}
}

// WithCustomRules replaces the custom rules on the test config.
func WithCustomRules(rules ...config.CustomRule) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.CustomRules = rules
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
