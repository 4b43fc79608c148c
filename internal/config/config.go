package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// CustomRule maps a user category to the extensions it claims. Rules keep the
// order in which they appear in the file.
type CustomRule struct {
	Category   string   `toml:"category"`
	Extensions []string `toml:"extensions"`
}

// Paths contains state and log directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Watch contains configuration for watch sessions.
type Watch struct {
	// SettleDelayMillis is how long a new file is left alone before it is moved,
	// giving the writer time to finish.
	SettleDelayMillis   int      `toml:"settle_delay_ms"`
	LiveIntervalSeconds int      `toml:"live_interval_seconds"`
	IgnorePatterns      []string `toml:"ignore_patterns"`
	IgnoreHidden        bool     `toml:"ignore_hidden"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for shelf.
//
// The top-level fields mirror the organizer record (target folder, method,
// flags, custom rules); the sections configure the ambient machinery:
//   - Paths: history database, lock file, and log locations
//   - Watch: settle delay, live stats cadence, ignore patterns
//   - Logging: log format, level, and retention
type Config struct {
	TargetFolder string       `toml:"target_folder"`
	Method       string       `toml:"method"`
	Recursive    bool         `toml:"recursive"`
	DeleteEmpty  bool         `toml:"delete_empty"`
	WatchMode    bool         `toml:"watch_mode"`
	CustomRules  []CustomRule `toml:"custom_rules"`
	Paths        Paths        `toml:"paths"`
	Watch        Watch        `toml:"watch"`
	Logging      Logging      `toml:"logging"`
}

// LoadResult describes where the configuration came from and anything the
// caller should surface as a warning.
type LoadResult struct {
	Path     string
	Exists   bool
	Warnings []string
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/shelf/config.toml")
}

// Load locates, parses, and validates a configuration file. A file that
// cannot be parsed is replaced by defaults and reported in LoadResult.Warnings.
// The returned config has all path fields expanded and normalized.
func Load(path string) (*Config, LoadResult, error) {
	result := LoadResult{}

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, result, err
	}
	result.Path = resolvedPath
	result.Exists = exists

	cfg := Default()
	if exists {
		parsed, parseErr := readFile(resolvedPath)
		if parseErr != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("failed to parse %s; using defaults: %v", resolvedPath, parseErr))
		} else {
			cfg = parsed
		}
	}

	warnings, err := cfg.normalize()
	if err != nil {
		return nil, result, err
	}
	result.Warnings = append(result.Warnings, warnings...)

	if err := cfg.Validate(); err != nil {
		return nil, result, err
	}

	return &cfg, result, nil
}

func readFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if isLegacyPath(path) {
		return parseLegacy(data)
	}
	return parseTOML(data)
}

func parseTOML(data []byte) (Config, error) {
	cfg := Default()
	// Decoded arrays must replace the defaults rather than extend them.
	cfg.CustomRules = nil
	cfg.Watch.IgnorePatterns = nil

	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if !errors.As(err, &strict) {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		// Unknown keys are tolerated; decode again without the strict check.
		cfg = Default()
		cfg.CustomRules = nil
		cfg.Watch.IgnorePatterns = nil
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	return cfg, nil
}

func isLegacyPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	candidates := []string{defaultPath}
	for _, name := range []string{"shelf.toml", legacyConfigName} {
		projectPath, err := filepath.Abs(name)
		if err != nil {
			return "", false, err
		}
		candidates = append(candidates, projectPath)
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SettleDelay returns the watch settle delay as a duration.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Watch.SettleDelayMillis) * time.Millisecond
}

// LiveInterval returns how often watch sessions log running totals.
func (c *Config) LiveInterval() time.Duration {
	return time.Duration(c.Watch.LiveIntervalSeconds) * time.Second
}

// HistoryPath returns the location of the run history database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockPath returns the location of the single-run lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "shelf.lock")
}

// LogFilePath returns today's persistent JSON log. One file per day keeps
// retention pruning simple.
func (c *Config) LogFilePath() string {
	return c.LogFilePathAt(time.Now())
}

// LogFilePathAt returns the JSON log path for the day containing t.
func (c *Config) LogFilePathAt(t time.Time) string {
	return filepath.Join(c.Paths.LogDir, "shelf-"+t.Format(logFileDateLayout)+".log")
}

// LogFilePattern matches every file LogFilePathAt can produce.
const LogFilePattern = "shelf-*.log"

const logFileDateLayout = "2006-01-02"

// LogFileDay parses the day out of a daily log file name. ok is false for
// names LogFilePathAt would not produce.
func LogFileDay(name string) (day time.Time, ok bool) {
	stamp, found := strings.CutPrefix(filepath.Base(name), "shelf-")
	if !found {
		return time.Time{}, false
	}
	stamp, found = strings.CutSuffix(stamp, ".log")
	if !found {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation(logFileDateLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// Save writes the configuration to path atomically. Paths ending in .json are
// written in the legacy organizer_config.json layout; everything else is TOML.
func (c *Config) Save(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	var payload []byte
	if isLegacyPath(expanded) {
		payload, err = encodeLegacy(c)
	} else {
		payload, err = toml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(expanded); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := atomic.WriteFile(expanded, bytes.NewReader(payload)); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
