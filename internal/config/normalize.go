package config

import (
	"fmt"
	"strings"
)

// normalize expands paths, canonicalizes enumerations, and fills unset
// values. It returns human-readable warnings for values it had to replace.
func (c *Config) normalize() ([]string, error) {
	var warnings []string
	if err := c.normalizePaths(); err != nil {
		return nil, err
	}
	if warning := c.normalizeMethod(); warning != "" {
		warnings = append(warnings, warning)
	}
	c.normalizeCustomRules()
	c.normalizeWatch()
	c.normalizeLogging()
	return warnings, nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.TargetFolder) == "" {
		c.TargetFolder = defaultTargetFolder
	}
	if c.TargetFolder, err = expandPath(strings.TrimSpace(c.TargetFolder)); err != nil {
		return fmt.Errorf("target_folder: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

// normalizeMethod maps the method onto one of the three known layouts. An
// unrecognized value behaves like "type", the flat layout.
func (c *Config) normalizeMethod() string {
	method := NormalizeMethod(c.Method)
	if method == "" {
		c.Method = defaultMethod
		return ""
	}
	if !IsKnownMethod(method) {
		original := c.Method
		c.Method = MethodType
		return fmt.Sprintf("unknown method %q; using %q", original, MethodType)
	}
	c.Method = method
	return ""
}

// NormalizeMethod trims and lowercases an organize method string.
func NormalizeMethod(method string) string {
	return strings.ToLower(strings.TrimSpace(method))
}

// IsKnownMethod reports whether method names one of the supported layouts.
func IsKnownMethod(method string) bool {
	switch method {
	case MethodTypeDate, MethodDateType, MethodType:
		return true
	default:
		return false
	}
}

func (c *Config) normalizeCustomRules() {
	if len(c.CustomRules) == 0 {
		c.CustomRules = nil
		return
	}
	rules := make([]CustomRule, 0, len(c.CustomRules))
	for _, rule := range c.CustomRules {
		rule.Category = strings.TrimSpace(rule.Category)
		exts := make([]string, 0, len(rule.Extensions))
		for _, ext := range rule.Extensions {
			if trimmed := strings.TrimSpace(ext); trimmed != "" {
				exts = append(exts, trimmed)
			}
		}
		rule.Extensions = exts
		rules = append(rules, rule)
	}
	c.CustomRules = rules
}

func (c *Config) normalizeWatch() {
	if c.Watch.SettleDelayMillis <= 0 {
		c.Watch.SettleDelayMillis = defaultSettleDelayMillis
	}
	if c.Watch.LiveIntervalSeconds < 0 {
		c.Watch.LiveIntervalSeconds = 0
	}
	if c.Watch.IgnorePatterns == nil {
		c.Watch.IgnorePatterns = defaultIgnorePatterns()
		return
	}
	patterns := make([]string, 0, len(c.Watch.IgnorePatterns))
	seen := make(map[string]struct{}, len(c.Watch.IgnorePatterns))
	for _, pattern := range c.Watch.IgnorePatterns {
		trimmed := strings.TrimSpace(pattern)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		patterns = append(patterns, trimmed)
	}
	c.Watch.IgnorePatterns = patterns
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
