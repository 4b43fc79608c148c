package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTarget(); err != nil {
		return err
	}
	if err := c.validateCustomRules(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTarget() error {
	if strings.TrimSpace(c.TargetFolder) == "" {
		return errors.New("target_folder must be set")
	}
	if !IsKnownMethod(c.Method) {
		return fmt.Errorf("method must be one of %s, %s, %s", MethodTypeDate, MethodDateType, MethodType)
	}
	return nil
}

func (c *Config) validateCustomRules() error {
	for idx, rule := range c.CustomRules {
		name := strings.TrimSpace(rule.Category)
		if name == "" {
			return fmt.Errorf("custom_rules[%d].category must be set", idx)
		}
		if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
			return fmt.Errorf("custom_rules[%d].category %q must be a plain folder name", idx, name)
		}
	}
	return nil
}

func (c *Config) validateWatch() error {
	if c.Watch.SettleDelayMillis <= 0 {
		return errors.New("watch.settle_delay_ms must be positive")
	}
	for _, pattern := range c.Watch.IgnorePatterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("watch.ignore_patterns: invalid pattern %q: %w", pattern, err)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
