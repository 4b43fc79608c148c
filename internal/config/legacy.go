package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tailscale/hujson"
)

// legacyConfigName is the older JSON config kept in the working directory.
// It is still discovered so existing setups keep working.
const legacyConfigName = "organizer_config.json"

// legacyConfig is the organizer_config.json record. Absent fields keep their
// defaults.
type legacyConfig struct {
	TargetFolder *string      `json:"target_folder,omitempty"`
	Method       *string      `json:"method,omitempty"`
	Recursive    *bool        `json:"recursive,omitempty"`
	DeleteEmpty  *bool        `json:"delete_empty,omitempty"`
	WatchMode    *bool        `json:"watch_mode,omitempty"`
	CustomRules  orderedRules `json:"custom_rules"`
}

// orderedRules decodes a JSON object of category -> extensions while keeping
// the key order of the document.
type orderedRules []CustomRule

func (r *orderedRules) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("custom_rules must be an object of category to extension list")
	}
	rules := orderedRules{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		category, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("custom_rules: unexpected key %v", keyTok)
		}
		var extensions []string
		if err := dec.Decode(&extensions); err != nil {
			return fmt.Errorf("custom_rules.%s: %w", category, err)
		}
		rules = append(rules, CustomRule{Category: category, Extensions: extensions})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = rules
	return nil
}

func (r orderedRules) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, rule := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(rule.Category)
		if err != nil {
			return nil, err
		}
		extensions := rule.Extensions
		if extensions == nil {
			extensions = []string{}
		}
		value, err := json.Marshal(extensions)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func parseLegacy(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var raw legacyConfig
	if err := json.Unmarshal(standardized, &raw); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	cfg := Default()
	if raw.TargetFolder != nil {
		cfg.TargetFolder = *raw.TargetFolder
	}
	if raw.Method != nil {
		cfg.Method = *raw.Method
	}
	if raw.Recursive != nil {
		cfg.Recursive = *raw.Recursive
	}
	if raw.DeleteEmpty != nil {
		cfg.DeleteEmpty = *raw.DeleteEmpty
	}
	if raw.WatchMode != nil {
		cfg.WatchMode = *raw.WatchMode
	}
	cfg.CustomRules = []CustomRule(raw.CustomRules)
	return cfg, nil
}

func encodeLegacy(c *Config) ([]byte, error) {
	target := c.TargetFolder
	method := c.Method
	recursive := c.Recursive
	deleteEmpty := c.DeleteEmpty
	watchMode := c.WatchMode
	payload := legacyConfig{
		TargetFolder: &target,
		Method:       &method,
		Recursive:    &recursive,
		DeleteEmpty:  &deleteEmpty,
		WatchMode:    &watchMode,
		CustomRules:  orderedRules(c.CustomRules),
	}
	if payload.CustomRules == nil {
		payload.CustomRules = orderedRules{}
	}
	return json.MarshalIndent(payload, "", "  ")
}
