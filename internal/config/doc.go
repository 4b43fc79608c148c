// Package config loads, normalizes, validates, and persists shelf
// configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and accepts the legacy organizer_config.json
// layout (JSON with comments tolerated). A file that cannot be parsed never
// stops the tool: Load falls back to defaults and reports the parse failure as
// a warning so callers can log it.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, a canonical organize method, and clear validation errors.
package config
