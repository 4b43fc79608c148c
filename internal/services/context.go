package services

import "context"

type contextKey string

const (
	runIDKey  contextKey = "run_id"
	modeKey   contextKey = "mode"
	targetKey contextKey = "target"
)

// WithRunID annotates context with the run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithMode annotates context with the run mode (batch or watch).
func WithMode(ctx context.Context, mode string) context.Context {
	if mode == "" {
		return ctx
	}
	return context.WithValue(ctx, modeKey, mode)
}

// ModeFromContext returns the run mode if present.
func ModeFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(modeKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithTarget annotates context with the organized root directory.
func WithTarget(ctx context.Context, target string) context.Context {
	if target == "" {
		return ctx
	}
	return context.WithValue(ctx, targetKey, target)
}

// TargetFromContext returns the organized root directory if present.
func TargetFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(targetKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
