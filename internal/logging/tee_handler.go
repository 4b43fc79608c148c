package logging

import (
	"context"
	"errors"
	"log/slog"
)

// teeHandler copies each record to the terminal handler and to the day's JSON
// file handler. A sink only sees records at or above its own level.
type teeHandler struct {
	sinks []slog.Handler
}

// newTeeHandler drops nil sinks. With one sink left it is returned as is;
// with none the result discards everything.
func newTeeHandler(sinks ...slog.Handler) slog.Handler {
	var live []slog.Handler
	for _, h := range sinks {
		if h != nil {
			live = append(live, h)
		}
	}
	switch len(live) {
	case 0:
		return NoopHandler{}
	case 1:
		return live[0]
	}
	return &teeHandler{sinks: live}
}

func (t *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.sinks {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle gives every sink but the last its own clone, since handlers may
// keep the record's attribute slice.
func (t *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	last := len(t.sinks) - 1
	for i, h := range t.sinks {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		r := record
		if i < last {
			r = record.Clone()
		}
		if err := h.Handle(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return t.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (t *teeHandler) WithGroup(name string) slog.Handler {
	return t.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t *teeHandler) derive(fn func(slog.Handler) slog.Handler) slog.Handler {
	next := make([]slog.Handler, len(t.sinks))
	for i, h := range t.sinks {
		next[i] = fn(h)
	}
	return &teeHandler{sinks: next}
}
