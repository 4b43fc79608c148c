package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestNewTeeHandlerCollapses(t *testing.T) {
	if _, ok := newTeeHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every handler is nil")
	}

	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := newTeeHandler(nil, inner); h != inner {
		t.Fatal("expected the single non-nil handler to be returned unwrapped")
	}
}

func TestTeeHandlerEnabledWhenAnyHandlerIs(t *testing.T) {
	var warnBuf, debugBuf bytes.Buffer
	h := newTeeHandler(
		slog.NewJSONHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug enabled through the debug handler")
	}

	quiet := newTeeHandler(
		slog.NewJSONHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	if quiet.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("expected info disabled when no handler accepts it")
	}
}

func TestTeeHandlerRespectsPerHandlerLevels(t *testing.T) {
	var infoBuf, warnBuf bytes.Buffer
	logger := slog.New(newTeeHandler(
		slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	))

	logger.Info("file moved")
	if !strings.Contains(infoBuf.String(), "file moved") {
		t.Fatalf("info handler missed record: %q", infoBuf.String())
	}
	if warnBuf.Len() != 0 {
		t.Fatalf("warn handler should skip info records: %q", warnBuf.String())
	}

	logger.Warn("move failed")
	if !strings.Contains(warnBuf.String(), "move failed") {
		t.Fatalf("warn handler missed record: %q", warnBuf.String())
	}
}

func TestTeeHandlerWithAttrsReachesEveryHandler(t *testing.T) {
	var a, b bytes.Buffer
	logger := slog.New(newTeeHandler(
		slog.NewJSONHandler(&a, nil),
		slog.NewJSONHandler(&b, nil),
	)).With(String(FieldRunID, "run-1")).WithGroup("stats")

	logger.Info("summary", Int("moved", 3))
	for name, buf := range map[string]*bytes.Buffer{"a": &a, "b": &b} {
		out := buf.String()
		if !strings.Contains(out, `"run_id":"run-1"`) {
			t.Fatalf("handler %s missing run_id: %s", name, out)
		}
		if !strings.Contains(out, `"stats":{"moved":3}`) {
			t.Fatalf("handler %s missing grouped attr: %s", name, out)
		}
	}
}

type failingHandler struct {
	slog.Handler
	err error
}

func (h failingHandler) Handle(context.Context, slog.Record) error { return h.err }

func TestTeeHandlerReportsEverySinkFailure(t *testing.T) {
	diskFull := errors.New("disk full")
	closed := errors.New("console closed")
	var buf bytes.Buffer
	h := newTeeHandler(
		failingHandler{Handler: slog.NewJSONHandler(&buf, nil), err: closed},
		failingHandler{Handler: slog.NewJSONHandler(&buf, nil), err: diskFull},
	)

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "file moved", 0))
	if !errors.Is(err, diskFull) || !errors.Is(err, closed) {
		t.Fatalf("expected both sink errors, got %v", err)
	}
}
