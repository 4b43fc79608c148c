package organizer

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"shelf/internal/config"
	"shelf/internal/logging"
	"shelf/internal/services"
	"shelf/internal/testsupport"
	"shelf/internal/watcher"
)

func TestHandleCreatedMovesFileAndReaps(t *testing.T) {
	org, cfg, rec := newTestOrganizer(t, testsupport.WithMethod(config.MethodType))
	root := cfg.TargetFolder
	leftover := filepath.Join(root, "leftover")
	if err := os.Mkdir(leftover, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(root, "setup.deb")
	testsupport.WriteFileAt(t, path, "deb", testTime)

	var stats Stats
	opts := OptionsFromConfig(cfg)
	if err := org.HandleCreated(context.Background(), path, opts, BuildRules(opts.CustomRules), &stats); err != nil {
		t.Fatalf("HandleCreated: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "Installers", "setup.deb")); err != nil {
		t.Fatalf("file not moved: %v", err)
	}
	testsupport.AssertMissing(t, leftover)
	if stats.FilesMoved != 1 || stats.FoldersDeleted != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(rec.moves) != 1 || rec.moves[0].category != "Installers" {
		t.Fatalf("unexpected recorded moves: %+v", rec.moves)
	}
}

func TestHandleCreatedIgnoresOwnMoves(t *testing.T) {
	org, cfg, _ := newTestOrganizer(t)
	root := cfg.TargetFolder
	path := filepath.Join(root, "Images", "2023", "Mar", "cat.jpg")
	testsupport.WriteFileAt(t, path, "img", testTime)

	var stats Stats
	opts := OptionsFromConfig(cfg)
	if err := org.HandleCreated(context.Background(), path, opts, BuildRules(nil), &stats); err != nil {
		t.Fatalf("HandleCreated: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("organized file should stay put: %v", err)
	}
	if stats != (Stats{}) {
		t.Fatalf("no-op expected: %+v", stats)
	}
}

func TestHandleCreatedVanishedFileIsQuiet(t *testing.T) {
	org, cfg, _ := newTestOrganizer(t, testsupport.WithDeleteEmpty(false))
	var stats Stats
	err := org.HandleCreated(context.Background(), filepath.Join(cfg.TargetFolder, "gone.tmp"), OptionsFromConfig(cfg), DefaultRules(), &stats)
	if err != nil {
		t.Fatalf("vanished file should not error: %v", err)
	}
	if stats != (Stats{}) {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestHandleCreatedMissingTarget(t *testing.T) {
	org, cfg, _ := newTestOrganizer(t)
	opts := OptionsFromConfig(cfg)
	opts.Target = filepath.Join(cfg.TargetFolder, "nope")
	err := org.HandleCreated(context.Background(), filepath.Join(opts.Target, "a.txt"), opts, DefaultRules(), &Stats{})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWatchHandlesEventsInOrder(t *testing.T) {
	org, cfg, rec := newTestOrganizer(t, testsupport.WithMethod(config.MethodType), testsupport.WithDeleteEmpty(false))
	root := cfg.TargetFolder
	first := filepath.Join(root, "one.txt")
	second := filepath.Join(root, "two.mp3")
	testsupport.WriteFileAt(t, first, "1", testTime)
	testsupport.WriteFileAt(t, second, "2", testTime)

	events := make(chan watcher.Event, 2)
	events <- watcher.Event{Path: first}
	events <- watcher.Event{Path: second}
	close(events)

	var stats Stats
	if err := org.Watch(context.Background(), OptionsFromConfig(cfg), &stats, events); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if stats.FilesMoved != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(rec.moves) != 2 || rec.moves[0].source != first || rec.moves[1].source != second {
		t.Fatalf("moves out of order: %+v", rec.moves)
	}
}

func TestWatchContinuesAfterFailure(t *testing.T) {
	org, cfg, _ := newTestOrganizer(t, testsupport.WithMethod(config.MethodType), testsupport.WithDeleteEmpty(false))
	root := cfg.TargetFolder
	// A file named like the category folder blocks the move.
	testsupport.WriteFile(t, filepath.Join(root, "Documents"), 1)
	bad := filepath.Join(root, "blocked.pdf")
	good := filepath.Join(root, "fine.zip")
	testsupport.WriteFileAt(t, bad, "pdf", testTime)
	testsupport.WriteFileAt(t, good, "zip", testTime)

	events := make(chan watcher.Event, 2)
	events <- watcher.Event{Path: bad}
	events <- watcher.Event{Path: good}
	close(events)

	var stats Stats
	if err := org.Watch(context.Background(), OptionsFromConfig(cfg), &stats, events); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if stats.Errors != 1 || stats.FilesMoved != 1 || stats.Scanned != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if _, err := os.Stat(filepath.Join(root, "Archives", "fine.zip")); err != nil {
		t.Fatalf("later event not handled: %v", err)
	}
}

func TestWatchStopsOnCancelDuringSettle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Watch.SettleDelayMillis = 5000
	org := NewOrganizer(cfg, logging.NewNop(), nil)
	path := filepath.Join(cfg.TargetFolder, "late.jpg")
	testsupport.WriteFileAt(t, path, "img", testTime)

	events := make(chan watcher.Event, 1)
	events <- watcher.Event{Path: path}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	var stats Stats
	go func() { done <- org.Watch(ctx, OptionsFromConfig(cfg), &stats, events) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("event should not be handled after stop: %v", err)
	}
	if stats.Scanned != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestWatchEndToEndWithWatcher(t *testing.T) {
	org, cfg, _ := newTestOrganizer(t, testsupport.WithMethod(config.MethodType), testsupport.WithDeleteEmpty(false))
	root := cfg.TargetFolder

	w, err := watcher.New(logging.NewNop(), root, watcher.Options{})
	if err != nil {
		t.Fatalf("watcher.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx) }()

	var stats Stats
	done := make(chan error, 1)
	go func() { done <- org.Watch(ctx, OptionsFromConfig(cfg), &stats, w.Events()) }()

	target := filepath.Join(root, "Documents", "letter.txt")
	if err := os.WriteFile(filepath.Join(root, "letter.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		if _, err := os.Stat(target); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("file was not organized by the watch session")
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	_ = w.Stop()
	if err := <-done; err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if stats.FilesMoved != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestWatchStoppedLineReportsFinalCounters(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMethod(config.MethodType), testsupport.WithDeleteEmpty(false))
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	org := NewOrganizer(cfg, logger, nil)

	path := filepath.Join(cfg.TargetFolder, "a.jpg")
	testsupport.WriteFileAt(t, path, "img", testTime)
	events := make(chan watcher.Event, 1)
	events <- watcher.Event{Path: path}
	close(events)

	var stats Stats
	if err := org.Watch(context.Background(), OptionsFromConfig(cfg), &stats, events); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if stats.FilesMoved != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	var stopped string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, `msg="watch stopped"`) {
			stopped = line
		}
	}
	if stopped == "" {
		t.Fatalf("no watch stopped line in:\n%s", buf.String())
	}
	for _, want := range []string{"scanned=1", "files_moved=1", "errors=0"} {
		if !strings.Contains(stopped, want) {
			t.Fatalf("watch stopped line %q missing %q", stopped, want)
		}
	}
}
