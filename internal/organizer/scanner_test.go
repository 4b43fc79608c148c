package organizer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"shelf/internal/config"
	"shelf/internal/logging"
	"shelf/internal/services"
	"shelf/internal/testsupport"
)

var testTime = time.Date(2023, time.March, 10, 15, 4, 5, 0, time.Local)

type recordedMove struct {
	source, destination, category string
}

type fakeRecorder struct {
	mu    sync.Mutex
	moves []recordedMove
	err   error
}

func (f *fakeRecorder) RecordMove(_ context.Context, source, destination, category string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moves = append(f.moves, recordedMove{source, destination, category})
	return f.err
}

func newTestOrganizer(t *testing.T, opts ...testsupport.ConfigOption) (*Organizer, *config.Config, *fakeRecorder) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	rec := &fakeRecorder{}
	return NewOrganizer(cfg, logging.NewNop(), rec), cfg, rec
}

func checkInvariant(t *testing.T, stats Stats) {
	t.Helper()
	if stats.FilesMoved > stats.Scanned || stats.Errors+stats.FilesMoved > stats.Scanned {
		t.Fatalf("stats invariant violated: %+v", stats)
	}
}

func TestOrganizeTopLevelTypeDate(t *testing.T) {
	org, cfg, rec := newTestOrganizer(t)
	root := cfg.TargetFolder
	testsupport.WriteFileAt(t, filepath.Join(root, "cat.jpg"), "img", testTime)
	testsupport.WriteFileAt(t, filepath.Join(root, "notes.txt"), "doc", testTime)
	testsupport.WriteFileAt(t, filepath.Join(root, "mystery.xyz"), "?", testTime)
	testsupport.WriteFileAt(t, filepath.Join(root, "nested", "deep.jpg"), "img", testTime)

	var stats Stats
	if err := org.Organize(context.Background(), OptionsFromConfig(cfg), &stats); err != nil {
		t.Fatalf("Organize: %v", err)
	}

	for _, want := range []string{
		filepath.Join(root, "Images", "2023", "Mar", "cat.jpg"),
		filepath.Join(root, "Documents", "2023", "Mar", "notes.txt"),
		filepath.Join(root, "Others", "2023", "Mar", "mystery.xyz"),
		filepath.Join(root, "nested", "deep.jpg"),
	} {
		if _, err := os.Stat(want); err != nil {
			t.Fatalf("expected %s: %v", want, err)
		}
	}
	if stats.Scanned != 3 || stats.FilesMoved != 3 || stats.Errors != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	// One per destination folder, however many parents MkdirAll adds.
	if stats.FoldersCreated != 3 {
		t.Fatalf("unexpected folders created: %d", stats.FoldersCreated)
	}
	if len(rec.moves) != 3 {
		t.Fatalf("expected 3 recorded moves, got %d", len(rec.moves))
	}
	checkInvariant(t, stats)
}

func TestOrganizeTwiceIsIdempotent(t *testing.T) {
	org, cfg, _ := newTestOrganizer(t, testsupport.WithMethod(config.MethodType))
	root := cfg.TargetFolder
	testsupport.WriteFileAt(t, filepath.Join(root, "a.pdf"), "a", testTime)
	testsupport.WriteFileAt(t, filepath.Join(root, "b.zip"), "b", testTime)
	opts := OptionsFromConfig(cfg)

	var first Stats
	if err := org.Organize(context.Background(), opts, &first); err != nil {
		t.Fatalf("first Organize: %v", err)
	}
	if first.FilesMoved != 2 {
		t.Fatalf("first run should move both files: %+v", first)
	}

	var second Stats
	if err := org.Organize(context.Background(), opts, &second); err != nil {
		t.Fatalf("second Organize: %v", err)
	}
	if second.FilesMoved != 0 || second.Scanned != 0 {
		t.Fatalf("second run should be a no-op: %+v", second)
	}
	if _, err := os.Stat(filepath.Join(root, "Documents", "a.pdf")); err != nil {
		t.Fatalf("file moved twice or lost: %v", err)
	}
}

func TestOrganizeRecursiveLeavesOrganizedFiles(t *testing.T) {
	org, cfg, _ := newTestOrganizer(t, testsupport.WithRecursive(true))
	root := cfg.TargetFolder
	organized := filepath.Join(root, "Images", "2023", "Mar", "kept.jpg")
	testsupport.WriteFileAt(t, organized, "img", testTime)
	stray := filepath.Join(root, "projects", "old", "script.py")
	testsupport.WriteFileAt(t, stray, "print()", testTime)

	var stats Stats
	if err := org.Organize(context.Background(), OptionsFromConfig(cfg), &stats); err != nil {
		t.Fatalf("Organize: %v", err)
	}

	if _, err := os.Stat(organized); err != nil {
		t.Fatalf("already organized file moved: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "Code", "2023", "Mar", "script.py")); err != nil {
		t.Fatalf("nested file not organized: %v", err)
	}
	testsupport.AssertMissing(t, filepath.Join(root, "projects"))
	if stats.FilesMoved != 1 || stats.FoldersDeleted != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	checkInvariant(t, stats)
}

func TestOrganizeSkipsSymlinks(t *testing.T) {
	org, cfg, _ := newTestOrganizer(t)
	root := cfg.TargetFolder
	outside := filepath.Join(testsupport.BaseDir(cfg), "outside.jpg")
	testsupport.WriteFileAt(t, outside, "img", testTime)
	link := filepath.Join(root, "link.jpg")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	var stats Stats
	if err := org.Organize(context.Background(), OptionsFromConfig(cfg), &stats); err != nil {
		t.Fatalf("Organize: %v", err)
	}
	if _, err := os.Lstat(link); err != nil {
		t.Fatalf("symlink should stay put: %v", err)
	}
	if stats.Scanned != 0 {
		t.Fatalf("symlink should not be scanned: %+v", stats)
	}
}

func TestOrganizeMissingTargetAborts(t *testing.T) {
	org, cfg, _ := newTestOrganizer(t)
	opts := OptionsFromConfig(cfg)
	opts.Target = filepath.Join(cfg.TargetFolder, "absent")

	var stats Stats
	err := org.Organize(context.Background(), opts, &stats)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !services.IsFatal(err) {
		t.Fatal("missing target should be fatal to the batch")
	}
	if stats != (Stats{}) {
		t.Fatalf("no work expected: %+v", stats)
	}
}

func TestOrganizeTargetIsFile(t *testing.T) {
	org, cfg, _ := newTestOrganizer(t)
	file := filepath.Join(cfg.TargetFolder, "plain.txt")
	testsupport.WriteFile(t, file, 1)
	opts := OptionsFromConfig(cfg)
	opts.Target = file

	if err := org.Organize(context.Background(), opts, &Stats{}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOrganizeDeleteEmptyDisabled(t *testing.T) {
	org, cfg, _ := newTestOrganizer(t, testsupport.WithDeleteEmpty(false))
	empty := filepath.Join(cfg.TargetFolder, "empty")
	if err := os.Mkdir(empty, 0o755); err != nil {
		t.Fatal(err)
	}

	var stats Stats
	if err := org.Organize(context.Background(), OptionsFromConfig(cfg), &stats); err != nil {
		t.Fatalf("Organize: %v", err)
	}
	if _, err := os.Stat(empty); err != nil {
		t.Fatalf("empty folder removed with delete_empty=false: %v", err)
	}
	if stats.FoldersDeleted != 0 {
		t.Fatalf("unexpected deletions: %+v", stats)
	}
}

func TestOrganizeCustomRulesOverrideDefaults(t *testing.T) {
	org, cfg, _ := newTestOrganizer(t,
		testsupport.WithMethod(config.MethodDateType),
		testsupport.WithCustomRules(config.CustomRule{Category: "Screenshots", Extensions: []string{"png"}}),
	)
	root := cfg.TargetFolder
	testsupport.WriteFileAt(t, filepath.Join(root, "shot.PNG"), "png", testTime)

	if err := org.Organize(context.Background(), OptionsFromConfig(cfg), &Stats{}); err != nil {
		t.Fatalf("Organize: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "2023", "Mar", "Screenshots", "shot.PNG")); err != nil {
		t.Fatalf("custom rule not applied: %v", err)
	}
}

func TestOrganizeCancelledContextStopsBeforeWork(t *testing.T) {
	org, cfg, _ := newTestOrganizer(t)
	testsupport.WriteFileAt(t, filepath.Join(cfg.TargetFolder, "a.jpg"), "a", testTime)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stats Stats
	if err := org.Organize(ctx, OptionsFromConfig(cfg), &stats); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if stats.FilesMoved != 0 {
		t.Fatalf("no move expected after cancel: %+v", stats)
	}
}

func TestOrganizeRecorderFailureDoesNotFailMove(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	rec := &fakeRecorder{err: errors.New("database is locked")}
	org := NewOrganizer(cfg, logging.NewNop(), rec)
	testsupport.WriteFileAt(t, filepath.Join(cfg.TargetFolder, "a.mp4"), "v", testTime)

	var stats Stats
	if err := org.Organize(context.Background(), OptionsFromConfig(cfg), &stats); err != nil {
		t.Fatalf("Organize: %v", err)
	}
	if stats.FilesMoved != 1 || stats.Errors != 0 {
		t.Fatalf("recorder failure leaked into stats: %+v", stats)
	}
}
