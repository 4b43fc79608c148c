package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"shelf/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDirectoryAccess_Empty(t *testing.T) {
	if CheckDirectoryAccess("test", "").Passed {
		t.Fatal("expected failure for unconfigured path")
	}
}

func TestRunAllReportsMissingStateDirs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	results := RunAll(cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].Passed {
		t.Fatalf("target should pass: %s", results[0].Detail)
	}
	// State and log dirs are created lazily and do not exist yet.
	if failed := Failed(results); len(failed) != 2 {
		t.Fatalf("expected 2 failures before directories exist, got %+v", failed)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if failed := Failed(RunAll(cfg)); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}
