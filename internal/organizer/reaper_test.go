package organizer

import (
	"os"
	"path/filepath"
	"testing"

	"shelf/internal/logging"
	"shelf/internal/testsupport"
)

func TestReapEmptyDirsRemovesNestedEmpties(t *testing.T) {
	root := t.TempDir()
	dirs := []string{
		filepath.Join(root, "a", "b", "c"),
		filepath.Join(root, "a", "d"),
		filepath.Join(root, "e"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	var stats Stats
	ReapEmptyDirs(root, &stats, logging.NewNop())

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("root must survive: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no directories left, found %d", len(entries))
	}
	// a, a/b, a/b/c, a/d, e
	if stats.FoldersDeleted != 5 {
		t.Fatalf("expected 5 deletions, got %d", stats.FoldersDeleted)
	}
}

func TestReapEmptyDirsKeepsOccupiedBranches(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "Images", "2023", "Mar", "cat.jpg"), 1)
	if err := os.MkdirAll(filepath.Join(root, "Images", "2022", "Jan"), 0o755); err != nil {
		t.Fatal(err)
	}

	var stats Stats
	ReapEmptyDirs(root, &stats, nil)

	if stats.FoldersDeleted != 2 {
		t.Fatalf("expected 2 deletions, got %d", stats.FoldersDeleted)
	}
	testsupport.AssertMissing(t, filepath.Join(root, "Images", "2022"))
	if _, err := os.Stat(filepath.Join(root, "Images", "2023", "Mar", "cat.jpg")); err != nil {
		t.Fatalf("occupied branch removed: %v", err)
	}
}

func TestReapEmptyDirsOnEmptyRoot(t *testing.T) {
	root := t.TempDir()
	var stats Stats
	ReapEmptyDirs(root, &stats, nil)
	if stats.FoldersDeleted != 0 {
		t.Fatalf("root must never be removed or counted: %+v", stats)
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatalf("root removed: %v", err)
	}
}
