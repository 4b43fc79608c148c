package organizer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"shelf/internal/fileutil"
	"shelf/internal/services"
)

const moveStage = "organizing"

// SafeMove moves src into destDir and returns the final path. Existing files
// are never overwritten: when the name is taken the first free "stem (N).ext"
// with N counting up from 1 is used instead.
//
// Every call counts as scanned. The folder counter moves when destDir had to
// be created, and exactly one of FilesMoved or Errors moves per call.
func SafeMove(src, destDir string, stats *Stats) (string, error) {
	if stats == nil {
		stats = &Stats{}
	}
	stats.Scanned++

	created, err := ensureDir(destDir)
	if err != nil {
		stats.Errors++
		return "", services.Wrap(services.ErrTransient, moveStage, "create destination",
			fmt.Sprintf("Failed to create %s", destDir), err)
	}
	if created {
		stats.FoldersCreated++
	}

	dest, err := freeName(destDir, filepath.Base(src))
	if err != nil {
		stats.Errors++
		return "", services.Wrap(services.ErrTransient, moveStage, "pick destination name",
			fmt.Sprintf("Failed to probe %s", destDir), err)
	}

	if err := fileutil.MoveFile(src, dest); err != nil {
		stats.Errors++
		return "", services.Wrap(services.ErrTransient, moveStage, "move file",
			fmt.Sprintf("Failed to move %s to %s", src, dest), err)
	}
	stats.FilesMoved++
	return dest, nil
}

// ensureDir creates dir and its parents, reporting whether dir itself was
// missing beforehand.
func ensureDir(dir string) (bool, error) {
	info, err := os.Stat(dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return false, fmt.Errorf("%s exists and is not a directory", dir)
		}
		return false, nil
	case !errors.Is(err, fs.ErrNotExist):
		return false, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, err
	}
	return true, nil
}

// freeName returns dir/name, or the first dir/"stem (N)suffix" that does not
// exist yet.
func freeName(dir, name string) (string, error) {
	candidate := filepath.Join(dir, name)
	taken, err := exists(candidate)
	if err != nil || !taken {
		return candidate, err
	}

	stem, suffix := splitName(name)
	for n := 1; ; n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, suffix))
		taken, err = exists(candidate)
		if err != nil || !taken {
			return candidate, err
		}
	}
}

func exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
