package organizer

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"shelf/internal/logging"
)

// ReapEmptyDirs removes every empty directory below root, deepest first, so
// a parent emptied by removing its children goes in the same pass. root
// itself is never removed. Failures are logged at debug level and ignored.
func ReapEmptyDirs(root string, stats *Stats, logger *slog.Logger) {
	if stats == nil {
		stats = &Stats{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	var dirs []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})

	// WalkDir visits parents before children; walk the list backwards.
	for i := len(dirs) - 1; i >= 0; i-- {
		dir := dirs[i]
		entries, err := os.ReadDir(dir)
		if err != nil {
			logger.Debug("could not inspect folder", logging.String("path", dir), logging.Error(err))
			continue
		}
		if len(entries) > 0 {
			continue
		}
		if err := os.Remove(dir); err != nil {
			logger.Debug("could not delete folder", logging.String("path", dir), logging.Error(err))
			continue
		}
		stats.FoldersDeleted++
		logger.Info("empty folder deleted",
			logging.String("path", dir),
			logging.String(logging.FieldEventType, "folder_deleted"),
		)
	}
}
