package organizer

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"

	"shelf/internal/logging"
)

// Organize runs one batch pass over opts.Target. A missing target aborts the
// run with an ErrNotFound error before anything is touched; every other
// failure is per file and only counted. Cancelling ctx stops the pass
// between files. stats is zeroed on entry.
func (o *Organizer) Organize(ctx context.Context, opts Options, stats *Stats) error {
	if stats == nil {
		stats = &Stats{}
	}
	stats.Reset()
	logger := logging.WithContext(ctx, o.logger)

	root, err := resolveTarget(opts.Target)
	if err != nil {
		logging.ErrorWithContext(logger, "target folder unavailable", "target_missing",
			logging.String("folder", opts.Target),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "create the folder or set target_folder"),
		)
		return err
	}

	rules := BuildRules(opts.CustomRules)
	layout := opts.Layout
	if layout == "" {
		layout = LayoutTypeThenDate
	}

	logger.Info("organize started",
		logging.String("folder", root),
		logging.String("layout", layout.String()),
		logging.Bool("recursive", opts.Recursive),
		logging.Bool("delete_empty", opts.DeleteEmpty),
	)

	// Collect first so files moved during the pass are not rediscovered.
	paths := o.collect(logger, root, opts.Recursive, rules)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			logger.Info("organize interrupted", logging.Args(stats.Attrs()...)...)
			return err
		}
		_ = o.place(ctx, FileTask{
			Path:        path,
			Root:        root,
			Rules:       rules,
			Layout:      layout,
			Recursive:   opts.Recursive,
			DeleteEmpty: opts.DeleteEmpty,
		}, stats)
	}

	if opts.DeleteEmpty {
		ReapEmptyDirs(root, stats, logger)
	}

	logger.Info("organize finished", logging.Args(stats.Attrs()...)...)
	return nil
}

// collect lists the regular files to consider. Without recursion only the
// root's own files are returned and no subdirectory is entered; category
// folders at the top level are reported as skipped.
func (o *Organizer) collect(logger *slog.Logger, root string, recursive bool, rules RuleTable) []string {
	var paths []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Debug("skipping unreadable path", logging.String("path", path), logging.Error(err))
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if !recursive {
				if filepath.Dir(path) == root && rules.HasCategory(d.Name()) {
					logger.Debug("skipping category folder", logging.String("path", path))
				}
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	return paths
}
