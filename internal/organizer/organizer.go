package organizer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shelf/internal/config"
	"shelf/internal/logging"
	"shelf/internal/services"
)

// Options are the per-run parameters, resolved from config plus any
// command-line overrides.
type Options struct {
	Target      string
	Layout      Layout
	Recursive   bool
	DeleteEmpty bool
	CustomRules []config.CustomRule
}

// OptionsFromConfig derives run options from a loaded config.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return Options{Layout: LayoutTypeThenDate}
	}
	return Options{
		Target:      cfg.TargetFolder,
		Layout:      ParseLayout(cfg.Method),
		Recursive:   cfg.Recursive,
		DeleteEmpty: cfg.DeleteEmpty,
		CustomRules: cfg.CustomRules,
	}
}

// FileTask is one discovered file together with everything needed to place it.
type FileTask struct {
	Path        string
	Root        string
	Rules       RuleTable
	Layout      Layout
	Recursive   bool
	DeleteEmpty bool
}

// MoveRecorder receives every completed move. A failing recorder never fails
// the move itself.
type MoveRecorder interface {
	RecordMove(ctx context.Context, source, destination, category string) error
}

// Organizer runs batch passes and watch sessions over a target folder.
type Organizer struct {
	logger       *slog.Logger
	recorder     MoveRecorder
	settleDelay  time.Duration
	liveInterval time.Duration
}

// NewOrganizer constructs an organizer using timing from cfg. recorder may be nil.
func NewOrganizer(cfg *config.Config, logger *slog.Logger, recorder MoveRecorder) *Organizer {
	o := &Organizer{
		logger:      logging.NewComponentLogger(logger, "organizer"),
		recorder:    recorder,
		settleDelay: 800 * time.Millisecond,
	}
	if cfg != nil {
		o.settleDelay = cfg.SettleDelay()
		o.liveInterval = cfg.LiveInterval()
	}
	return o
}

// resolveTarget returns the absolute target directory or an ErrNotFound
// error when it is missing or not a directory.
func resolveTarget(target string) (string, error) {
	if strings.TrimSpace(target) == "" {
		return "", services.Wrap(services.ErrNotFound, moveStage, "resolve target", "No target folder configured", nil)
	}
	root, err := filepath.Abs(target)
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, moveStage, "resolve target", fmt.Sprintf("Invalid target %s", target), err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, moveStage, "resolve target",
			fmt.Sprintf("Target folder does not exist: %s", root), err)
	}
	if !info.IsDir() {
		return "", services.Wrap(services.ErrNotFound, moveStage, "resolve target",
			fmt.Sprintf("Target is not a directory: %s", root), nil)
	}
	return root, nil
}

// place plans and moves a single file. Files already sitting in their
// planned folder are left alone and do not count as scanned.
func (o *Organizer) place(ctx context.Context, task FileTask, stats *Stats) error {
	logger := logging.WithContext(ctx, o.logger)

	dest, err := PlanDestination(task.Path, task.Root, task.Layout, task.Rules)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("file vanished before it could be moved", logging.String("source", task.Path))
			return nil
		}
		stats.Scanned++
		stats.Errors++
		wrapped := services.Wrap(services.ErrTransient, moveStage, "plan destination",
			fmt.Sprintf("Failed to stat %s", task.Path), err)
		logging.WarnWithContext(logger, "file skipped", "plan_failed",
			logging.String("source", task.Path),
			logging.Error(wrapped),
			logging.String(logging.FieldErrorHint, "check read permissions on the file"),
			logging.String(logging.FieldImpact, "file left in place"),
		)
		return wrapped
	}

	if samePath(filepath.Dir(task.Path), dest) {
		logger.Debug("file already organized", logging.String("source", task.Path))
		return nil
	}

	category := task.Rules.Classify(ExtensionOf(filepath.Base(task.Path)))
	moved, err := SafeMove(task.Path, dest, stats)
	if err != nil {
		logging.WarnWithContext(logger, "file move failed", "move_failed",
			logging.String("source", task.Path),
			logging.String("destination_dir", dest),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions and free space in the target folder"),
			logging.String(logging.FieldImpact, "file left in place"),
		)
		return err
	}

	logger.Info("file moved",
		logging.String("source", task.Path),
		logging.String("destination", moved),
		logging.String("category", category),
		logging.String(logging.FieldEventType, "file_moved"),
	)
	if o.recorder != nil {
		if err := o.recorder.RecordMove(ctx, task.Path, moved, category); err != nil {
			logging.WarnWithContext(logger, "history record failed", "history_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "move missing from shelf history"),
			)
		}
	}
	return nil
}

func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
