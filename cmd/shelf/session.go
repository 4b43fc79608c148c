package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"shelf/internal/config"
	"shelf/internal/history"
	"shelf/internal/logging"
	"shelf/internal/organizer"
	"shelf/internal/runlock"
	"shelf/internal/services"
	"shelf/internal/watcher"
)

// sessionRunner drives batch passes and watch sessions for one invocation.
// It owns the run lock and the history store for the lifetime of the command.
type sessionRunner struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *history.Store
	out    io.Writer
}

// runSessions acquires the run lock and performs a batch pass, a watch
// session, or both in that order.
func runSessions(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer, batch, watch bool) error {
	lock, err := runlock.Acquire(cfg.LockPath())
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Debug("release run lock", logging.Error(err))
		}
	}()

	runner := &sessionRunner{cfg: cfg, logger: logger, out: out}
	runner.store = openHistory(logger, cfg)
	if runner.store != nil {
		defer runner.store.Close()
	}

	opts := organizer.OptionsFromConfig(cfg)
	if batch {
		if err := runner.batch(ctx, opts); err != nil {
			return err
		}
	}
	if watch {
		return runner.watch(ctx, opts)
	}
	return nil
}

func openHistory(logger *slog.Logger, cfg *config.Config) *history.Store {
	store, err := history.Open(cfg)
	if err != nil {
		logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
			logging.String("path", cfg.HistoryPath()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check state_dir permissions or remove a corrupt history.db"),
			logging.String(logging.FieldImpact, "this run will not be recorded"),
		)
		return nil
	}
	return store
}

// begin starts a history session and annotates ctx with the run identity.
// Without a store the run still gets an ID so log lines can be correlated.
func (r *sessionRunner) begin(ctx context.Context, mode string, opts organizer.Options) (context.Context, *history.Session) {
	var session *history.Session
	if r.store != nil {
		s, err := r.store.StartSession(ctx, mode, opts.Target, opts.Layout.String())
		if err != nil {
			logging.WarnWithContext(r.logger, "history session not started", "history_begin_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "inspect the history database with `shelf status`"),
				logging.String(logging.FieldImpact, "moves from this run will not be recorded"),
			)
		} else {
			session = s
		}
	}
	runID := session.RunID()
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithMode(ctx, mode)
	ctx = services.WithTarget(ctx, opts.Target)
	return ctx, session
}

func (r *sessionRunner) finish(ctx context.Context, session *history.Session, stats organizer.Stats, outcome string) {
	if session == nil {
		return
	}
	// The run context may already be cancelled; the final write must still land.
	if err := session.Finish(context.WithoutCancel(ctx), countsOf(stats), outcome); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "history session not finished", "history_finish_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the run shows as unfinished in `shelf history`"),
			logging.String(logging.FieldImpact, "final counters were not recorded"),
		)
	}
}

func (r *sessionRunner) batch(ctx context.Context, opts organizer.Options) error {
	ctx, session := r.begin(ctx, history.ModeBatch, opts)
	org := organizer.NewOrganizer(r.cfg, r.logger, recorderFor(session))

	var stats organizer.Stats
	err := org.Organize(ctx, opts, &stats)
	r.finish(ctx, session, stats, outcomeFor(err))

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	printSummary(r.out, "Summary", stats)
	return err
}

func (r *sessionRunner) watch(ctx context.Context, opts organizer.Options) error {
	w, err := watcher.New(r.logger, opts.Target, watcher.Options{
		Recursive:      opts.Recursive,
		IgnorePatterns: r.cfg.Watch.IgnorePatterns,
		IgnoreHidden:   r.cfg.Watch.IgnoreHidden,
	})
	if err != nil {
		return services.Wrap(services.ErrNotFound, "watch", "start watcher",
			fmt.Sprintf("Cannot watch %s", opts.Target), err)
	}

	ctx, session := r.begin(ctx, history.ModeWatch, opts)
	org := organizer.NewOrganizer(r.cfg, r.logger, recorderFor(session))

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	started := make(chan error, 1)
	go func() {
		started <- w.Start(watchCtx)
	}()

	fmt.Fprintf(r.out, "Watching %s (press Ctrl+C to stop)\n", w.Root())

	var stats organizer.Stats
	err = org.Watch(watchCtx, opts, &stats, w.Events())
	cancel()
	if stopErr := w.Stop(); stopErr != nil {
		r.logger.Debug("stop watcher", logging.Error(stopErr))
	}
	<-started

	outcome := history.OutcomeInterrupted
	if err != nil {
		outcome = history.OutcomeFailed
	}
	r.finish(ctx, session, stats, outcome)
	if err != nil {
		return err
	}
	printSummary(r.out, "Final summary", stats)
	return nil
}

// recorderFor avoids handing the organizer a typed nil interface.
func recorderFor(session *history.Session) organizer.MoveRecorder {
	if session == nil {
		return nil
	}
	return session
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return history.OutcomeCompleted
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return history.OutcomeInterrupted
	default:
		return history.OutcomeFailed
	}
}

func countsOf(stats organizer.Stats) history.Counts {
	return history.Counts{
		Scanned:        stats.Scanned,
		FoldersCreated: stats.FoldersCreated,
		FilesMoved:     stats.FilesMoved,
		FoldersDeleted: stats.FoldersDeleted,
		Errors:         stats.Errors,
	}
}

// historyFileExists lets read-only commands avoid creating an empty database.
func historyFileExists(cfg *config.Config) bool {
	info, err := os.Stat(cfg.HistoryPath())
	return err == nil && !info.IsDir()
}
