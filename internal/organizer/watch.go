package organizer

import (
	"context"
	"log/slog"
	"time"

	"shelf/internal/logging"
	"shelf/internal/watcher"
)

// HandleCreated places a single newly created file under opts.Target, then
// reaps empty folders when opts.DeleteEmpty is set. Errors are logged and
// counted before being returned; callers are free to ignore them.
func (o *Organizer) HandleCreated(ctx context.Context, path string, opts Options, rules RuleTable, stats *Stats) error {
	if stats == nil {
		stats = &Stats{}
	}
	root, err := resolveTarget(opts.Target)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, o.logger), "target folder unavailable; event dropped", "target_missing",
			logging.String("source", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "recreate the target folder"),
			logging.String(logging.FieldImpact, "file left in place"),
		)
		return err
	}
	layout := opts.Layout
	if layout == "" {
		layout = LayoutTypeThenDate
	}

	placeErr := o.place(ctx, FileTask{
		Path:        path,
		Root:        root,
		Rules:       rules,
		Layout:      layout,
		Recursive:   opts.Recursive,
		DeleteEmpty: opts.DeleteEmpty,
	}, stats)

	if opts.DeleteEmpty {
		ReapEmptyDirs(root, stats, logging.WithContext(ctx, o.logger))
	}
	return placeErr
}

// Watch drains events until ctx is cancelled or the channel closes. Each
// event waits out the settle delay before it is handled, strictly in
// delivery order. Running totals are logged every live interval from the
// same loop, so stats never has a second writer. stats is zeroed on entry.
func (o *Organizer) Watch(ctx context.Context, opts Options, stats *Stats, events <-chan watcher.Event) error {
	if stats == nil {
		stats = &Stats{}
	}
	stats.Reset()
	logger := logging.WithContext(ctx, o.logger)

	if _, err := resolveTarget(opts.Target); err != nil {
		return err
	}
	rules := BuildRules(opts.CustomRules)

	var live <-chan time.Time
	if o.liveInterval > 0 {
		ticker := time.NewTicker(o.liveInterval)
		defer ticker.Stop()
		live = ticker.C
	}

	logger.Info("watch started",
		logging.String("folder", opts.Target),
		logging.Duration("settle_delay", o.settleDelay),
	)
	defer func() {
		logger.Info("watch stopped", logging.Args(stats.Attrs()...)...)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-live:
			logLive(logger, *stats)
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !o.settle(ctx) {
				return nil
			}
			_ = o.HandleCreated(ctx, ev.Path, opts, rules, stats)
		}
	}
}

// settle waits out the settle delay, returning false when ctx ends first.
func (o *Organizer) settle(ctx context.Context) bool {
	if o.settleDelay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(o.settleDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func logLive(logger *slog.Logger, stats Stats) {
	logger.Info("live",
		logging.Int("scanned", stats.Scanned),
		logging.Int("moved", stats.FilesMoved),
		logging.Int("folders", stats.FoldersCreated),
		logging.String(logging.FieldEventType, "live_stats"),
	)
}
