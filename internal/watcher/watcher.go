package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"shelf/internal/logging"
)

const eventBufferSize = 100

// Watcher monitors a single root directory for newly created files.
type Watcher struct {
	logger *slog.Logger
	opts   Options
	root   string
	fs     *fsnotify.Watcher

	events   chan Event
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates a watcher for root. The root, and every non-ignored
// subdirectory when opts.Recursive is set, is registered immediately so files
// created before Start is called are not missed by the kernel queue.
func New(logger *slog.Logger, root string, opts Options) (*Watcher, error) {
	opts.setDefaults()
	if logger == nil {
		logger = logging.NewNop()
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve watch root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat watch root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root %s is not a directory", abs)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		logger: logging.NewComponentLogger(logger, "watcher"),
		opts:   opts,
		root:   abs,
		fs:     fsw,
		events: make(chan Event, eventBufferSize),
		done:   make(chan struct{}),
	}

	if err := w.fs.Add(abs); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", abs, err)
	}
	if opts.Recursive {
		w.watchTree(abs)
	}
	return w, nil
}

// Root returns the absolute path being watched.
func (w *Watcher) Root() string {
	return w.root
}

// Events returns the channel of created files. It is closed by Stop.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start begins translating notifications. It blocks until ctx is cancelled
// or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.wg.Add(1)
	go w.processEvents(ctx)

	select {
	case <-ctx.Done():
	case <-w.done:
	}
	return nil
}

// Stop releases the fsnotify handle and closes the events channel. It is safe
// to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
		close(w.events)
	})
	return err
}

// watchTree registers every directory below dir, skipping ignored ones.
func (w *Watcher) watchTree(dir string) {
	_ = filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			w.logger.Debug("skipping unreadable path", logging.String("path", p), logging.Error(err))
			return nil
		}
		if !d.IsDir() || p == dir {
			return nil
		}
		if w.ignored(p) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(p); err != nil {
			logging.WarnWithContext(w.logger, "failed to add watch", "watch_add_failed",
				logging.String("path", p),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "raise fs.inotify.max_user_watches or disable recursive"),
				logging.String(logging.FieldImpact, "new files in this directory are not organized until the next batch run"),
			)
			return nil
		}
		w.logger.Debug("added watch", logging.String("path", p))
		return nil
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ctx, event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logging.WarnWithContext(w.logger, "filesystem watch error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "some file events may have been dropped"),
			)
		}
	}
}

// handle converts a create notification into an Event. Renames into the
// watched tree arrive as Create as well.
func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) {
		return
	}
	path := filepath.Clean(event.Name)
	if w.ignored(path) {
		return
	}

	info, err := os.Lstat(path)
	if err != nil {
		// Already gone; temporary files often are.
		return
	}
	if info.IsDir() {
		if w.opts.Recursive {
			if err := w.fs.Add(path); err == nil {
				w.logger.Debug("added watch", logging.String("path", path))
			}
			w.watchTree(path)
		}
		return
	}
	if !info.Mode().IsRegular() {
		return
	}

	w.emit(ctx, Event{Path: path, Size: info.Size(), ModTime: info.ModTime()})
}

func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	return w.opts.shouldIgnore(rel)
}

func (w *Watcher) emit(ctx context.Context, event Event) {
	select {
	case w.events <- event:
	case <-ctx.Done():
	case <-w.done:
	}
}
