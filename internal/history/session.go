package history

import (
	"context"
	"fmt"
	"sync"
)

// Session ties a Store to one run so moves can be recorded without the
// caller tracking the run ID. It satisfies organizer.MoveRecorder.
type Session struct {
	store *Store
	run   *Run

	mu       sync.Mutex
	finished bool
}

// StartSession begins a run and returns a session for it.
func (s *Store) StartSession(ctx context.Context, mode, target, layout string) (*Session, error) {
	run, err := s.BeginRun(ctx, mode, target, layout)
	if err != nil {
		return nil, err
	}
	return &Session{store: s, run: run}, nil
}

// RunID returns the identifier of the session's run.
func (s *Session) RunID() string {
	if s == nil || s.run == nil {
		return ""
	}
	return s.run.ID
}

// RecordMove stores a completed move against the session's run.
func (s *Session) RecordMove(ctx context.Context, source, destination, category string) error {
	if s == nil {
		return nil
	}
	return s.store.RecordMove(ctx, s.run.ID, source, destination, category)
}

// Finish records the final counters. Only the first call has an effect.
func (s *Session) Finish(ctx context.Context, counts Counts, outcome string) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return nil
	}
	if err := s.store.FinishRun(ctx, s.run.ID, counts, outcome); err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	s.finished = true
	return nil
}
