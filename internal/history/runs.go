package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned when no run matches the requested identifier.
var ErrRunNotFound = errors.New("run not found")

// ErrAmbiguousRunID is returned when an ID prefix matches more than one run.
var ErrAmbiguousRunID = errors.New("run id prefix is ambiguous")

const runColumns = `id, mode, target, layout, started_at, finished_at,
    scanned, folders_created, files_moved, folders_deleted, errors, outcome`

// BeginRun inserts a new run row and returns it.
func (s *Store) BeginRun(ctx context.Context, mode, target, layout string) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Mode:      mode,
		Target:    target,
		Layout:    layout,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO runs (id, mode, target, layout, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Mode, run.Target, run.Layout, formatTime(run.StartedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun stores the final counters and outcome for a run.
func (s *Store) FinishRun(ctx context.Context, id string, counts Counts, outcome string) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET finished_at = ?, scanned = ?, folders_created = ?, files_moved = ?,
            folders_deleted = ?, errors = ?, outcome = ? WHERE id = ?`,
		formatTime(time.Now()),
		counts.Scanned, counts.FoldersCreated, counts.FilesMoved, counts.FoldersDeleted, counts.Errors,
		outcome, id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrRunNotFound)
	}
	return nil
}

// RecordMove appends a move to a run.
func (s *Store) RecordMove(ctx context.Context, runID, source, destination, category string) error {
	_, err := s.execWithRetry(ctx,
		`INSERT INTO moves (run_id, source, destination, category, moved_at) VALUES (?, ?, ?, ?, ?)`,
		runID, source, destination, category, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("insert move: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// LastRun returns the most recent run, or nil when the ledger is empty.
func (s *Store) LastRun(ctx context.Context) (*Run, error) {
	runs, err := s.ListRuns(ctx, 1)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return &runs[0], nil
}

// GetRun looks a run up by full ID or by a unique ID prefix.
func (s *Store) GetRun(ctx context.Context, idOrPrefix string) (*Run, error) {
	ctx = ensureContext(ctx)
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return nil, ErrRunNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\' ORDER BY id LIMIT 2`,
		idOrPrefix, escapeLike(idOrPrefix)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var found []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.ID == idOrPrefix {
			return run, nil
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%s: %w", idOrPrefix, ErrRunNotFound)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%s: %w", idOrPrefix, ErrAmbiguousRunID)
	}
}

// ListMoves returns the moves of a run in the order they happened.
func (s *Store) ListMoves(ctx context.Context, runID string) ([]Move, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, source, destination, category, moved_at FROM moves WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list moves: %w", err)
	}
	defer rows.Close()

	var moves []Move
	for rows.Next() {
		var (
			m       Move
			movedAt string
		)
		if err := rows.Scan(&m.ID, &m.RunID, &m.Source, &m.Destination, &m.Category, &movedAt); err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		m.MovedAt = parseTime(movedAt)
		moves = append(moves, m)
	}
	return moves, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run        Run
		startedAt  string
		finishedAt sql.NullString
		outcome    sql.NullString
	)
	if err := row.Scan(
		&run.ID, &run.Mode, &run.Target, &run.Layout, &startedAt, &finishedAt,
		&run.Counts.Scanned, &run.Counts.FoldersCreated, &run.Counts.FilesMoved,
		&run.Counts.FoldersDeleted, &run.Counts.Errors, &outcome,
	); err != nil {
		return nil, err
	}
	run.StartedAt = parseTime(startedAt)
	run.FinishedAt = parseTime(finishedAt.String)
	run.Outcome = outcome.String
	return &run, nil
}

func escapeLike(value string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(value)
}
