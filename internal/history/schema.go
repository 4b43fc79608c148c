package history

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// historyVersion is stored in SQLite's user_version header field. A fresh
// file reads 0. Raise it whenever schema.sql changes shape.
const historyVersion = 1

// ErrSchemaMismatch means history.db was written by a different shelf layout.
var ErrSchemaMismatch = errors.New("history database layout mismatch")

// initSchema creates the runs and moves tables in an empty file and refuses
// a file stamped with any other layout version.
func (s *Store) initSchema(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read history layout version: %w", err)
	}
	switch version {
	case historyVersion:
		return nil
	case 0:
		return s.createSchema(ctx)
	default:
		return fmt.Errorf("%w: %s has layout %d, this shelf writes %d (move it aside to start a fresh history)",
			ErrSchemaMismatch, s.path, version, historyVersion)
	}
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history setup: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create history tables: %w", err)
	}
	// PRAGMA does not take bind parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", historyVersion)); err != nil {
		return fmt.Errorf("stamp history layout version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history setup: %w", err)
	}
	return nil
}
