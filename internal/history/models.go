package history

import "time"

// Run modes.
const (
	ModeBatch = "batch"
	ModeWatch = "watch"
)

// Run outcomes.
const (
	OutcomeCompleted   = "completed"
	OutcomeInterrupted = "interrupted"
	OutcomeFailed      = "failed"
)

// Counts mirrors the organizer's end-of-run counters.
type Counts struct {
	Scanned        int
	FoldersCreated int
	FilesMoved     int
	FoldersDeleted int
	Errors         int
}

// Run is one batch pass or watch session.
type Run struct {
	ID         string
	Mode       string
	Target     string
	Layout     string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcome    string
	Counts     Counts
}

// Finished reports whether the run recorded its final counters.
func (r Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Move is a single relocated file.
type Move struct {
	ID          int64
	RunID       string
	Source      string
	Destination string
	Category    string
	MovedAt     time.Time
}
