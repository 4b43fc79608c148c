package organizer

import "shelf/internal/logging"

// Stats counts what a run or watch session did. It is not safe for
// concurrent use; the goroutine driving the run owns it.
type Stats struct {
	Scanned        int
	FoldersCreated int
	FilesMoved     int
	FoldersDeleted int
	Errors         int
}

// Reset zeroes every counter.
func (s *Stats) Reset() {
	*s = Stats{}
}

// Attrs returns the counters as structured log attributes.
func (s Stats) Attrs() []logging.Attr {
	return []logging.Attr{
		logging.Int("scanned", s.Scanned),
		logging.Int("folders_created", s.FoldersCreated),
		logging.Int("files_moved", s.FilesMoved),
		logging.Int("folders_deleted", s.FoldersDeleted),
		logging.Int("errors", s.Errors),
	}
}
