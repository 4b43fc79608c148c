package watcher

import (
	"path/filepath"
	"strings"
)

// Options configures the file watcher behavior.
type Options struct {
	// Recursive watches every directory below the root, including ones
	// created after the watch starts.
	Recursive      bool
	IgnorePatterns []string
	IgnoreHidden   bool
}

// DefaultIgnorePatterns lists partial downloads and desktop metadata files.
func DefaultIgnorePatterns() []string {
	return []string{
		".DS_Store",
		"*.tmp",
		"*.part",
		"*.crdownload",
		"Thumbs.db",
	}
}

// setDefaults applies default values to unset options.
func (o *Options) setDefaults() {
	// A nil slice means "not configured"; an explicit empty slice disables
	// pattern filtering. Hidden files are watched unless IgnoreHidden is set,
	// matching what a batch run moves.
	if o.IgnorePatterns == nil {
		o.IgnorePatterns = DefaultIgnorePatterns()
	}
}

// shouldIgnore reports whether rel, a path relative to the watched root,
// matches the hidden-file rule or an ignore pattern.
func (o *Options) shouldIgnore(rel string) bool {
	rel = filepath.Clean(rel)
	if rel == "." {
		return false
	}

	if o.IgnoreHidden {
		for _, part := range strings.Split(rel, string(filepath.Separator)) {
			if strings.HasPrefix(part, ".") && part != "." && part != ".." {
				return true
			}
		}
	}

	base := filepath.Base(rel)
	for _, pattern := range o.IgnorePatterns {
		matched, err := filepath.Match(pattern, base)
		if err == nil && matched {
			return true
		}
	}

	return false
}
