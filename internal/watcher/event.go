package watcher

import "time"

// Event describes a regular file that appeared under the watched root.
type Event struct {
	// Path is the absolute path of the new file.
	Path string

	// Size is the file size in bytes when the event was observed.
	Size int64

	// ModTime is the file's last modification time when the event was observed.
	ModTime time.Time
}
