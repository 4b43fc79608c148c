// Package watcher turns fsnotify notifications for a target folder into a
// stream of newly created regular files.
//
// The watcher only observes and filters: it never sleeps, moves, or retries.
// Consumers drain Events in delivery order and apply their own settle delay
// before acting on a file.
package watcher
