// Package logs reads shelf's daily JSON log files.
//
// It locates the newest log file in the log directory, returns the last N
// lines with bounded memory, and follows appended lines until the caller's
// context ends, rolling over to the next day's file when one appears.
// `shelf logs` is the only consumer.
package logs
