// Package services defines shared utilities consumed by the organizer engine,
// the watch session, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs and run modes (batch or watch) for
//     logging and history correlation.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (missing target vs per-file move failure) with errors.Is.
//
// Use these helpers when wiring new engine logic so operational behaviour
// (error handling, observability) stays uniform across drivers.
package services
