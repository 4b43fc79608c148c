// Package history keeps a SQLite ledger of organize runs and the moves they
// made.
//
// Each batch run or watch session opens a Session, records every completed
// move through it, and finishes it with the final counters. The CLI reads
// the ledger back for `shelf history` and `shelf status`. Recording is
// best-effort: callers log failures and keep organizing.
package history
