// Package organizer sorts files in a target folder into category folders.
//
// Rules map extensions to categories (custom rules ahead of the built-in
// table), a layout decides whether the year and month of the file's
// modification time nest above or below the category, and SafeMove relocates
// each file without overwriting anything already at the destination. Batch
// runs walk the target with Organize; watch sessions feed individual created
// files through Watch and HandleCreated. Both share Stats, which callers own
// and pass in so the end-of-run summary reflects every attempt.
//
// Per-file failures are logged and counted but never stop a run. Only a
// missing target aborts a batch.
package organizer
