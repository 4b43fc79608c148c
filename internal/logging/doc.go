// Package logging builds the slog logger every shelf command runs with.
//
// Records go to two places: a compact key=value line on the terminal, with
// paths shown relative to the folder being organized, and a JSON line in the
// day's shelf-YYYY-MM-DD.log under log_dir. Run ID, mode and folder ride in
// the context and are added by WithContext. WarnWithContext and
// ErrorWithContext keep warning lines actionable, and PruneDailyLogs applies
// logging.retention_days.
package logging
