package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"shelf/internal/config"
)

// PruneDailyLogs deletes shelf's daily JSON logs whose day is more than
// logging.retention_days before now and returns how many went. The day comes
// from the file name, not the mtime, so touching an old log does not keep it
// alive. Today's file is never removed. Files in log_dir that shelf did not
// name are left alone.
func PruneDailyLogs(logger *slog.Logger, cfg *config.Config, now time.Time) int {
	if cfg == nil || cfg.Logging.RetentionDays <= 0 || cfg.Paths.LogDir == "" {
		return 0
	}
	matches, err := filepath.Glob(filepath.Join(cfg.Paths.LogDir, config.LogFilePattern))
	if err != nil {
		return 0
	}

	y, m, d := now.In(time.Local).Date()
	oldest := time.Date(y, m, d-cfg.Logging.RetentionDays, 0, 0, 0, 0, time.Local)
	today := cfg.LogFilePathAt(now)

	pruned := 0
	for _, path := range matches {
		if path == today {
			continue
		}
		day, ok := config.LogFileDay(path)
		if !ok || !day.Before(oldest) {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "old log not pruned", "log_prune_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check permissions on paths.log_dir"),
				String(FieldImpact, "the file stays until the next run"),
			)
			continue
		}
		pruned++
		if logger != nil {
			logger.Debug("log pruned", String("path", path), String(FieldEventType, "log_pruned"))
		}
	}
	return pruned
}
