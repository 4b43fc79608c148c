package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"shelf/internal/config"
	"shelf/internal/history"
	"shelf/internal/organizer"
	"shelf/internal/preflight"
	"shelf/internal/runlock"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration, folder access, and the last run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			writeLines(out, renderSectionHeader("Configuration", colorize))
			writeLines(out, configLines(cfg, ctx.loadResult, colorize))
			fmt.Fprintln(out)

			writeLines(out, renderSectionHeader("Folders", colorize))
			results := preflight.RunAll(cfg)
			for _, result := range results {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			if failed := preflight.Failed(results); len(failed) > 0 {
				fmt.Fprintf(out, "%s%d folder check(s) failed; `shelf run` needs a readable, writable target\n", statusIndent, len(failed))
			}
			fmt.Fprintln(out)

			writeLines(out, renderSectionHeader("Activity", colorize))
			fmt.Fprintln(out, lockLine(cfg, colorize))
			writeLastRun(cmd, out, cfg, colorize)
			return nil
		},
	}
}

func configLines(cfg *config.Config, result config.LoadResult, colorize bool) []string {
	lines := make([]string, 0, 6+len(result.Warnings))
	if result.Exists {
		lines = append(lines, renderStatusLine("Config file", statusOK, result.Path, colorize))
	} else {
		lines = append(lines, renderStatusLine("Config file", statusInfo, result.Path+" (not found, using defaults)", colorize))
	}
	for _, warning := range result.Warnings {
		lines = append(lines, renderStatusLine("Config warning", statusWarn, warning, colorize))
	}
	layout := organizer.ParseLayout(cfg.Method)
	lines = append(lines,
		renderStatusLine("Layout", statusInfo, fmt.Sprintf("%s (%s)", layout, layout.Describe()), colorize),
		renderStatusLine("Recursive", statusInfo, yesNo(cfg.Recursive), colorize),
		renderStatusLine("Delete empty", statusInfo, yesNo(cfg.DeleteEmpty), colorize),
		renderStatusLine("Watch after run", statusInfo, yesNo(cfg.WatchMode), colorize),
		renderStatusLine("Custom rules", statusInfo, fmt.Sprintf("%d", len(cfg.CustomRules)), colorize),
	)
	return lines
}

func lockLine(cfg *config.Config, colorize bool) string {
	held, err := runlock.Held(cfg.LockPath())
	switch {
	case err != nil:
		return renderStatusLine("Run lock", statusWarn, err.Error(), colorize)
	case held:
		return renderStatusLine("Run lock", statusWarn, "held by an active run or watch session", colorize)
	default:
		return renderStatusLine("Run lock", statusOK, "free", colorize)
	}
}

func writeLastRun(cmd *cobra.Command, out io.Writer, cfg *config.Config, colorize bool) {
	if !historyFileExists(cfg) {
		fmt.Fprintln(out, renderStatusLine("Last run", statusInfo, "none recorded", colorize))
		return
	}
	store, err := history.Open(cfg)
	if err != nil {
		fmt.Fprintln(out, renderStatusLine("Last run", statusWarn, err.Error(), colorize))
		return
	}
	defer store.Close()

	run, err := store.LastRun(cmd.Context())
	switch {
	case err != nil:
		fmt.Fprintln(out, renderStatusLine("Last run", statusWarn, err.Error(), colorize))
	case run == nil:
		fmt.Fprintln(out, renderStatusLine("Last run", statusInfo, "none recorded", colorize))
	default:
		kind := statusOK
		switch {
		case run.Counts.Errors > 0 || run.Outcome == history.OutcomeFailed:
			kind = statusWarn
		case !run.Finished():
			kind = statusInfo
		}
		msg := fmt.Sprintf("%s %s at %s, moved %d of %d (%s)",
			run.Mode, shortID(run.ID), formatRunTime(run.StartedAt),
			run.Counts.FilesMoved, run.Counts.Scanned, outcomeLabel(*run))
		fmt.Fprintln(out, renderStatusLine("Last run", kind, msg, colorize))
	}
}
