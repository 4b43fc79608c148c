package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"shelf/internal/config"
	"shelf/internal/history"
)

const historyTimeLayout = "2006-01-02 15:04:05"

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past runs and watch sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !historyFileExists(cfg) {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}
			store, err := openHistoryStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, runRow(run))
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Mode", "Started", "Duration", "Outcome", "Scanned", "Moved", "Errors", "Target"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run and the files it moved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !historyFileExists(cfg) {
				return fmt.Errorf("run %q not found: no history recorded", args[0])
			}
			store, err := openHistoryStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, history.ErrRunNotFound) || errors.Is(err, history.ErrAmbiguousRunID) {
					return fmt.Errorf("run %q: %w", args[0], err)
				}
				return fmt.Errorf("load run: %w", err)
			}
			moves, err := store.ListMoves(cmd.Context(), run.ID)
			if err != nil {
				return fmt.Errorf("list moves: %w", err)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			writeLines(out, renderSectionHeader("Run "+run.ID, colorize))
			fmt.Fprintf(out, "%sMode:     %s\n", statusIndent, run.Mode)
			fmt.Fprintf(out, "%sTarget:   %s\n", statusIndent, run.Target)
			fmt.Fprintf(out, "%sLayout:   %s\n", statusIndent, run.Layout)
			fmt.Fprintf(out, "%sStarted:  %s\n", statusIndent, formatRunTime(run.StartedAt))
			fmt.Fprintf(out, "%sFinished: %s\n", statusIndent, formatRunTime(run.FinishedAt))
			fmt.Fprintf(out, "%sOutcome:  %s\n", statusIndent, outcomeLabel(*run))
			fmt.Fprintln(out)
			writeLines(out, renderSummary("Totals", statsFromCounts(run.Counts), colorize))
			fmt.Fprintln(out)

			if len(moves) == 0 {
				fmt.Fprintln(out, "No files moved")
				return nil
			}
			rows := make([][]string, 0, len(moves))
			for _, move := range moves {
				rows = append(rows, []string{
					move.MovedAt.Local().Format(historyTimeLayout),
					move.Category,
					move.Source,
					move.Destination,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Moved", "Category", "From", "To"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func openHistoryStore(cfg *config.Config) (*history.Store, error) {
	store, err := history.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

func runRow(run history.Run) []string {
	return []string{
		shortID(run.ID),
		run.Mode,
		formatRunTime(run.StartedAt),
		runDuration(run),
		outcomeLabel(run),
		strconv.Itoa(run.Counts.Scanned),
		strconv.Itoa(run.Counts.FilesMoved),
		strconv.Itoa(run.Counts.Errors),
		run.Target,
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatRunTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(historyTimeLayout)
}

func runDuration(run history.Run) string {
	if !run.Finished() {
		return "-"
	}
	return run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()
}

// outcomeLabel reports runs that never finished as running, which also covers
// a process that died without recording its totals.
func outcomeLabel(run history.Run) string {
	if !run.Finished() || run.Outcome == "" {
		return "running"
	}
	return run.Outcome
}
