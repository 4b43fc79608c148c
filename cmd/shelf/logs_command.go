package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shelf/internal/config"
	"shelf/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the most recent log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			path, err := logs.Latest(cfg.Paths.LogDir, config.LogFilePattern)
			if err != nil {
				return err
			}
			if path == "" {
				if !follow {
					fmt.Fprintf(out, "No log files in %s\n", cfg.Paths.LogDir)
					return nil
				}
				path = cfg.LogFilePath()
			}

			result, err := logs.Last(path, lines)
			if err != nil {
				return err
			}
			for _, line := range result.Lines {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}
			return logs.FollowLatest(cmd.Context(), cfg.Paths.LogDir, config.LogFilePattern, path, result.Offset, 0, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to print")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	return cmd
}
