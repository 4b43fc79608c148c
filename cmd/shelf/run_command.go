package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Organize the target folder once",
		Long: "Sort every file in the target folder into category folders, then print a summary.\n" +
			"When watch_mode is enabled in the config, keep watching for new files afterwards.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrganizeCommand(cmd, ctx, &flags, true, false)
		},
	}
	flags.bind(cmd)
	return cmd
}

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Organize new files as they arrive",
		Long: "Watch the target folder and move each new file once it has settled.\n" +
			"Stops on Ctrl+C or SIGTERM and prints the session totals.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrganizeCommand(cmd, ctx, &flags, false, true)
		},
	}
	flags.bind(cmd)
	return cmd
}

func runOrganizeCommand(cmd *cobra.Command, ctx *commandContext, flags *runFlags, batch, watch bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if err := flags.apply(cmd, cfg); err != nil {
		return err
	}
	if flags.save {
		path := ctx.loadResult.Path
		if err := cfg.Save(path); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved configuration to %s\n", path)
	}
	if batch && cfg.WatchMode {
		watch = true
	}

	logger, closer, err := ctx.newLogger(cmd)
	if err != nil {
		return err
	}
	defer closer.Close()

	return runSessions(cmd.Context(), cfg, logger, cmd.OutOrStdout(), batch, watch)
}
