package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shelf/internal/config"
	"shelf/internal/organizer"
)

func newRulesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Show the effective category rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			layout := organizer.ParseLayout(cfg.Method)
			fmt.Fprintf(out, "Layout: %s (%s)\n", layout, layout.Describe())
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Category", "Source", "Extensions"},
				rulesRows(organizer.BuildRules(cfg.CustomRules), cfg.CustomRules),
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func rulesRows(table organizer.RuleTable, custom []config.CustomRule) [][]string {
	customNames := make(map[string]struct{}, len(custom))
	for _, rule := range custom {
		customNames[strings.TrimSpace(rule.Category)] = struct{}{}
	}
	rows := make([][]string, 0, len(table))
	for i, rule := range table {
		source := "built-in"
		if _, ok := customNames[rule.Category]; ok {
			source = "custom"
		}
		exts := strings.Join(rule.SortedExtensions(), ", ")
		if rule.Category == organizer.FallbackCategory && exts == "" {
			exts = "(anything unmatched)"
		}
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), rule.Category, source, exts})
	}
	return rows
}
