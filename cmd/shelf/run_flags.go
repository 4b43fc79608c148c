package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shelf/internal/config"
)

// runFlags are the per-invocation overrides shared by run and watch.
type runFlags struct {
	target      string
	method      string
	recursive   bool
	deleteEmpty bool
	save        bool
}

func (f *runFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.target, "target", "t", "", "Folder to organize (overrides target_folder)")
	flags.StringVarP(&f.method, "method", "m", "", "Layout: type_date, date_type, or type")
	flags.BoolVarP(&f.recursive, "recursive", "r", false, "Include files in subfolders")
	flags.BoolVar(&f.deleteEmpty, "delete-empty", true, "Remove empty folders after organizing")
	flags.BoolVar(&f.save, "save", false, "Persist the overrides to the config file")
}

// apply copies every flag the user actually set onto cfg.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("target") {
		target, err := config.ExpandPath(strings.TrimSpace(f.target))
		if err != nil {
			return fmt.Errorf("resolve target: %w", err)
		}
		cfg.TargetFolder = target
	}
	if flags.Changed("method") {
		method := config.NormalizeMethod(f.method)
		if !config.IsKnownMethod(method) {
			return fmt.Errorf("unknown method %q (want %s, %s or %s)",
				f.method, config.MethodTypeDate, config.MethodDateType, config.MethodType)
		}
		cfg.Method = method
	}
	if flags.Changed("recursive") {
		cfg.Recursive = f.recursive
	}
	if flags.Changed("delete-empty") {
		cfg.DeleteEmpty = f.deleteEmpty
	}
	return nil
}
