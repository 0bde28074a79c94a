package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"curator/internal/cleanup"
)

func newFindCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "find NAME",
		Short: "Find library folders matching any part of a composite name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			if err := cfg.RequireLibraryRoots(); err != nil {
				return err
			}
			found, err := cleanup.Find(cmd.Context(), args[0], cfg.Library.Roots, cfg.Cleanup.FindExclude)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(found) == 0 {
				fmt.Fprintf(out, "No folders match %q\n", args[0])
				return nil
			}
			for _, path := range found {
				fmt.Fprintln(out, path)
			}
			return nil
		},
	}
}
