package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"curator/internal/pairlist"
)

func newPairsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pairs",
		Short: "Inspect and edit judged artist pairs",
	}
	cmd.AddCommand(newPairsListCommand(ctx))
	cmd.AddCommand(newPairsRemoveCommand(ctx))
	return cmd
}

func newPairsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accepted and rejected pairs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lists, err := pairlist.Load(ctx.configValue().PairListPath())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if lists.Len() == 0 {
				fmt.Fprintln(out, "No judged pairs")
				return nil
			}
			rows := make([][]string, 0, lists.Len())
			for _, p := range lists.AcceptedPairs() {
				rows = append(rows, []string{"same", p.A, p.B})
			}
			for _, p := range lists.RejectedPairs() {
				rows = append(rows, []string{"different", p.A, p.B})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Decision", "Library name", "Inbox name"}, rows, nil))
			return nil
		},
	}
}

func newPairsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove A B",
		Short: "Forget a judged pair so the next match asks again",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLock(func() error {
				removed, err := pairlist.Remove(ctx.configValue().PairListPath(), args[0], args[1])
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("pair %s,%s not found", args[0], args[1])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed pair %s,%s\n", args[0], args[1])
				return nil
			})
		},
	}
}
