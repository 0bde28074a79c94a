package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"curator/internal/blacklist"
	"curator/internal/decision"
	"curator/internal/logging"
)

func newBlacklistCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blacklist",
		Short: "Manage the artist-name blacklist and fix folder names",
	}
	cmd.AddCommand(newBlacklistFixCommand(ctx))
	cmd.AddCommand(newBlacklistListCommand(ctx))
	cmd.AddCommand(newBlacklistAddCommand(ctx))
	cmd.AddCommand(newBlacklistRemoveCommand(ctx))
	return cmd
}

func loadBlacklist(ctx *commandContext) (*blacklist.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := blacklist.Load(cfg.BlacklistPath())
	if err != nil {
		return nil, err
	}
	if store.Skipped > 0 {
		logging.WarnWithContext(ctx.sessionLogger(), "blacklist has lines outside any category", "blacklist_malformed",
			logging.Path(store.Path()),
			logging.Int("skipped", store.Skipped),
			logging.String(logging.FieldImpact, "lines ignored"),
		)
	}
	return store, nil
}

func newBlacklistFixCommand(ctx *commandContext) *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "fix [ROOT...]",
		Short: "Strip blacklisted names from composite folder names",
		Long: "Asks about name parts that contain a suspicious keyword and are not blacklisted yet,\n" +
			"then proposes renames that drop blacklisted parts. Roots default to the library roots.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			roots := args
			if len(roots) == 0 {
				if err := ctx.requireReady(cmd.Context()); err != nil {
					return err
				}
				roots = cfg.Library.Roots
			}
			return ctx.withLock(func() error {
				store, err := loadBlacklist(ctx)
				if err != nil {
					return err
				}
				prompt := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
				for _, root := range roots {
					if err := runBlacklistFix(cmd, ctx, prompt, store, root, apply); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "Rename the folders instead of only listing proposals")
	return cmd
}

func runBlacklistFix(cmd *cobra.Command, ctx *commandContext, prompt *prompter, store *blacklist.Store, root string, apply bool) error {
	cfg := ctx.configValue()
	out := cmd.OutOrStdout()

	fixer := blacklist.NewFixer(root, store, cfg.Blacklist.Keywords, blacklist.FixerOptions{
		DefaultCategory: cfg.Blacklist.DefaultCategory,
		Logger:          ctx.sessionLogger(),
	})
	proposals, err := decision.Drive[blacklist.KeywordRequest, bool, []blacklist.Proposal](cmd.Context(), fixer,
		func(c context.Context, req blacklist.KeywordRequest) (bool, error) {
			return orFallback(prompt.confirm(c, fmt.Sprintf("Add %q to blacklist category %s?", req.Name, req.Category)))
		})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: %d folder(s) to rename\n", root, len(proposals))
	if len(proposals) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(proposals))
	for i, p := range proposals {
		rows = append(rows, []string{strconv.Itoa(i + 1), p.OriginalName, p.FixedName})
	}
	fmt.Fprintln(out, renderTable(out, []string{"#", "Current name", "Fixed name"}, rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft}))
	if !apply {
		fmt.Fprintln(out, "Run with --apply to rename")
		return nil
	}

	fsys := ctx.fileSystem()
	for _, p := range proposals {
		log, err := blacklist.ApplyRename(p.OriginalPath, p.FixedPath, fsys)
		if log != "" {
			fmt.Fprintln(out, strings.TrimRight(log, "\n"))
		}
		if err != nil {
			logging.WarnWithContext(ctx.sessionLogger(), "blacklist rename failed", "rename_failed",
				logging.Path(p.OriginalPath),
				logging.Error(err),
			)
		}
	}
	return nil
}

func newBlacklistListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list [CATEGORY]",
		Short: "List blacklisted names",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadBlacklist(ctx)
			if err != nil {
				return err
			}
			entries := store.Get()
			var rows [][]string
			for _, category := range store.Categories() {
				if len(args) == 1 && !strings.EqualFold(args[0], category) {
					continue
				}
				for _, name := range entries[category] {
					rows = append(rows, []string{category, name})
				}
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "Blacklist is empty")
				return nil
			}
			fmt.Fprintln(out, renderTable(out, []string{"Category", "Name"}, rows, nil))
			return nil
		},
	}
}

func newBlacklistAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add CATEGORY NAME",
		Short: "Add a name to a blacklist category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLock(func() error {
				store, err := loadBlacklist(ctx)
				if err != nil {
					return err
				}
				added, err := store.Add(args[0], args[1])
				if err != nil {
					return err
				}
				if !added {
					fmt.Fprintf(cmd.OutOrStdout(), "%q is already in %s\n", args[1], args[0])
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %q to %s\n", args[1], args[0])
				return nil
			})
		},
	}
}

func newBlacklistRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove CATEGORY NAME",
		Short: "Remove a name from a blacklist category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLock(func() error {
				store, err := loadBlacklist(ctx)
				if err != nil {
					return err
				}
				removed, err := store.Remove(args[0], args[1])
				if err != nil {
					return err
				}
				if !removed {
					return errors.New("name not found in category")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %q from %s\n", args[1], args[0])
				return nil
			})
		},
	}
}
