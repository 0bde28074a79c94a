package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"curator/internal/cleanup"
	"curator/internal/fileutil"
	"curator/internal/logging"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Find empty folders, junk files, and folders with few files",
	}
	cmd.AddCommand(newCleanEmptyCommand(ctx))
	cmd.AddCommand(newCleanMicroCommand(ctx))
	cmd.AddCommand(newCleanWhitelistCommand(ctx))
	return cmd
}

func newCleanEmptyCommand(ctx *commandContext) *cobra.Command {
	var remove bool
	var removeParent bool

	cmd := &cobra.Command{
		Use:   "empty [ROOT...]",
		Short: "List or delete empty folders and known junk files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			roots, err := resolveRoots(cmd, ctx, args)
			if err != nil {
				return err
			}
			whitelist, err := cleanup.LoadWhitelist(cfg.WhitelistPath())
			if err != nil {
				return err
			}
			opts := cleanup.ScanOptions{
				TrashHashes:   cfg.Cleanup.TrashHashes,
				TrashMaxBytes: cfg.Cleanup.TrashMaxBytes,
				Whitelist:     whitelist,
				Logger:        ctx.sessionLogger(),
			}
			var items []cleanup.Item
			for _, root := range roots {
				found, err := cleanup.ScanEmpty(cmd.Context(), root, opts)
				if err != nil {
					return err
				}
				items = append(items, found...)
			}

			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "Nothing to clean")
				return nil
			}
			rows := make([][]string, 0, len(items))
			for i, item := range items {
				size := ""
				if item.Kind == cleanup.KindTrashFile {
					size = humanize.Bytes(uint64(item.Size))
				}
				rows = append(rows, []string{strconv.Itoa(i + 1), item.Kind.String(), item.Path, size})
			}
			fmt.Fprintln(out, renderTable(out, []string{"#", "Kind", "Path", "Size"}, rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight}))
			if !remove {
				fmt.Fprintln(out, "Run with --delete to remove them")
				return nil
			}

			return ctx.withLock(func() error {
				fsys := ctx.fileSystem()
				for _, item := range items {
					lines, err := cleanup.Delete(item.Path, fsys, removeParent)
					for _, line := range lines {
						fmt.Fprintln(out, line)
					}
					if err != nil && !errors.Is(err, fileutil.ErrNotFound) {
						logging.WarnWithContext(ctx.sessionLogger(), "cleanup delete failed", "delete_failed",
							logging.Path(item.Path),
							logging.Error(err),
						)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&remove, "delete", false, "Delete the listed paths (to the trash directory when use_trash is set)")
	cmd.Flags().BoolVar(&removeParent, "remove-parent", false, "Also delete a parent folder left empty by a deletion")
	return cmd
}

func newCleanMicroCommand(ctx *commandContext) *cobra.Command {
	var move bool

	cmd := &cobra.Command{
		Use:   "micro [ROOT...]",
		Short: "List or set aside leaf folders with only a few files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			roots, err := resolveRoots(cmd, ctx, args)
			if err != nil {
				return err
			}
			folders, err := cleanup.ScanMicro(cmd.Context(), roots, cfg.Cleanup.MicroMaxFiles, cfg.Cleanup.MicroExclude, ctx.sessionLogger())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(folders) == 0 {
				fmt.Fprintf(out, "No leaf folders with %d or fewer files\n", cfg.Cleanup.MicroMaxFiles)
				return nil
			}
			rows := make([][]string, 0, len(folders))
			for _, f := range folders {
				rows = append(rows, []string{f.Path, strconv.Itoa(f.Files)})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Folder", "Files"}, rows,
				[]columnAlignment{alignLeft, alignRight}))
			if !move {
				fmt.Fprintf(out, "Run with --move to move them into %s\n", cfg.Cleanup.MicroDir)
				return nil
			}

			return ctx.withLock(func() error {
				fsys := ctx.fileSystem()
				for _, f := range folders {
					line, err := cleanup.MoveMicro(f.Path, cfg.Cleanup.MicroDir, fsys)
					fmt.Fprintln(out, line)
					if err != nil {
						logging.WarnWithContext(ctx.sessionLogger(), "micro folder move failed", "move_failed",
							logging.Path(f.Path),
							logging.Error(err),
						)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&move, "move", false, "Move each folder into <parent>/<micro_dir>/")
	return cmd
}

func newCleanWhitelistCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whitelist",
		Short: "Manage paths the empty scan never proposes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List whitelisted paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wl, err := cleanup.LoadWhitelist(ctx.configValue().WhitelistPath())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			paths := wl.List()
			if len(paths) == 0 {
				fmt.Fprintln(out, "Whitelist is empty")
				return nil
			}
			for _, p := range paths {
				fmt.Fprintln(out, p)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add PATH",
		Short: "Whitelist a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLock(func() error {
				wl, err := cleanup.LoadWhitelist(ctx.configValue().WhitelistPath())
				if err != nil {
					return err
				}
				path, err := filepath.Abs(args[0])
				if err != nil {
					return err
				}
				added, err := wl.Add(path)
				if err != nil {
					return err
				}
				if added {
					fmt.Fprintf(cmd.OutOrStdout(), "Whitelisted %s\n", path)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s is already whitelisted\n", path)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove PATH",
		Short: "Remove a path from the whitelist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLock(func() error {
				wl, err := cleanup.LoadWhitelist(ctx.configValue().WhitelistPath())
				if err != nil {
					return err
				}
				path, err := filepath.Abs(args[0])
				if err != nil {
					return err
				}
				removed, err := wl.Remove(path)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("%s is not whitelisted", path)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from the whitelist\n", path)
				return nil
			})
		},
	})

	return cmd
}

// resolveRoots returns args as absolute paths, or the library roots when
// args is empty.
func resolveRoots(cmd *cobra.Command, ctx *commandContext, args []string) ([]string, error) {
	if len(args) == 0 {
		if err := ctx.requireReady(cmd.Context()); err != nil {
			return nil, err
		}
		return ctx.configValue().Library.Roots, nil
	}
	roots := make([]string, 0, len(args))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", arg, err)
		}
		roots = append(roots, abs)
	}
	return roots, nil
}
