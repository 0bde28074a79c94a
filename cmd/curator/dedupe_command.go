package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"curator/internal/decision"
	"curator/internal/hashdedupe"
)

var renameChoices = []choice[hashdedupe.RenameAnswer]{
	{Key: "r", Label: "rename", Value: hashdedupe.Rename},
	{Key: "i", Label: "ignore", Value: hashdedupe.Ignore},
	{Key: "ra", Label: "rename all", Value: hashdedupe.RenameAll},
	{Key: "ia", Label: "ignore all", Value: hashdedupe.IgnoreAll},
}

var deleteChoices = []choice[hashdedupe.DeleteAnswer]{
	{Key: "1", Label: "delete first", Value: hashdedupe.DeleteFirst},
	{Key: "2", Label: "delete second", Value: hashdedupe.DeleteSecond},
	{Key: "k", Label: "keep both", Value: hashdedupe.Keep},
	{Key: "s", Label: "stop scan", Value: hashdedupe.Stop},
}

func newDedupeCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Rename files to their MD5 hash and resolve duplicate content",
		Long: "Walks the dedupe roots, offers to rename files whose name is not their content hash,\n" +
			"and asks which copy to delete when two files share content. The final hash table\n" +
			"replaces the hash database after a numbered backup of the previous one.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.requireReady(cmd.Context()); err != nil {
				return err
			}
			return ctx.withLock(func() error {
				return runDedupe(cmd, ctx, force)
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Hash file content even when the name already looks like a hash")
	return cmd
}

func runDedupe(cmd *cobra.Command, ctx *commandContext, force bool) error {
	cfg := ctx.configValue()
	out := cmd.OutOrStdout()
	prompt := newPrompter(cmd.InOrStdin(), out)

	engine := hashdedupe.NewEngine(hashdedupe.Options{
		Roots:          cfg.Dedupe.Roots,
		SkipExtensions: cfg.Dedupe.SkipExtensions,
		Force:          force,
		FS:             ctx.fileSystem(),
		Store:          hashdedupe.NewStore(cfg.Dedupe.DBPath, cfg.Dedupe.BackupDir, cfg.Simulate),
		Logger:         ctx.sessionLogger(),
	})

	result, err := decision.Drive[hashdedupe.Request, hashdedupe.Answer, hashdedupe.Result](cmd.Context(), engine,
		func(c context.Context, req hashdedupe.Request) (hashdedupe.Answer, error) {
			if r := req.Rename; r != nil {
				answer, err := orFallback(ask(c, prompt, fmt.Sprintf("Rename %s to %s?", r.Path, r.Hash), renameChoices, hashdedupe.Ignore))
				return hashdedupe.Answer{Rename: answer}, err
			}
			d := req.Delete
			question := fmt.Sprintf("Duplicate content %s\n  1) %s%s\n  2) %s%s", d.Hash, d.First, sizeSuffix(d.First), d.Second, sizeSuffix(d.Second))
			answer, err := orFallback(ask(c, prompt, question, deleteChoices, hashdedupe.Keep))
			return hashdedupe.Answer{Delete: answer}, err
		})
	if err != nil {
		return err
	}

	for _, line := range result.Log {
		fmt.Fprintln(out, line)
	}
	if result.Stopped {
		fmt.Fprintln(out, "Scan stopped")
	}
	fmt.Fprintln(out, renderTable(out,
		[]string{"Files", "Renamed", "Duplicates", "Deleted", "Hashes"},
		[][]string{{
			humanize.Comma(int64(result.Files)),
			humanize.Comma(int64(result.Renamed)),
			humanize.Comma(int64(result.Collisions)),
			humanize.Comma(int64(result.Deleted)),
			humanize.Comma(int64(len(result.Table))),
		}},
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight}))
	if result.StoreLog != "" {
		fmt.Fprintln(out, result.StoreLog)
	}
	return nil
}

func sizeSuffix(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	return fmt.Sprintf(" (%s)", humanize.Bytes(uint64(info.Size())))
}
