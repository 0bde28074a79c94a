package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"curator/internal/artistmatch"
	"curator/internal/decision"
	"curator/internal/logging"
	"curator/internal/pairlist"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match unsorted folders against known artist folders",
		Long: "Compares every folder of the library roots with every name in the unsorted inbox.\n" +
			"Ambiguous pairs are asked about once; answers are kept in the judged-pair list.\n" +
			"With --apply, matched inbox folders move into the known-names folder.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.requireReady(cmd.Context()); err != nil {
				return err
			}
			return ctx.withLock(func() error {
				return runMatch(cmd, ctx, apply)
			})
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "Move matched folders into the known-names folder")
	return cmd
}

func runMatch(cmd *cobra.Command, ctx *commandContext, apply bool) error {
	cfg := ctx.configValue()
	logger := ctx.sessionLogger()
	out := cmd.OutOrStdout()

	var existing []artistmatch.ExistingFolder
	for _, root := range cfg.Library.Roots {
		folders, err := artistmatch.ListExisting(root, cfg.Library)
		if err != nil {
			return err
		}
		existing = append(existing, folders...)
	}
	artistmatch.SortExisting(existing)

	names, err := artistmatch.ListNew(cfg.Library.NewDir, cfg.Library.KnownNamesDir)
	if err != nil {
		return err
	}
	lists, err := pairlist.Load(cfg.PairListPath())
	if err != nil {
		return err
	}
	if lists.Skipped > 0 {
		logging.WarnWithContext(logger, "judged-pair list has malformed lines", "pair_list_malformed",
			logging.Path(cfg.PairListPath()),
			logging.Int("skipped", lists.Skipped),
			logging.String(logging.FieldImpact, "malformed lines ignored"),
		)
	}

	engine := artistmatch.New(existing, artistmatch.BuildTokenIndex(names), lists, artistmatch.Options{
		Threshold: cfg.Matching.SimilarityThreshold,
		Recorder:  artistmatch.StoreRecorder(cfg.PairListPath()),
		Logger:    logger,
	})

	prompt := newPrompter(cmd.InOrStdin(), out)
	matches, err := decision.Drive[artistmatch.Request, bool, []artistmatch.Match](cmd.Context(), engine, func(c context.Context, req artistmatch.Request) (bool, error) {
		return prompt.confirm(c, fmt.Sprintf("Same artist? %q <-> %q (similarity %d)", req.ExistingName, req.TokenKey, req.Similarity))
	})
	if errors.Is(err, errNoAnswer) {
		return fmt.Errorf("match stopped: %w; pairs answered so far were saved, the rest will be asked next run", err)
	}
	if err != nil {
		return err
	}

	stats := engine.Stats()
	if stats.RecordFailures > 0 {
		fmt.Fprintf(out, "[!] %d answer(s) could not be saved to %s; see the log\n", stats.RecordFailures, cfg.PairListPath())
	}
	fmt.Fprintf(out, "Compared %d pairs across %d library folders and %d inbox folders\n", stats.Compared, len(existing), len(names))
	if len(matches) == 0 {
		fmt.Fprintln(out, "No matches found")
		return nil
	}

	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, []string{m.OriginalFolderName, m.FolderName, strconv.Itoa(m.Similarity)})
	}
	fmt.Fprintln(out, renderTable(out, []string{"Library folder", "Inbox folder", "Similarity"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight}))

	if !apply {
		fmt.Fprintln(out, "Run with --apply to move matched inbox folders")
		return nil
	}
	for _, line := range artistmatch.ApplyMatches(matches, cfg.Library.NewDir, cfg.Library.KnownNamesDir, ctx.fileSystem(), logger) {
		fmt.Fprintln(out, line)
	}
	return nil
}
