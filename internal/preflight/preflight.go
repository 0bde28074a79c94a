package preflight

import (
	"context"
	"fmt"
	"path/filepath"

	"curator/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks that apply to cfg. Library and dedupe
// roots must exist; state, log, and trash locations only need to be creatable.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for i, root := range cfg.Library.Roots {
		if ctx.Err() != nil {
			return results
		}
		results = append(results, CheckDirectoryAccess(fmt.Sprintf("Library root %d", i+1), root, ReadWrite))
	}
	if len(cfg.Library.Roots) > 0 {
		results = append(results, CheckDirectoryAccess("Unsorted inbox", cfg.Library.NewDir, ReadWrite))
	}
	for i, root := range cfg.Dedupe.Roots {
		if containsPath(cfg.Library.Roots, root) {
			continue
		}
		results = append(results, CheckDirectoryAccess(fmt.Sprintf("Dedupe root %d", i+1), root, ReadWrite))
	}

	results = append(results,
		CheckCreatable("State directory", cfg.Paths.StateDir),
		CheckCreatable("Log directory", cfg.Paths.LogDir),
		CheckCreatable("Hash database directory", filepath.Dir(cfg.Dedupe.DBPath)),
	)
	if cfg.Cleanup.UseTrash && cfg.Cleanup.TrashTarget == config.TrashTargetDir {
		results = append(results, CheckCreatable("Trash directory", cfg.Paths.TrashDir))
	}
	return results
}

// Failures returns the checks that did not pass.
func Failures(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

func containsPath(paths []string, target string) bool {
	target = filepath.Clean(target)
	for _, p := range paths {
		if filepath.Clean(p) == target {
			return true
		}
	}
	return false
}
