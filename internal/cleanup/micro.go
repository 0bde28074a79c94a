package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"curator/internal/fileutil"
	"curator/internal/logging"
)

// MicroFolder is a leaf folder holding only a handful of files.
type MicroFolder struct {
	Path  string
	Files int
}

// readDir is swapped in tests to simulate unreadable folders.
var readDir = os.ReadDir

// ScanMicro returns leaf folders below roots with at most maxFiles files.
// Folders named in exclude are pruned before deciding whether a folder is a
// leaf, so a folder whose only subfolder is excluded still qualifies. Roots
// themselves are never returned. An unreadable root aborts the scan; an
// unreadable folder below it is logged and skipped.
func ScanMicro(ctx context.Context, roots []string, maxFiles int, exclude []string, logger *slog.Logger) ([]MicroFolder, error) {
	scan := microScan{
		maxFiles: maxFiles,
		exclude:  exclude,
		logger:   logging.NewComponentLogger(logger, "cleanup"),
	}
	for _, root := range roots {
		if err := scan.walk(ctx, filepath.Clean(root), true); err != nil {
			return nil, err
		}
	}
	sort.Slice(scan.found, func(i, j int) bool { return scan.found[i].Path < scan.found[j].Path })
	return scan.found, nil
}

type microScan struct {
	maxFiles int
	exclude  []string
	logger   *slog.Logger
	found    []MicroFolder
}

func (s *microScan) walk(ctx context.Context, dir string, isRoot bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := readDir(dir)
	if err != nil {
		if isRoot {
			return fmt.Errorf("read %s: %w", dir, err)
		}
		logging.WarnWithContext(s.logger, "folder unreadable during micro scan", "scan_unreadable",
			logging.Path(dir),
			logging.Error(err),
			logging.String(logging.FieldImpact, "folder skipped; scan continued"),
		)
		return nil
	}
	files := 0
	var subdirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			if slices.Contains(s.exclude, entry.Name()) {
				continue
			}
			subdirs = append(subdirs, filepath.Join(dir, entry.Name()))
			continue
		}
		files++
	}
	if len(subdirs) == 0 {
		if !isRoot && files <= s.maxFiles {
			s.found = append(s.found, MicroFolder{Path: dir, Files: files})
		}
		return nil
	}
	for _, sub := range subdirs {
		if err := s.walk(ctx, sub, false); err != nil {
			return err
		}
	}
	return nil
}

// MoveMicro moves folder into <parent>/<microDir>/ and returns the log line.
func MoveMicro(folder, microDir string, fsys fileutil.FS) (string, error) {
	target, err := fsys.MoveInto(folder, filepath.Join(filepath.Dir(folder), microDir))
	if err != nil {
		return fmt.Sprintf("[!] Failed to move %s: %v", folder, err), err
	}
	return fmt.Sprintf("Moving folder: %s to %s", folder, target), nil
}
