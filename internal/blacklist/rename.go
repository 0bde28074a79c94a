package blacklist

import (
	"errors"
	"fmt"
	"strings"

	"curator/internal/fileutil"
)

// ApplyRename renames from to to. When to already exists the contents of
// from are merged into it and from is deleted once empty. The returned text
// describes what happened; the error is set only when the rename itself
// failed for a reason other than a name collision.
func ApplyRename(from, to string, fsys fileutil.FS) (string, error) {
	if !fileutil.Exists(from) {
		return fmt.Sprintf("Source folder does not exist: %s", from), fmt.Errorf("rename %s: %w", from, fileutil.ErrNotFound)
	}

	err := fsys.Rename(from, to)
	if err == nil {
		return fmt.Sprintf("Deleted blacklisted name in folder name from %s\n-> to %s", from, to), nil
	}
	if !errors.Is(err, fileutil.ErrExists) {
		return "", err
	}

	report, err := fsys.MergeDir(from, to)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Merged %s into existing %s: %d moved, %d duplicates removed\n", from, to, report.Moved, report.Duplicates)
	for _, failure := range report.Failures {
		fmt.Fprintf(&b, "[!] %s\n", failure)
	}
	if report.SourceRemoved {
		fmt.Fprintf(&b, "Folder %s deleted because it was empty\n", from)
	}
	return b.String(), nil
}
