package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// MergeReport summarizes a best-effort directory merge.
type MergeReport struct {
	Moved      int
	Duplicates int
	Failures   []string
	// SourceRemoved is set when the emptied source directory was deleted.
	SourceRemoved bool
}

// MergeDir moves every entry of from into to. A file whose name is already
// taken in to is deleted through the Remover only when its content is
// identical; a differing file stays in from and is reported as a failure.
// Nested directories are merged recursively. Failures are recorded per entry
// and never stop the merge. from is removed once it is empty.
func (f FS) MergeDir(from, to string) (MergeReport, error) {
	var report MergeReport
	if !Exists(from) {
		return report, fmt.Errorf("merge %s: %w", from, ErrNotFound)
	}
	f.mergeInto(from, to, &report)

	removed, err := f.removeIfDrained(from, report)
	if err != nil {
		report.Failures = append(report.Failures, err.Error())
	}
	report.SourceRemoved = removed
	return report, nil
}

func (f FS) mergeInto(from, to string, report *MergeReport) {
	entries, err := os.ReadDir(from)
	if err != nil {
		report.Failures = append(report.Failures, fmt.Sprintf("read %s: %v", from, err))
		return
	}
	for _, entry := range entries {
		src := filepath.Join(from, entry.Name())
		dst := filepath.Join(to, entry.Name())

		info, statErr := os.Lstat(dst)
		switch {
		case statErr != nil:
			if f.Simulate {
				report.Moved++
				continue
			}
			if err := move(src, dst); err != nil {
				report.Failures = append(report.Failures, err.Error())
				continue
			}
			report.Moved++
		case entry.IsDir() && info.IsDir():
			f.mergeInto(src, dst, report)
			if removed, err := f.removeIfDrained(src, *report); err != nil {
				report.Failures = append(report.Failures, err.Error())
			} else if !removed && !f.Simulate {
				report.Failures = append(report.Failures, fmt.Sprintf("%s not empty after merge", src))
			}
		case !entry.IsDir() && !info.IsDir():
			same, err := SameContent(src, dst)
			if err != nil {
				report.Failures = append(report.Failures, fmt.Sprintf("compare %s: %v", src, err))
				continue
			}
			if !same {
				report.Failures = append(report.Failures, fmt.Sprintf("kept %s: %s exists with different content", src, dst))
				continue
			}
			if err := f.Remove(src); err != nil {
				report.Failures = append(report.Failures, fmt.Sprintf("remove duplicate %s: %v", src, err))
				continue
			}
			report.Duplicates++
		default:
			report.Failures = append(report.Failures, fmt.Sprintf("cannot merge directory %s over file %s", src, dst))
		}
	}
}

// removeIfDrained deletes dir when it is empty. In simulate mode nothing was
// moved, so the directory counts as drained when the merge saw no failures.
func (f FS) removeIfDrained(dir string, report MergeReport) (bool, error) {
	if f.Simulate {
		return len(report.Failures) == 0, nil
	}
	return f.RemoveEmptyDir(dir)
}

// SameContent reports whether a and b hold identical bytes, comparing sizes
// before hashing.
func SameContent(a, b string) (bool, error) {
	ia, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	ib, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	if ia.Size() != ib.Size() {
		return false, nil
	}
	ha, err := MD5File(a)
	if err != nil {
		return false, err
	}
	hb, err := MD5File(b)
	if err != nil {
		return false, err
	}
	return ha == hb, nil
}
