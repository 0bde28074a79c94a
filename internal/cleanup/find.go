package cleanup

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"curator/internal/textutil"
)

// Find returns folders below roots whose name contains any part of query.
// Query is reduced to its base name and split on the composite separator;
// matching is case-insensitive. Direct children of a root are category
// folders and are not matched. Paths containing any exclude fragment are
// skipped with their subtrees.
func Find(ctx context.Context, query string, roots, exclude []string) ([]string, error) {
	var parts []string
	for _, part := range textutil.SplitComposite(filepath.Base(strings.TrimSpace(query))) {
		if part = textutil.Lower(strings.TrimSpace(part)); part != "" && part != "." {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return nil, nil
	}

	seen := map[string]struct{}{}
	for _, root := range roots {
		root = filepath.Clean(root)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root {
					return err
				}
				return nil
			}
			if !d.IsDir() || path == root {
				return nil
			}
			if excluded(path, exclude) {
				return fs.SkipDir
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if filepath.Dir(path) == root {
				return nil
			}
			name := textutil.Lower(d.Name())
			for _, part := range parts {
				if strings.Contains(name, part) {
					seen[path] = struct{}{}
					break
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	found := make([]string, 0, len(seen))
	for path := range seen {
		found = append(found, path)
	}
	sort.Strings(found)
	return found, nil
}

func excluded(path string, fragments []string) bool {
	for _, fragment := range fragments {
		if fragment != "" && strings.Contains(path, fragment) {
			return true
		}
	}
	return false
}
