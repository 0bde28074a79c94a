package cleanup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"curator/internal/fileutil"
	"curator/internal/logging"
)

// Kind classifies a cleanup candidate.
type Kind int

const (
	KindEmptyFolder Kind = iota + 1
	KindTrashFile
)

func (k Kind) String() string {
	switch k {
	case KindEmptyFolder:
		return "folder"
	case KindTrashFile:
		return "file"
	default:
		return "unknown"
	}
}

// Item is one path proposed for deletion.
type Item struct {
	Path string
	Kind Kind
	Size int64
}

// ScanOptions tunes ScanEmpty.
type ScanOptions struct {
	// TrashHashes lists MD5 digests of known junk files. Empty disables
	// the file check.
	TrashHashes []string
	// TrashMaxBytes skips files at or above this size before hashing.
	TrashMaxBytes int64
	Whitelist     *Whitelist
	Logger        *slog.Logger
}

// ScanEmpty walks root bottom-up and returns empty folders below root and
// small files whose content hash is a known junk hash. A folder counts as
// empty only if it had no entries when the scan reached it. Whitelisted
// paths are never returned.
func ScanEmpty(ctx context.Context, root string, opts ScanOptions) ([]Item, error) {
	logger := logging.NewComponentLogger(opts.Logger, "cleanup")
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}

	hashes := make(map[string]struct{}, len(opts.TrashHashes))
	for _, h := range opts.TrashHashes {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hashes[h] = struct{}{}
		}
	}

	type dirEntry struct {
		path    string
		entries int
	}
	var dirs []dirEntry
	var items []Item

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logging.WarnWithContext(logger, "path unreadable during scan", "scan_unreadable",
				logging.Path(path),
				logging.Error(err),
			)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			children, err := os.ReadDir(path)
			if err != nil {
				return nil
			}
			dirs = append(dirs, dirEntry{path: path, entries: len(children)})
			return nil
		}
		if len(hashes) == 0 || !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil || (opts.TrashMaxBytes > 0 && info.Size() >= opts.TrashMaxBytes) {
			return nil
		}
		sum, err := fileutil.MD5File(path)
		if err != nil {
			logging.WarnWithContext(logger, "file could not be hashed", "hash_failed",
				logging.Path(path),
				logging.Error(err),
			)
			return nil
		}
		if _, ok := hashes[sum]; ok {
			items = append(items, Item{Path: path, Kind: KindTrashFile, Size: info.Size()})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.SliceStable(dirs, func(i, j int) bool {
		return depth(dirs[i].path) > depth(dirs[j].path)
	})
	for _, dir := range dirs {
		if dir.entries == 0 {
			items = append(items, Item{Path: dir.path, Kind: KindEmptyFolder})
		}
	}

	if opts.Whitelist != nil {
		kept := items[:0]
		for _, item := range items {
			if opts.Whitelist.Contains(item.Path) {
				continue
			}
			kept = append(kept, item)
		}
		items = kept
	}
	logger.Info("empty scan completed",
		logging.Path(root),
		logging.Int("candidates", len(items)),
	)
	return items, nil
}

// Delete removes path through fsys and returns the log lines. A folder that
// gained entries since the scan is left alone. With removeEmptyParent set,
// a parent left without entries is removed too.
func Delete(path string, fsys fileutil.FS, removeEmptyParent bool) ([]string, error) {
	var lines []string
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{fmt.Sprintf("[!] Not found: %q", path)}, fmt.Errorf("delete %s: %w", path, fileutil.ErrNotFound)
		}
		return nil, err
	}
	label := "File"
	if info.IsDir() {
		label = "Folder"
		empty, err := fileutil.IsEmptyDir(path)
		if err != nil {
			return nil, err
		}
		if !empty {
			return []string{fmt.Sprintf("[!] Folder %q is no longer empty; skipped", path)}, nil
		}
	}

	if err := fsys.Remove(path); err != nil {
		return append(lines, fmt.Sprintf("[!] Error while deleting %q: %v", path, err)), err
	}
	lines = append(lines, fmt.Sprintf("%s %q %s", label, path, removalVerb(fsys)))

	if removeEmptyParent {
		parent := filepath.Dir(path)
		empty, err := fileutil.IsEmptyDir(parent)
		if fsys.Simulate {
			empty, err = onlyEntry(parent, path)
		}
		if err == nil && empty {
			if err := fsys.Remove(parent); err != nil {
				return append(lines, fmt.Sprintf("[!] Error while deleting %q: %v", parent, err)), err
			}
			lines = append(lines, fmt.Sprintf("Folder %q %s because its last entry was deleted", parent, removalVerb(fsys)))
		}
	}
	return lines, nil
}

func removalVerb(fsys fileutil.FS) string {
	switch fsys.Remover.(type) {
	case *fileutil.TrashRemover, fileutil.SystemTrashRemover:
		return "moved to trash"
	}
	return "deleted permanently"
}

// onlyEntry reports whether child is the sole entry of dir, which is what an
// actual deletion would leave empty.
func onlyEntry(dir, child string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	return len(entries) == 1 && entries[0].Name() == filepath.Base(child), nil
}

func depth(path string) int {
	return strings.Count(path, string(filepath.Separator))
}
