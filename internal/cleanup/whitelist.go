package cleanup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"curator/internal/fileutil"
)

type whitelistFile struct {
	Paths []string `json:"paths"`
}

// Whitelist is a persisted set of paths the empty scan must never propose.
type Whitelist struct {
	mu    sync.Mutex
	path  string
	paths map[string]struct{}
}

// LoadWhitelist reads the whitelist at path. A missing file is an empty list.
func LoadWhitelist(path string) (*Whitelist, error) {
	w := &Whitelist{path: path, paths: map[string]struct{}{}}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return w, nil
		}
		return nil, fmt.Errorf("read whitelist: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return w, nil
	}
	var file whitelistFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse whitelist %s: %w", path, err)
	}
	for _, p := range file.Paths {
		if p = strings.TrimSpace(p); p != "" {
			w.paths[filepath.Clean(p)] = struct{}{}
		}
	}
	return w, nil
}

// Contains reports whether path is whitelisted.
func (w *Whitelist) Contains(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.paths[filepath.Clean(path)]
	return ok
}

// List returns the whitelisted paths sorted.
func (w *Whitelist) List() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.paths))
	for p := range w.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Add whitelists path and saves. It reports whether the path was new.
func (w *Whitelist) Add(path string) (bool, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return false, errors.New("whitelist path is empty")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	clean := filepath.Clean(path)
	if _, ok := w.paths[clean]; ok {
		return false, nil
	}
	w.paths[clean] = struct{}{}
	return true, w.saveLocked()
}

// Remove drops path and saves. It reports whether the path was present.
func (w *Whitelist) Remove(path string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	clean := filepath.Clean(strings.TrimSpace(path))
	if _, ok := w.paths[clean]; !ok {
		return false, nil
	}
	delete(w.paths, clean)
	return true, w.saveLocked()
}

func (w *Whitelist) saveLocked() error {
	file := whitelistFile{Paths: make([]string, 0, len(w.paths))}
	for p := range w.paths {
		file.Paths = append(file.Paths, p)
	}
	slices.Sort(file.Paths)
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encode whitelist: %w", err)
	}
	data = append(data, '\n')
	if err := fileutil.WriteFileAtomic(w.path, data, 0o644); err != nil {
		return fmt.Errorf("save whitelist: %w", err)
	}
	return nil
}
