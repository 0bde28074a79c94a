package artistmatch

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"curator/internal/config"
	"curator/internal/textutil"
)

// ExistingFolder is an artist folder already filed in the library.
type ExistingFolder struct {
	Name      string
	Parent    string
	Canonical string
}

// Path returns the absolute folder path.
func (f ExistingFolder) Path() string {
	return filepath.Join(f.Parent, f.Name)
}

// ListExisting collects the second-level folders of root: first-level
// category folders named in lib.ExcludedDirs and second-level folders named in
// lib.OthersDirs are skipped. The result is sorted by canonical name.
func ListExisting(root string, lib config.Library) ([]ExistingFolder, error) {
	categories, err := subdirs(root)
	if err != nil {
		return nil, fmt.Errorf("list library root %s: %w", root, err)
	}

	var folders []ExistingFolder
	for _, category := range categories {
		if slices.Contains(lib.ExcludedDirs, category) {
			continue
		}
		parent := filepath.Join(root, category)
		names, err := subdirs(parent)
		if err != nil {
			return nil, fmt.Errorf("list category %s: %w", parent, err)
		}
		for _, name := range names {
			if slices.Contains(lib.OthersDirs, name) {
				continue
			}
			folders = append(folders, ExistingFolder{
				Name:      name,
				Parent:    parent,
				Canonical: textutil.Canonicalize(name, lib.CensoredTag),
			})
		}
	}
	SortExisting(folders)
	return folders, nil
}

// SortExisting orders folders by canonical name, then original name, then parent.
func SortExisting(folders []ExistingFolder) {
	sort.SliceStable(folders, func(i, j int) bool {
		a, b := folders[i], folders[j]
		if a.Canonical != b.Canonical {
			return a.Canonical < b.Canonical
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Parent < b.Parent
	})
}

// ListNew returns the first-level folder names of the unsorted inbox, leaving
// out the known-names folder that matched folders are moved into.
func ListNew(newRoot, knownDir string) ([]string, error) {
	names, err := subdirs(newRoot)
	if err != nil {
		return nil, fmt.Errorf("list new folders %s: %w", newRoot, err)
	}
	out := names[:0]
	for _, name := range names {
		if name == knownDir {
			continue
		}
		out = append(out, name)
	}
	return out, nil
}

func subdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// Occurrence records which new folder produced a token.
type Occurrence struct {
	Folder string
	Token  string
}

// TokenIndex maps each "+"-separated token of the new folder names to the
// folders that contain it. Keys keep first-occurrence order.
type TokenIndex struct {
	keys        []string
	occurrences map[string][]Occurrence
}

// BuildTokenIndex indexes every trimmed, non-empty "+" part of names.
func BuildTokenIndex(names []string) *TokenIndex {
	index := &TokenIndex{occurrences: map[string][]Occurrence{}}
	for _, folder := range names {
		for _, part := range strings.Split(folder, textutil.CompositeSeparator) {
			key := strings.TrimSpace(part)
			if key == "" {
				continue
			}
			if _, ok := index.occurrences[key]; !ok {
				index.keys = append(index.keys, key)
			}
			index.occurrences[key] = append(index.occurrences[key], Occurrence{Folder: folder, Token: key})
		}
	}
	return index
}

// Keys returns the token keys in first-occurrence order.
func (ix *TokenIndex) Keys() []string {
	if ix == nil {
		return nil
	}
	return ix.keys
}

// Occurrences returns the folders that produced key.
func (ix *TokenIndex) Occurrences(key string) []Occurrence {
	if ix == nil {
		return nil
	}
	return ix.occurrences[key]
}
