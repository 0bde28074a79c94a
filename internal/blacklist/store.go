package blacklist

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"sort"
	"strings"
	"sync"

	"curator/internal/fileutil"
	"curator/internal/textutil"
)

// Seeded categories present in every store.
const (
	CategoryVA    = "VA"
	CategoryOther = "Other"
)

// Store is a categorized set of blacklisted artist names persisted as a flat
// text file: "#Category" header lines followed by one name per line.
type Store struct {
	mu    sync.RWMutex
	path  string
	order []string
	names map[string]map[string]struct{}
	// Skipped counts lines ignored while loading.
	Skipped int
}

func newStore(path string) *Store {
	s := &Store{path: path, names: map[string]map[string]struct{}{}}
	s.ensureCategory(CategoryVA)
	s.ensureCategory(CategoryOther)
	return s
}

// Load reads the store at path. A missing file is created with the seeded
// empty categories. Names are normalized on load; names before any header
// are skipped.
func Load(path string) (*Store, error) {
	s := newStore(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := s.Save(); err != nil {
				return nil, err
			}
			return s, nil
		}
		return nil, fmt.Errorf("read blacklist: %w", err)
	}

	current := ""
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			current = strings.TrimSpace(strings.TrimPrefix(line, "#"))
			if current != "" {
				s.ensureCategory(current)
			}
			continue
		}
		if current == "" {
			s.Skipped++
			continue
		}
		if name := textutil.NormalizeBlacklistName(line); name != "" {
			s.names[current][name] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan blacklist: %w", err)
	}
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Save rewrites the store: categories in first-seen order, names sorted.
func (s *Store) Save() error {
	s.mu.RLock()
	data := s.encode()
	s.mu.RUnlock()
	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write blacklist: %w", err)
	}
	return nil
}

func (s *Store) encode() []byte {
	var buf bytes.Buffer
	for _, category := range s.order {
		buf.WriteString("#" + category + "\n")
		for _, name := range sortedNames(s.names[category]) {
			buf.WriteString(name + "\n")
		}
	}
	return buf.Bytes()
}

// Get returns a copy of the store: category to sorted names.
func (s *Store) Get() map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]string, len(s.order))
	for _, category := range s.order {
		out[category] = sortedNames(s.names[category])
	}
	return out
}

// Categories returns the category names in file order.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order)
}

// Contains reports whether name, once normalized, is in any category.
func (s *Store) Contains(name string) bool {
	normalized := textutil.NormalizeBlacklistName(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, set := range s.names {
		if _, ok := set[normalized]; ok {
			return true
		}
	}
	return false
}

// Set returns the union of all categories as a lookup set.
func (s *Store) Set() map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[string]struct{}{}
	for _, set := range s.names {
		for name := range set {
			out[name] = struct{}{}
		}
	}
	return out
}

// Add normalizes name, adds it to category (created when missing), and
// persists the store. It reports whether the name was new to the category.
func (s *Store) Add(category, name string) (bool, error) {
	category = strings.TrimSpace(category)
	if category == "" || strings.ContainsAny(category, "#\n\r") {
		return false, fmt.Errorf("invalid blacklist category %q", category)
	}
	normalized := textutil.NormalizeBlacklistName(name)
	if normalized == "" || strings.HasPrefix(normalized, "#") || strings.ContainsAny(normalized, "\n\r") {
		return false, fmt.Errorf("invalid blacklist name %q", name)
	}

	s.mu.Lock()
	s.ensureCategory(category)
	_, exists := s.names[category][normalized]
	s.names[category][normalized] = struct{}{}
	s.mu.Unlock()
	if exists {
		return false, nil
	}
	return true, s.Save()
}

// Remove drops name from category and persists the store. It reports whether
// the name was present.
func (s *Store) Remove(category, name string) (bool, error) {
	normalized := textutil.NormalizeBlacklistName(name)
	s.mu.Lock()
	set, ok := s.names[category]
	if ok {
		_, ok = set[normalized]
		delete(set, normalized)
	}
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, s.Save()
}

func (s *Store) ensureCategory(category string) {
	if _, ok := s.names[category]; ok {
		return
	}
	s.names[category] = map[string]struct{}{}
	s.order = append(s.order, category)
}

func sortedNames(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
