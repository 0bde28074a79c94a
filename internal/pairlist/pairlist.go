package pairlist

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"curator/internal/fileutil"
)

const (
	rejectedHeader = "## blacklist"
	acceptedHeader = "## whitelist"
)

// Pair is an unordered pair of canonical names.
type Pair struct {
	A string
	B string
}

// Key returns the orientation-independent identity of the pair.
func (p Pair) Key() Pair {
	if p.B < p.A {
		return Pair{A: p.B, B: p.A}
	}
	return p
}

func (p Pair) String() string {
	return p.A + "," + p.B
}

// Lists holds the accepted and rejected judged pairs of one store.
type Lists struct {
	accepted map[Pair]Pair
	rejected map[Pair]Pair
	// Skipped counts malformed lines ignored during Load.
	Skipped int
}

// NewLists returns empty lists.
func NewLists() *Lists {
	return &Lists{accepted: map[Pair]Pair{}, rejected: map[Pair]Pair{}}
}

// Accepted reports whether (a,b) or (b,a) was judged a match.
func (l *Lists) Accepted(a, b string) bool {
	if l == nil {
		return false
	}
	_, ok := l.accepted[Pair{A: a, B: b}.Key()]
	return ok
}

// Rejected reports whether (a,b) or (b,a) was judged not a match.
func (l *Lists) Rejected(a, b string) bool {
	if l == nil {
		return false
	}
	_, ok := l.rejected[Pair{A: a, B: b}.Key()]
	return ok
}

// Set stores the judgement for (a,b), dropping any opposite judgement.
func (l *Lists) Set(a, b string, accept bool) {
	pair := Pair{A: a, B: b}
	key := pair.Key()
	if accept {
		delete(l.rejected, key)
		l.accepted[key] = pair
		return
	}
	delete(l.accepted, key)
	l.rejected[key] = pair
}

// Delete drops (a,b) from both lists and reports whether it was present.
func (l *Lists) Delete(a, b string) bool {
	key := Pair{A: a, B: b}.Key()
	_, inAccepted := l.accepted[key]
	_, inRejected := l.rejected[key]
	delete(l.accepted, key)
	delete(l.rejected, key)
	return inAccepted || inRejected
}

// AcceptedPairs returns the accepted pairs in stored orientation, sorted.
func (l *Lists) AcceptedPairs() []Pair { return sortedPairs(l.accepted) }

// RejectedPairs returns the rejected pairs in stored orientation, sorted.
func (l *Lists) RejectedPairs() []Pair { return sortedPairs(l.rejected) }

// Len returns the total number of judged pairs.
func (l *Lists) Len() int { return len(l.accepted) + len(l.rejected) }

func sortedPairs(set map[Pair]Pair) []Pair {
	out := make([]Pair, 0, len(set))
	for _, pair := range set {
		out = append(out, pair)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// Load reads the store at path. A missing store yields empty lists. Each pair
// line is a two-field CSV record, so names holding commas are quoted. Lines
// before a section header, lines that are not two fields, and lines with an
// empty half are skipped.
func Load(path string) (*Lists, error) {
	lists := NewLists()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return lists, nil
		}
		return nil, fmt.Errorf("read pair list: %w", err)
	}

	var section *map[Pair]Pair
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch strings.ToLower(line) {
		case rejectedHeader:
			section = &lists.rejected
			continue
		case acceptedHeader:
			section = &lists.accepted
			continue
		}
		if section == nil {
			lists.Skipped++
			continue
		}
		fields, err := parseLine(line)
		if err != nil {
			lists.Skipped++
			continue
		}
		a, b := strings.TrimSpace(fields[0]), strings.TrimSpace(fields[1])
		if a == "" || b == "" {
			lists.Skipped++
			continue
		}
		lists.Set(a, b, section == &lists.accepted)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan pair list: %w", err)
	}
	return lists, nil
}

// Save rewrites the full store: rejected section first, then accepted.
func Save(path string, lists *Lists) error {
	var buf bytes.Buffer
	if err := writeSection(&buf, rejectedHeader, lists.RejectedPairs()); err != nil {
		return err
	}
	if err := writeSection(&buf, acceptedHeader, lists.AcceptedPairs()); err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write pair list: %w", err)
	}
	return nil
}

// Record re-reads the store, inserts the judgement for (a,b), and rewrites
// the store in full. The last judgement for a pair wins.
func Record(path, a, b string, accept bool) error {
	if err := validateName(a); err != nil {
		return err
	}
	if err := validateName(b); err != nil {
		return err
	}
	lists, err := Load(path)
	if err != nil {
		return err
	}
	lists.Set(a, b, accept)
	return Save(path, lists)
}

// Remove drops (a,b) from the store. It reports whether the pair existed.
func Remove(path, a, b string) (bool, error) {
	lists, err := Load(path)
	if err != nil {
		return false, err
	}
	if !lists.Delete(a, b) {
		return false, nil
	}
	return true, Save(path, lists)
}

func parseLine(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = 2
	r.TrimLeadingSpace = true
	return r.Read()
}

func writeSection(buf *bytes.Buffer, header string, pairs []Pair) error {
	buf.WriteString(header + "\n")
	w := csv.NewWriter(buf)
	for _, pair := range pairs {
		if err := w.Write([]string{pair.A, pair.B}); err != nil {
			return fmt.Errorf("encode pair %s: %w", pair, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode pairs: %w", err)
	}
	return nil
}

func validateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.New("pair name is empty")
	case strings.ContainsAny(name, "\n\r"):
		return fmt.Errorf("pair name %q contains a newline", name)
	}
	return nil
}
