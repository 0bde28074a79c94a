package blacklist

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"curator/internal/decision"
	"curator/internal/logging"
	"curator/internal/textutil"
)

// KeywordRequest asks whether a suspicious name part should be blacklisted.
type KeywordRequest struct {
	Name     string
	Category string
}

// Proposal is a folder rename that removes blacklisted name parts.
type Proposal struct {
	OriginalName string
	FixedName    string
	OriginalPath string
	FixedPath    string
}

// FixerOptions tunes a Fixer.
type FixerOptions struct {
	DefaultCategory string
	Logger          *slog.Logger
}

type phase int

const (
	phaseIdle phase = iota
	phaseDiscovery
	phaseAwaiting
	phaseDone
)

// Fixer proposes folder renames for a tree in two phases. Discovery asks
// about every distinct name part that contains a suspicious keyword and is
// not yet blacklisted; accepted parts are added to the store at once.
// Rewrite then walks the tree bottom-up and proposes a rename for every
// folder whose cleaned name differs from its current name. It implements
// decision.Engine[KeywordRequest, bool, []Proposal].
type Fixer struct {
	root     string
	store    *Store
	keywords []string
	opts     FixerOptions
	logger   *slog.Logger

	phase      phase
	dirs       []string
	candidates []string
	pos        int
	gate       decision.Gate[KeywordRequest]
	proposals  []Proposal
}

// NewFixer builds a fixer over root. Keywords are matched case-insensitively
// against the normalized form of each name part.
func NewFixer(root string, store *Store, keywords []string, opts FixerOptions) *Fixer {
	if strings.TrimSpace(opts.DefaultCategory) == "" {
		opts.DefaultCategory = CategoryVA
	}
	normalized := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if k := textutil.NormalizeBlacklistName(keyword); k != "" {
			normalized = append(normalized, k)
		}
	}
	return &Fixer{
		root:     root,
		store:    store,
		keywords: normalized,
		opts:     opts,
		logger:   logging.NewComponentLogger(opts.Logger, "blacklist"),
	}
}

// Step advances the fixer until it finishes or needs a decision.
func (f *Fixer) Step(ctx context.Context) (decision.Outcome[KeywordRequest, []Proposal], error) {
	switch f.phase {
	case phaseDone:
		return decision.Finished[KeywordRequest](slices.Clone(f.proposals)), nil
	case phaseAwaiting:
		req, _ := f.gate.Pending()
		return decision.Pending[KeywordRequest, []Proposal](req), nil
	case phaseIdle:
		dirs, err := collectDirs(f.root)
		if err != nil {
			return decision.Outcome[KeywordRequest, []Proposal]{}, err
		}
		f.dirs = dirs
		f.candidates = distinctParts(dirs)
		f.phase = phaseDiscovery
		f.logger.Debug("blacklist discovery started",
			logging.Path(f.root),
			logging.Int("folders", len(dirs)),
			logging.Int("name_parts", len(f.candidates)),
		)
	}

	blocked := f.store.Set()
	for f.pos < len(f.candidates) {
		if err := ctx.Err(); err != nil {
			return decision.Outcome[KeywordRequest, []Proposal]{}, err
		}
		part := f.candidates[f.pos]
		f.pos++
		normalized := textutil.NormalizeBlacklistName(part)
		if _, ok := blocked[normalized]; ok || !f.suspicious(normalized) {
			continue
		}
		req := KeywordRequest{Name: part, Category: f.opts.DefaultCategory}
		if err := f.gate.Open(req); err != nil {
			return decision.Outcome[KeywordRequest, []Proposal]{}, err
		}
		f.phase = phaseAwaiting
		return decision.Pending[KeywordRequest, []Proposal](req), nil
	}

	f.proposals = f.rewrite(blocked)
	f.phase = phaseDone
	f.logger.Info("blacklist scan completed",
		logging.Path(f.root),
		logging.Int("proposals", len(f.proposals)),
	)
	return decision.Finished[KeywordRequest](slices.Clone(f.proposals)), nil
}

// Resume answers the pending keyword request. Accepted names are persisted
// to the default category before the scan continues.
func (f *Fixer) Resume(accept bool) error {
	req, err := f.gate.Close()
	if err != nil {
		return err
	}
	f.phase = phaseDiscovery
	if !accept {
		logging.LogDecision(f.logger, "name kept off blacklist", "blacklist_keyword", "declined",
			logging.String("name", req.Name))
		return nil
	}
	if _, err := f.store.Add(req.Category, req.Name); err != nil {
		return fmt.Errorf("blacklist %q: %w", req.Name, err)
	}
	logging.LogDecision(f.logger, "name blacklisted", "blacklist_keyword", "accepted",
		logging.String("name", req.Name),
		logging.String("category", req.Category))
	return nil
}

func (f *Fixer) suspicious(normalized string) bool {
	for _, keyword := range f.keywords {
		if strings.Contains(normalized, keyword) {
			return true
		}
	}
	return false
}

func (f *Fixer) rewrite(blocked map[string]struct{}) []Proposal {
	var proposals []Proposal
	for _, dir := range f.dirs {
		original := filepath.Base(dir)
		if strings.HasPrefix(original, FullyBlacklistedPrefix) {
			continue
		}
		fixed := StripBlacklisted(CleanSeparators(original), blocked)
		if fixed == original {
			continue
		}
		if fixed == "" {
			logging.WarnWithContext(f.logger, "folder name reduces to nothing", "empty_fixed_name",
				logging.Path(dir),
				logging.String(logging.FieldErrorHint, "rename the folder by hand"),
				logging.String(logging.FieldImpact, "folder left unchanged"),
			)
			continue
		}
		proposals = append(proposals, Proposal{
			OriginalName: original,
			FixedName:    fixed,
			OriginalPath: dir,
			FixedPath:    filepath.Join(filepath.Dir(dir), fixed),
		})
	}
	return proposals
}

// collectDirs lists every directory below root, deepest first, so children
// are visited before their parents.
func collectDirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if d.IsDir() && path != root {
			dirs = append(dirs, filepath.Clean(path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.SliceStable(dirs, func(i, j int) bool {
		return depth(dirs[i]) > depth(dirs[j])
	})
	return dirs, nil
}

func depth(path string) int {
	return strings.Count(path, string(filepath.Separator))
}

func distinctParts(dirs []string) []string {
	seen := map[string]struct{}{}
	for _, dir := range dirs {
		name := filepath.Base(dir)
		if strings.HasPrefix(name, FullyBlacklistedPrefix) {
			continue
		}
		for _, part := range strings.Split(name, textutil.CompositeSeparator) {
			if strings.TrimSpace(part) == "" {
				continue
			}
			seen[part] = struct{}{}
		}
	}
	parts := make([]string, 0, len(seen))
	for part := range seen {
		parts = append(parts, part)
	}
	sort.Strings(parts)
	return parts
}
