package artistmatch

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"curator/internal/decision"
	"curator/internal/logging"
	"curator/internal/pairlist"
	"curator/internal/textutil"
)

// DefaultThreshold is the lowest similarity that triggers a question.
const DefaultThreshold = 80

// Match is one confirmed correspondence between a library folder and a new
// folder. Matches compare structurally.
type Match struct {
	OriginalFolderName string
	ArtistName         string
	FolderName         string
	Similarity         int
}

// Request asks whether an existing folder and a new-folder token name the
// same artist.
type Request struct {
	ExistingName string
	TokenKey     string
	Similarity   int
	Pair         pairlist.Pair
}

// Recorder persists a judged pair.
type Recorder func(a, b string, accept bool) error

// StoreRecorder returns a Recorder writing to the pair list at path.
func StoreRecorder(path string) Recorder {
	return func(a, b string, accept bool) error {
		return pairlist.Record(path, a, b, accept)
	}
}

// Options tunes an Engine.
type Options struct {
	Threshold int
	Recorder  Recorder
	Logger    *slog.Logger
}

type state int

const (
	stateIdle state = iota
	stateEnumerating
	stateAwaiting
	stateDone
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateEnumerating:
		return "enumerating"
	case stateAwaiting:
		return "awaiting_decision"
	case stateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Engine compares every existing folder with every new-folder token and asks
// about pairs in the ambiguous similarity band. It implements
// decision.Engine[Request, bool, []Match].
type Engine struct {
	existing []ExistingFolder
	index    *TokenIndex
	lists    *pairlist.Lists
	opts     Options
	logger   *slog.Logger

	state state
	// Cursor over existing × keys × occurrences.
	existingPos   int
	keyPos        int
	occurrencePos int
	scored        bool
	stripped      string
	similarity    int

	gate    decision.Gate[Request]
	pending Match
	// asked holds every dispatched pair and, once resumed, its answer.
	asked   map[pairlist.Pair]bool
	matches []Match
	seen    map[Match]struct{}
	stats   Stats
}

// Stats counts how pairs were classified during a scan.
type Stats struct {
	Compared       int
	FromAccepted   int
	FromRejected   int
	Exact          int
	Asked          int
	Reused         int
	BelowCutoff    int
	RecordFailures int
}

// New builds an engine over sorted existing folders and a token index. A nil
// lists value behaves as an empty pair list.
func New(existing []ExistingFolder, index *TokenIndex, lists *pairlist.Lists, opts Options) *Engine {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if lists == nil {
		lists = pairlist.NewLists()
	}
	return &Engine{
		existing: existing,
		index:    index,
		lists:    lists,
		opts:     opts,
		logger:   logging.NewComponentLogger(opts.Logger, "artistmatch"),
		asked:    map[pairlist.Pair]bool{},
		seen:     map[Match]struct{}{},
	}
}

// Stats returns the classification counters gathered so far.
func (e *Engine) Stats() Stats { return e.stats }

// Step advances the scan until it finishes or needs a decision.
func (e *Engine) Step(ctx context.Context) (decision.Outcome[Request, []Match], error) {
	switch e.state {
	case stateDone:
		return decision.Finished[Request](e.result()), nil
	case stateAwaiting:
		req, _ := e.gate.Pending()
		return decision.Pending[Request, []Match](req), nil
	case stateIdle:
		e.logger.Debug("scan started",
			logging.Int("existing_folders", len(e.existing)),
			logging.Int("token_keys", len(e.index.Keys())),
			logging.Int("threshold", e.opts.Threshold),
		)
		e.state = stateEnumerating
	}

	keys := e.index.Keys()
	for e.existingPos < len(e.existing) {
		if err := ctx.Err(); err != nil {
			return decision.Outcome[Request, []Match]{}, err
		}
		folder := e.existing[e.existingPos]
		for e.keyPos < len(keys) {
			key := keys[e.keyPos]
			if !e.scored {
				e.stripped = textutil.StripArtistDecoration(key)
				e.similarity = textutil.TokenSetRatio(folder.Canonical, e.stripped)
				e.scored = true
				e.stats.Compared++
			}
			occurrences := e.index.Occurrences(key)
			for e.occurrencePos < len(occurrences) {
				occ := occurrences[e.occurrencePos]
				e.occurrencePos++
				match := Match{
					OriginalFolderName: folder.Name,
					ArtistName:         e.stripped,
					FolderName:         occ.Folder,
					Similarity:         e.similarity,
				}
				pair := pairlist.Pair{A: folder.Canonical, B: e.stripped}
				if req, ask := e.classify(match, pair, key); ask {
					if err := e.gate.Open(req); err != nil {
						return decision.Outcome[Request, []Match]{}, err
					}
					e.pending = match
					e.asked[pair.Key()] = false
					e.state = stateAwaiting
					e.stats.Asked++
					return decision.Pending[Request, []Match](req), nil
				}
			}
			e.occurrencePos = 0
			e.scored = false
			e.keyPos++
		}
		e.keyPos = 0
		e.existingPos++
	}

	e.state = stateDone
	e.logger.Info("scan completed",
		logging.Int("matches", len(e.matches)),
		logging.Int("questions", e.stats.Asked),
		logging.Int("compared", e.stats.Compared),
	)
	return decision.Finished[Request](e.result()), nil
}

// classify applies the pair-list short circuits and the similarity band to
// one candidate. It returns a request when a human must decide.
func (e *Engine) classify(match Match, pair pairlist.Pair, key string) (Request, bool) {
	switch {
	case e.lists.Accepted(pair.A, pair.B):
		e.stats.FromAccepted++
		e.add(match)
	case e.lists.Rejected(pair.A, pair.B):
		e.stats.FromRejected++
	case match.Similarity >= 100:
		e.stats.Exact++
		e.add(match)
	case match.Similarity >= e.opts.Threshold:
		if accepted, ok := e.asked[pair.Key()]; ok {
			e.stats.Reused++
			if accepted {
				e.add(match)
			}
			return Request{}, false
		}
		return Request{
			ExistingName: match.OriginalFolderName,
			TokenKey:     key,
			Similarity:   match.Similarity,
			Pair:         pair,
		}, true
	default:
		e.stats.BelowCutoff++
	}
	return Request{}, false
}

// Resume answers the pending request. The answer is persisted through the
// Recorder and reused for the same pair for the rest of the scan. A Recorder
// failure is logged and counted; the scan continues.
func (e *Engine) Resume(accept bool) error {
	req, err := e.gate.Close()
	if err != nil {
		return err
	}
	e.state = stateEnumerating
	pair := req.Pair
	e.asked[pair.Key()] = accept
	e.lists.Set(pair.A, pair.B, accept)
	if accept {
		e.add(e.pending)
	}
	e.pending = Match{}

	result := "rejected"
	if accept {
		result = "accepted"
	}
	logging.LogDecision(e.logger, "pair judged", "pair_judgement", result,
		logging.String("pair", pair.String()),
		logging.Int("similarity", req.Similarity),
	)

	if e.opts.Recorder != nil {
		if err := e.opts.Recorder(pair.A, pair.B, accept); err != nil {
			logging.WarnWithContext(e.logger, "judged pair not saved", "pair_record_failed",
				logging.String("pair", pair.String()),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the pair list file"),
				logging.String(logging.FieldImpact, "answer kept for this scan only"),
			)
			e.stats.RecordFailures++
		}
	}
	return nil
}

func (e *Engine) add(match Match) {
	if _, ok := e.seen[match]; ok {
		return
	}
	e.seen[match] = struct{}{}
	e.matches = append(e.matches, match)
}

func (e *Engine) result() []Match {
	return slices.Clone(e.matches)
}
