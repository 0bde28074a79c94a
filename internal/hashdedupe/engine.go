package hashdedupe

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"curator/internal/decision"
	"curator/internal/fileutil"
	"curator/internal/logging"
)

var md5Name = regexp.MustCompile(`^[a-fA-F0-9]{32}$`)

// RenameAnswer answers a RenameRequest.
type RenameAnswer int

const (
	Rename RenameAnswer = iota + 1
	Ignore
	RenameAll
	IgnoreAll
)

func (a RenameAnswer) String() string {
	switch a {
	case Rename:
		return "rename"
	case Ignore:
		return "ignore"
	case RenameAll:
		return "rename_all"
	case IgnoreAll:
		return "ignore_all"
	default:
		return fmt.Sprintf("RenameAnswer(%d)", int(a))
	}
}

// DeleteAnswer answers a DeleteRequest.
type DeleteAnswer int

const (
	DeleteFirst DeleteAnswer = iota + 1
	DeleteSecond
	Keep
	Stop
)

func (a DeleteAnswer) String() string {
	switch a {
	case DeleteFirst:
		return "delete_first"
	case DeleteSecond:
		return "delete_second"
	case Keep:
		return "keep"
	case Stop:
		return "stop"
	default:
		return fmt.Sprintf("DeleteAnswer(%d)", int(a))
	}
}

// RenameRequest asks whether a file should be renamed to its content hash.
type RenameRequest struct {
	Path string
	Hash string
}

// DeleteRequest asks which of two files with identical content to delete.
// First is the file being scanned, Second the one seen earlier.
type DeleteRequest struct {
	Hash   string
	First  string
	Second string
}

// Request carries exactly one of Rename or Delete.
type Request struct {
	Rename *RenameRequest
	Delete *DeleteRequest
}

// Answer carries the answer matching the pending Request kind.
type Answer struct {
	Rename RenameAnswer
	Delete DeleteAnswer
}

// Policy holds the "apply to all remaining" choices of one scan.
type Policy struct {
	RenameAll bool
	IgnoreAll bool
	// Ignored lists base names the user chose to leave alone.
	Ignored map[string]bool
}

// Options configures an Engine.
type Options struct {
	Roots          []string
	SkipExtensions []string
	// Force hashes file content even when the name already looks like a hash.
	Force  bool
	FS     fileutil.FS
	Store  *Store
	Logger *slog.Logger
}

// Result summarizes a finished scan.
type Result struct {
	Table      map[string]string
	Stopped    bool
	Files      int
	Renamed    int
	Deleted    int
	Collisions int
	Log        []string
	StoreLog   string
}

type stage int

const (
	stageName stage = iota
	stageCollision
	stageAwaitRename
	stageAwaitDelete
)

type current struct {
	path  string
	hash  string
	stage stage
}

// Engine walks the configured roots and reconciles file names with content
// hashes. It implements decision.Engine[Request, Answer, Result].
type Engine struct {
	opts   Options
	logger *slog.Logger

	started bool
	done    bool
	files   []string
	pos     int
	cur     *current
	gate    decision.Gate[Request]

	policy Policy
	table  map[string]string
	result Result

	// Simulated renames and removals. virtual maps a path that only exists
	// in this scan to the real file holding its content.
	virtual  map[string]string
	vanished map[string]bool
}

// NewEngine returns an engine for opts.
func NewEngine(opts Options) *Engine {
	return &Engine{
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "hashdedupe"),
		policy:   Policy{Ignored: map[string]bool{}},
		table:    map[string]string{},
		virtual:  map[string]string{},
		vanished: map[string]bool{},
	}
}

// Policy returns the current scan-wide choices.
func (e *Engine) Policy() Policy {
	p := e.policy
	p.Ignored = maps.Clone(e.policy.Ignored)
	return p
}

// Step advances the scan until it needs an answer or completes. Completion
// persists the hash table through the configured Store, also after Stop.
func (e *Engine) Step(ctx context.Context) (decision.Outcome[Request, Result], error) {
	if e.done {
		return decision.Finished[Request](e.snapshot()), nil
	}
	if req, ok := e.gate.Pending(); ok {
		return decision.Pending[Request, Result](req), nil
	}
	if !e.started {
		e.files = e.collect()
		e.started = true
		e.logger.Debug("hash scan started", logging.Int("files", len(e.files)))
	}

	for !e.result.Stopped && e.pos < len(e.files) {
		if err := ctx.Err(); err != nil {
			return decision.Outcome[Request, Result]{}, err
		}
		if e.cur == nil {
			path := e.files[e.pos]
			if !e.exists(path) {
				e.advance()
				continue
			}
			hash, err := hashFor(path, e.opts.Force)
			if err != nil {
				logging.WarnWithContext(e.logger, "file could not be hashed", "hash_failed",
					logging.Path(path),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check file permissions"),
				)
				e.advance()
				continue
			}
			e.result.Files++
			e.cur = &current{path: path, hash: hash, stage: stageName}
		}

		switch e.cur.stage {
		case stageName:
			e.cur.stage = stageCollision
			if stem(e.cur.path) == e.cur.hash {
				continue
			}
			if e.policy.RenameAll {
				e.cur.path = e.rename(e.cur.path, e.cur.hash)
				continue
			}
			if e.policy.IgnoreAll || e.policy.Ignored[filepath.Base(e.cur.path)] {
				continue
			}
			e.cur.stage = stageAwaitRename
			return e.ask(Request{Rename: &RenameRequest{Path: e.cur.path, Hash: e.cur.hash}})
		case stageCollision:
			earlier, seen := e.table[e.cur.hash]
			if !seen {
				e.table[e.cur.hash] = e.cur.path
				e.advance()
				continue
			}
			e.result.Collisions++
			first := e.verify(e.cur.path)
			second := e.verify(earlier)
			e.cur.path = first
			e.cur.stage = stageAwaitDelete
			return e.ask(Request{Delete: &DeleteRequest{Hash: e.cur.hash, First: first, Second: second}})
		default:
			return decision.Outcome[Request, Result]{}, decision.ErrPending
		}
	}

	return e.finish(ctx)
}

// Resume applies the answer to the pending request.
func (e *Engine) Resume(answer Answer) error {
	req, ok := e.gate.Pending()
	if !ok {
		return decision.ErrNoPending
	}
	switch {
	case req.Rename != nil:
		if answer.Rename < Rename || answer.Rename > IgnoreAll {
			return fmt.Errorf("invalid rename answer %v", answer.Rename)
		}
	case req.Delete != nil:
		if answer.Delete < DeleteFirst || answer.Delete > Stop {
			return fmt.Errorf("invalid delete answer %v", answer.Delete)
		}
	}
	if _, err := e.gate.Close(); err != nil {
		return err
	}

	if req.Rename != nil {
		e.resumeRename(*req.Rename, answer.Rename)
		return nil
	}
	e.resumeDelete(*req.Delete, answer.Delete)
	return nil
}

func (e *Engine) resumeRename(req RenameRequest, answer RenameAnswer) {
	logging.LogDecision(e.logger, "rename decision", "hash_rename", answer.String(), logging.Path(req.Path))
	switch answer {
	case Rename:
		e.cur.path = e.rename(req.Path, req.Hash)
	case Ignore:
		e.policy.Ignored[filepath.Base(req.Path)] = true
	case RenameAll:
		e.policy.RenameAll = true
		e.cur.path = e.rename(req.Path, req.Hash)
	case IgnoreAll:
		e.policy.IgnoreAll = true
	}
	e.cur.stage = stageCollision
}

func (e *Engine) resumeDelete(req DeleteRequest, answer DeleteAnswer) {
	logging.LogDecision(e.logger, "duplicate decision", "hash_duplicate", answer.String(),
		logging.String("hash", req.Hash),
		logging.String("first", req.First),
		logging.String("second", req.Second))
	e.table[req.Hash] = req.Second
	switch answer {
	case DeleteFirst:
		e.remove(req.First)
	case DeleteSecond:
		if e.remove(req.Second) {
			e.table[req.Hash] = req.First
		}
	case Keep:
	case Stop:
		e.result.Stopped = true
		e.logf("Scan stopped")
	}
	e.advance()
}

func (e *Engine) ask(req Request) (decision.Outcome[Request, Result], error) {
	if err := e.gate.Open(req); err != nil {
		return decision.Outcome[Request, Result]{}, err
	}
	return decision.Pending[Request, Result](req), nil
}

func (e *Engine) advance() {
	e.cur = nil
	e.pos++
}

func (e *Engine) finish(ctx context.Context) (decision.Outcome[Request, Result], error) {
	e.done = true
	if e.opts.Store != nil {
		msg, err := e.opts.Store.Replace(ctx, e.table)
		if err != nil {
			return decision.Outcome[Request, Result]{}, fmt.Errorf("persist hash table: %w", err)
		}
		e.result.StoreLog = msg
	}
	e.logger.Info("hash scan completed",
		logging.Int("files", e.result.Files),
		logging.Int("entries", len(e.table)),
		logging.Int("renamed", e.result.Renamed),
		logging.Int("deleted", e.result.Deleted),
		logging.Int("collisions", e.result.Collisions),
		logging.Bool("stopped", e.result.Stopped),
		logging.Bool(logging.FieldSimulate, e.opts.FS.Simulate),
	)
	return decision.Finished[Request](e.snapshot()), nil
}

func (e *Engine) snapshot() Result {
	r := e.result
	r.Table = maps.Clone(e.table)
	r.Log = slices.Clone(e.result.Log)
	return r
}

// verify re-hashes path from content and renames it when its name is stale.
func (e *Engine) verify(path string) string {
	if !e.exists(path) {
		e.logf("File not found: %s", path)
		return path
	}
	hash, err := fileutil.MD5File(e.source(path))
	if err != nil {
		logging.WarnWithContext(e.logger, "file could not be re-hashed", "hash_failed",
			logging.Path(path),
			logging.Error(err),
		)
		return path
	}
	if stem(path) == hash {
		return path
	}
	return e.rename(path, hash)
}

// rename gives path the name hash plus its extension and returns the path the
// file ends up at.
func (e *Engine) rename(path, hash string) string {
	target := filepath.Join(filepath.Dir(path), hash+filepath.Ext(path))
	if e.exists(target) {
		e.logf("File with MD5 name already exists: %s\nSkipping rename of %s", target, path)
		return path
	}
	if e.opts.FS.Simulate {
		if !e.exists(path) {
			e.logf("Error renaming file %s: %v", path, fileutil.ErrNotFound)
			return path
		}
		e.virtual[target] = e.source(path)
		delete(e.virtual, path)
		e.vanished[path] = true
		e.result.Renamed++
		e.logf("File %s renamed to %s", path, target)
		return target
	}
	if err := e.opts.FS.Rename(path, target); err != nil {
		e.logf("Error renaming file %s: %v", path, err)
		logging.WarnWithContext(e.logger, "hash rename failed", "rename_failed",
			logging.Path(path),
			logging.Error(err),
		)
		return path
	}
	e.result.Renamed++
	e.logf("File %s renamed to %s", path, target)
	return target
}

func (e *Engine) remove(path string) bool {
	if !e.exists(path) {
		e.logf("File not found: %s", path)
		return false
	}
	if err := e.opts.FS.Remove(e.source(path)); err != nil {
		if errors.Is(err, fileutil.ErrNotFound) {
			e.logf("File not found: %s", path)
			return false
		}
		e.logf("Error removing %s: %v", path, err)
		logging.WarnWithContext(e.logger, "duplicate removal failed", "remove_failed",
			logging.Path(path),
			logging.Error(err),
		)
		return false
	}
	if e.opts.FS.Simulate {
		delete(e.virtual, path)
		e.vanished[path] = true
	}
	e.result.Deleted++
	e.logf("Removed file: %s", path)
	return true
}

// exists reports whether path is present, counting simulated renames and
// removals of this scan.
func (e *Engine) exists(path string) bool {
	if _, ok := e.virtual[path]; ok {
		return true
	}
	if e.vanished[path] {
		return false
	}
	return fileutil.Exists(path)
}

// source returns the real file behind path.
func (e *Engine) source(path string) string {
	if src, ok := e.virtual[path]; ok {
		return src
	}
	return path
}

func (e *Engine) logf(format string, args ...any) {
	e.result.Log = append(e.result.Log, fmt.Sprintf(format, args...))
}

// collect lists every regular file below the roots in walk order.
func (e *Engine) collect() []string {
	skip := map[string]bool{}
	for _, ext := range e.opts.SkipExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		skip[ext] = true
	}

	var files []string
	for _, root := range e.opts.Roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root {
					return err
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if skip[strings.ToLower(filepath.Ext(path))] {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			logging.WarnWithContext(e.logger, "dedupe root unreadable", "root_unreadable",
				logging.Path(root),
				logging.Error(err),
				logging.String(logging.FieldImpact, "root skipped; scan continued"),
			)
		}
	}
	return files
}

// stem returns the file name up to its first dot.
func stem(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}

// hashFor trusts a 32-hex file name unless force is set, otherwise it hashes
// the content.
func hashFor(path string, force bool) (string, error) {
	if s := stem(path); !force && md5Name.MatchString(s) {
		return s, nil
	}
	return fileutil.MD5File(path)
}
