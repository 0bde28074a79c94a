package artistmatch

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"curator/internal/config"
	"curator/internal/decision"
	"curator/internal/fileutil"
	"curator/internal/pairlist"
	"curator/internal/testsupport"
	"curator/internal/textutil"
)

func existingFolders(names ...string) []ExistingFolder {
	folders := make([]ExistingFolder, 0, len(names))
	for _, name := range names {
		folders = append(folders, ExistingFolder{Name: name, Parent: "/lib/Cat", Canonical: canonical(name)})
	}
	SortExisting(folders)
	return folders
}

func canonical(name string) string {
	return textutil.Canonicalize(name, config.Default().Library.CensoredTag)
}

// answerAll drives the engine, answering every request with answer and
// recording the requests seen.
func answerAll(t *testing.T, engine *Engine, answer bool) ([]Match, []Request) {
	t.Helper()
	var asked []Request
	matches, err := decision.Drive[Request, bool, []Match](context.Background(), engine,
		func(_ context.Context, req Request) (bool, error) {
			asked = append(asked, req)
			return answer, nil
		})
	if err != nil {
		t.Fatalf("Drive: %v", err)
	}
	return matches, asked
}

func TestExactSimilarityMatchesWithoutQuestion(t *testing.T) {
	engine := New(existingFolders("Artist Foo"), BuildTokenIndex([]string{"artist_foo"}), nil, Options{})
	matches, asked := answerAll(t, engine, false)

	if len(asked) != 0 {
		t.Fatalf("expected no questions, got %+v", asked)
	}
	want := []Match{{OriginalFolderName: "Artist Foo", ArtistName: "_foo", FolderName: "artist_foo", Similarity: 100}}
	if !reflect.DeepEqual(matches, want) {
		t.Fatalf("matches = %+v, want %+v", matches, want)
	}
}

func TestAmbiguousPairAskedOnceAndPersisted(t *testing.T) {
	store := filepath.Join(t.TempDir(), "pairs.txt")
	run := func() ([]Match, []Request) {
		lists, err := pairlist.Load(store)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		engine := New(existingFolders("Foo Bar"), BuildTokenIndex([]string{"Foo Baz"}), lists,
			Options{Recorder: StoreRecorder(store)})
		return answerAll(t, engine, false)
	}

	matches, asked := run()
	if len(matches) != 0 {
		t.Fatalf("expected no matches, got %+v", matches)
	}
	want := Request{ExistingName: "Foo Bar", TokenKey: "Foo Baz", Similarity: 86, Pair: pairlist.Pair{A: "foo bar", B: "foo baz"}}
	if len(asked) != 1 || asked[0] != want {
		t.Fatalf("asked = %+v, want [%+v]", asked, want)
	}

	lists, err := pairlist.Load(store)
	if err != nil {
		t.Fatal(err)
	}
	if !lists.Rejected("foo baz", "foo bar") {
		t.Fatal("expected rejected pair persisted")
	}

	matches, asked = run()
	if len(matches) != 0 || len(asked) != 0 {
		t.Fatalf("rerun produced matches=%+v asked=%+v", matches, asked)
	}
}

func TestAcceptedPairFromStoreMatchesWithoutQuestion(t *testing.T) {
	lists := pairlist.NewLists()
	lists.Set("foo baz", "foo bar", true)
	engine := New(existingFolders("Foo Bar"), BuildTokenIndex([]string{"Foo Baz"}), lists, Options{})

	matches, asked := answerAll(t, engine, false)
	if len(asked) != 0 || len(matches) != 1 {
		t.Fatalf("matches=%+v asked=%+v", matches, asked)
	}
	if stats := engine.Stats(); stats.FromAccepted != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestNoDuplicateQuestionsAcrossTokens(t *testing.T) {
	index := BuildTokenIndex([]string{"Foo Baz+Qux", "foo baz", "FOO BAZ"})
	engine := New(existingFolders("Foo Bar"), index, nil, Options{})

	matches, asked := answerAll(t, engine, true)
	if len(asked) != 1 {
		t.Fatalf("expected one question, got %d: %+v", len(asked), asked)
	}
	folders := map[string]bool{}
	for _, m := range matches {
		folders[m.FolderName] = true
	}
	for _, name := range []string{"Foo Baz+Qux", "foo baz", "FOO BAZ"} {
		if !folders[name] {
			t.Fatalf("expected match for %q in %+v", name, matches)
		}
	}
}

func TestNoDuplicateQuestionsEitherOrientation(t *testing.T) {
	engine := New(existingFolders("Foo Bar", "Foo Baz"), BuildTokenIndex([]string{"foo baz", "foo bar"}), nil, Options{})

	matches, asked := answerAll(t, engine, false)
	if len(asked) != 1 {
		t.Fatalf("expected one question, got %+v", asked)
	}
	if len(matches) != 2 {
		t.Fatalf("expected the two exact matches, got %+v", matches)
	}
}

func TestCompositeTokensAskedOncePerPair(t *testing.T) {
	// "A+B" yields tokens "Foo Baz" and "Foo Bax"; both sit in the band
	// against "foo bar" but they are distinct pairs.
	engine := New(existingFolders("Foo Bar"), BuildTokenIndex([]string{"Foo Baz+Foo Bax", "Foo Baz"}), nil, Options{})

	_, asked := answerAll(t, engine, true)
	if len(asked) != 2 {
		t.Fatalf("expected two questions, got %+v", asked)
	}
	if asked[0].Pair == asked[1].Pair {
		t.Fatalf("question repeated: %+v", asked)
	}
}

func TestMatchesAreStructurallyUnique(t *testing.T) {
	lists := pairlist.NewLists()
	lists.Set("foo bar", "foo baz", true)
	// Same folder listed twice produces identical candidates.
	engine := New(existingFolders("Foo Bar"), BuildTokenIndex([]string{"Foo Baz", "Foo Baz"}), lists, Options{})
	matches, _ := answerAll(t, engine, false)
	if len(matches) != 1 {
		t.Fatalf("expected one unique match, got %+v", matches)
	}
}

func TestBelowThresholdSkipped(t *testing.T) {
	engine := New(existingFolders("Alpha"), BuildTokenIndex([]string{"Omega"}), nil, Options{Threshold: 80})
	matches, asked := answerAll(t, engine, true)
	if len(matches) != 0 || len(asked) != 0 {
		t.Fatalf("matches=%+v asked=%+v", matches, asked)
	}
}

func TestStepProtocol(t *testing.T) {
	engine := New(existingFolders("Foo Bar"), BuildTokenIndex([]string{"Foo Baz"}), nil, Options{})
	ctx := context.Background()

	if err := engine.Resume(true); !errors.Is(err, decision.ErrNoPending) {
		t.Fatalf("expected ErrNoPending before first step, got %v", err)
	}

	first, err := engine.Step(ctx)
	if err != nil || first.Done {
		t.Fatalf("expected pending request, got %+v, %v", first, err)
	}
	again, err := engine.Step(ctx)
	if err != nil || again.Done || again.Request != first.Request {
		t.Fatalf("expected same request, got %+v, %v", again, err)
	}

	if err := engine.Resume(true); err != nil {
		t.Fatal(err)
	}
	if err := engine.Resume(true); !errors.Is(err, decision.ErrNoPending) {
		t.Fatalf("expected ErrNoPending on duplicate resume, got %v", err)
	}

	done, err := engine.Step(ctx)
	if err != nil || !done.Done || len(done.Result) != 1 {
		t.Fatalf("expected one match, got %+v, %v", done, err)
	}
	repeat, err := engine.Step(ctx)
	if err != nil || !repeat.Done || !reflect.DeepEqual(repeat.Result, done.Result) {
		t.Fatalf("expected same result after done, got %+v, %v", repeat, err)
	}
}

func TestRecorderFailureKeepsScanGoing(t *testing.T) {
	boom := errors.New("disk full")
	engine := New(existingFolders("Foo Bar"), BuildTokenIndex([]string{"Foo Baz"}), nil,
		Options{Recorder: func(string, string, bool) error { return boom }})

	matches, asked := answerAll(t, engine, true)
	if len(asked) != 1 || len(matches) != 1 {
		t.Fatalf("matches=%+v asked=%+v", matches, asked)
	}
	if stats := engine.Stats(); stats.RecordFailures != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestCommaNamesAreRecorded(t *testing.T) {
	store := filepath.Join(t.TempDir(), "pairs.txt")
	engine := New(existingFolders("Foo, Bar"), BuildTokenIndex([]string{"Foo, Baz"}), nil,
		Options{Recorder: StoreRecorder(store)})

	matches, asked := answerAll(t, engine, true)
	if len(asked) != 1 || len(matches) != 1 {
		t.Fatalf("matches=%+v asked=%+v", matches, asked)
	}
	if stats := engine.Stats(); stats.RecordFailures != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	lists, err := pairlist.Load(store)
	if err != nil {
		t.Fatal(err)
	}
	if !lists.Accepted("foo, bar", "foo, baz") {
		t.Fatal("expected comma pair persisted")
	}
}

func TestScanAndApplyEndToEnd(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	root := testsupport.LibraryRoot(cfg)
	testsupport.Dirs(t, root,
		"Artists/Artist Foo",
		"Artists/!Others/Ignored",
		"!Htai/Hidden Artist",
		"!new/artist_foo",
		"!new/Unrelated Name",
	)

	existing, err := ListExisting(root, cfg.Library)
	if err != nil {
		t.Fatalf("ListExisting: %v", err)
	}
	if len(existing) != 1 || existing[0].Name != "Artist Foo" {
		t.Fatalf("existing = %+v", existing)
	}
	newNames, err := ListNew(cfg.Library.NewDir, cfg.Library.KnownNamesDir)
	if err != nil {
		t.Fatalf("ListNew: %v", err)
	}

	engine := New(existing, BuildTokenIndex(newNames), nil, Options{})
	matches, asked := answerAll(t, engine, false)
	if len(asked) != 0 || len(matches) != 1 {
		t.Fatalf("matches=%+v asked=%+v", matches, asked)
	}

	lines := ApplyMatches(matches, cfg.Library.NewDir, cfg.Library.KnownNamesDir, fileutil.New(false, nil), nil)
	if len(lines) != 1 {
		t.Fatalf("lines = %q", lines)
	}
	if !testsupport.Exists(t, cfg.Library.NewDir, "!KNOW_NAMES/artist_foo") {
		t.Fatal("expected folder moved into known-names folder")
	}

	again, err := ListNew(cfg.Library.NewDir, cfg.Library.KnownNamesDir)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(again, []string{"Unrelated Name"}) {
		t.Fatalf("ListNew after apply = %q", again)
	}
}

func TestApplyMatchesReportsMissingAndSimulates(t *testing.T) {
	newRoot := t.TempDir()
	testsupport.Dirs(t, newRoot, "present")
	matches := []Match{
		{OriginalFolderName: "X", ArtistName: "x", FolderName: "present", Similarity: 100},
		{OriginalFolderName: "Y", ArtistName: "x", FolderName: "present", Similarity: 100},
		{OriginalFolderName: "X", ArtistName: "gone", FolderName: "gone", Similarity: 90},
	}

	lines := ApplyMatches(matches, newRoot, "!KNOW_NAMES", fileutil.New(true, nil), nil)
	want := []string{
		"Folder does not exist: " + filepath.Join(newRoot, "gone"),
		"Folder " + filepath.Join(newRoot, "present") + " moved to: " + filepath.Join(newRoot, "!KNOW_NAMES", "present"),
	}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("lines = %q, want %q", lines, want)
	}
	if !testsupport.Exists(t, newRoot, "present") || testsupport.Exists(t, newRoot, "!KNOW_NAMES") {
		t.Fatal("simulate mode must leave the tree untouched")
	}
}

func TestBuildTokenIndexKeepsFirstOccurrenceOrder(t *testing.T) {
	index := BuildTokenIndex([]string{"B+A", "A + C", "+"})
	if got := index.Keys(); !reflect.DeepEqual(got, []string{"B", "A", "C"}) {
		t.Fatalf("keys = %q", got)
	}
	want := []Occurrence{{Folder: "B+A", Token: "A"}, {Folder: "A + C", Token: "A"}}
	if got := index.Occurrences("A"); !reflect.DeepEqual(got, want) {
		t.Fatalf("occurrences = %+v", got)
	}
}
