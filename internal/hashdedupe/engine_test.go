package hashdedupe

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"curator/internal/decision"
	"curator/internal/fileutil"
	"curator/internal/testsupport"
)

const helloMD5 = "5d41402abc4b2a76b9719d911017c592"

type scripted struct {
	t       *testing.T
	asked   []Request
	answers []Answer
}

func (s *scripted) decide(_ context.Context, req Request) (Answer, error) {
	s.asked = append(s.asked, req)
	if len(s.answers) == 0 {
		s.t.Fatalf("unexpected request %+v", req)
	}
	next := s.answers[0]
	s.answers = s.answers[1:]
	return next, nil
}

func newEngine(root string, store *Store, simulate bool) *Engine {
	return NewEngine(Options{
		Roots:          []string{root},
		SkipExtensions: []string{".lnk"},
		FS:             fileutil.New(simulate, nil),
		Store:          store,
	})
}

func TestDuplicateContentAsksRenameThenDelete(t *testing.T) {
	root := t.TempDir()
	hashed := testsupport.WriteText(t, root, helloMD5+".jpg", "hello")
	wrong := testsupport.WriteText(t, root, "abc123.jpg", "hello")
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "md5s.sqlite"), filepath.Join(dir, "backups"), false)

	s := &scripted{t: t, answers: []Answer{{Rename: Rename}, {Delete: DeleteFirst}}}
	result, err := decision.Drive[Request, Answer, Result](context.Background(), newEngine(root, store, false), s.decide)
	if err != nil {
		t.Fatalf("Drive: %v", err)
	}

	if len(s.asked) != 2 {
		t.Fatalf("expected two requests, got %+v", s.asked)
	}
	if r := s.asked[0].Rename; r == nil || r.Path != wrong || r.Hash != helloMD5 {
		t.Fatalf("first request = %+v", s.asked[0])
	}
	if d := s.asked[1].Delete; d == nil || d.Hash != helloMD5 || d.First != wrong || d.Second != hashed {
		t.Fatalf("second request = %+v", s.asked[1])
	}
	if !strings.Contains(strings.Join(result.Log, "\n"), "File with MD5 name already exists") {
		t.Fatalf("expected rename skip in log: %q", result.Log)
	}
	if testsupport.Exists(t, root, "abc123.jpg") {
		t.Fatal("expected first file deleted")
	}
	if result.Table[helloMD5] != hashed || result.Collisions != 1 || result.Deleted != 1 {
		t.Fatalf("result = %+v", result)
	}

	stored, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(stored) != 1 || stored[helloMD5] != hashed {
		t.Fatalf("stored = %v", stored)
	}
}

func TestDeleteSecondPointsTableAtSurvivor(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteText(t, root, "a/"+helloMD5+".png", "hello")
	survivor := testsupport.WriteText(t, root, "b/"+helloMD5+".png", "hello")

	s := &scripted{t: t, answers: []Answer{{Delete: DeleteSecond}}}
	result, err := decision.Drive[Request, Answer, Result](context.Background(), newEngine(root, nil, false), s.decide)
	if err != nil {
		t.Fatal(err)
	}
	if result.Table[helloMD5] != survivor {
		t.Fatalf("table = %v", result.Table)
	}
	if testsupport.Exists(t, root, "a/"+helloMD5+".png") {
		t.Fatal("expected earlier file removed")
	}
}

func TestRenameAllAndIgnoreAllPolicies(t *testing.T) {
	tests := []struct {
		name        string
		answer      RenameAnswer
		wantAsked   int
		wantRenamed int
	}{
		{"rename all", RenameAll, 1, 3},
		{"ignore all", IgnoreAll, 1, 0},
		{"rename each", Rename, 3, 3},
		{"ignore each", Ignore, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			testsupport.WriteText(t, root, "one.txt", "1")
			testsupport.WriteText(t, root, "two.txt", "2")
			testsupport.WriteText(t, root, "three.txt", "3")
			testsupport.WriteText(t, root, "link.lnk", "ignored")

			answers := []Answer{{Rename: tt.answer}, {Rename: tt.answer}, {Rename: tt.answer}}
			s := &scripted{t: t, answers: answers}
			engine := newEngine(root, nil, false)
			result, err := decision.Drive[Request, Answer, Result](context.Background(), engine, s.decide)
			if err != nil {
				t.Fatal(err)
			}
			if len(s.asked) != tt.wantAsked || result.Renamed != tt.wantRenamed {
				t.Fatalf("asked=%d renamed=%d", len(s.asked), result.Renamed)
			}
			if result.Files != 3 {
				t.Fatalf("files = %d, .lnk must be skipped", result.Files)
			}
		})
	}
}

func TestIgnoreRemembersBaseName(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteText(t, root, "a/cover.jpg", "x")
	testsupport.WriteText(t, root, "b/cover.jpg", "y")

	s := &scripted{t: t, answers: []Answer{{Rename: Ignore}}}
	engine := newEngine(root, nil, false)
	if _, err := decision.Drive[Request, Answer, Result](context.Background(), engine, s.decide); err != nil {
		t.Fatal(err)
	}
	if len(s.asked) != 1 || !engine.Policy().Ignored["cover.jpg"] {
		t.Fatalf("asked=%+v policy=%+v", s.asked, engine.Policy())
	}
}

func TestStopPersistsPartialTable(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteText(t, root, "a/"+helloMD5+".jpg", "hello")
	testsupport.WriteText(t, root, "b/"+helloMD5+".jpg", "hello")
	testsupport.WriteText(t, root, "c/later.jpg", "never reached")
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "md5s.sqlite"), filepath.Join(dir, "backups"), false)

	s := &scripted{t: t, answers: []Answer{{Delete: Stop}}}
	result, err := decision.Drive[Request, Answer, Result](context.Background(), newEngine(root, store, false), s.decide)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Stopped || result.Files != 2 {
		t.Fatalf("result = %+v", result)
	}
	stored, err := store.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 {
		t.Fatalf("stored = %v", stored)
	}
	if !testsupport.Exists(t, root, "c/later.jpg") {
		t.Fatal("stop must leave remaining files alone")
	}
}

func TestSimulateLeavesFilesAndDatabase(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteText(t, root, "photo.jpg", "hello")
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "md5s.sqlite"), filepath.Join(dir, "backups"), true)

	s := &scripted{t: t, answers: []Answer{{Rename: Rename}}}
	result, err := decision.Drive[Request, Answer, Result](context.Background(), newEngine(root, store, true), s.decide)
	if err != nil {
		t.Fatal(err)
	}
	if !testsupport.Exists(t, root, "photo.jpg") {
		t.Fatal("simulate must not rename")
	}
	if result.Table[helloMD5] != filepath.Join(root, helloMD5+".jpg") {
		t.Fatalf("table = %v", result.Table)
	}
	if !strings.Contains(result.StoreLog, "not updated") || fileutil.Exists(store.Path()) {
		t.Fatalf("store log %q", result.StoreLog)
	}
}

func TestSimulateAsksWhatARealRunAsks(t *testing.T) {
	run := func(simulate bool) (string, []Request) {
		root := t.TempDir()
		testsupport.WriteText(t, root, "a.jpg", "hello")
		testsupport.WriteText(t, root, "b.jpg", "hello")
		s := &scripted{t: t, answers: []Answer{{Rename: Rename}, {Rename: Rename}, {Delete: DeleteFirst}}}
		if _, err := decision.Drive[Request, Answer, Result](context.Background(), newEngine(root, nil, simulate), s.decide); err != nil {
			t.Fatal(err)
		}
		return root, s.asked
	}
	relative := func(root string, reqs []Request) []string {
		var out []string
		for _, req := range reqs {
			switch {
			case req.Rename != nil:
				rel, _ := filepath.Rel(root, req.Rename.Path)
				out = append(out, "rename "+rel+" "+req.Rename.Hash)
			case req.Delete != nil:
				first, _ := filepath.Rel(root, req.Delete.First)
				second, _ := filepath.Rel(root, req.Delete.Second)
				out = append(out, "delete "+first+" "+second)
			}
		}
		return out
	}

	realRoot, realAsked := run(false)
	simRoot, simAsked := run(true)
	want := relative(realRoot, realAsked)
	got := relative(simRoot, simAsked)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("simulate asked %q, real run asked %q", got, want)
	}
	if len(want) != 3 || want[2] != "delete b.jpg "+helloMD5+".jpg" {
		t.Fatalf("real run asked %q", want)
	}
	if !testsupport.Exists(t, simRoot, "a.jpg") || !testsupport.Exists(t, simRoot, "b.jpg") {
		t.Fatal("simulate must leave files in place")
	}
}

func TestSimulatedRemovalHidesFile(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteText(t, root, helloMD5+".jpg", "hello")
	testsupport.WriteText(t, root, "b.jpg", "hello")
	testsupport.WriteText(t, root, "c.jpg", "hello")

	s := &scripted{t: t, answers: []Answer{
		{Rename: Ignore}, {Delete: DeleteSecond},
		{Rename: Ignore}, {Delete: Keep},
	}}
	result, err := decision.Drive[Request, Answer, Result](context.Background(), newEngine(root, nil, true), s.decide)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.asked[3].Delete; got == nil || got.Second != filepath.Join(root, "b.jpg") {
		t.Fatalf("expected survivor b.jpg as earlier file, got %+v", s.asked[3])
	}
	if result.Deleted != 1 || !testsupport.Exists(t, root, helloMD5+".jpg") {
		t.Fatalf("result = %+v", result)
	}
}

func TestForceHashesHexNames(t *testing.T) {
	root := t.TempDir()
	stale := strings.Repeat("0", 32) + ".jpg"
	testsupport.WriteText(t, root, stale, "hello")

	engine := NewEngine(Options{Roots: []string{root}, Force: true, FS: fileutil.New(false, nil)})
	s := &scripted{t: t, answers: []Answer{{Rename: Rename}}}
	result, err := decision.Drive[Request, Answer, Result](context.Background(), engine, s.decide)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.asked) != 1 || !testsupport.Exists(t, root, helloMD5+".jpg") {
		t.Fatalf("asked=%+v log=%q", s.asked, result.Log)
	}
}

func TestResumeProtocol(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteText(t, root, "x.txt", "x")
	engine := newEngine(root, nil, false)

	if err := engine.Resume(Answer{Rename: Rename}); !errors.Is(err, decision.ErrNoPending) {
		t.Fatalf("expected ErrNoPending, got %v", err)
	}
	out, err := engine.Step(context.Background())
	if err != nil || out.Done || out.Request.Rename == nil {
		t.Fatalf("Step = %+v, %v", out, err)
	}
	again, err := engine.Step(context.Background())
	if err != nil || again.Request.Rename == nil || again.Request.Rename.Path != out.Request.Rename.Path {
		t.Fatalf("pending request must repeat, got %+v", again)
	}
	if err := engine.Resume(Answer{Delete: DeleteFirst}); err == nil {
		t.Fatal("expected error for mismatched answer kind")
	}
	if err := engine.Resume(Answer{Rename: Ignore}); err != nil {
		t.Fatal(err)
	}
	done, err := engine.Step(context.Background())
	if err != nil || !done.Done {
		t.Fatalf("expected finished, got %+v, %v", done, err)
	}
}
