package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"curator/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir, ReadWrite)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "read/write ok") {
		t.Fatalf("detail = %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"), ReadOnly)
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f, ReadOnly)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckCreatable(t *testing.T) {
	base := t.TempDir()
	result := CheckCreatable("state", filepath.Join(base, "a", "b"))
	if !result.Passed || !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("result = %+v", result)
	}

	file := filepath.Join(base, "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckCreatable("state", filepath.Join(file, "sub")); result.Passed {
		t.Fatal("expected failure below a regular file")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MissingInbox(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.Dirs(t, testsupport.LibraryRoot(cfg), ".")

	results := RunAll(context.Background(), cfg)
	failed := Failures(results)
	if len(failed) != 1 || failed[0].Name != "Unsorted inbox" {
		t.Fatalf("failures = %+v", failed)
	}

	testsupport.Dirs(t, cfg.Library.NewDir, ".")
	if failed := Failures(RunAll(context.Background(), cfg)); len(failed) != 0 {
		t.Fatalf("unexpected failures %+v", failed)
	}
}
