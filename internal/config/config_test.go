package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"curator/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "curator")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Matching.SimilarityThreshold != 80 {
		t.Fatalf("unexpected similarity threshold: %d", cfg.Matching.SimilarityThreshold)
	}
	if cfg.Cleanup.MicroMaxFiles != 5 {
		t.Fatalf("unexpected micro max files: %d", cfg.Cleanup.MicroMaxFiles)
	}
	if cfg.Cleanup.TrashMaxBytes != 1024*1024 {
		t.Fatalf("unexpected trash max bytes: %d", cfg.Cleanup.TrashMaxBytes)
	}
	if cfg.Cleanup.TrashTarget != config.TrashTargetSystem {
		t.Fatalf("unexpected trash target: %q", cfg.Cleanup.TrashTarget)
	}
	if cfg.PairListPath() != filepath.Join(wantState, "GSAF_bl_wl_lists.txt") {
		t.Fatalf("unexpected pair list path: %q", cfg.PairListPath())
	}
	if cfg.Dedupe.DBPath != filepath.Join(wantState, "md5s.sqlite") {
		t.Fatalf("unexpected dedupe db path: %q", cfg.Dedupe.DBPath)
	}
	if cfg.Dedupe.BackupDir != filepath.Join(wantState, "backups") {
		t.Fatalf("unexpected backup dir: %q", cfg.Dedupe.BackupDir)
	}
	if cfg.Simulate {
		t.Fatal("expected simulate disabled by default")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist", dir)
		}
	}
}

func TestLoadCustomConfigResolvesNewDirAgainstFirstRoot(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	library := filepath.Join(tempHome, "Video")
	payload := map[string]any{
		"library": map[string]any{
			"roots":   []string{library, "  ", library},
			"new_dir": "!inbox",
		},
		"matching": map[string]any{
			"similarity_threshold": 75,
		},
		"blacklist": map[string]any{
			"keywords": []string{" Voice_Actor ", ""},
		},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	configPath := filepath.Join(tempHome, "config.toml")
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected config at %q to be used, got %q (exists=%v)", configPath, resolved, exists)
	}
	if len(cfg.Library.Roots) != 1 || cfg.Library.Roots[0] != library {
		t.Fatalf("unexpected roots: %v", cfg.Library.Roots)
	}
	if cfg.Library.NewDir != filepath.Join(library, "!inbox") {
		t.Fatalf("unexpected new dir: %q", cfg.Library.NewDir)
	}
	if cfg.Matching.SimilarityThreshold != 75 {
		t.Fatalf("unexpected threshold: %d", cfg.Matching.SimilarityThreshold)
	}
	if len(cfg.Blacklist.Keywords) != 1 || cfg.Blacklist.Keywords[0] != "voice_actor" {
		t.Fatalf("unexpected keywords: %v", cfg.Blacklist.Keywords)
	}
	if len(cfg.Dedupe.Roots) != 1 || cfg.Dedupe.Roots[0] != library {
		t.Fatalf("expected dedupe roots to default to library roots, got %v", cfg.Dedupe.Roots)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"threshold", func(c *config.Config) { c.Matching.SimilarityThreshold = 101 }, "similarity_threshold"},
		{"known names", func(c *config.Config) { c.Library.KnownNamesDir = "a/b" }, "known_names_dir"},
		{"trash hash", func(c *config.Config) { c.Cleanup.TrashHashes = []string{"nothex"} }, "trash_hashes"},
		{"micro dir", func(c *config.Config) { c.Cleanup.MicroDir = "x/y" }, "micro_dir"},
		{"trash target", func(c *config.Config) { c.Cleanup.TrashTarget = "bin" }, "trash_target"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestSimulateEnvOverride(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("CURATOR_SIMULATE", "true")

	cfg, _, _, err := config.Load(filepath.Join(tempHome, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !cfg.Simulate {
		t.Fatal("expected CURATOR_SIMULATE to enable simulate mode")
	}
}

func TestRequireLibraryRoots(t *testing.T) {
	cfg := config.Default()
	if err := cfg.RequireLibraryRoots(); err == nil {
		t.Fatal("expected error for empty roots")
	}
	cfg.Library.Roots = []string{"/srv/media"}
	if err := cfg.RequireLibraryRoots(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	target := filepath.Join(tempHome, "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if len(cfg.Library.Roots) != 2 {
		t.Fatalf("expected sample roots, got %v", cfg.Library.Roots)
	}
}
