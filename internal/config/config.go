package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains state, log, and trash directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
	TrashDir string `toml:"trash_dir"`
}

// Library describes the known-library roots and the unsorted inbox.
type Library struct {
	Roots         []string `toml:"roots"`
	NewDir        string   `toml:"new_dir"`
	KnownNamesDir string   `toml:"known_names_dir"`
	ExcludedDirs  []string `toml:"excluded_dirs"`
	OthersDirs    []string `toml:"others_dirs"`
	CensoredTag   string   `toml:"censored_tag"`
}

// Matching contains artist-folder matching settings.
type Matching struct {
	SimilarityThreshold int    `toml:"similarity_threshold"`
	PairListFile        string `toml:"pair_list_file"`
}

// Blacklist contains folder-name blacklist settings.
type Blacklist struct {
	File            string   `toml:"file"`
	Keywords        []string `toml:"keywords"`
	DefaultCategory string   `toml:"default_category"`
}

// Cleanup contains empty-folder, trash-file, and micro-folder scan settings.
type Cleanup struct {
	TrashHashes   []string `toml:"trash_hashes"`
	TrashMaxBytes int64    `toml:"trash_max_bytes"`
	MicroMaxFiles int      `toml:"micro_max_files"`
	MicroDir      string   `toml:"micro_dir"`
	MicroExclude  []string `toml:"micro_exclude"`
	FindExclude   []string `toml:"find_exclude"`
	WhitelistFile string   `toml:"whitelist_file"`
	UseTrash      bool     `toml:"use_trash"`

	// TrashTarget is "system" for the desktop trash or "dir" for
	// paths.trash_dir.
	TrashTarget string `toml:"trash_target"`
}

// Trash targets accepted by cleanup.trash_target.
const (
	TrashTargetSystem = "system"
	TrashTargetDir    = "dir"
)

// Dedupe contains content-hash deduplication settings.
type Dedupe struct {
	Roots          []string `toml:"roots"`
	DBPath         string   `toml:"db_path"`
	BackupDir      string   `toml:"backup_dir"`
	SkipExtensions []string `toml:"skip_extensions"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for curator.
//
// Configuration sections by subsystem:
//   - Paths: state, log, and trash directories
//   - Library: library roots, unsorted inbox, and folder exclusions
//   - Matching: artist-folder similarity threshold and judged-pair store
//   - Blacklist: categorized blacklist store and suspicious keywords
//   - Cleanup: empty-folder, trash-file, and micro-folder thresholds
//   - Dedupe: content-hash roots, hash database, and backups
//   - Logging: log format and level
//
// Simulate runs every scan and prompt but skips filesystem mutations.
type Config struct {
	Simulate  bool      `toml:"simulate"`
	Paths     Paths     `toml:"paths"`
	Library   Library   `toml:"library"`
	Matching  Matching  `toml:"matching"`
	Blacklist Blacklist `toml:"blacklist"`
	Cleanup   Cleanup   `toml:"cleanup"`
	Dedupe    Dedupe    `toml:"dedupe"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/curator/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("curator.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories. The trash
// directory is created lazily by the first removal that needs it.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// StatePath resolves a state file name relative to the state directory.
// Absolute names are returned unchanged.
func (c *Config) StatePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Paths.StateDir, name)
}

// PairListPath returns the judged-pair store location.
func (c *Config) PairListPath() string {
	return c.StatePath(c.Matching.PairListFile)
}

// BlacklistPath returns the categorized blacklist store location.
func (c *Config) BlacklistPath() string {
	return c.StatePath(c.Blacklist.File)
}

// WhitelistPath returns the cleanup skip-whitelist location.
func (c *Config) WhitelistPath() string {
	return c.StatePath(c.Cleanup.WhitelistFile)
}

// LockPath returns the single-process lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "curator.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
