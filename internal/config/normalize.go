package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeLibrary(); err != nil {
		return err
	}
	c.normalizeMatching()
	c.normalizeBlacklist()
	c.normalizeCleanup()
	if err := c.normalizeDedupe(); err != nil {
		return err
	}
	c.normalizeLogging()
	if value, ok := os.LookupEnv("CURATOR_SIMULATE"); ok {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			c.Simulate = parsed
		}
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TrashDir) == "" {
		c.Paths.TrashDir = defaultTrashDir
	}
	if c.Paths.TrashDir, err = expandPath(c.Paths.TrashDir); err != nil {
		return fmt.Errorf("paths.trash_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLibrary() error {
	roots, err := expandAll(c.Library.Roots)
	if err != nil {
		return fmt.Errorf("library.roots: %w", err)
	}
	c.Library.Roots = roots

	c.Library.NewDir = strings.TrimSpace(c.Library.NewDir)
	if c.Library.NewDir == "" {
		c.Library.NewDir = defaultNewDir
	}
	if !filepath.IsAbs(c.Library.NewDir) && !strings.HasPrefix(c.Library.NewDir, "~") && len(c.Library.Roots) > 0 {
		c.Library.NewDir = filepath.Join(c.Library.Roots[0], c.Library.NewDir)
	}
	if filepath.IsAbs(c.Library.NewDir) || strings.HasPrefix(c.Library.NewDir, "~") {
		if c.Library.NewDir, err = expandPath(c.Library.NewDir); err != nil {
			return fmt.Errorf("library.new_dir: %w", err)
		}
	}

	c.Library.KnownNamesDir = strings.TrimSpace(c.Library.KnownNamesDir)
	if c.Library.KnownNamesDir == "" {
		c.Library.KnownNamesDir = defaultKnownNamesDir
	}
	c.Library.ExcludedDirs = trimAll(c.Library.ExcludedDirs)
	c.Library.OthersDirs = trimAll(c.Library.OthersDirs)
	c.Library.CensoredTag = strings.TrimSpace(c.Library.CensoredTag)
	return nil
}

func (c *Config) normalizeMatching() {
	if c.Matching.SimilarityThreshold == 0 {
		c.Matching.SimilarityThreshold = defaultSimilarityThreshold
	}
	c.Matching.PairListFile = strings.TrimSpace(c.Matching.PairListFile)
	if c.Matching.PairListFile == "" {
		c.Matching.PairListFile = defaultPairListFile
	}
}

func (c *Config) normalizeBlacklist() {
	c.Blacklist.File = strings.TrimSpace(c.Blacklist.File)
	if c.Blacklist.File == "" {
		c.Blacklist.File = defaultBlacklistFile
	}
	keywords := make([]string, 0, len(c.Blacklist.Keywords))
	for _, keyword := range c.Blacklist.Keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" {
			keywords = append(keywords, keyword)
		}
	}
	c.Blacklist.Keywords = keywords
	c.Blacklist.DefaultCategory = strings.TrimSpace(c.Blacklist.DefaultCategory)
	if c.Blacklist.DefaultCategory == "" {
		c.Blacklist.DefaultCategory = defaultBlacklistCategory
	}
}

func (c *Config) normalizeCleanup() {
	hashes := make([]string, 0, len(c.Cleanup.TrashHashes))
	for _, hash := range c.Cleanup.TrashHashes {
		hash = strings.ToLower(strings.TrimSpace(hash))
		if hash != "" {
			hashes = append(hashes, hash)
		}
	}
	c.Cleanup.TrashHashes = hashes
	if c.Cleanup.TrashMaxBytes <= 0 {
		c.Cleanup.TrashMaxBytes = defaultTrashMaxBytes
	}
	if c.Cleanup.MicroMaxFiles <= 0 {
		c.Cleanup.MicroMaxFiles = defaultMicroMaxFiles
	}
	c.Cleanup.MicroDir = strings.TrimSpace(c.Cleanup.MicroDir)
	if c.Cleanup.MicroDir == "" {
		c.Cleanup.MicroDir = defaultMicroDir
	}
	c.Cleanup.TrashTarget = strings.ToLower(strings.TrimSpace(c.Cleanup.TrashTarget))
	if c.Cleanup.TrashTarget == "" {
		c.Cleanup.TrashTarget = TrashTargetSystem
	}
	c.Cleanup.MicroExclude = trimAll(c.Cleanup.MicroExclude)
	c.Cleanup.FindExclude = trimAll(c.Cleanup.FindExclude)
	c.Cleanup.WhitelistFile = strings.TrimSpace(c.Cleanup.WhitelistFile)
	if c.Cleanup.WhitelistFile == "" {
		c.Cleanup.WhitelistFile = defaultWhitelistFile
	}
}

func (c *Config) normalizeDedupe() error {
	roots, err := expandAll(c.Dedupe.Roots)
	if err != nil {
		return fmt.Errorf("dedupe.roots: %w", err)
	}
	if len(roots) == 0 {
		roots = append(roots, c.Library.Roots...)
	}
	c.Dedupe.Roots = roots

	if strings.TrimSpace(c.Dedupe.DBPath) == "" {
		c.Dedupe.DBPath = defaultDedupeDBFile
	}
	c.Dedupe.DBPath = c.StatePath(strings.TrimSpace(c.Dedupe.DBPath))
	if c.Dedupe.DBPath, err = expandPath(c.Dedupe.DBPath); err != nil {
		return fmt.Errorf("dedupe.db_path: %w", err)
	}
	if strings.TrimSpace(c.Dedupe.BackupDir) == "" {
		c.Dedupe.BackupDir = defaultBackupDir
	}
	c.Dedupe.BackupDir = c.StatePath(strings.TrimSpace(c.Dedupe.BackupDir))
	if c.Dedupe.BackupDir, err = expandPath(c.Dedupe.BackupDir); err != nil {
		return fmt.Errorf("dedupe.backup_dir: %w", err)
	}

	exts := make([]string, 0, len(c.Dedupe.SkipExtensions))
	for _, ext := range c.Dedupe.SkipExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	c.Dedupe.SkipExtensions = exts
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func expandAll(values []string) ([]string, error) {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		expanded, err := expandPath(value)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[expanded]; ok {
			continue
		}
		seen[expanded] = struct{}{}
		out = append(out, expanded)
	}
	return out, nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return out
}
