package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var md5Pattern = regexp.MustCompile(`^[a-f0-9]{32}$`)

// Validate ensures the configuration is usable. Library roots are not
// required here; commands that walk the library check for them.
func (c *Config) Validate() error {
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateLibrary(); err != nil {
		return err
	}
	if err := c.validateBlacklist(); err != nil {
		return err
	}
	if err := c.validateCleanup(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.SimilarityThreshold < 1 || c.Matching.SimilarityThreshold > 100 {
		return errors.New("matching.similarity_threshold must be between 1 and 100")
	}
	return nil
}

func (c *Config) validateLibrary() error {
	if strings.ContainsAny(c.Library.KnownNamesDir, `/\`) {
		return errors.New("library.known_names_dir must be a single folder name")
	}
	return nil
}

func (c *Config) validateBlacklist() error {
	if strings.ContainsAny(c.Blacklist.DefaultCategory, "#\n") {
		return errors.New("blacklist.default_category must not contain '#' or newlines")
	}
	return nil
}

func (c *Config) validateCleanup() error {
	for _, hash := range c.Cleanup.TrashHashes {
		if !md5Pattern.MatchString(hash) {
			return fmt.Errorf("cleanup.trash_hashes: %q is not an md5 hex digest", hash)
		}
	}
	switch c.Cleanup.TrashTarget {
	case TrashTargetSystem, TrashTargetDir:
	default:
		return fmt.Errorf("cleanup.trash_target: %q is not %q or %q", c.Cleanup.TrashTarget, TrashTargetSystem, TrashTargetDir)
	}
	if strings.ContainsAny(c.Cleanup.MicroDir, `/\`) {
		return errors.New("cleanup.micro_dir must be a single folder name")
	}
	return nil
}

// RequireLibraryRoots reports a descriptive error when no library roots are configured.
func (c *Config) RequireLibraryRoots() error {
	if len(c.Library.Roots) == 0 {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/curator/config.toml"
		}
		return fmt.Errorf("library.roots is empty. Edit %s (create with 'curator config init')", defaultPath)
	}
	return nil
}
