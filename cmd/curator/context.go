package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"curator/internal/config"
	"curator/internal/fileutil"
	"curator/internal/logging"
	"curator/internal/preflight"
	"curator/internal/statelock"
)

type globalFlags struct {
	config   string
	simulate bool
	logLevel string
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.flags != nil {
			path = strings.TrimSpace(c.flags.config)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.flags != nil {
			if c.flags.simulate {
				cfg.Simulate = true
			}
			if level := strings.TrimSpace(c.flags.logLevel); level != "" {
				cfg.Logging.Level = strings.ToLower(level)
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// sessionLogger returns the command logger tagged with a per-run session id.
func (c *commandContext) sessionLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.configValue())
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger, _ = logging.WithSession(logger)
	})
	return c.logger
}

// fileSystem returns the FS every mutation goes through: simulated when the
// config says so and removing into the configured trash when enabled.
func (c *commandContext) fileSystem() fileutil.FS {
	cfg := c.configValue()
	if cfg == nil {
		return fileutil.New(true, nil)
	}
	return fileutil.New(cfg.Simulate, newRemover(cfg))
}

// newRemover picks the removal sink; nil means permanent deletion.
func newRemover(cfg *config.Config) fileutil.Remover {
	if !cfg.Cleanup.UseTrash {
		return nil
	}
	if cfg.Cleanup.TrashTarget == config.TrashTargetDir {
		return fileutil.NewTrashRemover(cfg.Paths.TrashDir)
	}
	return fileutil.SystemTrashRemover{}
}

// withLock runs fn while holding the state lock.
func (c *commandContext) withLock(fn func() error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	lock, err := statelock.Acquire(cfg.LockPath())
	if err != nil {
		if errors.Is(err, statelock.ErrLocked) {
			return fmt.Errorf("%w; wait for it to finish", err)
		}
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			c.sessionLogger().Warn("failed to release state lock", logging.Error(err))
		}
	}()
	return fn()
}

// requireReady runs the preflight checks and fails on the first problem.
func (c *commandContext) requireReady(ctx context.Context) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireLibraryRoots(); err != nil {
		return err
	}
	failed := preflight.Failures(preflight.RunAll(ctx, cfg))
	if len(failed) == 0 {
		return nil
	}
	first := failed[0]
	return fmt.Errorf("preflight %s failed: %s", strings.ToLower(first.Name), first.Detail)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
