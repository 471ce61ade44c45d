package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"foldersort/internal/categories"
	"foldersort/internal/config"
	"foldersort/internal/ledger"
	"foldersort/internal/logging"
	"foldersort/internal/organizer"
	"foldersort/internal/runlock"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the run logger and prunes expired log files once per
// invocation.
func (c *commandContext) ensureLogger(stderr io.Writer) (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		var console io.Writer
		if c.verbose != nil && *c.verbose {
			console = stderr
		}
		logger, err := logging.NewFromConfig(cfg, console)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		logging.PruneLogs(logger, cfg.LogPath(), cfg.Logging.RetentionDays)
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// session bundles everything a mutating command needs. It holds the state
// lock until Close.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	lock   *runlock.Lock
	store  *ledger.Store
	ledger *ledger.Ledger
	table  *categories.Table
	engine *organizer.Engine
}

// openSession takes the state lock and opens the ledger. The category table
// is loaded only when withCategories is set: undo works from the ledger alone
// so a damaged category file never blocks reverting a batch.
func (c *commandContext) openSession(cmd *cobra.Command, withCategories bool) (*session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	lock, err := runlock.Acquire(cfg.LockPath())
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, logger: logger, lock: lock}

	s.store, err = ledger.OpenStore(cfg.LedgerPath())
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	fsys := afero.NewOsFs()
	s.ledger, err = ledger.Open(cmd.Context(), fsys, s.store, logger)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	if withCategories {
		table, created, err := categories.Load(fsys, cfg.Paths.CategoriesFile)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		if created {
			logger.Info("category table created",
				logging.String(logging.FieldEventType, "categories_created"),
				logging.String("path", cfg.Paths.CategoriesFile),
			)
		}
		s.table = table
	}
	s.engine = organizer.NewEngine(fsys, s.table, s.ledger, logger)
	return s, nil
}

func (s *session) Close() error {
	if s == nil {
		return nil
	}
	var firstErr error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			firstErr = err
		}
	}
	if err := s.lock.Release(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
