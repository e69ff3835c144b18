package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"dupicheck/internal/cache"
	"dupicheck/internal/config"
	"dupicheck/internal/logging"
)

type commandContext struct {
	configFlag    *string
	dbFlag        *string
	logLevelFlag  *string
	logFormatFlag *string
	workersFlag   *int
	noProgress    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, dbFlag, logLevelFlag, logFormatFlag *string, workersFlag *int, noProgress *bool) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		dbFlag:        dbFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
		workersFlag:   workersFlag,
		noProgress:    noProgress,
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
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
		}
		if c.logFormatFlag != nil && strings.TrimSpace(*c.logFormatFlag) != "" {
			cfg.Logging.Format = strings.ToLower(strings.TrimSpace(*c.logFormatFlag))
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Output: os.Stderr,
		})
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) workers() int {
	cfg, err := c.ensureConfig()
	if err != nil {
		return 0
	}
	if c.workersFlag != nil && *c.workersFlag > 0 {
		return *c.workersFlag
	}
	return cfg.Hashing.Workers
}

// dbPath resolves the database location for a scanned folder: the --db
// override when given, otherwise the configured hidden file inside the
// folder itself.
func (c *commandContext) dbPath(folder string) (string, error) {
	if c.dbFlag != nil && strings.TrimSpace(*c.dbFlag) != "" {
		return config.ExpandPath(*c.dbFlag)
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(folder)
	if err != nil {
		return "", err
	}
	return filepath.Join(abs, cfg.Cache.DBFilename), nil
}

func (c *commandContext) openStore(folder string) (*cache.Store, error) {
	path, err := c.dbPath(folder)
	if err != nil {
		return nil, err
	}
	return cache.Open(path)
}
