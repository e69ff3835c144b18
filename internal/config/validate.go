package config

import (
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Matching.Threshold < 0 {
		return fmt.Errorf("matching.threshold must be >= 0, got %d", c.Matching.Threshold)
	}
	if c.Matching.ManualThreshold < 0 {
		return fmt.Errorf("matching.manual_threshold must be >= 0, got %d", c.Matching.ManualThreshold)
	}
	if c.Hashing.Workers < 0 {
		return fmt.Errorf("hashing.workers must be >= 0, got %d", c.Hashing.Workers)
	}
	if strings.ContainsRune(c.Cache.DBFilename, '/') {
		return fmt.Errorf("cache.db_filename must be a bare filename, got %q", c.Cache.DBFilename)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
