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

// Matching contains the distance thresholds that drive pairing decisions.
type Matching struct {
	// Threshold is the inclusive Hamming distance below which two
	// hashes count as duplicates.
	Threshold int `toml:"threshold"`
	// ManualThreshold is the distance above which delete mode routes a
	// pair to manual review instead of deleting.
	ManualThreshold int `toml:"manual_threshold"`
}

// Cache contains configuration for the per-folder hash database.
type Cache struct {
	// DBFilename is the database file created inside the scanned
	// folder when no explicit path is given.
	DBFilename string `toml:"db_filename"`
}

// Hashing contains configuration for image decoding and hashing.
type Hashing struct {
	// Workers bounds the hashing worker pool. Zero means one worker
	// per CPU.
	Workers int `toml:"workers"`
	// Extensions lists the file extensions treated as images.
	Extensions []string `toml:"extensions"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for dupicheck.
type Config struct {
	Matching Matching `toml:"matching"`
	Cache    Cache    `toml:"cache"`
	Hashing  Hashing  `toml:"hashing"`
	Logging  Logging  `toml:"logging"`
}

// SampleConfig returns the annotated sample configuration file contents.
func SampleConfig() string {
	return sampleConfig
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/dupicheck/config.toml")
}

// Load locates, parses, and validates a configuration file. It returns the
// effective config, the resolved path, and whether a file was found. A
// missing file is not an error; defaults apply.
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

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
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
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	projectPath, err := filepath.Abs("dupicheck.toml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Cache.DBFilename) == "" {
		c.Cache.DBFilename = defaultDBFilename
	}

	exts := make([]string, 0, len(c.Hashing.Extensions))
	for _, ext := range c.Hashing.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		exts = append(exts, defaultExtensions()...)
	}
	c.Hashing.Extensions = exts
}

// IsImageExtension reports whether ext (with leading dot, any case) is a
// configured image extension.
func (c *Config) IsImageExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, candidate := range c.Hashing.Extensions {
		if candidate == ext {
			return true
		}
	}
	return false
}

// ExpandPath resolves ~ prefixes and returns an absolute path.
func ExpandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("path is empty")
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		if path == "~" {
			path = home
		} else {
			path = filepath.Join(home, path[2:])
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("absolutize path: %w", err)
	}
	return abs, nil
}
