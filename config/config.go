// Package config handles lumen.toml project configuration: where the
// evaluation history database lives, whether the LSP server is
// enabled by default, basic logging preferences, the REPL prompt, and
// whether the compiled-chunk cache is used.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents a lumen.toml project configuration.
type Config struct {
	Store   StoreConfig   `toml:"store"`
	LSP     LSPConfig     `toml:"lsp"`
	Logging LoggingConfig `toml:"logging"`
	REPL    REPLConfig    `toml:"repl"`
	Cache   CacheConfig   `toml:"cache"`

	// Dir is the directory containing the lumen.toml file (set at load time).
	Dir string `toml:"-"`
}

// StoreConfig configures the evaluation-history database.
type StoreConfig struct {
	Path string `toml:"path"`
}

// LSPConfig configures the language server.
type LSPConfig struct {
	Enabled bool `toml:"enabled"`
}

// LoggingConfig configures log verbosity.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// REPLConfig configures the interactive REPL driver.
type REPLConfig struct {
	Prompt string `toml:"prompt"`
}

// CacheConfig configures the content-addressed chunk cache.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Default returns the configuration used when no lumen.toml is found.
func Default() *Config {
	return &Config{
		Store:   StoreConfig{Path: "lumen-history.db"},
		LSP:     LSPConfig{Enabled: false},
		Logging: LoggingConfig{Level: "info"},
		REPL:    REPLConfig{Prompt: "> "},
		Cache:   CacheConfig{Enabled: true, Dir: "lumen-cache"},
	}
}

// Verbosity maps Logging.Level to a commonlog verbosity level: 0 is
// warnings and errors only, 1 is info, 2 is debug.
func (c *Config) Verbosity() int {
	switch c.Logging.Level {
	case "debug":
		return 2
	case "warning", "warn", "error":
		return 0
	default:
		return 1
	}
}

// Load parses a lumen.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "lumen.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return c, nil
}

// FindAndLoad walks up from startDir looking for a lumen.toml file. If
// none is found, it returns the default configuration rather than an
// error — lumen runs standalone without a project file.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "lumen.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// StorePath resolves the configured store path relative to Dir.
func (c *Config) StorePath() string {
	if c.Dir == "" || filepath.IsAbs(c.Store.Path) {
		return c.Store.Path
	}
	return filepath.Join(c.Dir, c.Store.Path)
}

// CachePath resolves the configured chunk-cache directory relative to
// Dir.
func (c *Config) CachePath() string {
	if c.Dir == "" || filepath.IsAbs(c.Cache.Dir) {
		return c.Cache.Dir
	}
	return filepath.Join(c.Dir, c.Cache.Dir)
}
