// Package config handles TOML-based configuration loading and validation.
// TOML is parsed as data only — no code execution is possible.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds the default codec policy, overridable per-invocation by CLI
// flags (spec §6).
type Config struct {
	Bits             int    `toml:"bits"`
	Algorithm        string `toml:"algorithm"`
	N                int    `toml:"n"`
	ConsecutiveSkips int    `toml:"consecutive_skips"`
	DepthSkip        int    `toml:"depth_skip"`
	CorpusFormat     string `toml:"corpus_format"`
	Debug            bool   `toml:"debug"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Bits:             3,
		Algorithm:        "char-bit",
		N:                3,
		ConsecutiveSkips: 3,
		DepthSkip:        1,
		CorpusFormat:     "auto",
		Debug:            false,
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "textsteg"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "textsteg"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds (spec §6).
func (c *Config) Validate() error {
	if c.Bits < 1 || c.Bits > 8 {
		return fmt.Errorf("bits must be in [1,8], got %d", c.Bits)
	}
	if c.N < 1 {
		return fmt.Errorf("n must be >= 1, got %d", c.N)
	}

	validAlgorithms := map[string]bool{
		"char-bit": true, "char-bit-shuffle": true, "char-value": true,
	}
	if !validAlgorithms[strings.ToLower(c.Algorithm)] {
		return fmt.Errorf("unsupported algorithm %q (valid: char-bit, char-bit-shuffle, char-value)", c.Algorithm)
	}

	validFormats := map[string]bool{
		"auto": true, "text": true, "html": true,
	}
	if !validFormats[strings.ToLower(c.CorpusFormat)] {
		return fmt.Errorf("unsupported corpus format %q (valid: auto, text, html)", c.CorpusFormat)
	}

	if c.ConsecutiveSkips < 0 {
		return fmt.Errorf("consecutive_skips cannot be negative")
	}
	if c.DepthSkip < 0 {
		return fmt.Errorf("depth_skip cannot be negative")
	}

	return nil
}

// DataDir returns the XDG-compliant data directory used for run history.
func DataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "textsteg"), nil
}

// HistoryDBPath returns the path to the run-history sqlite database.
func HistoryDBPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}
