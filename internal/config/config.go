// Package config provides layered configuration loading.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds the resolved configuration.
type Config struct {
	// API settings
	BaseURL string `json:"base_url"`

	// Cache settings
	CacheDir     string `json:"cache_dir"`
	CacheEnabled bool   `json:"cache_enabled"`

	// Output settings
	Format string `json:"format"`

	// Sources tracks where each value came from (for debugging).
	Sources map[string]string `json:"-"`
}

// Source indicates where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceGlobal  Source = "global"
	SourceLocal   Source = "local"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)

// FlagOverrides holds command-line flag values.
type FlagOverrides struct {
	BaseURL  string
	CacheDir string
	Format   string
}

// Default returns the default configuration.
func Default() *Config {
	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		home, _ := os.UserHomeDir()
		cacheDir = filepath.Join(home, ".cache")
	}

	return &Config{
		BaseURL:      "https://api.dayplan.app",
		CacheDir:     filepath.Join(cacheDir, "dayplan"),
		CacheEnabled: true,
		Format:       "auto",
		Sources:      make(map[string]string),
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence: flags > env > local > global > defaults.
func Load(overrides FlagOverrides) (*Config, error) {
	cfg := Default()

	loadFromFile(cfg, globalConfigPath(), SourceGlobal)
	loadFromFile(cfg, localConfigPath(), SourceLocal)
	loadFromEnv(cfg)
	applyOverrides(cfg, overrides)

	return cfg, nil
}

// globalConfigPath returns ~/.config/dayplan/config.json.
func globalConfigPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "dayplan", "config.json")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "dayplan", "config.json")
}

// localConfigPath walks from the working directory toward the root looking
// for a .dayplan/config.json, so project checkouts can pin a host.
func localConfigPath() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(dir, ".dayplan", "config.json")
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// fileConfig mirrors Config for partial file parsing: pointer fields
// distinguish "absent" from zero values.
type fileConfig struct {
	BaseURL      *string `json:"base_url"`
	CacheDir     *string `json:"cache_dir"`
	CacheEnabled *bool   `json:"cache_enabled"`
	Format       *string `json:"format"`
}

func loadFromFile(cfg *Config, path string, source Source) {
	if path == "" {
		return
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: Well-known config paths
	if err != nil {
		return
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return
	}

	if fc.BaseURL != nil && *fc.BaseURL != "" {
		cfg.BaseURL = *fc.BaseURL
		cfg.Sources["base_url"] = string(source)
	}
	if fc.CacheDir != nil && *fc.CacheDir != "" {
		cfg.CacheDir = *fc.CacheDir
		cfg.Sources["cache_dir"] = string(source)
	}
	if fc.CacheEnabled != nil {
		cfg.CacheEnabled = *fc.CacheEnabled
		cfg.Sources["cache_enabled"] = string(source)
	}
	if fc.Format != nil && *fc.Format != "" {
		cfg.Format = *fc.Format
		cfg.Sources["format"] = string(source)
	}
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("DAYPLAN_BASE_URL"); v != "" {
		cfg.BaseURL = v
		cfg.Sources["base_url"] = string(SourceEnv)
	}
	if v := os.Getenv("DAYPLAN_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
		cfg.Sources["cache_dir"] = string(SourceEnv)
	}
	if v := os.Getenv("DAYPLAN_FORMAT"); v != "" {
		cfg.Format = v
		cfg.Sources["format"] = string(SourceEnv)
	}
}

func applyOverrides(cfg *Config, overrides FlagOverrides) {
	if overrides.BaseURL != "" {
		cfg.BaseURL = overrides.BaseURL
		cfg.Sources["base_url"] = string(SourceFlag)
	}
	if overrides.CacheDir != "" {
		cfg.CacheDir = overrides.CacheDir
		cfg.Sources["cache_dir"] = string(SourceFlag)
	}
	if overrides.Format != "" {
		cfg.Format = overrides.Format
		cfg.Sources["format"] = string(SourceFlag)
	}
}
