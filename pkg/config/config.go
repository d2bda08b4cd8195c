// Package config loads toolchain configuration from a TOML file.
//
// Configuration covers the CLI and server defaults only - the engine takes
// its options per call and owns no configuration. Missing files are not an
// error: every field has a working default so `kintree layout` runs with no
// setup at all.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
}

// LayoutConfig holds default engine options for CLI and server runs.
// Zero fields fall back to the engine's own defaults.
type LayoutConfig struct {
	ViewportWidth  float64 `toml:"viewport_width"`
	SiblingSpacing float64 `toml:"sibling_spacing"`
	BreadthUnit    float64 `toml:"breadth_unit"`
	Widen          float64 `toml:"widen"`
	RTL            bool    `toml:"rtl"`
}

// CacheConfig selects and configures the memoization backend.
type CacheConfig struct {
	// Backend is "file", "redis", or "none".
	Backend string `toml:"backend"`

	// Dir is the cache directory for the file backend.
	// Defaults to $XDG_CACHE_HOME/kintree or ~/.cache/kintree.
	Dir string `toml:"dir"`

	// Redis connection settings, used when Backend is "redis".
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// StoreConfig configures Mongo persistence for named collections.
type StoreConfig struct {
	// URI is the Mongo connection string. Empty disables persistence.
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Cache: CacheConfig{
			Backend:   "file",
			RedisAddr: "localhost:6379",
		},
		Server: ServerConfig{
			Addr: ":8460",
		},
		Store: StoreConfig{
			Database: "kintree",
		},
	}
}

// Load reads configuration from the TOML file at path, layered over the
// defaults. Unknown keys are rejected so typos fail loudly.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("parse %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}

// LoadOrDefault loads the given path, or the standard location when path is
// empty, falling back to defaults when no file exists. An explicit path
// that cannot be read is an error; a missing default file is not.
func LoadOrDefault(path string) (Config, error) {
	if path != "" {
		return Load(path)
	}
	std, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	if _, err := os.Stat(std); err != nil {
		return Default(), nil
	}
	return Load(std)
}

// DefaultPath returns the standard config file location:
// $XDG_CONFIG_HOME/kintree/config.toml or ~/.config/kintree/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "kintree", "config.toml"), nil
}

// CacheDir returns the configured cache directory, or the standard user
// cache location when unset.
func (c CacheConfig) CacheDir() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "kintree"), nil
}
