package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Cache.Backend != "file" {
		t.Errorf("cache backend = %q, want file", cfg.Cache.Backend)
	}
	if cfg.Server.Addr != ":8460" {
		t.Errorf("server addr = %q, want :8460", cfg.Server.Addr)
	}
	if cfg.Store.Database != "kintree" {
		t.Errorf("store database = %q, want kintree", cfg.Store.Database)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[layout]
viewport_width = 1440.0
rtl = true

[cache]
backend = "redis"
redis_addr = "redis.internal:6379"

[server]
addr = ":9000"

[store]
uri = "mongodb://localhost:27017"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Layout.ViewportWidth != 1440 {
		t.Errorf("viewport_width = %g, want 1440", cfg.Layout.ViewportWidth)
	}
	if !cfg.Layout.RTL {
		t.Error("rtl = false, want true")
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "redis.internal:6379" {
		t.Errorf("cache = %+v, want redis backend", cfg.Cache)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("addr = %q, want :9000", cfg.Server.Addr)
	}
	// Unset fields keep their defaults.
	if cfg.Store.Database != "kintree" {
		t.Errorf("database = %q, want default kintree", cfg.Store.Database)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
[layout]
viewport_widht = 1440.0
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("Load accepted a misspelled key")
	}
	if !strings.Contains(err.Error(), "unknown key") {
		t.Errorf("error = %v, want unknown key", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("Load of missing file succeeded")
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("ExplicitPath", func(t *testing.T) {
		path := writeConfig(t, `[server]`+"\n"+`addr = ":7777"`)
		cfg, err := LoadOrDefault(path)
		if err != nil {
			t.Fatalf("LoadOrDefault: %v", err)
		}
		if cfg.Server.Addr != ":7777" {
			t.Errorf("addr = %q, want :7777", cfg.Server.Addr)
		}
	})

	t.Run("ExplicitMissingPathFails", func(t *testing.T) {
		if _, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Fatal("explicit missing path succeeded")
		}
	})
}

func TestCacheDir(t *testing.T) {
	cfg := CacheConfig{Dir: "/tmp/custom-cache"}
	dir, err := cfg.CacheDir()
	if err != nil {
		t.Fatalf("CacheDir: %v", err)
	}
	if dir != "/tmp/custom-cache" {
		t.Errorf("dir = %q, want configured value", dir)
	}
}
