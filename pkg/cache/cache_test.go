package cache

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	t.Run("MissOnEmpty", func(t *testing.T) {
		_, hit, err := c.Get(ctx, "absent")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if hit {
			t.Error("hit = true, want miss")
		}
	})

	t.Run("SetGet", func(t *testing.T) {
		want := []byte("layout data")
		if err := c.Set(ctx, "key1", want, time.Hour); err != nil {
			t.Fatalf("Set: %v", err)
		}
		got, hit, err := c.Get(ctx, "key1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !hit {
			t.Fatal("hit = false, want hit")
		}
		if !bytes.Equal(got, want) {
			t.Errorf("Get = %q, want %q", got, want)
		}
	})

	t.Run("Expired", func(t *testing.T) {
		if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
			t.Fatalf("Set: %v", err)
		}
		time.Sleep(time.Millisecond)
		_, hit, err := c.Get(ctx, "short")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if hit {
			t.Error("hit = true, want expired miss")
		}
	})

	t.Run("NoTTLNeverExpires", func(t *testing.T) {
		if err := c.Set(ctx, "forever", []byte("x"), 0); err != nil {
			t.Fatalf("Set: %v", err)
		}
		_, hit, err := c.Get(ctx, "forever")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !hit {
			t.Error("hit = false, want hit for ttl=0 entry")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := c.Set(ctx, "doomed", []byte("x"), time.Hour); err != nil {
			t.Fatalf("Set: %v", err)
		}
		if err := c.Delete(ctx, "doomed"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		_, hit, _ := c.Get(ctx, "doomed")
		if hit {
			t.Error("hit after delete")
		}
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		if err := c.Delete(ctx, "never-existed"); err != nil {
			t.Errorf("Delete missing key: %v", err)
		}
	})

	t.Run("ShardedOnDisk", func(t *testing.T) {
		if err := c.Set(ctx, "sharded", []byte("x"), time.Hour); err != nil {
			t.Fatalf("Set: %v", err)
		}
		sum := Hash([]byte("sharded"))
		path := filepath.Join(dir, sum[:2], sum[2:]+".json")
		if _, err := os.Stat(path); err != nil {
			t.Errorf("entry not at sharded path %s: %v", path, err)
		}
	})
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()

	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	_, hit, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("null cache returned a hit")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	opts := LayoutKeyOpts{ViewportWidth: 1080, SiblingSpacing: 1}

	t.Run("Deterministic", func(t *testing.T) {
		if k.LayoutKey("hash1", opts) != k.LayoutKey("hash1", opts) {
			t.Error("identical inputs produced different keys")
		}
	})

	t.Run("ContentSensitive", func(t *testing.T) {
		if k.LayoutKey("hash1", opts) == k.LayoutKey("hash2", opts) {
			t.Error("different collection hashes produced the same key")
		}
	})

	t.Run("OptionSensitive", func(t *testing.T) {
		other := opts
		other.RTL = true
		if k.LayoutKey("hash1", opts) == k.LayoutKey("hash1", other) {
			t.Error("different options produced the same key")
		}
	})

	t.Run("StagePrefixes", func(t *testing.T) {
		lk := k.LayoutKey("h", opts)
		rk := k.RenderKey("h", RenderKeyOpts{Format: "svg"})
		if !strings.HasPrefix(lk, "layout:") {
			t.Errorf("layout key %q missing prefix", lk)
		}
		if !strings.HasPrefix(rk, "render:") {
			t.Errorf("render key %q missing prefix", rk)
		}
	})

	t.Run("RenderFormatSensitive", func(t *testing.T) {
		svg := k.RenderKey("h", RenderKeyOpts{Format: "svg"})
		png := k.RenderKey("h", RenderKeyOpts{Format: "png"})
		if svg == png {
			t.Error("different formats produced the same key")
		}
	})
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "family:abc:")
	opts := LayoutKeyOpts{ViewportWidth: 1080}

	key := scoped.LayoutKey("h", opts)
	if !strings.HasPrefix(key, "family:abc:") {
		t.Errorf("key %q missing scope prefix", key)
	}
	if strings.TrimPrefix(key, "family:abc:") != inner.LayoutKey("h", opts) {
		t.Error("scoped key does not wrap the inner key")
	}

	// Nil inner falls back to the default keyer.
	fallback := NewScopedKeyer(nil, "p:")
	if !strings.HasPrefix(fallback.RenderKey("h", RenderKeyOpts{Format: "dot"}), "p:render:") {
		t.Error("nil inner did not fall back to DefaultKeyer")
	}
}

func TestHash(t *testing.T) {
	a := Hash([]byte("data"))
	b := Hash([]byte("data"))
	c := Hash([]byte("other"))
	if a != b {
		t.Error("identical input hashed differently")
	}
	if a == c {
		t.Error("different input hashed identically")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}
