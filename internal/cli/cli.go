// Package cli implements the kintree command-line interface.
//
// This package provides commands for computing family-tree layouts from
// person collections, validating input data, browsing trees interactively,
// serving the HTTP API, and managing the layout cache. The CLI is built
// using cobra and supports verbose logging via the charmbracelet/log
// library.
//
// # Commands
//
// The main commands are:
//   - layout: Compute a layout from a person collection and write artifacts
//   - render: Turn a computed layout into DOT, SVG, or PNG previews
//   - validate: Check a person collection and report diagnostics
//   - tree: Print or interactively browse the resolved hierarchy
//   - serve: Start the HTTP layout API
//   - cache: Manage the layout cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/kintreeapp/kintree/pkg/cache"
	"github.com/kintreeapp/kintree/pkg/config"
	"github.com/kintreeapp/kintree/pkg/pipeline"
)

// newCache builds the cache backend selected by the configuration.
// An unknown backend is an error rather than a silent fallback.
func newCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		return cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case "file", "":
		dir, err := cfg.CacheDir()
		if err != nil {
			return nil, fmt.Errorf("resolve cache dir: %w", err)
		}
		return cache.NewFileCache(dir)
	default:
		return nil, fmt.Errorf("unknown cache backend: %q (must be 'file', 'redis', or 'none')", cfg.Backend)
	}
}

// newRunner builds a pipeline runner from the configuration.
// With noCache set, memoization is disabled regardless of configuration.
func newRunner(ctx context.Context, cfg config.Config, logger *log.Logger, noCache bool) (*pipeline.Runner, error) {
	if noCache {
		return pipeline.NewRunner(cache.NewNullCache(), nil, logger), nil
	}
	c, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("initialize cache: %w", err)
	}
	return pipeline.NewRunner(c, nil, logger), nil
}

// openOutput opens path for writing, or returns stdout when path is "-".
func openOutput(path string) (*os.File, error) {
	if path == "-" {
		return os.Stdout, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}
