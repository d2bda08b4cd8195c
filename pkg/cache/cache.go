// Package cache provides the memoization layer around the layout engine.
//
// The engine itself is pure and stateless - it recomputes the full layout
// on every call. Re-layout is cheap for realistic family sizes, but callers
// that re-render on every data refresh (the CLI, the HTTP API) memoize
// results keyed on the content hash of the input collection plus the layout
// options. This package supplies that key scheme and pluggable backends:
// file-based for the CLI, Redis for the server, and a null cache for tests
// and one-shot runs.
package cache

import (
	"context"
	"time"
)

// TTLs for the different cached artifact classes.
const (
	// TTLLayout is how long computed layout results stay cached. Input
	// content is part of the key, so stale entries are only ever dead
	// weight, never wrong answers.
	TTLLayout = 24 * time.Hour

	// TTLRender is how long rendered artifacts (SVG, PNG, DOT) stay
	// cached.
	TTLRender = 24 * time.Hour
)

// Cache is a byte-oriented key-value store with expiration.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the cached value and true, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A non-positive ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// LayoutKeyOpts are the option fields that affect layout output and so
// must be part of the cache key.
type LayoutKeyOpts struct {
	ViewportWidth  float64
	SiblingSpacing float64
	BreadthUnit    float64
	Widen          float64
	RTL            bool
}

// RenderKeyOpts are the option fields that affect rendered artifacts.
type RenderKeyOpts struct {
	Format   string
	Detailed bool
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// LayoutKey generates a key for a computed layout, from the content
	// hash of the input collection and the layout options.
	LayoutKey(collectionHash string, opts LayoutKeyOpts) string

	// RenderKey generates a key for a rendered artifact, from the content
	// hash of the layout result and the render options.
	RenderKey(layoutHash string, opts RenderKeyOpts) string
}

// DefaultKeyer is the standard key scheme: a short type prefix plus a
// SHA-256 over the JSON-encoded key components.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// LayoutKey generates a key for a computed layout.
func (k *DefaultKeyer) LayoutKey(collectionHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", collectionHash, opts)
}

// RenderKey generates a key for a rendered artifact.
func (k *DefaultKeyer) RenderKey(layoutHash string, opts RenderKeyOpts) string {
	return hashKey("render", layoutHash, opts)
}
