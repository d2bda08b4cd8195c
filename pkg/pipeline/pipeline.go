// Package pipeline wraps the pure layout engine with the concerns the
// engine deliberately refuses to own: memoization, logging, timing, and
// artifact rendering.
//
// # Architecture
//
// The engine ([layout.Compute]) rebuilds everything from scratch on every
// call. The pipeline Runner is the "caller" that the engine contract hands
// memoization to: it keys cached results on the content hash of the person
// collection plus the layout options, so identical input never recomputes.
//
// The stages are:
//
//  1. Layout: hierarchy build → sibling order → tidy solve → map → connect
//  2. Render: optional DOT/SVG/PNG artifacts from the layout result
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    ViewportWidth: 1080,
//	    Formats:       []string{"json", "svg"},
//	}
//	result, err := runner.Execute(ctx, records, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kintreeapp/kintree/pkg/cache"
	"github.com/kintreeapp/kintree/pkg/layout"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	ViewportWidth  float64 `json:"viewport_width,omitempty"`
	SiblingSpacing float64 `json:"sibling_spacing,omitempty"`
	BreadthUnit    float64 `json:"breadth_unit,omitempty"`
	Widen          float64 `json:"widen,omitempty"`
	RTL            bool    `json:"rtl,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Refresh bypasses the cache for this run.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout is the computed layout with nodes, connections, and
	// diagnostics.
	Layout layout.Result

	// CollectionHash is the content hash of the input collection.
	CollectionHash string

	// Artifacts contains rendered outputs keyed by format. The "json"
	// format is the serialized layout itself.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	RecordCount int
	NodeCount   int
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout result came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: json, dot, svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks option fields and applies defaults.
// This method is idempotent - calling it multiple times has the same
// effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.ViewportWidth < 0 {
		return fmt.Errorf("viewport_width must be non-negative")
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// LayoutOptions converts pipeline options to engine options.
// Defaults for zero fields are applied inside the engine.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		ViewportWidth:  o.ViewportWidth,
		SiblingSpacing: o.SiblingSpacing,
		BreadthUnit:    o.BreadthUnit,
		Widen:          o.Widen,
		RTL:            o.RTL,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		ViewportWidth:  o.ViewportWidth,
		SiblingSpacing: o.SiblingSpacing,
		BreadthUnit:    o.BreadthUnit,
		Widen:          o.Widen,
		RTL:            o.RTL,
	}
}

// RenderKeyOpts returns cache key options for artifact rendering.
func (o *Options) RenderKeyOpts(format string) cache.RenderKeyOpts {
	return cache.RenderKeyOpts{
		Format:   format,
		Detailed: o.Detailed,
	}
}
