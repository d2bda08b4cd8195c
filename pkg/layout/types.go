package layout

import (
	"github.com/kintreeapp/kintree/pkg/person"
)

// Default geometry tuning. Breadth units are abstract sibling slots; the
// mapper converts them to pixels.
const (
	DefaultViewportWidth  = 1080.0
	DefaultSiblingSpacing = 1.0
	DefaultBreadthUnit    = 120.0
	DefaultWiden          = 1.15
)

// Options tunes one layout computation.
type Options struct {
	// ViewportWidth is the available horizontal extent in pixels.
	// Generation spacing is derived from it so every generation fits.
	ViewportWidth float64 `json:"viewport_width" bson:"viewport_width"`

	// SiblingSpacing is the minimum breadth distance between sibling
	// centers, in breadth units.
	SiblingSpacing float64 `json:"sibling_spacing,omitempty" bson:"sibling_spacing,omitempty"`

	// BreadthUnit converts breadth units to vertical pixels.
	BreadthUnit float64 `json:"breadth_unit,omitempty" bson:"breadth_unit,omitempty"`

	// Widen multiplies the derived generation spacing.
	Widen float64 `json:"widen,omitempty" bson:"widen,omitempty"`

	// RTL flips sibling ordering and mirrors the generation axis for
	// right-to-left display conventions.
	RTL bool `json:"rtl,omitempty" bson:"rtl,omitempty"`
}

// withDefaults fills zero fields with the package defaults.
func (o Options) withDefaults() Options {
	if o.ViewportWidth == 0 {
		o.ViewportWidth = DefaultViewportWidth
	}
	if o.SiblingSpacing == 0 {
		o.SiblingSpacing = DefaultSiblingSpacing
	}
	if o.BreadthUnit == 0 {
		o.BreadthUnit = DefaultBreadthUnit
	}
	if o.Widen == 0 {
		o.Widen = DefaultWiden
	}
	return o
}

// Node is one laid-out person: the original record plus its generation
// index and final screen position.
type Node struct {
	person.Record `bson:",inline"`

	Depth int     `json:"depth" bson:"depth"`
	X     float64 `json:"x" bson:"x"`
	Y     float64 `json:"y" bson:"y"`
}

// Anchor is one connector endpoint: a person's position plus the
// passthrough flag the renderer uses to pick a connector style.
type Anchor struct {
	ID       string  `json:"id" bson:"id"`
	X        float64 `json:"x" bson:"x"`
	Y        float64 `json:"y" bson:"y"`
	HasPhoto bool    `json:"has_photo,omitempty" bson:"has_photo,omitempty"`
}

// Connection is one renderable parent→children edge record. There is
// exactly one per parent that has at least one laid-out child; children
// appear in display order.
type Connection struct {
	Parent   Anchor   `json:"parent" bson:"parent"`
	Children []Anchor `json:"children" bson:"children"`
}

// Bounds is the overall extent of the laid-out tree in screen pixels, used
// by callers to center or clamp scrolling.
type Bounds struct {
	MinX float64 `json:"min_x" bson:"min_x"`
	MinY float64 `json:"min_y" bson:"min_y"`
	MaxX float64 `json:"max_x" bson:"max_x"`
	MaxY float64 `json:"max_y" bson:"max_y"`
}

// Diagnostic codes for recoverable conditions.
const (
	CodeNoRoot        = "NO_ROOT_FOUND"
	CodeMultipleRoots = "MULTIPLE_ROOTS_FOUND"
	CodeCycle         = "CYCLIC_REFERENCE"
	CodeOrphan        = "ORPHANED_RECORD"
	CodeUnreachable   = "UNREACHABLE_RECORD"
)

// Diagnostic describes one excluded record or a failed root resolution.
// Diagnostics travel with the result so the UI can show an empty state with
// an explanation instead of crashing the rendering layer.
type Diagnostic struct {
	Code     string `json:"code" bson:"code"`
	PersonID string `json:"person_id,omitempty" bson:"person_id,omitempty"`
	Detail   string `json:"detail,omitempty" bson:"detail,omitempty"`
}

// Result is the full output of one layout computation.
//
// Nodes holds one entry per person reachable from the root, Connections one
// entry per parent with laid-out children. When root resolution or cycle
// validation fails, both are empty and Diagnostics carries the condition.
type Result struct {
	Nodes       []Node       `json:"nodes" bson:"nodes"`
	Connections []Connection `json:"connections" bson:"connections"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty" bson:"diagnostics,omitempty"`
	Bounds      Bounds       `json:"bounds" bson:"bounds"`
}
