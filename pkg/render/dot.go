// Package render previews laid-out family trees outside the mobile
// renderer. It emits Graphviz DOT from a layout result (positions pinned,
// connector edges grouped per parent) and rasterizes to SVG or PNG via
// go-graphviz.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/kintreeapp/kintree/pkg/layout"
)

// Options configures tree rendering.
type Options struct {
	// Detailed includes depth and sibling order in node labels.
	// When false, only the display name (or ID) is shown.
	Detailed bool
}

// ToDOT converts a layout result to Graphviz DOT. Node positions are pinned
// to the engine's computed coordinates so Graphviz draws exactly the layout
// the mobile app would, and connector edges follow the derived parent →
// children grouping rather than raw record references.
//
// Persons with a photo attribute render with a doubled outline, matching
// the app's photo-endpoint connector style.
func ToDOT(r layout.Result, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph family {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  splines=ortho;\n")
	buf.WriteString("\n")

	for _, n := range r.Nodes {
		attrs := nodeAttrs(n, opts.Detailed)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, c := range r.Connections {
		for _, child := range c.Children {
			fmt.Fprintf(&buf, "  %q -> %q;\n", c.Parent.ID, child.ID)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n layout.Node, detailed bool) []string {
	label := n.ID
	if name, ok := n.Attr("name").(string); ok && name != "" {
		label = name
	}
	if detailed {
		label = fmt.Sprintf("%s\ndepth: %d", label, n.Depth)
		if n.SiblingOrder != nil {
			label = fmt.Sprintf("%s\norder: %d", label, *n.SiblingOrder)
		}
	}

	attrs := []string{
		fmt.Sprintf("label=%q", label),
		// Graphviz pos units are points; pin with "!" so neato keeps
		// the engine's geometry.
		fmt.Sprintf(`pos="%.2f,%.2f!"`, n.X, -n.Y),
	}
	if n.HasPhoto() {
		attrs = append(attrs, "peripheries=2")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG)
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv := graphviz.New()
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
