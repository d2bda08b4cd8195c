package layout

// generationSpacing derives the horizontal distance between generations
// from the viewport width. Dividing by the generation count keeps a full
// generational chain on screen; the widen factor loosens the default fit.
func generationSpacing(viewportWidth, widen float64, generations int) float64 {
	if generations < 1 {
		generations = 1
	}
	return viewportWidth / float64(generations) * widen
}

// mapToScreen transposes the solver's abstract axes onto screen axes:
// depth becomes X (generations flow left-to-right, mirrored for RTL) and
// breadth becomes Y (siblings stack top-to-bottom). Columns are centered
// within their generation slot.
func mapToScreen(p Placement, opts Options, generations int) (x, y float64) {
	spacing := generationSpacing(opts.ViewportWidth, opts.Widen, generations)
	x = (float64(p.Depth) + 0.5) * spacing
	if opts.RTL {
		x = opts.ViewportWidth - x
	}
	y = p.Breadth * opts.BreadthUnit
	return x, y
}

// computeBounds returns the overall extent of the mapped nodes so the
// caller can center or clamp scrolling. An empty slice yields zero bounds.
func computeBounds(nodes []Node) Bounds {
	if len(nodes) == 0 {
		return Bounds{}
	}
	b := Bounds{
		MinX: nodes[0].X, MaxX: nodes[0].X,
		MinY: nodes[0].Y, MaxY: nodes[0].Y,
	}
	for _, n := range nodes[1:] {
		if n.X < b.MinX {
			b.MinX = n.X
		}
		if n.X > b.MaxX {
			b.MaxX = n.X
		}
		if n.Y < b.MinY {
			b.MinY = n.Y
		}
		if n.Y > b.MaxY {
			b.MaxY = n.Y
		}
	}
	return b
}
