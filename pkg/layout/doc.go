// Package layout turns a built family tree into screen geometry.
//
// The solver is a contour-based tidy-tree algorithm (Buchheim, Jünger and
// Leipert's linear-time refinement of Walker): every node gets a breadth
// coordinate along the sibling axis and a depth coordinate counting
// generations from the root. Parents center over their children, siblings
// keep a minimum breadth distance, and subtree contours are threaded so
// asymmetric subtrees pack tightly without ever overlapping.
//
// The mapper then transposes (depth, breadth) onto screen axes: generations
// flow horizontally (left-to-right, or mirrored for RTL display) and
// siblings stack vertically. Depth spacing is derived from the viewport
// width divided by the generation count, so a full generational chain always
// fits on screen.
//
// [Compute] is the single engine entry point: it runs hierarchy building,
// sibling ordering, solving, mapping and connection derivation as one pure,
// synchronous call. Recoverable conditions (no root, multiple roots, cycle,
// orphans) come back as diagnostics on the [Result], never as panics or
// errors; only structurally invalid input fails hard.
package layout
