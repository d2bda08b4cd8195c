package layout

import (
	"github.com/kintreeapp/kintree/pkg/tree"
)

// Placement is the solver's abstract coordinate pair for one person:
// breadth along the sibling axis, depth counting generations from the root.
type Placement struct {
	Breadth float64
	Depth   int
}

// Solve assigns every reachable node a non-overlapping (breadth, depth)
// pair using the Buchheim-Jünger-Leipert tidy-tree algorithm. Sibling
// centers end up at least minSpacing apart, parents center over the breadth
// extent of their children, and threaded contours keep asymmetric subtrees
// from colliding. The result is normalized so the smallest breadth is 0.
//
// Solve runs in linear time in the number of nodes and is deterministic for
// identical input. Given a validly built tree it cannot fail.
func Solve(t *tree.Tree, minSpacing float64) map[string]Placement {
	if t == nil || t.Root == nil {
		return map[string]Placement{}
	}
	if minSpacing <= 0 {
		minSpacing = DefaultSiblingSpacing
	}

	root := wrap(t.Root, nil, 0)
	firstWalk(root, minSpacing)

	placements := make(map[string]Placement, t.Size())
	minBreadth := secondWalk(root, -root.prelim, 0, placements)

	// Shift so the leftmost contour sits at breadth 0.
	if minBreadth != 0 {
		for id, p := range placements {
			p.Breadth -= minBreadth
			placements[id] = p
		}
	}
	return placements
}

// walkNode decorates a tree node with the solver's working fields. The
// wrapped forest lives only for the duration of one Solve call.
type walkNode struct {
	src      *tree.Node
	parent   *walkNode
	children []*walkNode
	number   int // index among siblings, 0-based

	prelim   float64
	mod      float64
	shift    float64
	change   float64
	thread   *walkNode
	ancestor *walkNode
}

func wrap(n *tree.Node, parent *walkNode, number int) *walkNode {
	w := &walkNode{src: n, parent: parent, number: number}
	w.ancestor = w
	w.children = make([]*walkNode, len(n.Children))
	for i, c := range n.Children {
		w.children[i] = wrap(c, w, i)
	}
	return w
}

func (w *walkNode) leaf() bool { return len(w.children) == 0 }

func (w *walkNode) leftSibling() *walkNode {
	if w.parent == nil || w.number == 0 {
		return nil
	}
	return w.parent.children[w.number-1]
}

func (w *walkNode) leftmostSibling() *walkNode {
	if w.parent == nil {
		return nil
	}
	return w.parent.children[0]
}

// nextLeft follows the left contour: first child, or the thread.
func (w *walkNode) nextLeft() *walkNode {
	if !w.leaf() {
		return w.children[0]
	}
	return w.thread
}

// nextRight follows the right contour: last child, or the thread.
func (w *walkNode) nextRight() *walkNode {
	if !w.leaf() {
		return w.children[len(w.children)-1]
	}
	return w.thread
}

// firstWalk computes preliminary breadth coordinates bottom-up.
func firstWalk(v *walkNode, distance float64) {
	if v.leaf() {
		if ls := v.leftSibling(); ls != nil {
			v.prelim = ls.prelim + distance
		}
		return
	}

	defaultAncestor := v.children[0]
	for _, w := range v.children {
		firstWalk(w, distance)
		defaultAncestor = apportion(w, defaultAncestor, distance)
	}
	executeShifts(v)

	first := v.children[0]
	last := v.children[len(v.children)-1]
	midpoint := (first.prelim + last.prelim) / 2

	if ls := v.leftSibling(); ls != nil {
		v.prelim = ls.prelim + distance
		v.mod = v.prelim - midpoint
	} else {
		v.prelim = midpoint
	}
}

// apportion resolves conflicts between the subtree rooted at v and its
// left siblings by walking the facing contours in lockstep and shifting
// v's subtree right whenever the contours come too close.
func apportion(v, defaultAncestor *walkNode, distance float64) *walkNode {
	w := v.leftSibling()
	if w == nil {
		return defaultAncestor
	}

	vip, vop := v, v
	vim := w
	vom := v.leftmostSibling()

	sip, sop := vip.mod, vop.mod
	sim, som := vim.mod, vom.mod

	for vim.nextRight() != nil && vip.nextLeft() != nil {
		vim = vim.nextRight()
		vip = vip.nextLeft()
		vom = vom.nextLeft()
		vop = vop.nextRight()
		vop.ancestor = v

		shift := (vim.prelim + sim) - (vip.prelim + sip) + distance
		if shift > 0 {
			moveSubtree(ancestorOf(vim, v, defaultAncestor), v, shift)
			sip += shift
			sop += shift
		}

		sim += vim.mod
		sip += vip.mod
		som += vom.mod
		sop += vop.mod
	}

	if vim.nextRight() != nil && vop.nextRight() == nil {
		vop.thread = vim.nextRight()
		vop.mod += sim - sop
	}
	if vip.nextLeft() != nil && vom.nextLeft() == nil {
		vom.thread = vip.nextLeft()
		vom.mod += sip - som
		defaultAncestor = v
	}
	return defaultAncestor
}

// moveSubtree shifts wp's subtree right by shift, spreading the adjustment
// across the intermediate siblings via the change/shift accumulators.
func moveSubtree(wm, wp *walkNode, shift float64) {
	subtrees := float64(wp.number - wm.number)
	wp.change -= shift / subtrees
	wp.shift += shift
	wm.change += shift / subtrees
	wp.prelim += shift
	wp.mod += shift
}

// executeShifts applies the accumulated shifts to v's children right to left.
func executeShifts(v *walkNode) {
	var shift, change float64
	for i := len(v.children) - 1; i >= 0; i-- {
		w := v.children[i]
		w.prelim += shift
		w.mod += shift
		change += w.change
		shift += w.shift + change
	}
}

// ancestorOf returns vim's recorded ancestor when it is a sibling of v,
// otherwise the current default ancestor.
func ancestorOf(vim, v, defaultAncestor *walkNode) *walkNode {
	if vim.ancestor.parent == v.parent {
		return vim.ancestor
	}
	return defaultAncestor
}

// secondWalk finalizes breadth coordinates top-down by accumulating
// modifiers, records placements, and returns the minimum breadth seen.
func secondWalk(v *walkNode, m float64, depth int, out map[string]Placement) float64 {
	breadth := v.prelim + m
	out[v.src.Record.ID] = Placement{Breadth: breadth, Depth: depth}

	min := breadth
	for _, w := range v.children {
		if childMin := secondWalk(w, m+v.mod, depth+1, out); childMin < min {
			min = childMin
		}
	}
	return min
}
