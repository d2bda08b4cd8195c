package tree

import "slices"

// SortSiblings orders every node's children for display, root to leaves.
//
// Children sort by their explicit sibling order, ascending for left-to-right
// display and descending when rtl is true. Records without an explicit order
// always sort after ordered ones, and ties keep input order (the sort is
// stable). The layout solver reads children in slice order, so this must run
// before solving.
func (t *Tree) SortSiblings(rtl bool) {
	t.Walk(func(n *Node, _ int) {
		slices.SortStableFunc(n.Children, func(a, b *Node) int {
			return compareSiblings(a.Record.SiblingOrder, b.Record.SiblingOrder, rtl)
		})
	})
}

// compareSiblings orders two sibling positions. Nil sorts last regardless
// of direction; rtl only flips comparisons between explicit values.
func compareSiblings(a, b *int, rtl bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	cmp := 0
	switch {
	case *a < *b:
		cmp = -1
	case *a > *b:
		cmp = 1
	}
	if rtl {
		cmp = -cmp
	}
	return cmp
}
