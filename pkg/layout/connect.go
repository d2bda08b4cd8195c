package layout

import (
	"github.com/kintreeapp/kintree/pkg/tree"
)

// deriveConnections regroups laid-out nodes by resolved parent and emits
// one connection per parent with at least one child in the layout. The root
// produces no inbound edge. Children appear in display order, and every
// anchor carries the photo flag the renderer needs to pick a connector
// style.
func deriveConnections(t *tree.Tree, nodes []Node) []Connection {
	byID := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	var conns []Connection
	// Walk in display order so connections come out parent-first and
	// identical input always yields identical output.
	t.Walk(func(n *tree.Node, _ int) {
		if len(n.Children) == 0 {
			return
		}
		parent, ok := byID[n.Record.ID]
		if !ok {
			return
		}
		children := make([]Anchor, 0, len(n.Children))
		for _, c := range n.Children {
			child, ok := byID[c.Record.ID]
			if !ok {
				continue
			}
			children = append(children, anchorOf(child))
		}
		if len(children) == 0 {
			return
		}
		conns = append(conns, Connection{
			Parent:   anchorOf(parent),
			Children: children,
		})
	})
	return conns
}

func anchorOf(n Node) Anchor {
	return Anchor{
		ID:       n.ID,
		X:        n.X,
		Y:        n.Y,
		HasPhoto: n.HasPhoto(),
	}
}
