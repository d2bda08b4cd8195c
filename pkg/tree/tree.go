package tree

import (
	"errors"
	"fmt"

	"github.com/kintreeapp/kintree/pkg/person"
)

var (
	// ErrInvalidRecord is returned by [Build] when a record fails basic
	// validation (empty or malformed ID). This indicates a programming
	// error upstream, not a recoverable data condition.
	ErrInvalidRecord = errors.New("invalid person record")

	// ErrDuplicateID is returned by [Build] when two records share an ID.
	// Person IDs must be unique across the collection.
	ErrDuplicateID = errors.New("duplicate person ID")

	// ErrNoRoot is returned by [Build] when no record qualifies as a root
	// candidate (a record with neither parent reference present).
	ErrNoRoot = errors.New("no root candidate found")

	// ErrMultipleRoots is returned by [Build] when more than one root
	// candidate exists. Multi-root forests are not supported; failing
	// loudly beats silently keeping the last candidate seen.
	ErrMultipleRoots = errors.New("multiple root candidates found")

	// ErrCyclicReference is returned by [Build] when following parent
	// references revisits a record (including a record naming itself as
	// its own parent). Cycle detection runs before attachment, so Build
	// always terminates on malformed input.
	ErrCyclicReference = errors.New("cyclic parent reference detected")
)

// Node is one person in the built hierarchy. A node owns its ordered
// children; it does not own or point to its parent. Parent lookups go
// through [Tree.Parent], which consults the construction index.
type Node struct {
	Record   person.Record
	Children []*Node
}

// ExclusionReason classifies why a record was left out of the tree.
type ExclusionReason string

const (
	// ReasonUnresolvedParent marks a record whose declared parent IDs do
	// not match any record in the input.
	ReasonUnresolvedParent ExclusionReason = "unresolved_parent"

	// ReasonUnreachable marks a record whose parent resolves but whose
	// ancestor chain never reaches the root (a descendant of an orphan).
	ReasonUnreachable ExclusionReason = "unreachable"
)

// Exclusion reports one record excluded from the tree.
type Exclusion struct {
	ID       string
	ParentID string // the declared parent reference that failed to resolve, if any
	Reason   ExclusionReason
}

// Tree is a single rooted hierarchy over person records.
//
// The lookup index is private to one Build invocation - there is no shared
// or module-level state, so concurrent Build calls cannot interfere. The
// index is lookup-only: traversal always goes root to leaves through the
// Children slices.
type Tree struct {
	Root     *Node
	Excluded []Exclusion

	index  map[string]*Node
	parent map[string]string // child ID -> resolved parent ID
}

// Build constructs a rooted tree from a flat record collection.
//
// Each non-root record attaches as a child of the node resolved by its
// father reference, falling back to the mother reference when the father is
// absent or does not resolve. A record with neither reference present is a
// root candidate; exactly one must exist.
//
// Children keep input order at this stage - call [Tree.SortSiblings] before
// layout. Records excluded by the orphan policy appear in Tree.Excluded in
// input order.
//
// Build returns ErrNoRoot, ErrMultipleRoots, or ErrCyclicReference for the
// corresponding recoverable conditions, and ErrInvalidRecord or
// ErrDuplicateID for input that should never have reached the engine.
func Build(records []person.Record) (*Tree, error) {
	index := make(map[string]*Node, len(records))
	nodes := make([]*Node, len(records))

	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		if _, exists := index[rec.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, rec.ID)
		}
		n := &Node{Record: rec}
		index[rec.ID] = n
		nodes[i] = n
	}

	t := &Tree{
		index:  index,
		parent: make(map[string]string, len(records)),
	}

	// Resolve the effective parent of every record before attaching
	// anything, so root resolution and cycle detection see the whole
	// picture at once.
	resolved := make(map[string]*Node, len(records))
	var root *Node
	for _, n := range nodes {
		rec := n.Record
		p, declared := resolveParent(rec, index)
		switch {
		case p != nil:
			resolved[rec.ID] = p
			t.parent[rec.ID] = p.Record.ID
		case declared != "":
			t.Excluded = append(t.Excluded, Exclusion{
				ID:       rec.ID,
				ParentID: declared,
				Reason:   ReasonUnresolvedParent,
			})
		default:
			if root != nil {
				return nil, fmt.Errorf("%w: %q and %q", ErrMultipleRoots, root.Record.ID, rec.ID)
			}
			root = n
		}
	}

	if err := detectCycles(nodes, resolved); err != nil {
		return nil, err
	}
	if root == nil {
		return nil, ErrNoRoot
	}
	t.Root = root

	for _, n := range nodes {
		if p, ok := resolved[n.Record.ID]; ok {
			p.Children = append(p.Children, n)
		}
	}

	t.pruneUnreachable(nodes)
	return t, nil
}

// resolveParent returns the parent node for rec, or nil with the first
// declared-but-dangling reference when nothing resolves. Father wins over
// mother whenever it resolves.
func resolveParent(rec person.Record, index map[string]*Node) (*Node, string) {
	declared := ""
	if rec.FatherID != nil && *rec.FatherID != "" {
		if p, ok := index[*rec.FatherID]; ok {
			return p, ""
		}
		declared = *rec.FatherID
	}
	if rec.MotherID != nil && *rec.MotherID != "" {
		if p, ok := index[*rec.MotherID]; ok {
			return p, ""
		}
		if declared == "" {
			declared = *rec.MotherID
		}
	}
	return nil, declared
}

// detectCycles walks resolved parent links with white/gray/black coloring.
// Parent chains are simple paths, so a gray hit always means a cycle.
func detectCycles(nodes []*Node, resolved map[string]*Node) error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(nodes))
	for _, n := range nodes {
		if color[n.Record.ID] != white {
			continue
		}
		for cur := n; cur != nil; {
			id := cur.Record.ID
			switch color[id] {
			case gray:
				return fmt.Errorf("%w: involving %q", ErrCyclicReference, id)
			case black:
				cur = nil
				continue
			}
			color[id] = gray
			cur = resolved[id]
		}
		// Re-walk the chain to blacken it.
		for cur := n; cur != nil && color[cur.Record.ID] == gray; {
			color[cur.Record.ID] = black
			cur = resolved[cur.Record.ID]
		}
	}
	return nil
}

// pruneUnreachable drops subtrees hanging off excluded records and reports
// their members. Orphans have no inbound edge from the root, so anything
// below them can never render; reporting beats dropping without trace.
func (t *Tree) pruneUnreachable(nodes []*Node) {
	reachable := make(map[string]bool, len(t.index))
	t.Walk(func(n *Node, _ int) {
		reachable[n.Record.ID] = true
	})

	excluded := make(map[string]bool, len(t.Excluded))
	for _, e := range t.Excluded {
		excluded[e.ID] = true
	}

	for _, n := range nodes {
		id := n.Record.ID
		if reachable[id] || excluded[id] {
			continue
		}
		t.Excluded = append(t.Excluded, Exclusion{
			ID:       id,
			ParentID: t.parent[id],
			Reason:   ReasonUnreachable,
		})
	}
}

// Lookup returns the node for the given person ID and true, or nil and
// false when the ID is unknown. Excluded records still resolve - only
// traversal skips them.
func (t *Tree) Lookup(id string) (*Node, bool) {
	n, ok := t.index[id]
	return n, ok
}

// Parent returns the resolved parent ID of a node, or "" for the root and
// unknown IDs. This is the weak, lookup-only view of the parent link.
func (t *Tree) Parent(id string) string { return t.parent[id] }

// Size returns the number of nodes reachable from the root.
func (t *Tree) Size() int {
	count := 0
	t.Walk(func(*Node, int) { count++ })
	return count
}

// Depth returns the generation count: the number of levels from the root to
// the deepest leaf. An empty tree has depth 0, a lone root has depth 1.
func (t *Tree) Depth() int {
	max := 0
	t.Walk(func(_ *Node, depth int) {
		if depth+1 > max {
			max = depth + 1
		}
	})
	return max
}

// Walk visits every reachable node in preorder, passing its generation
// index (0 for the root). The walk is iterative; tree shape never causes
// stack growth proportional to input size beyond the explicit stack.
func (t *Tree) Walk(fn func(n *Node, depth int)) {
	if t.Root == nil {
		return
	}
	type frame struct {
		node  *Node
		depth int
	}
	stack := []frame{{t.Root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(f.node, f.depth)
		// Push children in reverse so they pop in display order.
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.node.Children[i], f.depth + 1})
		}
	}
}
