package layout

import (
	"errors"
	"fmt"

	kerrors "github.com/kintreeapp/kintree/pkg/errors"
	"github.com/kintreeapp/kintree/pkg/person"
	"github.com/kintreeapp/kintree/pkg/tree"
)

// Compute runs the whole engine on one record collection: hierarchy
// building, sibling ordering, tidy-tree solving, screen mapping and
// connection derivation, as a single pure call. The caller re-invokes it
// whenever the upstream collection changes; nothing persists between calls
// and memoization is the caller's concern.
//
// Recoverable conditions never return an error:
//   - empty input yields an empty Result with no diagnostics
//   - zero or multiple root candidates and cyclic parent references yield
//     an empty Result with a single diagnostic naming the condition
//   - orphaned or unreachable records yield a partial Result plus one
//     diagnostic per excluded record
//
// Only structurally invalid input (malformed or duplicate IDs) fails hard,
// with an INVALID_INPUT_SHAPE error: that indicates a programming error
// upstream, not bad family data.
func Compute(records []person.Record, opts Options) (Result, error) {
	opts = opts.withDefaults()

	result := Result{
		Nodes:       []Node{},
		Connections: []Connection{},
	}
	if len(records) == 0 {
		return result, nil
	}

	t, err := tree.Build(records)
	if err != nil {
		if diag, ok := recoverableDiagnostic(err); ok {
			result.Diagnostics = append(result.Diagnostics, diag)
			return result, nil
		}
		return Result{}, kerrors.Wrap(kerrors.ErrCodeInvalidInputShape, err, "build hierarchy")
	}

	for _, e := range t.Excluded {
		result.Diagnostics = append(result.Diagnostics, exclusionDiagnostic(e))
	}

	t.SortSiblings(opts.RTL)

	placements := Solve(t, opts.SiblingSpacing)
	generations := t.Depth()

	result.Nodes = make([]Node, 0, t.Size())
	t.Walk(func(n *tree.Node, _ int) {
		p := placements[n.Record.ID]
		x, y := mapToScreen(p, opts, generations)
		result.Nodes = append(result.Nodes, Node{
			Record: n.Record,
			Depth:  p.Depth,
			X:      x,
			Y:      y,
		})
	})

	result.Connections = deriveConnections(t, result.Nodes)
	result.Bounds = computeBounds(result.Nodes)
	return result, nil
}

// recoverableDiagnostic maps tree build failures onto result diagnostics.
// Invalid-record and duplicate-ID failures are not recoverable and return
// false.
func recoverableDiagnostic(err error) (Diagnostic, bool) {
	switch {
	case errors.Is(err, tree.ErrNoRoot):
		return Diagnostic{Code: CodeNoRoot, Detail: "no record without parent references"}, true
	case errors.Is(err, tree.ErrMultipleRoots):
		return Diagnostic{Code: CodeMultipleRoots, Detail: err.Error()}, true
	case errors.Is(err, tree.ErrCyclicReference):
		return Diagnostic{Code: CodeCycle, Detail: err.Error()}, true
	}
	return Diagnostic{}, false
}

func exclusionDiagnostic(e tree.Exclusion) Diagnostic {
	switch e.Reason {
	case tree.ReasonUnresolvedParent:
		return Diagnostic{
			Code:     CodeOrphan,
			PersonID: e.ID,
			Detail:   fmt.Sprintf("parent %q not found in input", e.ParentID),
		}
	default:
		return Diagnostic{
			Code:     CodeUnreachable,
			PersonID: e.ID,
			Detail:   "ancestor chain does not reach the root",
		}
	}
}
