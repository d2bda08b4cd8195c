package layout

import (
	"bytes"
	"math"
	"testing"

	kerrors "github.com/kintreeapp/kintree/pkg/errors"
	"github.com/kintreeapp/kintree/pkg/person"
)

// family is the shared fixture: a root couple's line over four generations.
func family() []person.Record {
	return []person.Record{
		rec("grandpa", ""),
		rec("dad", "grandpa"),
		rec("uncle", "grandpa"),
		rec("me", "dad"),
		rec("sis", "dad"),
		rec("cousin", "uncle"),
		rec("kid", "me"),
	}
}

func nodeByID(res Result, id string) (Node, bool) {
	for _, n := range res.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

func TestComputeEmptyInput(t *testing.T) {
	res, err := Compute(nil, Options{})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(res.Nodes) != 0 || len(res.Connections) != 0 || len(res.Diagnostics) != 0 {
		t.Errorf("empty input: nodes=%d connections=%d diagnostics=%d, want all 0",
			len(res.Nodes), len(res.Connections), len(res.Diagnostics))
	}
	if res.Bounds != (Bounds{}) {
		t.Errorf("bounds = %+v, want zero", res.Bounds)
	}
}

func TestComputeFamily(t *testing.T) {
	res, err := Compute(family(), Options{})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if got := len(res.Nodes); got != 7 {
		t.Fatalf("nodes = %d, want 7", got)
	}
	if got := len(res.Diagnostics); got != 0 {
		t.Fatalf("diagnostics = %d, want 0", got)
	}

	// One connection per parent with children: grandpa, dad, uncle, me.
	if got := len(res.Connections); got != 4 {
		t.Errorf("connections = %d, want 4", got)
	}

	// Depth equals the number of parent hops from the root.
	wantDepth := map[string]int{
		"grandpa": 0, "dad": 1, "uncle": 1,
		"me": 2, "sis": 2, "cousin": 2, "kid": 3,
	}
	for id, want := range wantDepth {
		n, ok := nodeByID(res, id)
		if !ok {
			t.Fatalf("node %s missing", id)
		}
		if n.Depth != want {
			t.Errorf("depth[%s] = %d, want %d", id, n.Depth, want)
		}
	}
}

func TestComputeChainSharesRow(t *testing.T) {
	res, err := Compute([]person.Record{
		rec("g0", ""),
		rec("g1", "g0"),
		rec("g2", "g1"),
		rec("g3", "g2"),
	}, Options{})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	// Four generations of only children form a straight lineage: every
	// node shares one Y while X advances per generation.
	root, ok := nodeByID(res, "g0")
	if !ok {
		t.Fatal("node g0 missing")
	}
	for _, id := range []string{"g1", "g2", "g3"} {
		n, ok := nodeByID(res, id)
		if !ok {
			t.Fatalf("node %s missing", id)
		}
		if math.Abs(n.Y-root.Y) > 1e-9 {
			t.Errorf("y[%s] = %g, want %g (same row as root)", id, n.Y, root.Y)
		}
	}
}

func TestComputeGenerationColumns(t *testing.T) {
	res, err := Compute(family(), Options{})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	// All nodes of one generation share an X column, and columns advance
	// with depth.
	colByDepth := map[int]float64{}
	for _, n := range res.Nodes {
		if x, seen := colByDepth[n.Depth]; seen {
			if math.Abs(x-n.X) > 1e-9 {
				t.Errorf("depth %d has x %g and %g", n.Depth, x, n.X)
			}
			continue
		}
		colByDepth[n.Depth] = n.X
	}
	for d := 1; d < len(colByDepth); d++ {
		if colByDepth[d] <= colByDepth[d-1] {
			t.Errorf("x[%d] = %g not right of x[%d] = %g", d, colByDepth[d], d-1, colByDepth[d-1])
		}
	}
}

func TestComputeRTLMirrorsColumns(t *testing.T) {
	opts := Options{ViewportWidth: 1000}
	ltr, err := Compute(family(), opts)
	if err != nil {
		t.Fatalf("Compute ltr: %v", err)
	}
	opts.RTL = true
	rtl, err := Compute(family(), opts)
	if err != nil {
		t.Fatalf("Compute rtl: %v", err)
	}

	for _, ln := range ltr.Nodes {
		rn, ok := nodeByID(rtl, ln.ID)
		if !ok {
			t.Fatalf("node %s missing from rtl result", ln.ID)
		}
		if want := 1000 - ln.X; math.Abs(rn.X-want) > 1e-9 {
			t.Errorf("rtl x[%s] = %g, want %g", ln.ID, rn.X, want)
		}
	}
}

func TestComputeRecoverableDiagnostics(t *testing.T) {
	tests := []struct {
		name     string
		records  []person.Record
		wantCode string
	}{
		{
			name: "NoRoot",
			records: []person.Record{
				rec("a", "ghost"),
				rec("b", "ghost"),
			},
			wantCode: CodeNoRoot,
		},
		{
			name: "MultipleRoots",
			records: []person.Record{
				rec("a", ""),
				rec("b", ""),
			},
			wantCode: CodeMultipleRoots,
		},
		{
			name: "Cycle",
			records: []person.Record{
				rec("root", ""),
				rec("loop", "loop"),
			},
			wantCode: CodeCycle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Compute(tt.records, Options{})
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			if len(res.Nodes) != 0 || len(res.Connections) != 0 {
				t.Errorf("nodes=%d connections=%d, want empty result", len(res.Nodes), len(res.Connections))
			}
			if len(res.Diagnostics) != 1 {
				t.Fatalf("diagnostics = %d, want 1", len(res.Diagnostics))
			}
			if got := res.Diagnostics[0].Code; got != tt.wantCode {
				t.Errorf("code = %s, want %s", got, tt.wantCode)
			}
		})
	}
}

func TestComputeOrphanDiagnostics(t *testing.T) {
	records := []person.Record{
		rec("root", ""),
		rec("kid", "root"),
		rec("stray", "ghost"),
		rec("straychild", "stray"),
	}
	res, err := Compute(records, Options{})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if got := len(res.Nodes); got != 2 {
		t.Errorf("nodes = %d, want 2 (partial result)", got)
	}

	codes := map[string]string{}
	for _, d := range res.Diagnostics {
		codes[d.PersonID] = d.Code
	}
	if codes["stray"] != CodeOrphan {
		t.Errorf("stray code = %s, want %s", codes["stray"], CodeOrphan)
	}
	if codes["straychild"] != CodeUnreachable {
		t.Errorf("straychild code = %s, want %s", codes["straychild"], CodeUnreachable)
	}
}

func TestComputeInvalidInputFails(t *testing.T) {
	tests := []struct {
		name    string
		records []person.Record
	}{
		{name: "DuplicateID", records: []person.Record{rec("a", ""), rec("a", "")}},
		{name: "EmptyID", records: []person.Record{{ID: ""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.records, Options{})
			if err == nil {
				t.Fatal("Compute succeeded, want error")
			}
			if !kerrors.Is(err, kerrors.ErrCodeInvalidInputShape) {
				t.Errorf("error code = %s, want %s", kerrors.GetCode(err), kerrors.ErrCodeInvalidInputShape)
			}
		})
	}
}

func TestComputeConnections(t *testing.T) {
	records := []person.Record{
		rec("root", ""),
		rec("a", "root"),
		rec("b", "root"),
	}
	records[1].Attrs = map[string]any{"photo": "a.jpg"}

	res, err := Compute(records, Options{})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(res.Connections) != 1 {
		t.Fatalf("connections = %d, want 1", len(res.Connections))
	}

	conn := res.Connections[0]
	if conn.Parent.ID != "root" {
		t.Errorf("parent = %s, want root", conn.Parent.ID)
	}
	if len(conn.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(conn.Children))
	}
	if !conn.Children[0].HasPhoto {
		t.Errorf("child a HasPhoto = false, want true")
	}
	if conn.Children[1].HasPhoto {
		t.Errorf("child b HasPhoto = true, want false")
	}

	// Anchors carry the same coordinates as the nodes they reference.
	parentNode, _ := nodeByID(res, "root")
	if conn.Parent.X != parentNode.X || conn.Parent.Y != parentNode.Y {
		t.Errorf("parent anchor = (%g,%g), node at (%g,%g)",
			conn.Parent.X, conn.Parent.Y, parentNode.X, parentNode.Y)
	}
}

func TestComputeBoundsCoverAllNodes(t *testing.T) {
	res, err := Compute(family(), Options{})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for _, n := range res.Nodes {
		if n.X < res.Bounds.MinX || n.X > res.Bounds.MaxX ||
			n.Y < res.Bounds.MinY || n.Y > res.Bounds.MaxY {
			t.Errorf("node %s at (%g,%g) outside bounds %+v", n.ID, n.X, n.Y, res.Bounds)
		}
	}
}

func TestComputeDeterministic(t *testing.T) {
	first, err := Compute(family(), Options{})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	firstData, err := MarshalResult(first)
	if err != nil {
		t.Fatalf("MarshalResult: %v", err)
	}

	for i := 0; i < 5; i++ {
		again, err := Compute(family(), Options{})
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		againData, err := MarshalResult(again)
		if err != nil {
			t.Fatalf("run %d marshal: %v", i, err)
		}
		if !bytes.Equal(firstData, againData) {
			t.Fatalf("run %d produced different serialized output", i)
		}
	}
}

func TestComputeSiblingOrderAffectsY(t *testing.T) {
	one, two := 1, 2
	records := []person.Record{
		rec("root", ""),
		{ID: "second", FatherID: strPtr("root"), SiblingOrder: &two},
		{ID: "first", FatherID: strPtr("root"), SiblingOrder: &one},
	}

	res, err := Compute(records, Options{})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	first, _ := nodeByID(res, "first")
	second, _ := nodeByID(res, "second")
	if first.Y >= second.Y {
		t.Errorf("first.Y = %g not above second.Y = %g", first.Y, second.Y)
	}
}
