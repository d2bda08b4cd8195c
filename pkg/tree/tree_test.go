package tree

import (
	"errors"
	"testing"

	"github.com/kintreeapp/kintree/pkg/person"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// rec builds a record with an optional father and mother reference.
func rec(id, father, mother string) person.Record {
	r := person.Record{ID: id}
	if father != "" {
		r.FatherID = strPtr(father)
	}
	if mother != "" {
		r.MotherID = strPtr(mother)
	}
	return r
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name         string
		records      []person.Record
		wantErr      error
		wantRoot     string
		wantSize     int
		wantExcluded int
	}{
		{
			name: "SingleChain",
			records: []person.Record{
				rec("a", "", ""),
				rec("b", "a", ""),
				rec("c", "b", ""),
			},
			wantRoot: "a",
			wantSize: 3,
		},
		{
			name: "RootWithTwoChildren",
			records: []person.Record{
				rec("root", "", ""),
				rec("kid1", "root", ""),
				rec("kid2", "root", ""),
			},
			wantRoot: "root",
			wantSize: 3,
		},
		{
			name: "MotherFallback",
			records: []person.Record{
				rec("m", "", ""),
				rec("c", "", "m"),
			},
			wantRoot: "m",
			wantSize: 2,
		},
		{
			name: "FatherWinsOverMother",
			records: []person.Record{
				rec("f", "", ""),
				rec("m", "f", ""),
				rec("c", "f", "m"),
			},
			wantRoot: "f",
			wantSize: 3,
		},
		{
			name: "DanglingFatherFallsBackToMother",
			records: []person.Record{
				rec("m", "", ""),
				rec("c", "ghost", "m"),
			},
			wantRoot: "m",
			wantSize: 2,
		},
		{
			name: "OrphanExcluded",
			records: []person.Record{
				rec("root", "", ""),
				rec("kid", "root", ""),
				rec("stray", "ghost", ""),
			},
			wantRoot:     "root",
			wantSize:     2,
			wantExcluded: 1,
		},
		{
			name: "OrphanDescendantsUnreachable",
			records: []person.Record{
				rec("root", "", ""),
				rec("stray", "ghost", ""),
				rec("straychild", "stray", ""),
			},
			wantRoot:     "root",
			wantSize:     1,
			wantExcluded: 2,
		},
		{
			name:    "NoRoot",
			records: []person.Record{rec("a", "b", ""), rec("b", "a", "")},
			wantErr: ErrCyclicReference, // mutual parents are a cycle, reported before root resolution
		},
		{
			name: "NoRootAllOrphans",
			records: []person.Record{
				rec("a", "ghost", ""),
				rec("b", "ghost", ""),
			},
			wantErr: ErrNoRoot,
		},
		{
			name: "MultipleRoots",
			records: []person.Record{
				rec("a", "", ""),
				rec("b", "", ""),
			},
			wantErr: ErrMultipleRoots,
		},
		{
			name: "SelfReferenceCycle",
			records: []person.Record{
				rec("root", "", ""),
				rec("loop", "loop", ""),
			},
			wantErr: ErrCyclicReference,
		},
		{
			name: "DeepCycle",
			records: []person.Record{
				rec("root", "", ""),
				rec("a", "c", ""),
				rec("b", "a", ""),
				rec("c", "b", ""),
			},
			wantErr: ErrCyclicReference,
		},
		{
			name: "DuplicateID",
			records: []person.Record{
				rec("a", "", ""),
				rec("a", "", ""),
			},
			wantErr: ErrDuplicateID,
		},
		{
			name:    "EmptyID",
			records: []person.Record{{ID: ""}},
			wantErr: ErrInvalidRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := Build(tt.records)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Build error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if tr.Root.Record.ID != tt.wantRoot {
				t.Errorf("root = %q, want %q", tr.Root.Record.ID, tt.wantRoot)
			}
			if got := tr.Size(); got != tt.wantSize {
				t.Errorf("size = %d, want %d", got, tt.wantSize)
			}
			if got := len(tr.Excluded); got != tt.wantExcluded {
				t.Errorf("excluded = %d, want %d", got, tt.wantExcluded)
			}
		})
	}
}

func TestBuildExclusionReasons(t *testing.T) {
	tr, err := Build([]person.Record{
		rec("root", "", ""),
		rec("stray", "ghost", ""),
		rec("straychild", "stray", ""),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	byID := map[string]Exclusion{}
	for _, e := range tr.Excluded {
		byID[e.ID] = e
	}

	if e := byID["stray"]; e.Reason != ReasonUnresolvedParent || e.ParentID != "ghost" {
		t.Errorf("stray exclusion = %+v, want unresolved_parent/ghost", e)
	}
	if e := byID["straychild"]; e.Reason != ReasonUnreachable {
		t.Errorf("straychild exclusion = %+v, want unreachable", e)
	}
	if _, ok := tr.Lookup("stray"); !ok {
		// Lookup still resolves excluded IDs; only traversal skips them.
		t.Errorf("Lookup(stray) = false, want true")
	}
}

func TestTreeDepth(t *testing.T) {
	tests := []struct {
		name    string
		records []person.Record
		want    int
	}{
		{
			name:    "LoneRoot",
			records: []person.Record{rec("a", "", "")},
			want:    1,
		},
		{
			name: "Chain",
			records: []person.Record{
				rec("a", "", ""),
				rec("b", "a", ""),
				rec("c", "b", ""),
				rec("d", "c", ""),
			},
			want: 4,
		},
		{
			name: "Branchy",
			records: []person.Record{
				rec("a", "", ""),
				rec("b", "a", ""),
				rec("c", "a", ""),
				rec("d", "c", ""),
			},
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := Build(tt.records)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if got := tr.Depth(); got != tt.want {
				t.Errorf("Depth() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTreeParent(t *testing.T) {
	tr, err := Build([]person.Record{
		rec("a", "", ""),
		rec("b", "a", ""),
		rec("c", "b", ""),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got := tr.Parent("c"); got != "b" {
		t.Errorf("Parent(c) = %q, want b", got)
	}
	if got := tr.Parent("a"); got != "" {
		t.Errorf("Parent(a) = %q, want empty", got)
	}
	if got := tr.Parent("unknown"); got != "" {
		t.Errorf("Parent(unknown) = %q, want empty", got)
	}
}

func TestWalkPreorder(t *testing.T) {
	tr, err := Build([]person.Record{
		rec("a", "", ""),
		rec("b", "a", ""),
		rec("c", "a", ""),
		rec("d", "b", ""),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var visited []string
	var depths []int
	tr.Walk(func(n *Node, depth int) {
		visited = append(visited, n.Record.ID)
		depths = append(depths, depth)
	})

	wantOrder := []string{"a", "b", "d", "c"}
	wantDepths := []int{0, 1, 2, 1}
	for i := range wantOrder {
		if visited[i] != wantOrder[i] {
			t.Fatalf("walk order = %v, want %v", visited, wantOrder)
		}
		if depths[i] != wantDepths[i] {
			t.Fatalf("walk depths = %v, want %v", depths, wantDepths)
		}
	}
}

func TestChildrenKeepInputOrder(t *testing.T) {
	tr, err := Build([]person.Record{
		rec("root", "", ""),
		rec("z", "root", ""),
		rec("a", "root", ""),
		rec("m", "root", ""),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []string{"z", "a", "m"}
	for i, c := range tr.Root.Children {
		if c.Record.ID != want[i] {
			t.Errorf("child %d = %q, want %q", i, c.Record.ID, want[i])
		}
	}
}
