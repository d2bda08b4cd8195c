package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kintreeapp/kintree/pkg/person"
)

func TestMemoryStorePutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	tree := Tree{
		ID:      "t1",
		Name:    "smith family",
		Persons: []person.Record{{ID: "root"}},
	}
	if err := s.Put(ctx, tree); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "smith family" {
		t.Errorf("name = %q, want smith family", got.Name)
	}
	if len(got.Persons) != 1 {
		t.Errorf("persons = %d, want 1", len(got.Persons))
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not set on insert")
	}
}

func TestMemoryStoreReplaceKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.Put(ctx, Tree{ID: "t1", Name: "v1"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	first, _ := s.Get(ctx, "t1")

	time.Sleep(time.Millisecond)
	if err := s.Put(ctx, Tree{ID: "t1", Name: "v2"}); err != nil {
		t.Fatalf("replace Put: %v", err)
	}
	second, _ := s.Get(ctx, "t1")

	if second.Name != "v2" {
		t.Errorf("name = %q, want v2", second.Name)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Error("replace changed created_at")
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Error("replace did not advance updated_at")
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, id := range []string{"a", "b", "c"} {
		if err := s.Put(ctx, Tree{ID: id, Persons: []person.Record{{ID: "p"}}}); err != nil {
			t.Fatalf("Put %s: %v", id, err)
		}
		time.Sleep(time.Millisecond)
	}

	trees, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(trees) != 3 {
		t.Fatalf("list = %d trees, want 3", len(trees))
	}
	// Newest first.
	if trees[0].ID != "c" || trees[2].ID != "a" {
		t.Errorf("order = [%s %s %s], want [c b a]", trees[0].ID, trees[1].ID, trees[2].ID)
	}
	// Summaries only: the person payload is projected away.
	if trees[0].Persons != nil {
		t.Error("list entries carry person payloads")
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.Put(ctx, Tree{ID: "t1"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Delete(ctx, "t1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "t1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "t1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}
