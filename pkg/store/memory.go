package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store in process memory. It backs the server when
// no Mongo URI is configured and keeps store-dependent tests hermetic.
type MemoryStore struct {
	mu    sync.RWMutex
	trees map[string]Tree
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{trees: make(map[string]Tree)}
}

// Put inserts or replaces a tree by ID.
func (s *MemoryStore) Put(ctx context.Context, t Tree) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if existing, ok := s.trees[t.ID]; ok {
		t.CreatedAt = existing.CreatedAt
	} else if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	s.trees[t.ID] = t
	return nil
}

// Get returns the tree with the given ID, or ErrNotFound.
func (s *MemoryStore) Get(ctx context.Context, id string) (Tree, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trees[id]
	if !ok {
		return Tree{}, ErrNotFound
	}
	return t, nil
}

// List returns all stored trees as summaries, newest first.
func (s *MemoryStore) List(ctx context.Context) ([]Tree, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	trees := make([]Tree, 0, len(s.trees))
	for _, t := range s.trees {
		t.Persons = nil
		t.Layout = Tree{}.Layout
		trees = append(trees, t)
	}
	sort.Slice(trees, func(i, j int) bool {
		return trees[i].UpdatedAt.After(trees[j].UpdatedAt)
	})
	return trees, nil
}

// Delete removes a tree. Deleting a missing ID returns ErrNotFound.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trees[id]; !ok {
		return ErrNotFound
	}
	delete(s.trees, id)
	return nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
