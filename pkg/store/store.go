// Package store persists named person collections and their computed
// layouts.
//
// The engine owns no state - this package exists for the surrounding
// service: the HTTP API stores uploaded collections here so clients can
// re-fetch a layout by ID instead of re-posting the whole family. The
// engine never touches the store.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/kintreeapp/kintree/pkg/layout"
	"github.com/kintreeapp/kintree/pkg/person"
)

// ErrNotFound is returned when a requested tree does not exist.
var ErrNotFound = errors.New("tree not found")

// Tree is one stored family: the input collection, the options it was last
// laid out with, and the resulting layout.
type Tree struct {
	ID        string          `bson:"_id" json:"id"`
	Name      string          `bson:"name" json:"name"`
	Persons   []person.Record `bson:"persons" json:"persons"`
	Options   layout.Options  `bson:"options" json:"options"`
	Layout    layout.Result   `bson:"layout" json:"layout"`
	CreatedAt time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time       `bson:"updated_at" json:"updated_at"`
}

// Store persists trees. Implementations must be safe for concurrent use.
type Store interface {
	// Put inserts or replaces a tree by ID.
	Put(ctx context.Context, t Tree) error

	// Get returns the tree with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (Tree, error)

	// List returns all stored trees, newest first, without layouts
	// (summaries only).
	List(ctx context.Context) ([]Tree, error)

	// Delete removes a tree. Deleting a missing ID returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
