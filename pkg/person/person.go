// Package person defines the input record format for the layout engine.
//
// A person record is a flat row from the upstream data store: an identifier,
// optional parent references, an optional sibling position, and arbitrary
// display attributes (photo reference, name, dates) that the engine passes
// through untouched. The engine never interprets display attributes - it
// only moves them from input to output.
package person

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"unicode"
)

// Record is one person row as supplied by the data store.
//
// FatherID takes precedence over MotherID when both resolve to a record in
// the same collection; MotherID is consulted only when FatherID is absent or
// dangling. A record with neither reference resolving is a root candidate.
//
// SiblingOrder controls display order among siblings (lower first). Records
// without an explicit order sort after all ordered siblings, keeping their
// input order relative to each other.
type Record struct {
	ID           string         `json:"id" bson:"id"`
	FatherID     *string        `json:"father_id,omitempty" bson:"father_id,omitempty"`
	MotherID     *string        `json:"mother_id,omitempty" bson:"mother_id,omitempty"`
	SiblingOrder *int           `json:"sibling_order,omitempty" bson:"sibling_order,omitempty"`
	Attrs        map[string]any `json:"attrs,omitempty" bson:"attrs,omitempty"`
}

// HasPhoto reports whether the record carries a photo attribute.
// The rendering layer uses this to pick a connector endpoint style.
func (r Record) HasPhoto() bool {
	if r.Attrs == nil {
		return false
	}
	v, ok := r.Attrs["photo"]
	if !ok {
		return false
	}
	s, isStr := v.(string)
	return !isStr || s != ""
}

// Attr returns the display attribute for key, or nil if unset.
func (r Record) Attr(key string) any {
	if r.Attrs == nil {
		return nil
	}
	return r.Attrs[key]
}

// Validate checks that a record is structurally usable.
// It rejects empty IDs and IDs containing control characters, which would
// indicate corruption upstream rather than a recoverable data problem.
func (r Record) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("record ID must not be empty")
	}
	for _, c := range r.ID {
		if unicode.IsControl(c) {
			return fmt.Errorf("record ID %q contains control characters", r.ID)
		}
	}
	return nil
}

// Collection is the canonical serialization format for a set of person
// records. It round-trips through JSON and BSON without loss.
type Collection struct {
	Persons []Record `json:"persons" bson:"persons"`
}

// ReadCollection decodes a JSON collection from r.
// The input must be an object with a "persons" array; each element must
// carry a non-empty "id". Returns an error for malformed JSON or invalid
// records - these are hard failures, not recoverable diagnostics.
func ReadCollection(r io.Reader) (Collection, error) {
	var c Collection
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return Collection{}, fmt.Errorf("decode: %w", err)
	}
	for i, rec := range c.Persons {
		if err := rec.Validate(); err != nil {
			return Collection{}, fmt.Errorf("person %d: %w", i, err)
		}
	}
	return c, nil
}

// ReadCollectionFile reads a JSON collection from the file at path.
func ReadCollectionFile(path string) (Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return Collection{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCollection(f)
}

// WriteCollection encodes a collection as indented JSON to w.
func WriteCollection(c Collection, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
