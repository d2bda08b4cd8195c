// Package tree builds a single rooted family tree from a flat collection of
// person records.
//
// Records reference their parents by ID (father first, mother as fallback).
// Build resolves those references into an ownership tree: each node owns its
// ordered children, and parents are reachable only through the lookup index,
// never through owning back-references.
//
// Root resolution is explicit. Exactly one record with no parent references
// must exist; zero candidates yields [ErrNoRoot] and more than one yields
// [ErrMultipleRoots] instead of silently picking a winner. Parent chains are
// validated for cycles up front with a coloring pass, so malformed input
// produces [ErrCyclicReference] rather than unbounded recursion.
//
// Records whose declared parents do not resolve - and anything beneath them -
// are excluded from the tree and reported through [Tree.Excluded].
package tree
