// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package rtree

import (
	"iter"

	"github.com/gaissmai/pareto/point"
)

// Cursor is a bidirectional iterator. Forward-only queries (FindIntersection
// et al.) are served lazily through iter.Seq2; Cursor exists for operations
// that need a concrete position: Find, Insert's returned iterator,
// MinElement/MaxElement, and backward traversal.
//
// Backward iteration, and any traversal driven by a Nearest predicate,
// pre-materialise their full result sequence on construction, since
// best-first nearest-neighbour search is inherently forward-only. Cursor
// applies this rule uniformly rather than special-casing Nearest, which
// keeps one iterator implementation instead of two (see DESIGN.md).
//
// Erasing any entry in the owning Index invalidates every live Cursor on
// it; this is documented, not enforced with a generation counter, consistent
// with the single-threaded, lock-free resource model.
type Cursor[V any] struct {
	idxRef *Index[V]
	items  []point.Entry[V]
	pos    int // -1 before first, len(items) at/after last
}

func emptyCursor[V any](idx *Index[V]) *Cursor[V] {
	return &Cursor[V]{idxRef: idx, items: nil, pos: -1}
}

func newEntryCursor[V any](idx *Index[V], n *node[V], i int) *Cursor[V] {
	if n == nil {
		return emptyCursor(idx)
	}
	e := n.entries[i]
	return &Cursor[V]{idxRef: idx, items: []point.Entry[V]{{Key: e.key, Value: e.value}}, pos: 0}
}

func newMaterializedCursor[V any](idx *Index[V], items []point.Entry[V]) *Cursor[V] {
	pos := -1
	if len(items) > 0 {
		pos = 0
	}
	return &Cursor[V]{idxRef: idx, items: items, pos: pos}
}

// Valid reports whether the cursor currently addresses an entry.
func (c *Cursor[V]) Valid() bool { return c.pos >= 0 && c.pos < len(c.items) }

// Key returns the current entry's point. Panics if !Valid().
func (c *Cursor[V]) Key() point.Point { return c.items[c.pos].Key }

// Value returns the current entry's value. Panics if !Valid().
func (c *Cursor[V]) Value() V { return c.items[c.pos].Value }

// Next advances the cursor and reports whether it now addresses an entry.
func (c *Cursor[V]) Next() bool {
	if c.pos < len(c.items) {
		c.pos++
	}
	return c.Valid()
}

// Prev steps the cursor backward and reports whether it now addresses an
// entry.
func (c *Cursor[V]) Prev() bool {
	if c.pos > -1 {
		c.pos--
	}
	return c.Valid()
}

// Erase removes the entry the cursor currently addresses from the owning
// Index and reports whether an entry was removed.
func (c *Cursor[V]) Erase() bool {
	if !c.Valid() {
		return false
	}
	return c.idxRef.Erase(c.Key()) > 0
}

// Seq returns a forward iter.Seq over the remaining entries from the
// cursor's current position (materialised, since Cursor already is).
func (c *Cursor[V]) Seq() iter.Seq[point.Entry[V]] {
	items := c.remaining()
	return func(yield func(point.Entry[V]) bool) {
		for _, e := range items {
			if !yield(e) {
				return
			}
		}
	}
}

// Seq2 is Seq split into (key, value) pairs.
func (c *Cursor[V]) Seq2() iter.Seq2[point.Point, V] {
	items := c.remaining()
	return func(yield func(point.Point, V) bool) {
		for _, e := range items {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

// remaining returns the items from the current position on; a cursor
// positioned before the first entry yields them all.
func (c *Cursor[V]) remaining() []point.Entry[V] {
	if c.pos < 0 {
		return c.items
	}
	return c.items[c.pos:]
}

// Len returns the number of entries the cursor ranges over.
func (c *Cursor[V]) Len() int { return len(c.items) }
