// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package rtree

import (
	"iter"
	"reflect"

	"github.com/gaissmai/pareto/pareterr"
	"github.com/gaissmai/pareto/point"
	"github.com/gaissmai/pareto/predicate"
)

// Index is a generic multi-dimensional spatial container, keyed by
// point.Point with an opaque payload V. The zero value is not ready to use;
// call New or NewAuto.
//
// An Index must not be copied after first use (see noCopy).
type Index[V any] struct {
	_ noCopy

	root   *node[V]
	dim    int
	dimSet bool
	size   int
	pool   *Pool[V]
	seq    uint64
}

// noCopy may be embedded in structs that must not be copied after first
// use, to trip the `go vet` -copylocks checker.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// New returns an Index fixed at dimension dim.
func New[V any](dim int) *Index[V] {
	return &Index[V]{dim: dim, dimSet: true, root: newLeaf[V]()}
}

// NewAuto returns an Index whose dimensionality is inferred from the first
// inserted point.
func NewAuto[V any]() *Index[V] {
	return &Index[V]{root: newLeaf[V]()}
}

// NewWithPool is like New but shares a NodePool with other Index values
// (the mechanism an Archive uses to share one Pool across all its Fronts).
func NewWithPool[V any](dim int, pool *Pool[V]) *Index[V] {
	idx := New[V](dim)
	idx.pool = pool
	return idx
}

func (idx *Index[V]) ensureDim(p point.Point) error {
	if !idx.dimSet {
		idx.dim = p.Dim()
		idx.dimSet = true
		return nil
	}
	if p.Dim() != idx.dim {
		return &pareterr.DimensionMismatchError{Got: p.Dim(), Want: idx.dim}
	}
	return nil
}

// Dimensions returns the established dimensionality, or 0 if nothing has
// been inserted yet and no fixed dimension was given at construction.
func (idx *Index[V]) Dimensions() int { return idx.dim }

// Size returns the number of stored entries.
func (idx *Index[V]) Size() int { return idx.size }

// Empty reports whether the index holds no entries.
func (idx *Index[V]) Empty() bool { return idx.size == 0 }

// Insert adds (p, v). If p is already present, its value is left
// unchanged and inserted is false; the returned Cursor addresses the
// existing entry either way.
func (idx *Index[V]) Insert(p point.Point, v V) (cur *Cursor[V], inserted bool, err error) {
	if err = idx.ensureDim(p); err != nil {
		return nil, false, err
	}

	if n, i, ok := idx.locate(p); ok {
		return newEntryCursor(idx, n, i), false, nil
	}

	idx.seq++
	e := entry[V]{key: p, value: v, seq: idx.seq}

	leaf := idx.chooseLeaf(p)
	leaf.entries = append(leaf.entries, e)
	updateAncestorMBRs(leaf)
	idx.splitIfNeeded(leaf)
	idx.size++

	n, i, _ := idx.locate(p)
	return newEntryCursor(idx, n, i), true, nil
}

// chooseLeaf descends from the root picking, at each internal level, the
// branch whose MBR would need the least enlargement to cover p (ties
// broken by smaller resulting volume), the classic R-tree ChooseSubtree
// heuristic.
func (idx *Index[V]) chooseLeaf(p point.Point) *node[V] {
	n := idx.root
	for !n.isLeaf() {
		best := 0
		bestEnlarge := n.branches[0].mbr.Enlargement(point.FromPoint(p))
		bestVol := n.branches[0].mbr.Volume()
		for i := 1; i < len(n.branches); i++ {
			enlarge := n.branches[i].mbr.Enlargement(point.FromPoint(p))
			vol := n.branches[i].mbr.Volume()
			if enlarge < bestEnlarge || (enlarge == bestEnlarge && vol < bestVol) {
				best, bestEnlarge, bestVol = i, enlarge, vol
			}
		}
		n = n.branches[best].child
	}
	return n
}

// locate finds the leaf node and entry index holding key p exactly,
// searching every subtree whose MBR contains p (R-tree MBRs may overlap,
// so more than one path can legally contain p).
func (idx *Index[V]) locate(p point.Point) (*node[V], int, bool) {
	return locateIn(idx.root, p)
}

func locateIn[V any](n *node[V], p point.Point) (*node[V], int, bool) {
	if !n.mbr.Contains(p) && n.count() > 0 {
		return nil, 0, false
	}
	if n.isLeaf() {
		for i, e := range n.entries {
			if e.key.Equal(p) {
				return n, i, true
			}
		}
		return nil, 0, false
	}
	for _, br := range n.branches {
		if br.mbr.Contains(p) {
			if found, i, ok := locateIn(br.child, p); ok {
				return found, i, true
			}
		}
	}
	return nil, 0, false
}

// EmptyCursor returns a Cursor with Valid() == false, for callers that
// need to hand back a well-formed but empty result (e.g. Front.Insert on
// rejection).
func (idx *Index[V]) EmptyCursor() *Cursor[V] { return emptyCursor(idx) }

// Find returns a Cursor addressing the entry with key == p, or a Cursor
// with Valid() == false if absent.
func (idx *Index[V]) Find(p point.Point) (*Cursor[V], bool) {
	if n, i, ok := idx.locate(p); ok {
		return newEntryCursor(idx, n, i), true
	}
	return emptyCursor[V](idx), false
}

// At returns the value stored at key p, or a pareterr.KeyNotFoundError if
// p is absent. Unlike Find, which reports its miss via the sentinel
// (Cursor, false) pair, At surfaces a typed error directly for callers that
// have already established p must be present.
func (idx *Index[V]) At(p point.Point) (V, error) {
	cur, ok := idx.Find(p)
	if !ok {
		var zero V
		return zero, &pareterr.KeyNotFoundError{Dim: idx.dim}
	}
	return cur.Value(), nil
}

// MustFind is At, panicking instead of returning an error: a returned
// sentinel for ordinary lookup misses (Find) versus a loud failure for a
// caller-asserted invariant (At on a key that must exist).
func (idx *Index[V]) MustFind(p point.Point) V {
	v, err := idx.At(p)
	if err != nil {
		panic(err)
	}
	return v
}

// Erase removes the entry with key p, if present, and returns the number
// of entries removed (0 or 1).
func (idx *Index[V]) Erase(p point.Point) int {
	n, i, ok := idx.locate(p)
	if !ok {
		return 0
	}
	idx.eraseAt(n, i)
	idx.size--
	return 1
}

// FindIntersection returns an iterator over all entries within the closed
// box [lo, hi] (boundary included).
func (idx *Index[V]) FindIntersection(lo, hi point.Point) iter.Seq2[point.Point, V] {
	return idx.query(predicate.Intersects{Box: point.NewBox(lo, hi)})
}

// FindWithin returns an iterator over all entries within the open box
// (lo, hi), excluding the boundary.
func (idx *Index[V]) FindWithin(lo, hi point.Point) iter.Seq2[point.Point, V] {
	return idx.query(predicate.Within{Box: point.NewBox(lo, hi)})
}

// FindDisjoint returns an iterator over all entries strictly outside the
// closed box [lo, hi].
func (idx *Index[V]) FindDisjoint(lo, hi point.Point) iter.Seq2[point.Point, V] {
	return idx.query(predicate.Disjoint{Box: point.NewBox(lo, hi)})
}

// FindSatisfying returns an iterator over all entries for which fn
// reports true.
func (idx *Index[V]) FindSatisfying(fn func(point.Point) bool) iter.Seq2[point.Point, V] {
	return idx.query(predicate.Satisfies{Fn: fn})
}

// query runs preds through the pruning DFS traversal. If preds holds a
// Nearest predicate, the query instead runs the best-first k-NN search for
// it, with the remaining predicates acting as filters (as in
// FindNearestFiltered).
func (idx *Index[V]) query(preds ...predicate.Predicate) iter.Seq2[point.Point, V] {
	return func(yield func(point.Point, V) bool) {
		for i, pr := range preds {
			if nn, ok := pr.(predicate.Nearest); ok {
				rest := append(append([]predicate.Predicate(nil), preds[:i]...), preds[i+1:]...)
				for _, e := range idx.nearestAll(nn.Target, nn.K, rest) {
					if !yield(e.Key, e.Value) {
						return
					}
				}
				return
			}
		}
		sortBySelectivity(preds, idx.root.mbr.Volume())
		traverse(idx.root, preds, yield)
	}
}

// QueryAll runs the pruning DFS traversal against every predicate in
// preds; an entry is emitted only if it admits all of them.
func (idx *Index[V]) QueryAll(preds ...predicate.Predicate) iter.Seq2[point.Point, V] {
	return idx.query(preds...)
}

// materializeQuery runs preds eagerly into a Cursor, for callers that need
// the bidirectional/Erase-by-cursor contract rather than a lazy iter.Seq2.
func (idx *Index[V]) materializeQuery(preds ...predicate.Predicate) *Cursor[V] {
	sortBySelectivity(preds, idx.root.mbr.Volume())
	var items []point.Entry[V]
	traverse(idx.root, preds, func(p point.Point, v V) bool {
		items = append(items, point.Entry[V]{Key: p, Value: v})
		return true
	})
	return newMaterializedCursor(idx, items)
}

// FindIntersectionCursor is FindIntersection, materialised into a
// bidirectional Cursor.
func (idx *Index[V]) FindIntersectionCursor(lo, hi point.Point) *Cursor[V] {
	return idx.materializeQuery(predicate.Intersects{Box: point.NewBox(lo, hi)})
}

// FindWithinCursor is FindWithin, materialised into a bidirectional Cursor.
func (idx *Index[V]) FindWithinCursor(lo, hi point.Point) *Cursor[V] {
	return idx.materializeQuery(predicate.Within{Box: point.NewBox(lo, hi)})
}

// FindDisjointCursor is FindDisjoint, materialised into a bidirectional
// Cursor.
func (idx *Index[V]) FindDisjointCursor(lo, hi point.Point) *Cursor[V] {
	return idx.materializeQuery(predicate.Disjoint{Box: point.NewBox(lo, hi)})
}

// MinElement returns a Cursor to the entry with the smallest coordinate in
// dimension d.
func (idx *Index[V]) MinElement(d int) (*Cursor[V], bool) {
	return idx.extreme(d, false)
}

// MaxElement returns a Cursor to the entry with the largest coordinate in
// dimension d.
func (idx *Index[V]) MaxElement(d int) (*Cursor[V], bool) {
	return idx.extreme(d, true)
}

func (idx *Index[V]) extreme(d int, max bool) (*Cursor[V], bool) {
	if idx.size == 0 {
		return emptyCursor[V](idx), false
	}
	var bestNode *node[V]
	var bestIdx int
	var bestVal float64
	first := true

	for n, ie := range allEntries(idx.root) {
		v := ie.entry.key.At(d)
		if first || (max && v > bestVal) || (!max && v < bestVal) {
			bestNode, bestIdx, bestVal, first = n, ie.idx, v, false
		}
	}
	return newEntryCursor(idx, bestNode, bestIdx), true
}

// All returns an iterator over every (point, value) pair, in tree-DFS
// left-to-right order.
func (idx *Index[V]) All() iter.Seq2[point.Point, V] {
	return func(yield func(point.Point, V) bool) {
		traverse(idx.root, nil, yield)
	}
}

// Clone returns a deep structural copy of the index. If V implements
// Cloner[V], values are cloned; otherwise they are shallow-copied.
func (idx *Index[V]) Clone() *Index[V] {
	c := &Index[V]{dim: idx.dim, dimSet: idx.dimSet, size: idx.size, pool: idx.pool, seq: idx.seq}
	c.root = cloneNode(idx.root)
	return c
}

func cloneNode[V any](n *node[V]) *node[V] {
	if n == nil {
		return nil
	}
	c := &node[V]{level: n.level, mbr: n.mbr}
	if n.isLeaf() {
		c.entries = make([]entry[V], len(n.entries))
		for i, e := range n.entries {
			v := e.value
			if cl, ok := any(v).(Cloner[V]); ok {
				v = cl.Clone()
			}
			c.entries[i] = entry[V]{key: e.key, value: v, seq: e.seq}
		}
		return c
	}
	c.branches = make([]branch[V], len(n.branches))
	for i, br := range n.branches {
		child := cloneNode(br.child)
		child.parent = c
		c.branches[i] = branch[V]{mbr: br.mbr, child: child}
	}
	return c
}

// Cloner lets a payload type opt into deep copying during Clone.
type Cloner[V any] interface {
	Clone() V
}

// Equaler lets a payload type opt into custom equality during structural
// Equal comparisons.
type Equaler[V any] interface {
	Equal(other V) bool
}

// valuesEqual compares two payloads, preferring V's own Equaler.Equal over
// reflect.DeepEqual.
func valuesEqual[V any](a, b V) bool {
	if eq, ok := any(a).(Equaler[V]); ok {
		return eq.Equal(b)
	}
	return reflect.DeepEqual(a, b)
}

// Equal reports whether idx and o hold the same (point, value) entries,
// independent of insertion order or internal tree shape.
func (idx *Index[V]) Equal(o *Index[V]) bool {
	if o == nil {
		return false
	}
	if idx == o {
		return true
	}
	if idx.size != o.size || idx.dim != o.dim {
		return false
	}
	for p, v := range idx.All() {
		oCur, ok := o.Find(p)
		if !ok || !valuesEqual(v, oCur.Value()) {
			return false
		}
	}
	return true
}
