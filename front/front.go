// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package front implements the non-domination layer: a Front wraps one
// rtree.Index and enforces the non-domination invariant on every insert.
package front

import (
	"github.com/gaissmai/pareto/pareterr"
	"github.com/gaissmai/pareto/point"
	"github.com/gaissmai/pareto/predicate"
	"github.com/gaissmai/pareto/rtree"
)

// noCopy mirrors rtree's marker, repeated here since Front lives in its
// own package.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Front maintains the non-dominated subset of a Spatial Index under a
// fixed Direction.
type Front[V any] struct {
	_ noCopy

	idx *rtree.Index[V]
	dir point.Direction
}

// New returns an empty Front fixed at dimension dim.
func New[V any](dim int, dir point.Direction) *Front[V] {
	return &Front[V]{idx: rtree.New[V](dim), dir: dir}
}

// NewAuto returns an empty Front whose dimensionality is inferred from the
// first inserted point.
func NewAuto[V any](dir point.Direction) *Front[V] {
	return &Front[V]{idx: rtree.NewAuto[V](), dir: dir}
}

// NewWithPool is like New but shares a node Pool, the mechanism an Archive
// uses across all of its Fronts.
func NewWithPool[V any](dim int, dir point.Direction, pool *rtree.Pool[V]) *Front[V] {
	return &Front[V]{idx: rtree.NewWithPool[V](dim, pool), dir: dir}
}

// Direction returns the front's fixed minimise/maximise configuration.
func (f *Front[V]) Direction() point.Direction { return f.dir }

// Size, Empty and Dimensions passthrough to the underlying index.
func (f *Front[V]) Size() int       { return f.idx.Size() }
func (f *Front[V]) Empty() bool     { return f.idx.Empty() }
func (f *Front[V]) Dimensions() int { return f.idx.Dimensions() }

// Insert enforces non-domination: p is rejected if dominated by (or equal
// to) any existing entry; otherwise every entry p dominates is evicted
// before p is added.
func (f *Front[V]) Insert(p point.Point, v V) (*rtree.Cursor[V], bool, error) {
	if f.idx.Size() > 0 && f.idx.Dimensions() != p.Dim() {
		return f.idx.EmptyCursor(), false, &pareterr.DimensionMismatchError{Got: p.Dim(), Want: f.idx.Dimensions()}
	}

	if f.rejects(p) {
		return f.idx.EmptyCursor(), false, nil
	}

	var evict []point.Point
	for q := range f.idx.All() {
		if point.Dominates(p, q, f.dir) {
			evict = append(evict, q)
		}
	}
	for _, q := range evict {
		f.idx.Erase(q)
	}

	return f.idx.Insert(p, v)
}

// rejects reports whether p must be rejected by Insert: an existing equal
// key, or an existing entry that dominates p.
func (f *Front[V]) rejects(p point.Point) bool {
	for q := range f.idx.All() {
		if q.Equal(p) || point.Dominates(q, p, f.dir) {
			return true
		}
	}
	return false
}

// Dominates reports whether some entry in the front dominates q.
func (f *Front[V]) Dominates(q point.Point) bool {
	for p := range f.idx.All() {
		if point.Dominates(p, q, f.dir) {
			return true
		}
	}
	return false
}

// NonDominates reports whether q is incomparable with the front: the
// front doesn't dominate q, and q doesn't dominate any entry in it.
func (f *Front[V]) NonDominates(q point.Point) bool {
	if f.Dominates(q) {
		return false
	}
	for p := range f.idx.All() {
		if point.Dominates(q, p, f.dir) {
			return false
		}
	}
	return true
}

// DominatesFront reports whether f dominates every point of o (the
// symmetric, two-set form of Dominates).
func (f *Front[V]) DominatesFront(o *Front[V]) bool {
	if o.Empty() {
		return false
	}
	for q := range o.idx.All() {
		if !f.Dominates(q) {
			return false
		}
	}
	return true
}

// Find, Erase, FindIntersection/Within/Disjoint, FindNearest(Filtered),
// MinElement/MaxElement, All and Clone are plain passthroughs to the
// underlying spatial index.
func (f *Front[V]) Find(p point.Point) (*rtree.Cursor[V], bool) { return f.idx.Find(p) }
func (f *Front[V]) Erase(p point.Point) int                     { return f.idx.Erase(p) }

func (f *Front[V]) FindIntersection(lo, hi point.Point) rtreeSeq[V] { return f.idx.FindIntersection(lo, hi) }
func (f *Front[V]) FindWithin(lo, hi point.Point) rtreeSeq[V]       { return f.idx.FindWithin(lo, hi) }
func (f *Front[V]) FindDisjoint(lo, hi point.Point) rtreeSeq[V]     { return f.idx.FindDisjoint(lo, hi) }
func (f *Front[V]) FindSatisfying(fn func(point.Point) bool) rtreeSeq[V] {
	return f.idx.FindSatisfying(fn)
}

func (f *Front[V]) FindNearest(p point.Point, k int) *rtree.Cursor[V] {
	return f.idx.FindNearest(p, k)
}

func (f *Front[V]) FindNearestFiltered(p point.Point, k int, preds ...predicate.Predicate) *rtree.Cursor[V] {
	return f.idx.FindNearestFiltered(p, k, preds...)
}

func (f *Front[V]) MinElement(d int) (*rtree.Cursor[V], bool) { return f.idx.MinElement(d) }
func (f *Front[V]) MaxElement(d int) (*rtree.Cursor[V], bool) { return f.idx.MaxElement(d) }

func (f *Front[V]) All() rtreeSeq[V] { return f.idx.All() }

func (f *Front[V]) Clone() *Front[V] { return &Front[V]{idx: f.idx.Clone(), dir: f.dir} }

// Equal reports whether f and o hold the same entries under the same
// Direction, independent of insertion order or tree shape.
func (f *Front[V]) Equal(o *Front[V]) bool {
	if o == nil {
		return false
	}
	if len(f.dir) != len(o.dir) {
		return false
	}
	for i := range f.dir {
		if f.dir[i] != o.dir[i] {
			return false
		}
	}
	return f.idx.Equal(o.idx)
}

// rtreeSeq shortens the iter.Seq2 signature used throughout this file.
type rtreeSeq[V any] = func(yield func(point.Point, V) bool)

// Ideal returns the best attainable value in dimension d: the minimum if
// minimising, the maximum otherwise.
func (f *Front[V]) Ideal(d int) (float64, bool) {
	if f.dir.Minimizes(d) {
		cur, ok := f.idx.MinElement(d)
		if !ok {
			return 0, false
		}
		return cur.Key().At(d), true
	}
	cur, ok := f.idx.MaxElement(d)
	if !ok {
		return 0, false
	}
	return cur.Key().At(d), true
}

// Nadir returns the worst value among non-dominated points in dimension d.
func (f *Front[V]) Nadir(d int) (float64, bool) {
	if f.dir.Minimizes(d) {
		cur, ok := f.idx.MaxElement(d)
		if !ok {
			return 0, false
		}
		return cur.Key().At(d), true
	}
	cur, ok := f.idx.MinElement(d)
	if !ok {
		return 0, false
	}
	return cur.Key().At(d), true
}

// Worst is an alias of Nadir: the worst attainable value is the nadir.
func (f *Front[V]) Worst(d int) (float64, bool) { return f.Nadir(d) }

// IdealPoint, NadirPoint and WorstPoint assemble the full per-dimension
// extrema points. They return the zero Point and false on an empty front.
func (f *Front[V]) IdealPoint() (point.Point, bool) { return f.assemble(f.Ideal) }
func (f *Front[V]) NadirPoint() (point.Point, bool) { return f.assemble(f.Nadir) }
func (f *Front[V]) WorstPoint() (point.Point, bool) { return f.NadirPoint() }

func (f *Front[V]) assemble(get func(int) (float64, bool)) (point.Point, bool) {
	dim := f.idx.Dimensions()
	if f.idx.Empty() || dim == 0 {
		return point.Point{}, false
	}
	coords := make([]float64, dim)
	for d := 0; d < dim; d++ {
		v, ok := get(d)
		if !ok {
			return point.Point{}, false
		}
		coords[d] = v
	}
	return point.New(coords...), true
}
