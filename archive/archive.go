// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package archive implements the layered Pareto archive: an ordered stack
// of front.Front values sharing one rtree.Pool, with capacity-bounded
// crowding-distance eviction on the last front.
package archive

import (
	"sort"

	"github.com/gaissmai/pareto/front"
	"github.com/gaissmai/pareto/point"
	"github.com/gaissmai/pareto/rtree"
)

type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Archive is an ordered sequence of Fronts F0, F1, ... plus a capacity C:
// every entry of a front is dominated by some entry of each front above
// it, every front is non-empty, and total size never exceeds C.
type Archive[V any] struct {
	_ noCopy

	fronts   []*front.Front[V]
	dir      point.Direction
	capacity int
	dim      int
	dimSet   bool
	pool     *rtree.Pool[V]
}

// New returns an empty Archive fixed at dimension dim with capacity C.
func New[V any](dim int, dir point.Direction, capacity int) *Archive[V] {
	return &Archive[V]{dir: dir, capacity: capacity, dim: dim, dimSet: true, pool: rtree.NewPool[V]()}
}

// NewAuto is like New but infers dimensionality from the first insert.
func NewAuto[V any](dir point.Direction, capacity int) *Archive[V] {
	return &Archive[V]{dir: dir, capacity: capacity, pool: rtree.NewPool[V]()}
}

// Direction returns the archive's fixed minimise/maximise configuration.
func (a *Archive[V]) Direction() point.Direction { return a.dir }

// Capacity returns the configured total-size cap C.
func (a *Archive[V]) Capacity() int { return a.capacity }

// Layers returns the number of non-empty fronts currently held.
func (a *Archive[V]) Layers() int { return len(a.fronts) }

// Front returns the i'th front (F0 is the top, non-dominated layer), or
// nil if i is out of range.
func (a *Archive[V]) Front(i int) *front.Front[V] {
	if i < 0 || i >= len(a.fronts) {
		return nil
	}
	return a.fronts[i]
}

// Size is the total number of entries across every front.
func (a *Archive[V]) Size() int {
	n := 0
	for _, f := range a.fronts {
		n += f.Size()
	}
	return n
}

// Empty reports whether the archive holds no entries.
func (a *Archive[V]) Empty() bool { return len(a.fronts) == 0 }

// Insert locates the first front that does not dominate p (binary search,
// valid because dominates is monotone under LAYER-DOM), cascades the
// resulting try-insert down through subsequent fronts, and trims the last
// front by crowding distance if the archive is now over capacity.
func (a *Archive[V]) Insert(p point.Point, v V) (inserted bool) {
	if a.capacity <= 0 {
		return false
	}
	if !a.dimSet {
		a.dim = p.Dim()
		a.dimSet = true
	}

	target := a.locateTarget(p)
	inserted = a.tryInsertAt(target, p, v)
	if !inserted {
		return false
	}

	a.trim()
	// The just-inserted entry may have been evicted by trimming.
	if _, ok := a.find(p); !ok {
		return false
	}
	return true
}

// locateTarget finds the smallest front index whose Dominates(p) is
// false, via binary search over the monotone dominates predicate.
func (a *Archive[V]) locateTarget(p point.Point) int {
	lo, hi := 0, len(a.fronts)
	for lo < hi {
		mid := (lo + hi) / 2
		if a.fronts[mid].Dominates(p) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// tryInsertAt implements the recursive try-insert/cascade step: entries p
// displaces from front i are themselves try-inserted at front i+1.
func (a *Archive[V]) tryInsertAt(i int, p point.Point, v V) bool {
	if i >= len(a.fronts) {
		// capacity==0 is rejected by Insert before the cascade ever starts;
		// any overshoot from creating this trailing front is corrected by
		// trim() once the cascade completes.
		a.fronts = append(a.fronts, a.makeFront())
	}

	f := a.fronts[i]

	var displaced []point.Entry[V]
	for q := range f.All() {
		if point.Dominates(p, q, a.dir) {
			cur, _ := f.Find(q)
			displaced = append(displaced, point.Entry[V]{Key: q, Value: cur.Value()})
		}
	}
	for _, e := range displaced {
		f.Erase(e.Key)
	}

	for _, e := range displaced {
		a.tryInsertAt(i+1, e.Key, e.Value)
	}

	_, ok, _ := f.Insert(p, v)
	return ok
}

func (a *Archive[V]) makeFront() *front.Front[V] {
	if a.dimSet {
		return front.NewWithPool[V](a.dim, a.dir, a.pool)
	}
	return front.NewWithPool[V](0, a.dir, a.pool)
}

// trim enforces BOUNDED: while total size exceeds capacity, either drop
// the last front entirely (if dropping it doesn't overshoot) or remove
// its most crowded entries.
func (a *Archive[V]) trim() {
	for a.Size() > a.capacity && len(a.fronts) > 0 {
		last := a.fronts[len(a.fronts)-1]
		excess := a.Size() - a.capacity
		k := last.Size()

		if excess >= k {
			a.fronts = a.fronts[:len(a.fronts)-1]
			continue
		}

		type scored struct {
			key  point.Point
			crowd float64
		}
		var entries []scored
		for q := range last.All() {
			entries = append(entries, scored{key: q, crowd: last.CrowdingDistance(q)})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].crowd < entries[j].crowd })
		for i := 0; i < excess; i++ {
			last.Erase(entries[i].key)
		}
	}
	a.dropEmptyFronts()
}

func (a *Archive[V]) dropEmptyFronts() {
	out := a.fronts[:0]
	for _, f := range a.fronts {
		if !f.Empty() {
			out = append(out, f)
		}
	}
	a.fronts = out
}

func (a *Archive[V]) find(p point.Point) (*rtree.Cursor[V], bool) {
	for _, f := range a.fronts {
		if cur, ok := f.Find(p); ok {
			return cur, true
		}
	}
	return nil, false
}

// Find locates p by linear front-order scan.
func (a *Archive[V]) Find(p point.Point) (*rtree.Cursor[V], bool) { return a.find(p) }

// Erase removes p from whichever front holds it, splices out the front if
// it becomes empty, and promotes any entry in the next front that is no
// longer dominated by anything remaining, recursively.
func (a *Archive[V]) Erase(p point.Point) int {
	idx := -1
	for i, f := range a.fronts {
		if _, ok := f.Find(p); ok {
			idx = i
			break
		}
	}
	if idx == -1 {
		return 0
	}

	a.fronts[idx].Erase(p)
	a.promote(idx)
	a.dropEmptyFronts()
	return 1
}

// promote moves any entry in front i+1 no longer dominated by front i up
// into front i, recursively repeating for i+1, i+2, ...
func (a *Archive[V]) promote(i int) {
	if i+1 >= len(a.fronts) {
		return
	}
	next := a.fronts[i+1]
	cur := a.fronts[i]

	var freed []point.Entry[V]
	for q := range next.All() {
		if !cur.Dominates(q) {
			c, _ := next.Find(q)
			freed = append(freed, point.Entry[V]{Key: q, Value: c.Value()})
		}
	}
	for _, e := range freed {
		next.Erase(e.Key)
		cur.Insert(e.Key, e.Value)
	}
	a.promote(i + 1)
}

// All unions per-front iterators in front order (F0 first).
func (a *Archive[V]) All() func(yield func(point.Point, V) bool) {
	return func(yield func(point.Point, V) bool) {
		for _, f := range a.fronts {
			for p, v := range f.All() {
				if !yield(p, v) {
					return
				}
			}
		}
	}
}

// Merge re-inserts every entry of o into a, one at a time, letting the
// normal Insert cascade re-settle layering and capacity.
func (a *Archive[V]) Merge(o *Archive[V]) {
	for p, v := range o.All() {
		a.Insert(p, v)
	}
}

// Nearest returns the k globally closest entries to p across all fronts
// (not k per front), via an archive-level best-first merge over each
// front's own FindNearest.
func (a *Archive[V]) Nearest(p point.Point, k int) []point.Entry[V] {
	if k <= 0 || a.Empty() {
		return nil
	}

	type cand struct {
		e    point.Entry[V]
		dist float64
	}
	var all []cand
	for _, f := range a.fronts {
		cur := f.FindNearest(p, k)
		for cur.Valid() {
			all = append(all, cand{e: point.Entry[V]{Key: cur.Key(), Value: cur.Value()}, dist: p.Distance(cur.Key())})
			cur.Next()
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].dist < all[j].dist })
	if len(all) > k {
		all = all[:k]
	}
	out := make([]point.Entry[V], len(all))
	for i, c := range all {
		out[i] = c.e
	}
	return out
}

// Hypervolume and Uniformity, the archive's indicator metrics, delegate to
// F0 only: dominated lower layers contribute nothing to these indicators.
func (a *Archive[V]) Hypervolume(ref point.Point) float64 {
	if a.Empty() {
		return 0
	}
	return a.fronts[0].Hypervolume(ref)
}

// Equal reports whether a and o hold the same direction, the same
// capacity, the same number of fronts, and the same entries front-by-front,
// independent of internal tree shape.
func (a *Archive[V]) Equal(o *Archive[V]) bool {
	if o == nil {
		return false
	}
	if len(a.dir) != len(o.dir) || a.capacity != o.capacity {
		return false
	}
	for i := range a.dir {
		if a.dir[i] != o.dir[i] {
			return false
		}
	}
	if len(a.fronts) != len(o.fronts) {
		return false
	}
	for i := range a.fronts {
		if !a.fronts[i].Equal(o.fronts[i]) {
			return false
		}
	}
	return true
}

func (a *Archive[V]) Uniformity() float64 {
	if a.Empty() {
		return 0
	}
	return a.fronts[0].Uniformity()
}
