// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package rtree

import (
	"math/rand/v2"
	"testing"

	"github.com/gaissmai/pareto/point"
)

func collect[V any](idx *Index[V]) []point.Point {
	var out []point.Point
	for p := range idx.All() {
		out = append(out, p)
	}
	return out
}

func TestInsertFindErase(t *testing.T) {
	t.Parallel()

	idx := New[string](2)
	p := point.New(1, 2)

	cur, inserted, err := idx.Insert(p, "a")
	if err != nil || !inserted || !cur.Valid() {
		t.Fatalf("Insert = (%v, %v, %v), want success", cur, inserted, err)
	}
	if idx.Size() != 1 {
		t.Errorf("Size = %d, want 1", idx.Size())
	}

	// Re-inserting the same key must not add a duplicate.
	cur2, inserted2, err2 := idx.Insert(p, "b")
	if err2 != nil || inserted2 {
		t.Fatalf("second Insert = (%v, %v), want inserted=false", inserted2, err2)
	}
	if cur2.Value() != "a" {
		t.Errorf("existing value changed: got %v, want a", cur2.Value())
	}

	found, ok := idx.Find(p)
	if !ok || found.Value() != "a" {
		t.Errorf("Find = (%v, %v), want (a, true)", found, ok)
	}

	if n := idx.Erase(p); n != 1 {
		t.Errorf("Erase = %d, want 1", n)
	}
	if idx.Size() != 0 {
		t.Errorf("Size after erase = %d, want 0", idx.Size())
	}
	if n := idx.Erase(p); n != 0 {
		t.Errorf("second Erase = %d, want 0", n)
	}
}

func TestAtAndMustFind(t *testing.T) {
	t.Parallel()

	idx := New[string](2)
	idx.Insert(point.New(1, 1), "a")

	v, err := idx.At(point.New(1, 1))
	if err != nil || v != "a" {
		t.Fatalf("At(present) = (%v, %v), want (a, nil)", v, err)
	}

	if _, err := idx.At(point.New(9, 9)); err == nil {
		t.Error("At(absent) should return a KeyNotFoundError")
	}

	if got := idx.MustFind(point.New(1, 1)); got != "a" {
		t.Errorf("MustFind(present) = %v, want a", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("MustFind(absent) should panic")
		}
	}()
	idx.MustFind(point.New(9, 9))
}

func TestDimensionMismatch(t *testing.T) {
	t.Parallel()

	idx := New[int](2)
	idx.Insert(point.New(1, 2), 1)

	_, _, err := idx.Insert(point.New(1, 2, 3), 2)
	if err == nil {
		t.Fatal("expected a DimensionMismatchError")
	}
}

func TestNewAutoInfersDimension(t *testing.T) {
	t.Parallel()

	idx := NewAuto[int]()
	if idx.Dimensions() != 0 {
		t.Fatalf("Dimensions before first insert = %d, want 0", idx.Dimensions())
	}
	idx.Insert(point.New(1, 2, 3), 1)
	if idx.Dimensions() != 3 {
		t.Errorf("Dimensions after first insert = %d, want 3", idx.Dimensions())
	}
}

func TestFindIntersectionIncludesBoundaryFindWithinExcludes(t *testing.T) {
	t.Parallel()

	idx := New[int](2)
	p := point.New(1, 1)
	idx.Insert(p, 1)

	// find_within(p,p) must be empty; find_intersection(p,p) must be one
	// entry (spec §8 boundary behaviours).
	within := idx.FindWithinCursor(p, p)
	if within.Valid() {
		t.Error("FindWithin(p,p) should be empty")
	}

	inter := idx.FindIntersectionCursor(p, p)
	if !inter.Valid() || inter.Len() != 1 {
		t.Errorf("FindIntersection(p,p) len = %d, want 1", inter.Len())
	}
}

func TestFindDisjoint(t *testing.T) {
	t.Parallel()

	idx := New[int](2)
	idx.Insert(point.New(0, 0), 1)
	idx.Insert(point.New(5, 5), 2)
	idx.Insert(point.New(10, 10), 3)

	cur := idx.FindDisjointCursor(point.New(0, 0), point.New(6, 6))
	var got []point.Point
	for cur.Valid() {
		got = append(got, cur.Key())
		cur.Next()
	}
	if len(got) != 1 || !got[0].Equal(point.New(10, 10)) {
		t.Errorf("FindDisjoint = %v, want [(10,10)]", got)
	}
}

func TestFindNearestKGreaterThanSizeReturnsAll(t *testing.T) {
	t.Parallel()

	idx := New[int](2)
	idx.Insert(point.New(0, 0), 1)
	idx.Insert(point.New(1, 1), 2)
	idx.Insert(point.New(2, 2), 3)

	cur := idx.FindNearest(point.New(0, 0), 100)
	if cur.Len() != 3 {
		t.Errorf("FindNearest(k>size) len = %d, want 3", cur.Len())
	}
}

func TestFindNearestOrderAndTieBreakByInsertionOrder(t *testing.T) {
	t.Parallel()

	idx := New[string](2)
	// Two points equidistant from the origin; insertion order a then b.
	idx.Insert(point.New(1, 0), "a")
	idx.Insert(point.New(0, 1), "b")
	idx.Insert(point.New(5, 5), "c")

	cur := idx.FindNearest(point.New(0, 0), 2)
	if cur.Len() != 2 {
		t.Fatalf("len = %d, want 2", cur.Len())
	}
	if cur.Value() != "a" {
		t.Errorf("first nearest = %v, want a (insertion-order tie-break)", cur.Value())
	}
	cur.Next()
	if cur.Value() != "b" {
		t.Errorf("second nearest = %v, want b", cur.Value())
	}
}

func TestMinMaxElement(t *testing.T) {
	t.Parallel()

	idx := New[int](2)
	idx.Insert(point.New(3, 9), 1)
	idx.Insert(point.New(1, 5), 2)
	idx.Insert(point.New(7, 2), 3)

	minCur, ok := idx.MinElement(0)
	if !ok || minCur.Key().At(0) != 1 {
		t.Errorf("MinElement(0) = %v, want key.At(0)==1", minCur.Key())
	}
	maxCur, ok := idx.MaxElement(1)
	if !ok || maxCur.Key().At(1) != 9 {
		t.Errorf("MaxElement(1) = %v, want key.At(1)==9", maxCur.Key())
	}

	empty := New[int](2)
	if _, ok := empty.MinElement(0); ok {
		t.Error("MinElement on empty index should report false")
	}
}

func TestBulkLoadMatchesSequentialInsert(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 1))
	entries := make([]point.Entry[int], 200)
	for i := range entries {
		entries[i] = point.Entry[int]{
			Key:   point.New(rng.Float64()*100, rng.Float64()*100),
			Value: i,
		}
	}

	bulk := BulkLoad[int](2, entries)
	seq := New[int](2)
	for _, e := range entries {
		seq.Insert(e.Key, e.Value)
	}

	if bulk.Size() != seq.Size() {
		t.Fatalf("bulk size = %d, sequential size = %d", bulk.Size(), seq.Size())
	}
	if !bulk.Equal(seq) {
		t.Error("BulkLoad result should equal a sequentially-built index holding the same entries")
	}
}

func TestInsertEraseRoundTrip(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(7, 7))
	idx := New[int](2)
	before := New[int](2)

	var keys []point.Point
	for i := 0; i < 50; i++ {
		p := point.New(rng.Float64()*50, rng.Float64()*50)
		keys = append(keys, p)
		idx.Insert(p, i)
		before.Insert(p, i)
	}

	p := point.New(rng.Float64()*50, rng.Float64()*50)
	idx.Insert(p, 999)
	idx.Erase(p)

	if !idx.Equal(before) {
		t.Error("insert then erase the same key must leave the container equal to its pre-insert state")
	}
}

// invariantMBRTight (which also checks PARENT-LINK) and invariantOccupancy
// implement three of spec §8's structural invariants, walked recursively
// from the root.
func invariantMBRTight[V any](t *testing.T, n *node[V]) {
	t.Helper()
	if n == nil || n.count() == 0 {
		return
	}
	if n.isLeaf() {
		want := point.FromPoint(n.entries[0].key)
		for _, e := range n.entries[1:] {
			want = want.Stretch(e.key)
		}
		if !want.Min.Equal(n.mbr.Min) || !want.Max.Equal(n.mbr.Max) {
			t.Errorf("leaf MBR not tight: got %v, want %v", n.mbr, want)
		}
		return
	}
	want := n.branches[0].mbr
	for _, br := range n.branches[1:] {
		want = want.Combine(br.mbr)
	}
	if !want.Min.Equal(n.mbr.Min) || !want.Max.Equal(n.mbr.Max) {
		t.Errorf("internal MBR not tight: got %v, want %v", n.mbr, want)
	}
	for _, br := range n.branches {
		if br.child.parent != n {
			t.Error("PARENT-LINK violated: child's parent does not point back")
		}
		invariantMBRTight(t, br.child)
	}
}

func invariantOccupancy[V any](t *testing.T, n *node[V], isRoot bool) {
	t.Helper()
	if n == nil {
		return
	}
	if !isRoot && n.count() > 0 && n.count() < MinFanout {
		t.Errorf("non-root node occupancy = %d, below MinFanout=%d", n.count(), MinFanout)
	}
	if n.count() > MaxFanout {
		t.Errorf("node occupancy = %d, above MaxFanout=%d", n.count(), MaxFanout)
	}
	if !n.isLeaf() {
		for _, br := range n.branches {
			invariantOccupancy(t, br.child, false)
		}
	}
}

func TestInvariantsHoldAfterRandomMutations(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 3))
	idx := New[int](2)

	var live []point.Point
	for i := 0; i < 500; i++ {
		if len(live) > 0 && rng.Float64() < 0.3 {
			j := rng.IntN(len(live))
			idx.Erase(live[j])
			live = append(live[:j], live[j+1:]...)
			continue
		}
		p := point.New(rng.Float64()*100, rng.Float64()*100)
		if _, inserted, _ := idx.Insert(p, i); inserted {
			live = append(live, p)
		}
	}

	if idx.Size() != len(live) {
		t.Fatalf("Size = %d, want %d", idx.Size(), len(live))
	}
	invariantMBRTight(t, idx.root)
	invariantOccupancy(t, idx.root, true)
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	idx := New[int](2)
	idx.Insert(point.New(1, 1), 1)
	idx.Insert(point.New(2, 2), 2)

	clone := idx.Clone()
	if !idx.Equal(clone) {
		t.Fatal("clone should be structurally equal to the original")
	}

	clone.Insert(point.New(3, 3), 3)
	if idx.Size() == clone.Size() {
		t.Error("mutating the clone must not affect the original")
	}
}
