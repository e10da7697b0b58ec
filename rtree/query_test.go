// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package rtree

import (
	"testing"

	"github.com/gaissmai/pareto/point"
	"github.com/gaissmai/pareto/predicate"
)

func TestFindSatisfying(t *testing.T) {
	t.Parallel()

	idx := New[int](2)
	idx.Insert(point.New(1, 1), 1)
	idx.Insert(point.New(2, 2), 2)
	idx.Insert(point.New(3, 3), 3)

	var got []int
	for _, v := range idx.FindSatisfying(func(p point.Point) bool { return p.At(0) >= 2 }) {
		got = append(got, v)
	}
	if len(got) != 2 {
		t.Errorf("FindSatisfying matched %d entries, want 2", len(got))
	}
}

func TestQueryAllCombinesPredicates(t *testing.T) {
	t.Parallel()

	idx := New[int](2)
	idx.Insert(point.New(1, 1), 1)
	idx.Insert(point.New(5, 5), 2)
	idx.Insert(point.New(9, 9), 3)

	box := point.NewBox(point.New(0, 0), point.New(6, 6))
	var got []int
	for _, v := range idx.QueryAll(
		predicate.Intersects{Box: box},
		predicate.Satisfies{Fn: func(p point.Point) bool { return p.At(0) > 2 }},
	) {
		got = append(got, v)
	}
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("QueryAll result = %v, want [2]", got)
	}
}

func TestCursorPrevNextAndErase(t *testing.T) {
	t.Parallel()

	idx := New[int](2)
	idx.Insert(point.New(0, 0), 1)
	idx.Insert(point.New(1, 1), 2)

	cur := idx.FindIntersectionCursor(point.New(0, 0), point.New(1, 1))
	if !cur.Valid() {
		t.Fatal("cursor should be valid at start")
	}
	if !cur.Next() {
		t.Fatal("cursor should advance to the second entry")
	}
	if !cur.Prev() {
		t.Fatal("cursor should step back to the first entry")
	}

	if !cur.Erase() {
		t.Fatal("Erase should report true for a valid cursor position")
	}
	if idx.Size() != 1 {
		t.Errorf("Size after cursor Erase = %d, want 1", idx.Size())
	}
}

func TestEmptyCursorInvalid(t *testing.T) {
	t.Parallel()

	idx := New[int](2)
	cur := idx.EmptyCursor()
	if cur.Valid() {
		t.Error("EmptyCursor must report Valid()==false")
	}
	if cur.Erase() {
		t.Error("Erase on an invalid cursor must report false")
	}
}
