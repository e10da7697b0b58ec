// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package rtree

import (
	"sort"

	"github.com/gaissmai/pareto/point"
)

// BulkLoad builds a fresh Index from entries in one pass, using a
// Sort-Tile-Recursive style packing: points are sorted and packed into
// leaves, then the tree is assembled level by level from the bottom up,
// instead of by repeated one-at-a-time Insert, at the cost of requiring the
// whole dataset up front.
//
// BulkLoad panics if entries carry inconsistent dimensionality; callers
// that can't guarantee this should Insert one at a time instead.
func BulkLoad[V any](dim int, entries []point.Entry[V]) *Index[V] {
	idx := New[V](dim)
	if len(entries) == 0 {
		return idx
	}

	items := make([]bulkItem[V], len(entries))
	for i, e := range entries {
		if e.Key.Dim() != dim {
			panic("rtree.BulkLoad: inconsistent dimensionality")
		}
		idx.seq++
		items[i] = bulkItem[V]{e: entry[V]{key: e.Key, value: e.Value, seq: idx.seq}}
	}

	idx.root = buildLevel(idx.pool, dim, items)
	idx.size = len(entries)
	return idx
}

type bulkItem[V any] struct {
	e entry[V]
}

// buildLevel sorts items along the first axis and cuts them into
// ceil(n/MaxFanout) consecutive runs of at most MaxFanout points, one leaf
// per run, then assembles leaves bottom-up into internal nodes of at most
// MaxFanout branches each, finally returning the single node left standing
// as the subtree root.
func buildLevel[V any](pool *Pool[V], dim int, items []bulkItem[V]) *node[V] {
	leaves := packLeaves(pool, dim, items, 0)
	level := 0
	current := leaves
	for len(current) > 1 {
		level++
		current = packInternal(pool, level, current)
	}
	return current[0]
}

func packLeaves[V any](pool *Pool[V], dim int, items []bulkItem[V], axis int) []*node[V] {
	if len(items) <= MaxFanout {
		leaf := pool.getLeaf()
		for _, it := range items {
			leaf.entries = append(leaf.entries, it.e)
		}
		leaf.recomputeMBR()
		return []*node[V]{leaf}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].e.key.At(axis) < items[j].e.key.At(axis)
	})

	groupCount := (len(items) + MaxFanout - 1) / MaxFanout
	groupSize := (len(items) + groupCount - 1) / groupCount

	var out []*node[V]
	nextAxis := (axis + 1) % dim
	for start := 0; start < len(items); start += groupSize {
		end := start + groupSize
		if end > len(items) {
			end = len(items)
		}
		out = append(out, packLeaves(pool, dim, items[start:end], nextAxis)...)
	}
	return out
}

func packInternal[V any](pool *Pool[V], level int, children []*node[V]) []*node[V] {
	var out []*node[V]
	for start := 0; start < len(children); start += MaxFanout {
		end := start + MaxFanout
		if end > len(children) {
			end = len(children)
		}
		n := pool.getInternal(level)
		for _, c := range children[start:end] {
			c.parent = n
			n.branches = append(n.branches, branch[V]{mbr: c.mbr, child: c})
		}
		n.recomputeMBR()
		out = append(out, n)
	}
	return out
}
