// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package rtree

import (
	"iter"
	"sort"

	"github.com/gaissmai/pareto/point"
	"github.com/gaissmai/pareto/predicate"
)

// traverse runs a predicate-pruned DFS: a subtree is skipped when its MBR
// can't satisfy any predicate, an entry is emitted only when it satisfies
// all of them. A nil/empty preds list emits everything (used by All).
func traverse[V any](n *node[V], preds []predicate.Predicate, yield func(point.Point, V) bool) bool {
	if n == nil || n.count() == 0 {
		return true
	}
	for _, p := range preds {
		if p.CanPrune(n.mbr) {
			return true
		}
	}
	if n.isLeaf() {
		for _, e := range n.entries {
			if admitsAll(preds, e.key) {
				if !yield(e.key, e.value) {
					return false
				}
			}
		}
		return true
	}
	for _, br := range n.branches {
		if !traverse(br.child, preds, yield) {
			return false
		}
	}
	return true
}

func admitsAll(preds []predicate.Predicate, p point.Point) bool {
	for _, pr := range preds {
		if !pr.Admits(p) {
			return false
		}
	}
	return true
}

// sortBySelectivity orders preds cheapest/most-selective first whenever the
// list contains a Disjoint predicate, using the root MBR volume as the
// discriminator.
func sortBySelectivity(preds []predicate.Predicate, rootVolume float64) {
	hasDisjoint := false
	for _, p := range preds {
		if _, ok := p.(predicate.Disjoint); ok {
			hasDisjoint = true
			break
		}
	}
	if !hasDisjoint {
		return
	}
	sort.SliceStable(preds, func(i, j int) bool {
		return predicate.Selectivity(preds[i], rootVolume) < predicate.Selectivity(preds[j], rootVolume)
	})
}

// allEntries walks every leaf entry in DFS order, yielding its owning node
// and index alongside the entry itself, so callers (MinElement/MaxElement)
// can address it directly without a second lookup.
func allEntries[V any](root *node[V]) iter.Seq2[*node[V], indexedEntry[V]] {
	return func(yield func(*node[V], indexedEntry[V]) bool) {
		var walk func(n *node[V]) bool
		walk = func(n *node[V]) bool {
			if n.isLeaf() {
				for i, e := range n.entries {
					if !yield(n, indexedEntry[V]{idx: i, entry: e}) {
						return false
					}
				}
				return true
			}
			for _, br := range n.branches {
				if !walk(br.child) {
					return false
				}
			}
			return true
		}
		walk(root)
	}
}

type indexedEntry[V any] struct {
	idx   int
	entry entry[V]
}
