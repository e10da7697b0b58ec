// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package rtree

import (
	"container/heap"

	"github.com/gaissmai/pareto/point"
	"github.com/gaissmai/pareto/predicate"
)

// pqItem is either a pending subtree (n != nil) or a candidate entry
// (n == nil), ordered by ascending distance lower bound to the query
// point; entry ties are broken by insertion sequence, so equidistant
// entries come out in insertion order.
type pqItem[V any] struct {
	dist float64
	seq  uint64
	n    *node[V]
	e    entry[V]
}

type pq[V any] []pqItem[V]

func (q pq[V]) Len() int { return len(q) }
func (q pq[V]) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].seq < q[j].seq
}
func (q pq[V]) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *pq[V]) Push(x any)        { *q = append(*q, x.(pqItem[V])) }
func (q *pq[V]) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// FindNearest returns the k entries nearest to p in non-decreasing
// distance order, via the Hjaltason-Samet incremental best-first
// algorithm: a min-priority-queue of (node-or-entry, distance lower
// bound) is repeatedly popped; nodes enqueue their children, entries are
// emitted. Ties at equal distance come out in insertion order.
//
// If k > Size(), all entries are returned.
func (idx *Index[V]) FindNearest(p point.Point, k int) *Cursor[V] {
	items := idx.nearestAll(p, k, nil)
	return newMaterializedCursor(idx, items)
}

// FindNearestFiltered is FindNearest combined with extra predicates. An
// entry popped off the queue always counts toward the k quota, even if it
// fails the extra predicates; only entries that pass are emitted, so the
// result degrades gracefully from "k nearest satisfying the filter" to
// "at most k among the overall k nearest".
func (idx *Index[V]) FindNearestFiltered(p point.Point, k int, preds ...predicate.Predicate) *Cursor[V] {
	items := idx.nearestAll(p, k, preds)
	return newMaterializedCursor(idx, items)
}

func (idx *Index[V]) nearestAll(p point.Point, k int, preds []predicate.Predicate) []point.Entry[V] {
	if k <= 0 || idx.size == 0 {
		return nil
	}

	q := &pq[V]{}
	heap.Init(q)
	heap.Push(q, pqItem[V]{dist: idx.root.mbr.DistanceTo(p), n: idx.root})

	var out []point.Entry[V]
	popped := 0

	for q.Len() > 0 && popped < k {
		item := heap.Pop(q).(pqItem[V])

		if item.n != nil {
			n := item.n
			if n.isLeaf() {
				for _, e := range n.entries {
					heap.Push(q, pqItem[V]{dist: p.Distance(e.key), seq: e.seq, e: e})
				}
			} else {
				for _, br := range n.branches {
					heap.Push(q, pqItem[V]{dist: br.mbr.DistanceTo(p), n: br.child})
				}
			}
			continue
		}

		popped++
		if admitsAll(preds, item.e.key) {
			out = append(out, point.Entry[V]{Key: item.e.key, Value: item.e.value})
		}
	}

	return out
}
