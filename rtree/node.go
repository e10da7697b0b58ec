// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package rtree implements a generic multi-dimensional spatial index:
// insert/erase/find/range/k-NN/min-max-per-dim over
// (key=point.Point -> value=V), backed by an R-tree with bounded fan-out.
package rtree

import "github.com/gaissmai/pareto/point"

// MaxFanout and MinFanout bound a node's branch/entry count: the classic
// Guttman MIN_FANOUT=MAX_FANOUT/2 occupancy rule.
const (
	MaxFanout = 8
	MinFanout = MaxFanout / 2
)

// entry is a leaf payload: a stored key/value pair plus the monotonically
// increasing insertion sequence number used to break k-NN distance ties in
// insertion order.
type entry[V any] struct {
	key   point.Point
	value V
	seq   uint64
}

// branch is an internal-node payload: a child subtree plus the MBR that
// tightly encloses everything that subtree holds.
type branch[V any] struct {
	mbr   point.Box
	child *node[V]
}

// node is either a leaf (level == 0, holds entries) or an internal node
// (level > 0, holds branches). The level tag, not a per-branch dynamic
// check, decides which slice is meaningful.
//
// Each non-root node carries a parent back-reference. A parent's level is
// always strictly higher than its children's, so no cycle is reachable even
// though the pointers form a bidirectional link.
type node[V any] struct {
	parent *node[V]

	level int // 0 == leaf

	entries  []entry[V]
	branches []branch[V]

	mbr point.Box
}

func newLeaf[V any]() *node[V] {
	return &node[V]{level: 0, entries: make([]entry[V], 0, MaxFanout)}
}

func newInternal[V any](level int) *node[V] {
	return &node[V]{level: level, branches: make([]branch[V], 0, MaxFanout)}
}

func (n *node[V]) isLeaf() bool { return n.level == 0 }

func (n *node[V]) count() int {
	if n.isLeaf() {
		return len(n.entries)
	}
	return len(n.branches)
}

// reset clears a node for reuse by the pool, retaining its backing arrays.
func (n *node[V]) reset() {
	n.parent = nil
	n.level = 0
	n.entries = n.entries[:0]
	n.branches = n.branches[:0]
	n.mbr = point.Box{}
}

// recomputeMBR rebuilds n's MBR from its current children/entries, so that
// every internal node's MBR tightly covers its descendants. Called after
// any structural change (insert, erase, split).
func (n *node[V]) recomputeMBR() {
	switch {
	case n.isLeaf() && len(n.entries) > 0:
		b := point.FromPoint(n.entries[0].key)
		for _, e := range n.entries[1:] {
			b = b.Stretch(e.key)
		}
		n.mbr = b
	case n.isLeaf():
		n.mbr = point.Box{}
	case len(n.branches) > 0:
		b := n.branches[0].mbr
		for _, br := range n.branches[1:] {
			b = b.Combine(br.mbr)
		}
		n.mbr = b
	default:
		n.mbr = point.Box{}
	}
}

// updateAncestorMBRs walks from n up to the root, recomputing each
// ancestor's MBR so it stays tight after a leaf-level mutation.
func updateAncestorMBRs[V any](n *node[V]) {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.parent != nil {
			for i := range cur.parent.branches {
				if cur.parent.branches[i].child == cur {
					cur.recomputeMBR()
					cur.parent.branches[i].mbr = cur.mbr
					break
				}
			}
		} else {
			cur.recomputeMBR()
		}
	}
}
