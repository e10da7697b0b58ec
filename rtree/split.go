// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package rtree

import "github.com/gaissmai/pareto/point"

// splitIfNeeded checks n for MAX_FANOUT overflow and, if needed, splits it
// and propagates the split upward, possibly growing the tree by one level
// when the root itself overflows - the classic Guttman R-tree insertion
// algorithm.
func (idx *Index[V]) splitIfNeeded(n *node[V]) {
	if n.count() <= MaxFanout {
		return
	}

	left, right := idx.splitNode(n)

	if n.parent == nil {
		newRoot := idx.pool.getInternal(n.level + 1)
		left.parent, right.parent = newRoot, newRoot
		newRoot.branches = append(newRoot.branches,
			branch[V]{mbr: left.mbr, child: left},
			branch[V]{mbr: right.mbr, child: right},
		)
		newRoot.recomputeMBR()
		idx.root = newRoot
		return
	}

	parent := n.parent
	for i := range parent.branches {
		if parent.branches[i].child == left {
			parent.branches[i].mbr = left.mbr
			break
		}
	}
	right.parent = parent
	parent.branches = append(parent.branches, branch[V]{mbr: right.mbr, child: right})
	parent.recomputeMBR()

	idx.splitIfNeeded(parent)
}

// splitNode partitions n's overflowing items into two groups of at least
// MIN_FANOUT each. n is reused in place as the "left" result so existing
// parent branch pointers stay valid; "right" is a freshly allocated node
// of the same kind.
func (idx *Index[V]) splitNode(n *node[V]) (left, right *node[V]) {
	if n.isLeaf() {
		return idx.splitLeaf(n)
	}
	return idx.splitInternal(n)
}

type splitGroup struct {
	members []int
	mbr     point.Box
}

func (g *splitGroup) add(i int, b point.Box) {
	g.members = append(g.members, i)
	if len(g.members) == 1 {
		g.mbr = b
	} else {
		g.mbr = g.mbr.Combine(b)
	}
}

// partition runs the quadratic seed-pick-and-assign split policy over n
// boxes, returning the membership of group A and group B.
func partition(boxes []point.Box) (a, b splitGroup) {
	seedA, seedB := pickSeeds(boxes)
	a.add(seedA, boxes[seedA])
	b.add(seedB, boxes[seedB])

	assigned := make([]bool, len(boxes))
	assigned[seedA], assigned[seedB] = true, true
	remaining := len(boxes) - 2

	for remaining > 0 {
		if len(a.members)+remaining <= MinFanout {
			assignAllTo(&a, boxes, assigned)
			return a, b
		}
		if len(b.members)+remaining <= MinFanout {
			assignAllTo(&b, boxes, assigned)
			return a, b
		}

		next, toA := pickNext(boxes, assigned, a, b)
		if toA {
			a.add(next, boxes[next])
		} else {
			b.add(next, boxes[next])
		}
		assigned[next] = true
		remaining--
	}
	return a, b
}

func assignAllTo(g *splitGroup, boxes []point.Box, assigned []bool) {
	for i, done := range assigned {
		if !done {
			g.add(i, boxes[i])
			assigned[i] = true
		}
	}
}

// pickSeeds selects the pair of boxes whose combined MBR would waste the
// most volume.
func pickSeeds(boxes []point.Box) (int, int) {
	bestI, bestJ := 0, 1
	bestWaste := -1.0
	for i := 0; i < len(boxes); i++ {
		for j := i + 1; j < len(boxes); j++ {
			combined := boxes[i].Combine(boxes[j])
			waste := combined.Volume() - boxes[i].Volume() - boxes[j].Volume()
			if waste > bestWaste {
				bestI, bestJ, bestWaste = i, j, waste
			}
		}
	}
	return bestI, bestJ
}

// pickNext chooses the next unassigned box and which group it should join:
// whichever group's MBR would grow least to absorb it, ties broken toward
// the currently smaller group.
func pickNext(boxes []point.Box, assigned []bool, a, b splitGroup) (idx int, toA bool) {
	bestIdx := -1
	bestDiff := 0.0
	bestToA := true

	for i, done := range assigned {
		if done {
			continue
		}
		growA := a.mbr.Combine(boxes[i]).Volume() - a.mbr.Volume()
		growB := b.mbr.Combine(boxes[i]).Volume() - b.mbr.Volume()

		diff := growA - growB
		if diff < 0 {
			diff = -diff
		}

		if bestIdx == -1 || diff > bestDiff {
			bestIdx = i
			bestDiff = diff
			switch {
			case growA < growB:
				bestToA = true
			case growB < growA:
				bestToA = false
			default:
				bestToA = len(a.members) <= len(b.members)
			}
		}
	}
	return bestIdx, bestToA
}

func (idx *Index[V]) splitLeaf(n *node[V]) (left, right *node[V]) {
	boxes := make([]point.Box, len(n.entries))
	for i, e := range n.entries {
		boxes[i] = point.FromPoint(e.key)
	}
	a, b := partition(boxes)

	old := n.entries
	n.entries = make([]entry[V], 0, len(a.members))
	for _, i := range a.members {
		n.entries = append(n.entries, old[i])
	}
	n.recomputeMBR()

	right = idx.pool.getLeaf()
	for _, i := range b.members {
		right.entries = append(right.entries, old[i])
	}
	right.recomputeMBR()

	return n, right
}

func (idx *Index[V]) splitInternal(n *node[V]) (left, right *node[V]) {
	boxes := make([]point.Box, len(n.branches))
	for i, br := range n.branches {
		boxes[i] = br.mbr
	}
	a, b := partition(boxes)

	old := n.branches
	n.branches = make([]branch[V], 0, len(a.members))
	for _, i := range a.members {
		old[i].child.parent = n
		n.branches = append(n.branches, old[i])
	}
	n.recomputeMBR()

	right = idx.pool.getInternal(n.level)
	for _, i := range b.members {
		old[i].child.parent = right
		right.branches = append(right.branches, old[i])
	}
	right.recomputeMBR()

	return n, right
}
