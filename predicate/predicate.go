// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package predicate defines the small sum type of spatial filters the
// rtree traversal evaluates: Intersects, Within, Disjoint, Satisfies, and
// the Nearest marker. Each predicate answers two questions for the
// traversal: can a key satisfy it (used to emit an entry), and can any key
// inside a given box satisfy it (used to prune a subtree). Nearest carries
// no useful prune/admit pair of its own; the rtree package special-cases it
// and drives a best-first search instead.
package predicate

import "github.com/gaissmai/pareto/point"

// Predicate is implemented by every filter the traversal understands.
type Predicate interface {
	// Admits reports whether p satisfies the predicate.
	Admits(p point.Point) bool

	// CanPrune reports whether no key inside b could possibly satisfy the
	// predicate, allowing the traversal to skip the whole subtree.
	CanPrune(b point.Box) bool

	// selectivity is used to order a predicate list cheapest/most-selective
	// first when the list contains a Disjoint predicate (see rtree.sortBySelectivity).
	// It is keyed off the root MBR's volume.
	selectivity(rootVolume float64) float64
}

// Intersects admits points inside the closed box (boundary included).
type Intersects struct{ Box point.Box }

func (p Intersects) Admits(k point.Point) bool   { return p.Box.Contains(k) }
func (p Intersects) CanPrune(b point.Box) bool   { return !p.Box.Overlap(b) }
func (p Intersects) selectivity(root float64) float64 {
	return ratio(p.Box.Volume(), root)
}

// Within admits points strictly inside the box, excluding the boundary.
type Within struct{ Box point.Box }

func (p Within) Admits(k point.Point) bool { return p.Box.ContainsOpen(k) }
func (p Within) CanPrune(b point.Box) bool { return !p.Box.Overlap(b) }
func (p Within) selectivity(root float64) float64 {
	return ratio(p.Box.Volume(), root)
}

// Disjoint admits points strictly outside the closed box.
type Disjoint struct{ Box point.Box }

func (p Disjoint) Admits(k point.Point) bool { return !p.Box.Contains(k) }

// CanPrune for Disjoint: a subtree can only be pruned when it lies
// entirely inside the excluded box (every key in it would be rejected).
func (p Disjoint) CanPrune(b point.Box) bool { return p.Box.ContainsBox(b) }
func (p Disjoint) selectivity(root float64) float64 {
	// Disjoint admits almost everything outside a small box: its
	// selectivity is the complement of the excluded volume's share.
	return 1 - ratio(p.Box.Volume(), root)
}

// Satisfies wraps a caller-supplied callable. It always answers "maybe" for
// CanPrune, i.e. it never prunes, since an opaque predicate over the key
// can't be evaluated against an MBR.
type Satisfies struct{ Fn func(point.Point) bool }

func (p Satisfies) Admits(k point.Point) bool   { return p.Fn(k) }
func (p Satisfies) CanPrune(point.Box) bool     { return false }
func (p Satisfies) selectivity(float64) float64 { return 0.5 }

// Nearest is a marker predicate recognised specially by rtree's traversal:
// it never appears in the pruning predicate list, it switches the query
// into the Hjaltason-Samet best-first mode.
type Nearest struct {
	Target point.Point
	K      int
}

func (p Nearest) Admits(point.Point) bool     { return true }
func (p Nearest) CanPrune(point.Box) bool     { return false }
func (p Nearest) selectivity(float64) float64 { return 0 }

func ratio(volume, root float64) float64 {
	if root <= 0 {
		return 0
	}
	return volume / root
}

// Selectivity exposes the unexported selectivity score so rtree can sort a
// predicate list without depending on predicate internals beyond the
// interface.
func Selectivity(p Predicate, rootVolume float64) float64 { return p.selectivity(rootVolume) }
