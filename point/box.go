// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package point

import (
	"math"

	"github.com/bits-and-blooms/bitset"
)

// Box is an axis-aligned bounding box (min, max). An inverted box (min[i] >
// max[i]) is never observable from the exported constructors: NewBox
// normalises the bounds per axis.
type Box struct {
	Min, Max Point
}

// NewBox builds a Box from two points, swapping per-axis bounds as needed
// so that Min[i] <= Max[i] always holds.
func NewBox(a, b Point) Box {
	min := make([]float64, len(a.c))
	max := make([]float64, len(a.c))
	for i := range a.c {
		if a.c[i] <= b.c[i] {
			min[i], max[i] = a.c[i], b.c[i]
		} else {
			min[i], max[i] = b.c[i], a.c[i]
		}
	}
	return Box{Min: Point{c: min}, Max: Point{c: max}}
}

// FromPoint returns the degenerate box {p, p}.
func FromPoint(p Point) Box { return Box{Min: p, Max: p} }

// Dim returns the box's dimensionality.
func (b Box) Dim() int { return b.Min.Dim() }

// Degenerate reports whether the box has collapsed to a single point.
func (b Box) Degenerate() bool { return b.Min.Equal(b.Max) }

// Volume returns the product of the box's per-axis extents.
func (b Box) Volume() float64 {
	vol := 1.0
	for i := 0; i < b.Dim(); i++ {
		vol *= b.Max.c[i] - b.Min.c[i]
	}
	return vol
}

// sphericalVolume approximates the box's volume with the hypersphere whose
// radius is the box's half-diagonal. A split policy may use this instead of
// Volume to bias against elongated MBRs; Index uses the plain axis-aligned
// Volume by default (DESIGN.md Open Question OQ-3).
func (b Box) sphericalVolume() float64 {
	r := b.Min.Distance(b.Max) / 2
	n := float64(b.Dim())
	// volume of an n-ball of radius r: pi^(n/2) / Gamma(n/2+1) * r^n
	return math.Pow(math.Pi, n/2) / math.Gamma(n/2+1) * math.Pow(r, n)
}

// Centroid returns the box's geometric center.
func (b Box) Centroid() Point {
	c := make([]float64, b.Dim())
	for i := range c {
		c[i] = (b.Min.c[i] + b.Max.c[i]) / 2
	}
	return Point{c: c}
}

// Contains reports whether p lies within the closed box.
func (b Box) Contains(p Point) bool {
	for i := 0; i < b.Dim(); i++ {
		if p.c[i] < b.Min.c[i] || p.c[i] > b.Max.c[i] {
			return false
		}
	}
	return true
}

// ContainsOpen reports whether p lies strictly inside the box, excluding
// the boundary (used by find_within).
func (b Box) ContainsOpen(p Point) bool {
	for i := 0; i < b.Dim(); i++ {
		if p.c[i] <= b.Min.c[i] || p.c[i] >= b.Max.c[i] {
			return false
		}
	}
	return true
}

// ContainsBox reports whether o lies entirely within b.
func (b Box) ContainsBox(o Box) bool {
	for i := 0; i < b.Dim(); i++ {
		if o.Min.c[i] < b.Min.c[i] || o.Max.c[i] > b.Max.c[i] {
			return false
		}
	}
	return true
}

// Overlap reports whether b and o share at least one point.
func (b Box) Overlap(o Box) bool {
	for i := 0; i < b.Dim(); i++ {
		if b.Max.c[i] < o.Min.c[i] || o.Max.c[i] < b.Min.c[i] {
			return false
		}
	}
	return true
}

// Combine returns the smallest box enclosing both b and o.
func (b Box) Combine(o Box) Box {
	min := make([]float64, b.Dim())
	max := make([]float64, b.Dim())
	for i := range min {
		min[i] = math.Min(b.Min.c[i], o.Min.c[i])
		max[i] = math.Max(b.Max.c[i], o.Max.c[i])
	}
	return Box{Min: Point{c: min}, Max: Point{c: max}}
}

// Stretch returns the smallest box enclosing b and the point p.
func (b Box) Stretch(p Point) Box {
	return b.Combine(FromPoint(p))
}

// Enlargement is the volume growth Combine(o) would incur over b, the
// ChooseSubtree heuristic used by Index insertion.
func (b Box) Enlargement(o Box) float64 {
	return b.Combine(o).Volume() - b.Volume()
}

// DistanceTo returns the Euclidean distance from p to the nearest point on
// (or inside) the box, zero if p lies inside b. This is the distance bound
// used by the best-first k-NN traversal.
func (b Box) DistanceTo(p Point) float64 {
	var sum float64
	for i := 0; i < b.Dim(); i++ {
		v := p.c[i]
		lo, hi := b.Min.c[i], b.Max.c[i]
		var d float64
		switch {
		case v < lo:
			d = lo - v
		case v > hi:
			d = v - hi
		default:
			d = 0
		}
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Quadrant returns, as a bitset, which side of the box's centroid each
// coordinate of p falls on (bit i set iff p[i] >= centroid[i]). A bitset is
// used rather than a uint64 bitmask so dimensions beyond 64 still address
// directly.
func (b Box) Quadrant(p Point) *bitset.BitSet {
	c := b.Centroid()
	bs := bitset.New(uint(b.Dim()))
	for i := 0; i < b.Dim(); i++ {
		if p.c[i] >= c.c[i] {
			bs.Set(uint(i))
		}
	}
	return bs
}
