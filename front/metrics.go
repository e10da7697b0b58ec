// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package front

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/gaissmai/pareto/internal/hv"
	"github.com/gaissmai/pareto/point"
)

// DistanceStat pairs a mean with its standard deviation, the companion the
// distance-based indicators below report alongside their headline value.
// On an empty comparison both fields are NaN.
type DistanceStat struct {
	Mean   float64
	StdDev float64
}

func statOf(xs []float64) DistanceStat {
	if len(xs) == 0 {
		return DistanceStat{Mean: math.NaN(), StdDev: math.NaN()}
	}
	mean, std := stat.MeanStdDev(xs, nil)
	return DistanceStat{Mean: mean, StdDev: std}
}

// HypervolumeKernel computes the hypervolume dominated by points, bounded
// above by ref, under direction dir. ideal is supplied for kernels (like
// Monte Carlo sampling) that need a lower sampling bound; exact kernels
// may ignore it.
type HypervolumeKernel interface {
	Compute(points []point.Point, ideal, ref point.Point, dir point.Direction) float64
}

// ExactKernel is the default HypervolumeKernel: the recursive
// hyper-cell-slicing algorithm in internal/hv.
type ExactKernel struct{}

func (ExactKernel) Compute(points []point.Point, _, ref point.Point, dir point.Direction) float64 {
	pts := make([][]float64, len(points))
	for i, p := range points {
		pts[i] = transform(p, dir)
	}
	return hv.Exact(pts, transform(ref, dir))
}

// MonteCarloKernel estimates hypervolume by uniform sampling in the box
// (ideal, ref), a cheaper fallback when exact computation is too expensive.
type MonteCarloKernel struct {
	Samples int
	RNG     *rand.Rand
}

func (k MonteCarloKernel) Compute(points []point.Point, ideal, ref point.Point, dir point.Direction) float64 {
	pts := make([][]float64, len(points))
	for i, p := range points {
		pts[i] = transform(p, dir)
	}
	rng := k.RNG
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 1))
	}
	return hv.MonteCarlo(pts, transform(ideal, dir), transform(ref, dir), k.Samples, rng)
}

// transform maps p into minimisation space: maximised axes are negated so
// every axis reads "lower is better", the standard hypervolume-kernel
// convention.
func transform(p point.Point, dir point.Direction) []float64 {
	out := make([]float64, p.Dim())
	for i := range out {
		if dir.Minimizes(i) {
			out[i] = p.At(i)
		} else {
			out[i] = -p.At(i)
		}
	}
	return out
}

// Hypervolume computes the exact hypervolume dominated by the front,
// bounded above by ref.
func (f *Front[V]) Hypervolume(ref point.Point) float64 {
	return f.HypervolumeWithKernel(ref, ExactKernel{})
}

// HypervolumeWithKernel is Hypervolume generalised over an injected
// HypervolumeKernel (e.g. MonteCarloKernel for large fronts).
func (f *Front[V]) HypervolumeWithKernel(ref point.Point, kernel HypervolumeKernel) float64 {
	if f.Empty() {
		return 0
	}
	pts := make([]point.Point, 0, f.Size())
	for p := range f.idx.All() {
		pts = append(pts, p)
	}
	ideal, _ := f.IdealPoint()
	return kernel.Compute(pts, ideal, ref, f.dir)
}

// Coverage returns the fraction of rhs's points dominated by f.
func (f *Front[V]) Coverage(rhs *Front[V]) float64 {
	if rhs.Empty() {
		return 0
	}
	hits := 0
	for q := range rhs.idx.All() {
		if f.Dominates(q) {
			hits++
		}
	}
	return float64(hits) / float64(rhs.Size())
}

// nearestDistances returns, for each point in a, its Euclidean distance to
// the nearest point in b.
func nearestDistances[V, W any](a *Front[V], b *Front[W]) []float64 {
	out := make([]float64, 0, a.Size())
	for p := range a.idx.All() {
		md := math.Inf(1)
		for q := range b.idx.All() {
			if d := p.Distance(q); d < md {
				md = d
			}
		}
		out = append(out, md)
	}
	return out
}

// GD is the generational distance from f to reference: the mean (and
// standard deviation) of each of f's points' distance to its nearest
// neighbour in reference.
func (f *Front[V]) GD(reference *Front[V]) DistanceStat {
	return statOf(nearestDistances(f, reference))
}

// IGD is the inverted generational distance: GD with the roles of f and
// reference swapped.
func (f *Front[V]) IGD(reference *Front[V]) DistanceStat {
	return statOf(nearestDistances(reference, f))
}

// Hausdorff is max(GD, IGD) between f and reference.
func (f *Front[V]) Hausdorff(reference *Front[V]) float64 {
	gd := f.GD(reference).Mean
	igd := f.IGD(reference).Mean
	return math.Max(gd, igd)
}

// plusDistance is the IGD+ "distance to the dominated region": the amount
// a would need to improve, per axis, to dominate z; axes where a already
// dominates or matches z contribute zero.
func plusDistance(a, z point.Point, dir point.Direction) float64 {
	var sum float64
	for i := 0; i < a.Dim(); i++ {
		var d float64
		if dir.Minimizes(i) {
			if a.At(i) > z.At(i) {
				d = a.At(i) - z.At(i)
			}
		} else if a.At(i) < z.At(i) {
			d = z.At(i) - a.At(i)
		}
		sum += d * d
	}
	return math.Sqrt(sum)
}

// IGDPlus is the IGD+ indicator: for each point z in reference, the
// minimum plusDistance to any point in f, averaged with its standard
// deviation.
func (f *Front[V]) IGDPlus(reference *Front[V]) DistanceStat {
	out := make([]float64, 0, reference.Size())
	for z := range reference.idx.All() {
		md := math.Inf(1)
		for a := range f.idx.All() {
			if d := plusDistance(a, z, f.dir); d < md {
				md = d
			}
		}
		out = append(out, md)
	}
	return statOf(out)
}

// Uniformity is the minimum pairwise distance between entries; +Inf on a
// front with fewer than two entries.
func (f *Front[V]) Uniformity() float64 {
	pts := make([]point.Point, 0, f.Size())
	for p := range f.idx.All() {
		pts = append(pts, p)
	}
	if len(pts) < 2 {
		return math.Inf(1)
	}
	min := math.Inf(1)
	for i := range pts {
		for j := i + 1; j < len(pts); j++ {
			if d := pts[i].Distance(pts[j]); d < min {
				min = d
			}
		}
	}
	return min
}

// AverageDistance is the mean of all pairwise distances between entries.
// NaN on a front with fewer than two entries.
func (f *Front[V]) AverageDistance() float64 {
	pts := make([]point.Point, 0, f.Size())
	for p := range f.idx.All() {
		pts = append(pts, p)
	}
	if len(pts) < 2 {
		return math.NaN()
	}
	var sum float64
	var pairs int
	for i := range pts {
		for j := i + 1; j < len(pts); j++ {
			sum += pts[i].Distance(pts[j])
			pairs++
		}
	}
	return sum / float64(pairs)
}

// AverageNearestDistance averages, over every entry, the mean distance to
// its k nearest other entries. A typical choice for k is 5.
func (f *Front[V]) AverageNearestDistance(k int) float64 {
	if f.Size() < 2 || k <= 0 {
		return math.NaN()
	}
	if k > f.Size()-1 {
		k = f.Size() - 1
	}
	var sum float64
	for p := range f.idx.All() {
		cur := f.idx.FindNearest(p, k+1)
		var nearestSum float64
		count := 0
		for cur.Valid() {
			if !cur.Key().Equal(p) {
				nearestSum += p.Distance(cur.Key())
				count++
			}
			cur.Next()
		}
		if count > 0 {
			sum += nearestSum / float64(count)
		}
	}
	return sum / float64(f.Size())
}

// CrowdingDistance sums, over every dimension, the distance from p to its
// three nearest neighbours along that axis within the box spanned by
// worst and ideal.
func (f *Front[V]) CrowdingDistance(p point.Point) float64 {
	dim := f.Dimensions()
	var total float64
	for d := 0; d < dim; d++ {
		var diffs []float64
		for q := range f.idx.All() {
			if q.Equal(p) {
				continue
			}
			diffs = append(diffs, math.Abs(q.At(d)-p.At(d)))
		}
		sort.Float64s(diffs)
		k := 3
		if len(diffs) < k {
			k = len(diffs)
		}
		for i := 0; i < k; i++ {
			total += diffs[i]
		}
	}
	return total
}

// ConflictMeasure pairs a raw conflict score with its normalised
// counterpart.
type ConflictMeasure struct {
	Raw        float64
	Normalized float64
}

// DirectConflict measures conflict between dimensions a and b by summing,
// over every entry, the spread between its two distances-to-ideal, unscaled.
func (f *Front[V]) DirectConflict(a, b int) ConflictMeasure {
	idealA, _ := f.Ideal(a)
	idealB, _ := f.Ideal(b)
	var raw float64
	for p := range f.idx.All() {
		da := distToIdeal(p.At(a), idealA, f.dir.Minimizes(a))
		db := distToIdeal(p.At(b), idealB, f.dir.Minimizes(b))
		raw += math.Max(da, db) - math.Min(da, db)
	}
	rangeA := axisRange(f, a)
	rangeB := axisRange(f, b)
	denom := math.Max(rangeA, rangeB) * float64(f.Size())
	norm := 0.0
	if denom != 0 {
		norm = raw / denom
	}
	return ConflictMeasure{Raw: raw, Normalized: norm}
}

func distToIdeal(v, ideal float64, minimizes bool) float64 {
	if minimizes {
		return v - ideal
	}
	return ideal - v
}

func axisRange[V any](f *Front[V], d int) float64 {
	ideal, _ := f.Ideal(d)
	worst, _ := f.Worst(d)
	if f.dir.Minimizes(d) {
		return worst - ideal
	}
	return ideal - worst
}

// MaxMinConflict is DirectConflict normalised per-axis by its range before
// summation, insensitive to linear rescaling of either objective.
func (f *Front[V]) MaxMinConflict(a, b int) ConflictMeasure {
	idealA, _ := f.Ideal(a)
	idealB, _ := f.Ideal(b)
	rangeA := axisRange(f, a)
	rangeB := axisRange(f, b)

	var raw float64
	for p := range f.idx.All() {
		da := distToIdeal(p.At(a), idealA, f.dir.Minimizes(a))
		db := distToIdeal(p.At(b), idealB, f.dir.Minimizes(b))
		if rangeA != 0 {
			da /= rangeA
		}
		if rangeB != 0 {
			db /= rangeB
		}
		raw += math.Max(da, db) - math.Min(da, db)
	}
	norm := 0.0
	if f.Size() > 0 {
		norm = raw / float64(f.Size())
	}
	return ConflictMeasure{Raw: raw, Normalized: norm}
}

// RankConflict is the non-parametric conflict measure: entries are ranked
// independently along each axis and the measure sums the rank-position
// spread. It is insensitive to any order-preserving (monotone) rescaling.
func (f *Front[V]) RankConflict(a, b int) ConflictMeasure {
	type kv struct {
		v    float64
		rank int
	}
	var av, bv []float64
	for p := range f.idx.All() {
		av = append(av, p.At(a))
		bv = append(bv, p.At(b))
	}

	rankOf := func(values []float64, minimize bool) map[float64]int {
		sorted := append([]float64(nil), values...)
		sort.Slice(sorted, func(i, j int) bool {
			if minimize {
				return sorted[i] < sorted[j]
			}
			return sorted[i] > sorted[j]
		})
		ranks := make(map[float64]int, len(sorted))
		for i, v := range sorted {
			ranks[v] = i + 1
		}
		return ranks
	}

	ranksA := rankOf(av, f.dir.Minimizes(a))
	ranksB := rankOf(bv, f.dir.Minimizes(b))

	var raw float64
	for p := range f.idx.All() {
		ra := float64(ranksA[p.At(a)])
		rb := float64(ranksB[p.At(b)])
		raw += math.Max(ra, rb) - math.Min(ra, rb)
	}

	n := float64(f.Size())
	var denom float64
	for i := 1; i <= f.Size(); i++ {
		denom += math.Abs(2*float64(i) - n - 1)
	}
	norm := 0.0
	if denom != 0 {
		norm = raw / denom
	}
	return ConflictMeasure{Raw: raw, Normalized: norm}
}
