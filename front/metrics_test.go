// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package front

import (
	"math"
	"testing"

	"github.com/gaissmai/pareto/point"
)

// TestS6ExactHypervolume is scenario S6 from the spec's end-to-end table.
func TestS6ExactHypervolume(t *testing.T) {
	t.Parallel()

	f := New[int](2, point.AllMin(2))
	f.Insert(point.New(0, 2), 1)
	f.Insert(point.New(1, 1), 2)
	f.Insert(point.New(2, 0), 3)

	got := f.Hypervolume(point.New(3, 3))
	want := 6.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Hypervolume = %v, want %v", got, want)
	}
}

func TestHypervolumeEmptyFrontIsZero(t *testing.T) {
	t.Parallel()

	f := New[int](2, point.AllMin(2))
	if got := f.Hypervolume(point.New(1, 1)); got != 0 {
		t.Errorf("Hypervolume of empty front = %v, want 0", got)
	}
}

func TestMonteCarloKernelApproximatesExact(t *testing.T) {
	t.Parallel()

	f := New[int](2, point.AllMin(2))
	f.Insert(point.New(0, 2), 1)
	f.Insert(point.New(1, 1), 2)
	f.Insert(point.New(2, 0), 3)

	ref := point.New(3, 3)
	exact := f.Hypervolume(ref)

	mc := MonteCarloKernel{Samples: 200_000}
	got := f.HypervolumeWithKernel(ref, mc)

	if math.Abs(got-exact) > 0.2 {
		t.Errorf("Monte-Carlo hypervolume = %v, too far from exact %v", got, exact)
	}
}

func TestUniformitySentinelOnSingleton(t *testing.T) {
	t.Parallel()

	f := New[int](2, point.AllMin(2))
	f.Insert(point.New(1, 1), 1)
	if got := f.Uniformity(); !math.IsInf(got, 1) {
		t.Errorf("Uniformity of a singleton front = %v, want +Inf", got)
	}
}

func TestCoverage(t *testing.T) {
	t.Parallel()

	a := New[int](2, point.AllMin(2))
	a.Insert(point.New(1, 1), 1)

	b := New[int](2, point.AllMin(2))
	b.Insert(point.New(2, 2), 1)
	b.Insert(point.New(0, 5), 2) // incomparable with (1,1)

	got := a.Coverage(b)
	want := 0.5
	if got != want {
		t.Errorf("Coverage = %v, want %v", got, want)
	}
}

func TestGDIsZeroWhenFrontsCoincide(t *testing.T) {
	t.Parallel()

	a := New[int](2, point.AllMin(2))
	a.Insert(point.New(1, 1), 1)
	a.Insert(point.New(2, 0), 2)

	b := New[int](2, point.AllMin(2))
	b.Insert(point.New(1, 1), 1)
	b.Insert(point.New(2, 0), 2)

	if got := a.GD(b).Mean; got != 0 {
		t.Errorf("GD between identical fronts = %v, want 0", got)
	}
}

func TestCrowdingDistancePrefersInteriorOverEdge(t *testing.T) {
	t.Parallel()

	f := New[int](2, point.AllMin(2))
	f.Insert(point.New(0, 10), 1)
	f.Insert(point.New(5, 5), 2)
	f.Insert(point.New(10, 0), 3)

	edge := f.CrowdingDistance(point.New(0, 10))
	interior := f.CrowdingDistance(point.New(5, 5))

	if interior >= edge {
		t.Errorf("interior point crowding %v should be smaller than edge point crowding %v", interior, edge)
	}
}

func TestConflictMeasuresAgreeOnSign(t *testing.T) {
	t.Parallel()

	// Perfectly conflicting objectives: as one improves the other worsens.
	f := New[int](2, point.AllMin(2))
	f.Insert(point.New(0, 10), 1)
	f.Insert(point.New(5, 5), 2)
	f.Insert(point.New(10, 0), 3)

	direct := f.DirectConflict(0, 1)
	if direct.Raw <= 0 {
		t.Errorf("DirectConflict.Raw = %v, want > 0 for conflicting objectives", direct.Raw)
	}

	rank := f.RankConflict(0, 1)
	if rank.Raw <= 0 {
		t.Errorf("RankConflict.Raw = %v, want > 0", rank.Raw)
	}
}

func TestAverageDistanceAndNearestDistanceSentinels(t *testing.T) {
	t.Parallel()

	f := New[int](2, point.AllMin(2))
	f.Insert(point.New(1, 1), 1)

	if !math.IsNaN(f.AverageDistance()) {
		t.Error("AverageDistance on a singleton front should be NaN")
	}
	if !math.IsNaN(f.AverageNearestDistance(3)) {
		t.Error("AverageNearestDistance on a singleton front should be NaN")
	}
}
