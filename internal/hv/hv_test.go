// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package hv

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestExactMatchesSpecScenario(t *testing.T) {
	t.Parallel()

	// Spec §8 scenario S6: front {(0,2),(1,1),(2,0)}, reference (3,3) -> 6.
	points := [][]float64{{0, 2}, {1, 1}, {2, 0}}
	ref := []float64{3, 3}

	got := Exact(points, ref)
	want := 6.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Exact = %v, want %v", got, want)
	}
}

func TestExactIgnoresPointsWorseThanReference(t *testing.T) {
	t.Parallel()

	points := [][]float64{{1, 1}, {5, 5}}
	ref := []float64{3, 3}

	got := Exact(points, ref)
	want := Exact([][]float64{{1, 1}}, ref)
	if got != want {
		t.Errorf("Exact with a dominated-by-ref point = %v, want %v (point beyond ref contributes nothing)", got, want)
	}
}

func TestExactSingleAxis(t *testing.T) {
	t.Parallel()

	got := Exact([][]float64{{2}}, []float64{5})
	if got != 3 {
		t.Errorf("1-D hypervolume = %v, want 3", got)
	}
}

func TestMonteCarloApproximatesExact(t *testing.T) {
	t.Parallel()

	points := [][]float64{{0, 2}, {1, 1}, {2, 0}}
	ideal := []float64{0, 0}
	ref := []float64{3, 3}

	rng := rand.New(rand.NewPCG(1, 1))
	got := MonteCarlo(points, ideal, ref, 200_000, rng)
	want := Exact(points, ref)

	if math.Abs(got-want) > 0.15 {
		t.Errorf("MonteCarlo = %v, too far from Exact %v", got, want)
	}
}

func TestMonteCarloZeroSamples(t *testing.T) {
	t.Parallel()

	got := MonteCarlo([][]float64{{1, 1}}, []float64{0, 0}, []float64{2, 2}, 0, rand.New(rand.NewPCG(1, 1)))
	if got != 0 {
		t.Errorf("MonteCarlo with n=0 = %v, want 0", got)
	}
}
