// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Command paretodemo streams a synthetic 3-objective candidate population
// into an Archive and reports layer sizes and hypervolume as it grows.
//
// The walkthrough runs single-threaded: there is no background worker or
// channel plumbing to demonstrate, just the archive filling up and its
// layer sizes and hypervolume changing as entries arrive.
package main

import (
	"log"
	"math/rand/v2"

	"github.com/gaissmai/pareto/archive"
	"github.com/gaissmai/pareto/point"
)

func main() {
	log.SetFlags(log.Lmicroseconds)

	const (
		dim      = 3
		capacity = 50
		streamed = 2000
	)

	dir := point.AllMin(dim)
	arc := archive.New[string](dim, dir, capacity)

	rng := rand.New(rand.NewPCG(42, 42))
	ref := point.New(1, 1, 1)

	for i := 0; i < streamed; i++ {
		p := point.New(rng.Float64(), rng.Float64(), rng.Float64())
		label := "candidate"
		arc.Insert(p, label)

		if (i+1)%200 == 0 {
			log.Printf("streamed %d: layers=%d size=%d hv(F0)=%.4f",
				i+1, arc.Layers(), arc.Size(), arc.Hypervolume(ref))
			for l := 0; l < arc.Layers(); l++ {
				log.Printf("  F%d: %d entries", l, arc.Front(l).Size())
			}
		}
	}

	log.Printf("final: layers=%d size=%d hv(F0)=%.4f uniformity(F0)=%.4f",
		arc.Layers(), arc.Size(), arc.Hypervolume(ref), arc.Uniformity())
}
