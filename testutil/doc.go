// Package testutil provides testing utilities for lonelypoint.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random structures and for computing
// exact nearest atoms by brute force.
//
// # Random Structures
//
//	rng := testutil.NewRNG(seed)
//	s := rng.RandomStructure(crystal.Cubic(10), 32, "Si", "O")
//
// # Exact Search (Ground Truth)
//
//	d, idx := testutil.ExactNearest(positions, query)
package testutil
