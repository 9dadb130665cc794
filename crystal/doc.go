// Package crystal holds the structure model: lattice cell, atoms and the
// coordinate transforms between fractional and absolute (Cartesian) space.
//
// Cells use the row-vector convention. Row i of a Cell is lattice vector i, so
// a fractional point f maps to absolute space as f·Cell:
//
//	cell := crystal.Cubic(10)
//	abs := cell.FracToCart(crystal.Vec3{0.5, 0.5, 0.5}) // (5, 5, 5)
//
// A Structure owns its atoms. Copy returns a fully independent structure, so
// callers can annotate a copy without touching the original.
package crystal
