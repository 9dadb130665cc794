// Package grid samples the unit cell on a uniform fractional grid and maps the
// samples to absolute space.
//
// Points are enumerated with the first axis slowest and the last axis fastest,
// so fractional point (i, j, k) lives at index i*n*n + j*n + k in both the
// fractional and the absolute slice.
package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/lonelypoint/crystal"
)

// DefaultResolution is the number of samples per axis.
const DefaultResolution = 100

// ErrInvalidResolution is returned when fewer than two samples per axis are requested.
var ErrInvalidResolution = errors.New("grid: resolution must be at least 2")

// bytesPerPoint covers one fractional point, one absolute point and one
// neighbour result (float64 distance + int index).
const bytesPerPoint = 2*3*8 + 8 + 8

// Grid is a sampled unit cell. Frac[i] and Abs[i] are the same physical point.
type Grid struct {
	N    int
	Frac []crystal.Vec3
	Abs  []crystal.Vec3
}

// New samples cell with n points per axis.
func New(n int, cell crystal.Cell) (*Grid, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidResolution, n)
	}
	frac := Fractional(n)
	return &Grid{
		N:    n,
		Frac: frac,
		Abs:  Absolute(frac, cell),
	}, nil
}

// Len returns the number of sampled points (n³).
func (g *Grid) Len() int {
	return len(g.Frac)
}

// Index returns the flat index of grid point (i, j, k).
func (g *Grid) Index(i, j, k int) int {
	return (i*g.N+j)*g.N + k
}

// Coords is the inverse of Index.
func (g *Grid) Coords(idx int) (i, j, k int) {
	k = idx % g.N
	j = (idx / g.N) % g.N
	i = idx / (g.N * g.N)
	return i, j, k
}

// Linspace returns n evenly spaced values over [0, 1], both ends included.
func Linspace(n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{0}
	}
	step := 1 / float64(n-1)
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) * step
	}
	out[n-1] = 1
	return out
}

// Fractional returns the n×n×n Cartesian product of Linspace(n), flattened
// with the last axis varying fastest.
func Fractional(n int) []crystal.Vec3 {
	axis := Linspace(n)
	out := make([]crystal.Vec3, 0, len(axis)*len(axis)*len(axis))
	for _, x := range axis {
		for _, y := range axis {
			for _, z := range axis {
				out = append(out, crystal.Vec3{x, y, z})
			}
		}
	}
	return out
}

// Absolute maps every fractional point through the cell (row-vector
// convention). Order and length match frac.
func Absolute(frac []crystal.Vec3, cell crystal.Cell) []crystal.Vec3 {
	out := make([]crystal.Vec3, len(frac))
	for i, f := range frac {
		out[i] = cell.FracToCart(f)
	}
	return out
}

// ResolutionForSpacing returns the per-axis count that samples the longest
// lattice vector at no more than spacing Å between neighbours, clamped to
// [minN, maxN]. A non-positive spacing yields DefaultResolution.
func ResolutionForSpacing(cell crystal.Cell, spacing float64, minN, maxN int) int {
	if spacing <= 0 {
		return DefaultResolution
	}
	lengths := cell.Lengths()
	longest := math.Max(lengths[0], math.Max(lengths[1], lengths[2]))

	n := int(math.Ceil(longest/spacing)) + 1
	if minN < 2 {
		minN = 2
	}
	if n < minN {
		n = minN
	}
	if maxN >= minN && n > maxN {
		n = maxN
	}
	return n
}

// MemoryFootprint estimates the bytes needed to hold a grid of resolution n
// together with its neighbour results.
func MemoryFootprint(n int) int64 {
	m := int64(n)
	return m * m * m * bytesPerPoint
}
