package testutil

import (
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/lonelypoint/crystal"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// UniformFrac returns a random fractional point in [0,1)^3.
func (r *RNG) UniformFrac() crystal.Vec3 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return crystal.Vec3{r.rand.Float64(), r.rand.Float64(), r.rand.Float64()}
}

// UniformPoints returns num random absolute points inside cell.
func (r *RNG) UniformPoints(cell crystal.Cell, num int) []crystal.Vec3 {
	out := make([]crystal.Vec3, num)
	for i := range out {
		out[i] = cell.FracToCart(r.UniformFrac())
	}
	return out
}

// RandomStructure places num atoms uniformly inside cell, cycling through
// symbols (defaults to "C").
func (r *RNG) RandomStructure(cell crystal.Cell, num int, symbols ...string) *crystal.Structure {
	if len(symbols) == 0 {
		symbols = []string{"C"}
	}
	atoms := make([]crystal.Atom, num)
	for i, p := range r.UniformPoints(cell, num) {
		atoms[i] = crystal.Atom{Symbol: symbols[i%len(symbols)], Position: p}
	}
	return crystal.New(cell, atoms)
}

// ExactNearest returns the distance to and index of the closest point by
// linear scan. Ties resolve to the lowest index. Returns (+Inf, -1) for an
// empty set.
func ExactNearest(points []crystal.Vec3, q crystal.Vec3) (float64, int) {
	best, idx := math.Inf(1), -1
	for i, p := range points {
		if d := q.DistanceTo(p); d < best {
			best, idx = d, i
		}
	}
	return best, idx
}

// MaxIndex returns the first index holding the maximum of values, or -1.
func MaxIndex(values []float64) int {
	idx := -1
	for i, v := range values {
		if idx < 0 || v > values[idx] {
			idx = i
		}
	}
	return idx
}
