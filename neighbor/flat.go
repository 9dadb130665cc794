package neighbor

import (
	"github.com/hupe1980/lonelypoint/crystal"
	"github.com/hupe1980/lonelypoint/distance"
)

// Flat is a brute-force index. Every query scans all points.
type Flat struct {
	points []crystal.Vec3
}

// NewFlat creates a flat index. The points slice is copied.
func NewFlat(points []crystal.Vec3) *Flat {
	return &Flat{points: append([]crystal.Vec3(nil), points...)}
}

// Nearest implements Index.
func (f *Flat) Nearest(q crystal.Vec3) Result {
	b := newBest()
	for i, p := range f.points {
		b.offer(distance.SquaredL2(q, p), i)
	}
	return b.result()
}

// Len implements Index.
func (f *Flat) Len() int {
	return len(f.points)
}
