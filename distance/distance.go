package distance

import (
	"fmt"
	"math"

	"github.com/hupe1980/lonelypoint/crystal"
)

// SquaredL2 calculates the squared Euclidean distance between two points.
func SquaredL2(a, b crystal.Vec3) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	dz := a[2] - b[2]
	return dx*dx + dy*dy + dz*dz
}

// L2 calculates the Euclidean distance between two points.
func L2(a, b crystal.Vec3) float64 {
	return math.Sqrt(SquaredL2(a, b))
}

// MinimumImage returns the shortest Euclidean distance between a and any
// periodic image of b among the 27 nearest cell translations.
//
// This is exact for cells that are not strongly skewed. It is used to check
// results of periodic searches, not inside the search itself.
func MinimumImage(a, b crystal.Vec3, cell crystal.Cell) float64 {
	best := math.Inf(1)
	for i := -1; i <= 1; i++ {
		for j := -1; j <= 1; j++ {
			for k := -1; k <= 1; k++ {
				shift := cell.FracToCart(crystal.Vec3{float64(i), float64(j), float64(k)})
				if d := SquaredL2(a, b.Add(shift)); d < best {
					best = d
				}
			}
		}
	}
	return math.Sqrt(best)
}

// Metric represents the distance metric used for point comparison.
type Metric int

const (
	MetricL2 Metric = iota
	MetricSquaredL2
)

func (m Metric) String() string {
	switch m {
	case MetricL2:
		return "L2"
	case MetricSquaredL2:
		return "SquaredL2"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Func is a function type for distance calculation.
type Func func(a, b crystal.Vec3) float64

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricL2:
		return L2, nil
	case MetricSquaredL2:
		return SquaredL2, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}
