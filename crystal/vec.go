package crystal

import (
	"fmt"
	"math"
)

// Vec3 is a point or direction in 3-space.
type Vec3 [3]float64

func (v Vec3) Add(o Vec3) Vec3           { return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]} }
func (v Vec3) Sub(o Vec3) Vec3           { return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]} }
func (v Vec3) Scale(s float64) Vec3      { return Vec3{v[0] * s, v[1] * s, v[2] * s} }
func (v Vec3) Dot(o Vec3) float64        { return v[0]*o[0] + v[1]*o[1] + v[2]*o[2] }
func (v Vec3) Norm() float64             { return math.Sqrt(v.Dot(v)) }
func (v Vec3) DistanceTo(o Vec3) float64 { return v.Sub(o).Norm() }

// Cross returns the cross product of v and o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v[1]*o[2] - v[2]*o[1],
		v[2]*o[0] - v[0]*o[2],
		v[0]*o[1] - v[1]*o[0],
	}
}

// ApproxEqual reports whether every component of v and o differs by at most tol.
func (v Vec3) ApproxEqual(o Vec3, tol float64) bool {
	for i := range v {
		if math.Abs(v[i]-o[i]) > tol {
			return false
		}
	}
	return true
}

// IsFinite reports whether no component of v is NaN or infinite.
func (v Vec3) IsFinite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Format renders v as "[x y z]" with the given number of decimals.
func (v Vec3) Format(precision int) string {
	return fmt.Sprintf("[%.*f %.*f %.*f]", precision, v[0], precision, v[1], precision, v[2])
}

func (v Vec3) String() string            { return v.Format(4) }
