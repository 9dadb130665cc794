package crystal

import (
	"errors"
	"math"
)

// ErrSingularCell is returned when a cell has (near) zero volume and cannot be inverted.
var ErrSingularCell = errors.New("crystal: singular cell matrix")

// DefaultDegeneracyTolerance is the volume (Å³) below which a cell counts as degenerate.
const DefaultDegeneracyTolerance = 1e-9

// Cell is a 3×3 lattice matrix. Rows are the basis vectors a, b and c.
type Cell [3]Vec3

// Cubic returns a cubic cell with edge length a.
func Cubic(a float64) Cell {
	return Cell{{a, 0, 0}, {0, a, 0}, {0, 0, a}}
}

// Orthorhombic returns a rectangular cell with the given edge lengths.
func Orthorhombic(a, b, c float64) Cell {
	return Cell{{a, 0, 0}, {0, b, 0}, {0, 0, c}}
}

// CellFromParameters builds a cell from lengths (Å) and angles (degrees).
//
// The orientation is the usual crystallographic one: a along x, b in the xy
// plane, c completing a right-handed frame. alpha is the angle between b and c,
// beta between a and c, gamma between a and b.
func CellFromParameters(a, b, c, alpha, beta, gamma float64) Cell {
	ca, cb, cg := cosDeg(alpha), cosDeg(beta), cosDeg(gamma)
	sg := sinDeg(gamma)

	cy := (ca - cb*cg) / sg
	cz2 := 1 - cb*cb - cy*cy
	if cz2 < 0 {
		cz2 = 0
	}

	return Cell{
		{a, 0, 0},
		{b * cg, b * sg, 0},
		{c * cb, c * cy, c * math.Sqrt(cz2)},
	}
}

// cosDeg returns exact zeros for right angles so orthogonal cells stay exact.
func cosDeg(deg float64) float64 {
	if math.Abs(deg-90) < 1e-9 {
		return 0
	}
	return math.Cos(deg * math.Pi / 180)
}

func sinDeg(deg float64) float64 {
	if math.Abs(deg-90) < 1e-9 {
		return 1
	}
	return math.Sin(deg * math.Pi / 180)
}

// Det returns the determinant of the cell matrix.
func (c Cell) Det() float64 {
	return c[0].Dot(c[1].Cross(c[2]))
}

// Volume returns the absolute cell volume.
func (c Cell) Volume() float64 {
	return math.Abs(c.Det())
}

// IsDegenerate reports whether the cell volume is at or below tol.
func (c Cell) IsDegenerate(tol float64) bool {
	return c.Volume() <= tol
}

// FracToCart maps a fractional point to absolute space (f·Cell).
func (c Cell) FracToCart(f Vec3) Vec3 {
	return Vec3{
		f[0]*c[0][0] + f[1]*c[1][0] + f[2]*c[2][0],
		f[0]*c[0][1] + f[1]*c[1][1] + f[2]*c[2][1],
		f[0]*c[0][2] + f[1]*c[1][2] + f[2]*c[2][2],
	}
}

// Inverse returns the inverse cell matrix.
func (c Cell) Inverse() (Cell, error) {
	det := c.Det()
	if math.Abs(det) <= DefaultDegeneracyTolerance {
		return Cell{}, ErrSingularCell
	}

	// Columns of the inverse are the reciprocal vectors scaled by 1/det.
	r0 := c[1].Cross(c[2]).Scale(1 / det)
	r1 := c[2].Cross(c[0]).Scale(1 / det)
	r2 := c[0].Cross(c[1]).Scale(1 / det)

	return Cell{
		{r0[0], r1[0], r2[0]},
		{r0[1], r1[1], r2[1]},
		{r0[2], r1[2], r2[2]},
	}, nil
}

// CartToFrac maps an absolute point to fractional coordinates.
func (c Cell) CartToFrac(x Vec3) (Vec3, error) {
	inv, err := c.Inverse()
	if err != nil {
		return Vec3{}, err
	}
	return inv.FracToCart(x), nil
}

// Lengths returns |a|, |b| and |c|.
func (c Cell) Lengths() Vec3 {
	return Vec3{c[0].Norm(), c[1].Norm(), c[2].Norm()}
}

// Angles returns alpha, beta and gamma in degrees.
func (c Cell) Angles() Vec3 {
	return Vec3{
		angleDeg(c[1], c[2]),
		angleDeg(c[0], c[2]),
		angleDeg(c[0], c[1]),
	}
}

func angleDeg(u, v Vec3) float64 {
	nu, nv := u.Norm(), v.Norm()
	if nu == 0 || nv == 0 {
		return 0
	}
	cos := u.Dot(v) / (nu * nv)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// BoundingDiagonal returns the longest corner-to-corner distance of the cell
// parallelepiped. No two points inside the cell are farther apart.
func (c Cell) BoundingDiagonal() float64 {
	a, b, cc := c[0], c[1], c[2]
	return math.Max(
		math.Max(a.Add(b).Add(cc).Norm(), a.Add(b).Sub(cc).Norm()),
		math.Max(a.Sub(b).Add(cc).Norm(), b.Add(cc).Sub(a).Norm()),
	)
}

// WrapFrac folds each fractional component into [0, 1).
func WrapFrac(f Vec3) Vec3 {
	for i := range f {
		f[i] -= math.Floor(f[i])
		// Values like -1e-17 wrap to exactly 1 after subtraction.
		if f[i] >= 1 {
			f[i] = 0
		}
	}
	return f
}
