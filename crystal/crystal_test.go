package crystal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellFromParameters(t *testing.T) {
	tests := []struct {
		name               string
		a, b, c            float64
		alpha, beta, gamma float64
		volume             float64
	}{
		{"Cubic", 10, 10, 10, 90, 90, 90, 1000},
		{"Orthorhombic", 3, 4, 5, 90, 90, 90, 60},
		{"Hexagonal", 2, 2, 5, 90, 90, 120, 2 * 2 * 5 * math.Sqrt(3) / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell := CellFromParameters(tt.a, tt.b, tt.c, tt.alpha, tt.beta, tt.gamma)
			assert.InDelta(t, tt.volume, cell.Volume(), 1e-9)

			lengths := cell.Lengths()
			assert.InDelta(t, tt.a, lengths[0], 1e-9)
			assert.InDelta(t, tt.b, lengths[1], 1e-9)
			assert.InDelta(t, tt.c, lengths[2], 1e-9)

			angles := cell.Angles()
			assert.InDelta(t, tt.alpha, angles[0], 1e-9)
			assert.InDelta(t, tt.beta, angles[1], 1e-9)
			assert.InDelta(t, tt.gamma, angles[2], 1e-9)
		})
	}

	t.Run("RightAnglesAreExact", func(t *testing.T) {
		assert.Equal(t, Cubic(10), CellFromParameters(10, 10, 10, 90, 90, 90))
	})

	t.Run("Triclinic", func(t *testing.T) {
		cell := CellFromParameters(5, 6, 7, 80, 95, 105)
		angles := cell.Angles()
		assert.InDelta(t, 80, angles[0], 1e-9)
		assert.InDelta(t, 95, angles[1], 1e-9)
		assert.InDelta(t, 105, angles[2], 1e-9)
	})
}

func TestFracCartRoundTrip(t *testing.T) {
	cell := CellFromParameters(5, 6, 7, 80, 95, 105)
	frac := Vec3{0.1, 0.25, 0.9}

	cart := cell.FracToCart(frac)
	want := cell[0].Scale(0.1).Add(cell[1].Scale(0.25)).Add(cell[2].Scale(0.9))
	assert.True(t, cart.ApproxEqual(want, 1e-12))

	back, err := cell.CartToFrac(cart)
	require.NoError(t, err)
	assert.True(t, back.ApproxEqual(frac, 1e-12))
}

func TestVec3IsFinite(t *testing.T) {
	tests := []struct {
		v    Vec3
		want bool
	}{
		{Vec3{0, -1.5, 1e300}, true},
		{Vec3{math.NaN(), 0, 0}, false},
		{Vec3{0, math.Inf(1), 0}, false},
		{Vec3{0, 0, math.Inf(-1)}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.v.IsFinite(), "%v", tt.v)
	}
}

func TestCellDegenerate(t *testing.T) {
	flat := Cell{{1, 0, 0}, {0, 1, 0}, {1, 1, 0}}
	assert.True(t, flat.IsDegenerate(DefaultDegeneracyTolerance))
	assert.False(t, Cubic(1).IsDegenerate(DefaultDegeneracyTolerance))

	_, err := flat.Inverse()
	assert.ErrorIs(t, err, ErrSingularCell)
}

func TestBoundingDiagonal(t *testing.T) {
	assert.InDelta(t, 10*math.Sqrt(3), Cubic(10).BoundingDiagonal(), 1e-9)
	assert.InDelta(t, math.Sqrt(9+16+25), Orthorhombic(3, 4, 5).BoundingDiagonal(), 1e-9)

	// The long diagonal of an oblique cell is not a+b+c.
	oblique := CellFromParameters(4, 4, 4, 90, 90, 150)
	assert.Greater(t, oblique.BoundingDiagonal(), oblique[0].Add(oblique[1]).Add(oblique[2]).Norm())
}

func TestWrapFrac(t *testing.T) {
	tests := []struct {
		in, want Vec3
	}{
		{Vec3{0.5, 0.5, 0.5}, Vec3{0.5, 0.5, 0.5}},
		{Vec3{1.25, -0.25, 2}, Vec3{0.25, 0.75, 0}},
		{Vec3{-1e-17, 0, 1}, Vec3{0, 0, 0}},
	}
	for _, tt := range tests {
		assert.True(t, WrapFrac(tt.in).ApproxEqual(tt.want, 1e-12), "%v", tt.in)
	}
}

func TestStructureCopy(t *testing.T) {
	s := New(Cubic(4), []Atom{
		{Symbol: "Na", Position: Vec3{0, 0, 0}},
		{Symbol: "Cl", Position: Vec3{2, 2, 2}},
	})
	s.Info = map[string]string{"source": "test"}

	cp := s.Copy()
	cp.Append(Atom{Symbol: "X", Position: Vec3{1, 1, 1}})
	cp.Atoms[0].Position[0] = 99
	cp.Info["source"] = "changed"

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 3, cp.Len())
	assert.Equal(t, Vec3{0, 0, 0}, s.At(0).Position)
	assert.Equal(t, "test", s.Info["source"])
	assert.Equal(t, []string{"Na", "Cl"}, s.Symbols())
}

func TestStructurePositions(t *testing.T) {
	s := New(Cubic(4), []Atom{{Symbol: "Na", Position: Vec3{2, 1, 0}}})

	pos := s.Positions()
	pos[0][0] = 42
	assert.Equal(t, Vec3{2, 1, 0}, s.At(0).Position)

	frac, err := s.FractionalPositions()
	require.NoError(t, err)
	assert.True(t, frac[0].ApproxEqual(Vec3{0.5, 0.25, 0}, 1e-12))
}
