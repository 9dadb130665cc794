package structio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hupe1980/lonelypoint/crystal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPOSCAR_Decode(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		cell  crystal.Cell
		atoms []crystal.Atom
	}{
		{
			name: "Direct",
			src: `NaCl rock salt
1.0
5.64 0 0
0 5.64 0
0 0 5.64
Na Cl
1 1
Direct
0.0 0.0 0.0
0.5 0.5 0.5
`,
			cell: crystal.Cubic(5.64),
			atoms: []crystal.Atom{
				{Symbol: "Na", Position: crystal.Vec3{0, 0, 0}},
				{Symbol: "Cl", Position: crystal.Vec3{2.82, 2.82, 2.82}},
			},
		},
		{
			name: "ScaledCartesian",
			src: `scaled
2.0
1 0 0
0 1 0
0 0 1
C
1
Cartesian
0.5 0.5 0.5
`,
			cell:  crystal.Cubic(2),
			atoms: []crystal.Atom{{Symbol: "C", Position: crystal.Vec3{1, 1, 1}}},
		},
		{
			name: "VolumeScale",
			src: `volume
-8
1 0 0
0 1 0
0 0 1
Fe
1
Direct
0.5 0.5 0.5
`,
			cell:  crystal.Cubic(2),
			atoms: []crystal.Atom{{Symbol: "Fe", Position: crystal.Vec3{1, 1, 1}}},
		},
		{
			name: "VASP4SelectiveDynamics",
			src: `Na Cl
1.0
4 0 0
0 4 0
0 0 4
1 1
Selective dynamics
Direct
0.0 0.0 0.0 T T T
0.5 0.5 0.5 F F F
`,
			cell: crystal.Cubic(4),
			atoms: []crystal.Atom{
				{Symbol: "Na", Position: crystal.Vec3{0, 0, 0}},
				{Symbol: "Cl", Position: crystal.Vec3{2, 2, 2}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := POSCAR{}.Decode(strings.NewReader(tt.src))
			require.NoError(t, err)
			for i := range 3 {
				assert.True(t, s.Cell[i].ApproxEqual(tt.cell[i], 1e-12), "cell row %d: %v", i, s.Cell[i])
			}
			require.Equal(t, len(tt.atoms), s.Len())
			for i, a := range tt.atoms {
				assert.Equal(t, a.Symbol, s.At(i).Symbol)
				assert.True(t, s.At(i).Position.ApproxEqual(a.Position, 1e-12), "atom %d: %v", i, s.At(i).Position)
			}
		})
	}
}

func TestPOSCAR_DecodeMalformed(t *testing.T) {
	header := "x\n1.0\n1 0 0\n0 1 0\n0 0 1\n"
	tests := []struct {
		name string
		src  string
	}{
		{"TooShort", "x\n1.0\n"},
		{"ZeroScale", "x\n0\n1 0 0\n0 1 0\n0 0 1\nNa\n1\nDirect\n0 0 0\n"},
		{"ShortLattice", "x\n1.0\n1 0\n0 1 0\n0 0 1\nNa\n1\nDirect\n0 0 0\n"},
		{"SpeciesCountMismatch", header + "Na Cl\n1\nDirect\n0 0 0\n"},
		{"UnnamedVASP4", header + "1 1\nDirect\n0 0 0\n0 0 0\n"},
		{"NaNScale", "x\nNaN\n1 0 0\n0 1 0\n0 0 1\nNa\n1\nDirect\n0 0 0\n"},
		{"InfLattice", "x\n1.0\nInf 0 0\n0 1 0\n0 0 1\nNa\n1\nDirect\n0 0 0\n"},
		{"NaNCoordinate", header + "Na\n1\nDirect\nNaN 0 0\n"},
		{"UnknownMode", header + "Na\n1\nQuantum\n0 0 0\n"},
		{"MissingCoordinates", header + "Na\n2\nDirect\n0 0 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := POSCAR{}.Decode(strings.NewReader(tt.src))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestPOSCAR_RoundTrip(t *testing.T) {
	s := crystal.New(crystal.CellFromParameters(5, 5, 7, 90, 90, 120), []crystal.Atom{
		{Symbol: "Na", Position: crystal.Vec3{0, 0, 0}},
		{Symbol: "Na", Position: crystal.Vec3{1, 1, 1}},
		{Symbol: "Cl", Position: crystal.Vec3{2, 1, 3}},
		{Symbol: "X", Position: crystal.Vec3{0.5, 0.5, 0.5}},
	})

	var buf bytes.Buffer
	require.NoError(t, POSCAR{}.Encode(&buf, s))
	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "Na Cl X", lines[0])
	assert.Equal(t, []string{"Na", "Cl", "X"}, strings.Fields(lines[5]))
	assert.Equal(t, []string{"2", "1", "1"}, strings.Fields(lines[6]))

	got, err := POSCAR{}.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, s.Symbols(), got.Symbols())
	for i := range s.Atoms {
		assert.True(t, got.At(i).Position.ApproxEqual(s.At(i).Position, 1e-9))
	}
}
