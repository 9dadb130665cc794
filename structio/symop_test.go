package structio

import (
	"testing"

	"github.com/hupe1980/lonelypoint/crystal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSymOp(t *testing.T) {
	in := crystal.Vec3{0.1, 0.2, 0.3}

	tests := []struct {
		op   string
		want crystal.Vec3
	}{
		{"x, y, z", crystal.Vec3{0.1, 0.2, 0.3}},
		{"'-x+1/2, y, -z'", crystal.Vec3{0.4, 0.2, -0.3}},
		{"1/2+x, 1/2-y, z", crystal.Vec3{0.6, 0.3, 0.3}},
		{"x-y, x, z+1/6", crystal.Vec3{-0.1, 0.1, 0.3 + 1.0/6}},
		{"2*x, -0.5+y, Z", crystal.Vec3{0.2, -0.3, 0.3}},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			op, err := ParseSymOp(tt.op)
			require.NoError(t, err)
			assert.True(t, op.Apply(in).ApproxEqual(tt.want, 1e-12), "got %v", op.Apply(in))
		})
	}

	t.Run("Identity", func(t *testing.T) {
		op, err := ParseSymOp("x,y,z")
		require.NoError(t, err)
		assert.Equal(t, Identity, op)
	})

	for _, bad := range []string{"x, y", "x, y, q", "x, 1/0, z", "x, y, +"} {
		t.Run("Invalid/"+bad, func(t *testing.T) {
			_, err := ParseSymOp(bad)
			assert.Error(t, err)
		})
	}
}
