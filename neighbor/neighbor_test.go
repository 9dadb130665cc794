package neighbor

import (
	"context"
	"math"
	"testing"

	"github.com/hupe1980/lonelypoint/crystal"
	"github.com/hupe1980/lonelypoint/distance"
	"github.com/hupe1980/lonelypoint/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"
)

func TestBuild(t *testing.T) {
	t.Run("EmptyAtomSet", func(t *testing.T) {
		for _, kind := range []Kind{KindKDTree, KindFlat} {
			idx, err := Build(nil, WithKind(kind))
			assert.ErrorIs(t, err, ErrEmptyAtomSet)
			assert.Nil(t, idx)
		}
	})

	t.Run("NonFinitePosition", func(t *testing.T) {
		for _, bad := range []crystal.Vec3{{math.NaN(), 0, 0}, {0, math.Inf(1), 0}, {0, 0, math.Inf(-1)}} {
			for _, kind := range []Kind{KindKDTree, KindFlat} {
				idx, err := Build([]crystal.Vec3{{5, 5, 5}, bad}, WithKind(kind))
				assert.ErrorIs(t, err, ErrNonFinitePosition)
				assert.Nil(t, idx)
			}
		}
	})

	t.Run("UnknownKind", func(t *testing.T) {
		_, err := Build([]crystal.Vec3{{0, 0, 0}}, WithKind("octree"))
		assert.ErrorIs(t, err, ErrUnknownKind)
	})

	t.Run("Kinds", func(t *testing.T) {
		points := []crystal.Vec3{{0, 0, 0}}

		idx, err := Build(points)
		require.NoError(t, err)
		assert.IsType(t, &KDTree{}, idx)

		idx, err = Build(points, WithKind(KindFlat))
		require.NoError(t, err)
		assert.IsType(t, &Flat{}, idx)

		idx, err = Build(points, WithPeriodicImages(crystal.Cubic(1)))
		require.NoError(t, err)
		assert.IsType(t, &Periodic{}, idx)
		assert.Equal(t, 1, idx.Len())
	})
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindKDTree, k)

	k, err = ParseKind("flat")
	require.NoError(t, err)
	assert.Equal(t, KindFlat, k)

	_, err = ParseKind("ball")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestKDTreeMatchesExact(t *testing.T) {
	cell := crystal.CellFromParameters(8, 9, 10, 75, 100, 110)
	rng := testutil.NewRNG(42)

	for _, n := range []int{1, 2, 7, 8, 9, 50, 500} {
		points := rng.UniformPoints(cell, n)
		tree := NewKDTree(points)
		flat := NewFlat(points)
		require.Equal(t, n, tree.Len())

		for _, q := range rng.UniformPoints(cell, 300) {
			wantD, _ := testutil.ExactNearest(points, q)

			got := tree.Nearest(q)
			assert.InDelta(t, wantD, got.Distance, 1e-9)
			assert.InDelta(t, got.Distance, distance.L2(q, points[got.Index]), 1e-9)

			assert.InDelta(t, wantD, flat.Nearest(q).Distance, 1e-9)
		}
	}
}

func TestKDTreeDuplicatePoints(t *testing.T) {
	points := make([]crystal.Vec3, 40)
	for i := range points {
		points[i] = crystal.Vec3{1, 1, float64(i % 4)}
	}
	tree := NewKDTree(points)

	r := tree.Nearest(crystal.Vec3{1, 1, 2.2})
	assert.InDelta(t, 0.2, r.Distance, 1e-9)
	assert.Equal(t, 2.0, points[r.Index][2])
}

func TestFlatTieBreak(t *testing.T) {
	f := NewFlat([]crystal.Vec3{{-1, 0, 0}, {1, 0, 0}})
	r := f.Nearest(crystal.Vec3{0, 0, 0})
	assert.InDelta(t, 1.0, r.Distance, 1e-12)
	assert.Equal(t, 0, r.Index)
}

func TestPeriodic(t *testing.T) {
	cell := crystal.Cubic(10)
	points := []crystal.Vec3{{1, 1, 1}, {5, 5, 5}}

	idx, err := Build(points, WithPeriodicImages(cell))
	require.NoError(t, err)

	// (9.5, 1, 1) is 1.5 Å from the image of atom 0 across the x boundary.
	r := idx.Nearest(crystal.Vec3{9.5, 1, 1})
	assert.InDelta(t, 1.5, r.Distance, 1e-9)
	assert.Equal(t, 0, r.Index)

	rng := testutil.NewRNG(3)
	atoms := rng.UniformPoints(cell, 20)
	pidx, err := Build(atoms, WithPeriodicImages(cell), WithKind(KindFlat))
	require.NoError(t, err)
	for _, q := range rng.UniformPoints(cell, 100) {
		want := 1e300
		for _, a := range atoms {
			want = min(want, distance.MinimumImage(q, a, cell))
		}
		got := pidx.Nearest(q)
		assert.InDelta(t, want, got.Distance, 1e-9)
		assert.Less(t, got.Index, len(atoms))
	}
}

func TestQuery(t *testing.T) {
	cell := crystal.Cubic(12)
	rng := testutil.NewRNG(11)
	atoms := rng.UniformPoints(cell, 64)
	queries := rng.UniformPoints(cell, 10_000)

	idx, err := Build(atoms)
	require.NoError(t, err)

	sequential, err := Query(context.Background(), idx, queries, WithWorkers(1))
	require.NoError(t, err)
	require.Len(t, sequential, len(queries))

	for i, q := range queries {
		wantD, _ := testutil.ExactNearest(atoms, q)
		assert.InDelta(t, wantD, sequential[i].Distance, 1e-9)
	}

	t.Run("WorkerCountDoesNotChangeResults", func(t *testing.T) {
		for _, workers := range []int{2, 3, 8} {
			parallel, err := Query(context.Background(), idx, queries, WithWorkers(workers), WithChunkSize(100))
			require.NoError(t, err)
			assert.Equal(t, sequential, parallel)
		}
	})

	t.Run("SharedSlots", func(t *testing.T) {
		sem := semaphore.NewWeighted(2)
		res, err := Query(context.Background(), idx, queries, WithWorkers(8), WithChunkSize(100), WithSlots(sem))
		require.NoError(t, err)
		assert.Equal(t, sequential, res)
		assert.True(t, sem.TryAcquire(2))
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Query(ctx, idx, queries, WithWorkers(4), WithChunkSize(100))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("NoQueries", func(t *testing.T) {
		res, err := Query(context.Background(), idx, nil)
		require.NoError(t, err)
		assert.Empty(t, res)
	})

	t.Run("NilIndex", func(t *testing.T) {
		_, err := Query(context.Background(), nil, queries)
		assert.ErrorIs(t, err, ErrEmptyAtomSet)
	})
}
