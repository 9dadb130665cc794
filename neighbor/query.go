package neighbor

import (
	"context"
	"runtime"

	"github.com/hupe1980/lonelypoint/crystal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultChunkSize is the smallest shard handed to a single worker.
const DefaultChunkSize = 4096

// QueryOptions configures Query.
type QueryOptions struct {
	// Workers is the number of concurrent shards. <= 0 means GOMAXPROCS.
	Workers int
	// ChunkSize is the minimum number of points per shard.
	ChunkSize int
	// Slots, when set, is acquired once per running shard so that several
	// queries can share a global concurrency budget.
	Slots *semaphore.Weighted
}

// WithWorkers sets the number of concurrent shards.
func WithWorkers(n int) func(*QueryOptions) {
	return func(o *QueryOptions) {
		o.Workers = n
	}
}

// WithChunkSize sets the minimum shard size.
func WithChunkSize(n int) func(*QueryOptions) {
	return func(o *QueryOptions) {
		o.ChunkSize = n
	}
}

// WithSlots shares a concurrency budget between queries.
func WithSlots(sem *semaphore.Weighted) func(*QueryOptions) {
	return func(o *QueryOptions) {
		o.Slots = sem
	}
}

// Query returns the nearest indexed point for every query point.
//
// Shards are contiguous index ranges and every result is written at its query
// index, so the output is identical for any worker count.
func Query(ctx context.Context, idx Index, points []crystal.Vec3, optFns ...func(*QueryOptions)) ([]Result, error) {
	if idx == nil || idx.Len() == 0 {
		return nil, ErrEmptyAtomSet
	}

	opts := QueryOptions{ChunkSize: DefaultChunkSize}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}

	out := make([]Result, len(points))
	if len(points) == 0 {
		return out, nil
	}

	chunk := (len(points) + opts.Workers - 1) / opts.Workers
	if chunk < opts.ChunkSize {
		chunk = opts.ChunkSize
	}

	if chunk >= len(points) {
		if err := queryRange(ctx, idx, points, out, 0, len(points)); err != nil {
			return nil, err
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < len(points); lo += chunk {
		hi := min(lo+chunk, len(points))
		g.Go(func() error {
			if opts.Slots != nil {
				if err := opts.Slots.Acquire(gctx, 1); err != nil {
					return err
				}
				defer opts.Slots.Release(1)
			}
			return queryRange(gctx, idx, points, out, lo, hi)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// cancelCheckInterval bounds how many queries run between context checks.
const cancelCheckInterval = 1024

func queryRange(ctx context.Context, idx Index, points []crystal.Vec3, out []Result, lo, hi int) error {
	for i := lo; i < hi; i++ {
		if (i-lo)%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		out[i] = idx.Nearest(points[i])
	}
	return nil
}
