package lonelypoint

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/lonelypoint/blobstore"
	"github.com/hupe1980/lonelypoint/crystal"
	"github.com/hupe1980/lonelypoint/grid"
	"github.com/hupe1980/lonelypoint/neighbor"
	"github.com/hupe1980/lonelypoint/report"
	"github.com/hupe1980/lonelypoint/selector"
	"github.com/hupe1980/lonelypoint/structio"
)

// LoneliestPoint is the grid point farthest from its nearest atom.
type LoneliestPoint struct {
	GridIndex     int
	Distance      float64
	Fractional    crystal.Vec3
	Absolute      crystal.Vec3
	NearestIndex  int
	NearestSymbol string
}

// Fields returns the values printed by the report.
func (p LoneliestPoint) Fields() report.Fields {
	return report.Fields{
		Distance:      p.Distance,
		Fractional:    p.Fractional,
		Absolute:      p.Absolute,
		NearestIndex:  p.NearestIndex,
		NearestSymbol: p.NearestSymbol,
	}
}

// Candidate is one entry of the ranked candidate list.
type Candidate struct {
	Rank         int          `json:"rank"`
	Index        int          `json:"index"`
	Distance     float64      `json:"distance"`
	Fractional   crystal.Vec3 `json:"fractional"`
	Absolute     crystal.Vec3 `json:"absolute"`
	NearestIndex int          `json:"nearest_index"`
}

// Result is the outcome of one run.
type Result struct {
	Point LoneliestPoint
	// Annotated is a copy of the input with the marker atom(s) appended.
	Annotated *crystal.Structure
	// Candidates holds the top grid points when WithCandidates is set.
	Candidates []Candidate
	// Resolution is the number of samples used per axis.
	Resolution int
	// Ties is the number of grid points within the tie tolerance of the
	// maximum distance, including the selected one.
	Ties int
}

// Finder locates the loneliest point of crystal structures.
// A Finder is safe for concurrent use.
type Finder struct {
	opts options
}

// New creates a Finder.
func New(optFns ...Option) *Finder {
	return &Finder{opts: applyOptions(optFns)}
}

// stage runs fn, records metrics and logs, and wraps failures in a StageError.
func (f *Finder) stage(ctx context.Context, st Stage, fn func() error) error {
	start := time.Now()
	err := fn()
	duration := time.Since(start)

	f.opts.metricsCollector.RecordStage(st, duration, err)
	f.opts.logger.LogStage(ctx, st, duration, err)
	if err != nil {
		return &StageError{Stage: st, Err: translateError(st, err)}
	}
	return nil
}

func (f *Finder) resolutionFor(cell crystal.Cell) int {
	if f.opts.spacing > 0 {
		return grid.ResolutionForSpacing(cell, f.opts.spacing, MinSpacingResolution, MaxSpacingResolution)
	}
	return f.opts.resolution
}

// Find samples the cell of s, queries the nearest atom of every grid point
// and returns the point whose nearest atom is farthest away.
//
// s is never modified. A structure without atoms fails with ErrInvalidInput
// before any distance is computed.
func (f *Finder) Find(ctx context.Context, s *crystal.Structure) (*Result, error) {
	o := &f.opts
	if s == nil {
		return nil, &StageError{Stage: StageSample, Err: fmt.Errorf("%w: nil structure", ErrInvalidInput)}
	}

	var (
		g         *grid.Grid
		footprint int64
	)
	err := f.stage(ctx, StageSample, func() error {
		if o.validateCell && s.Cell.IsDegenerate(crystal.DefaultDegeneracyTolerance) {
			return fmt.Errorf("%w: volume %g", ErrDegenerateCell, s.Cell.Volume())
		}
		n := f.resolutionFor(s.Cell)
		if n < 2 {
			_, err := grid.New(n, s.Cell)
			return err
		}
		footprint = grid.MemoryFootprint(n)
		if err := o.resources.AcquireMemory(footprint); err != nil {
			return fmt.Errorf("resolution %d needs %d bytes: %w", n, footprint, err)
		}
		var err error
		if g, err = grid.New(n, s.Cell); err != nil {
			o.resources.ReleaseMemory(footprint)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	defer o.resources.ReleaseMemory(footprint)

	logger := o.logger.WithResolution(g.N)

	var results []neighbor.Result
	err = f.stage(ctx, StageSearch, func() error {
		buildOpts := []func(*neighbor.Options){neighbor.WithKind(o.engine)}
		if o.periodic {
			buildOpts = append(buildOpts, neighbor.WithPeriodicImages(s.Cell))
		}
		idx, err := neighbor.Build(s.Positions(), buildOpts...)
		if err != nil {
			return err
		}

		start := time.Now()
		results, err = neighbor.Query(ctx, idx, g.Abs,
			neighbor.WithWorkers(o.workers),
			neighbor.WithSlots(o.resources.QuerySlots()),
		)
		if err != nil {
			return err
		}
		o.metricsCollector.RecordSearch(len(g.Abs), s.Len(), time.Since(start))
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := &Result{Resolution: g.N}
	err = f.stage(ctx, StageSelect, func() error {
		i, err := selector.SelectWithTolerance(results, o.tieBreak, o.tieTolerance)
		if err != nil {
			return err
		}
		r := results[i]
		res.Point = LoneliestPoint{
			GridIndex:     i,
			Distance:      r.Distance,
			Fractional:    g.Frac[i],
			Absolute:      g.Abs[i],
			NearestIndex:  r.Index,
			NearestSymbol: s.At(r.Index).Symbol,
		}
		res.Ties = int(selector.Ties(results, o.tieTolerance).GetCardinality())

		if o.candidates != 0 {
			for rank, gi := range selector.Rank(results, max(o.candidates, 0)) {
				res.Candidates = append(res.Candidates, Candidate{
					Rank:         rank,
					Index:        gi,
					Distance:     results[gi].Distance,
					Fractional:   g.Frac[gi],
					Absolute:     g.Abs[gi],
					NearestIndex: results[gi].Index,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = f.stage(ctx, StageAnnotate, func() error {
		for _, frac := range o.extraMarkers {
			if !frac.IsFinite() {
				return fmt.Errorf("%w: extra marker at %v", ErrInvalidInput, frac)
			}
		}
		res.Annotated = Annotate(s, res.Point.Absolute, o.marker)
		for _, frac := range o.extraMarkers {
			res.Annotated = AnnotateFractional(res.Annotated, frac, o.marker)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.LogResult(ctx, res.Point.Fields(), res.Ties)
	if o.reportWriter != nil {
		err = f.stage(ctx, StageWrite, func() error {
			return report.NewEmitter(o.reportWriter, o.reportFormat).Emit(res.Point.Fields())
		})
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Run reads the structure inName from in, finds its loneliest point, and
// writes the annotated structure to outName in out. The output format is
// taken from outName, so it may differ from the input format.
//
// When a viewer is configured it is started after the write; viewer
// failures are logged and never fail the run.
func (f *Finder) Run(ctx context.Context, in blobstore.BlobStore, inName string, out blobstore.BlobStore, outName string) (*Result, error) {
	o := &f.opts

	var s *crystal.Structure
	err := f.stage(ctx, StageRead, func() error {
		var err error
		s, err = structio.Read(ctx, in, inName)
		return err
	})
	if err != nil {
		return nil, err
	}
	if name := s.Info["name"]; name != "" {
		o.logger.WithStructure(name, s.Len()).DebugContext(ctx, "structure loaded", "path", inName)
	} else {
		o.logger.WithStructure(inName, s.Len()).DebugContext(ctx, "structure loaded")
	}

	res, err := f.Find(ctx, s)
	if err != nil {
		return nil, err
	}

	err = f.stage(ctx, StageWrite, func() error {
		err := structio.Write(ctx, out, outName, res.Annotated,
			structio.WithWriterWrapper(func(w io.Writer) io.Writer {
				return o.resources.Writer(ctx, w)
			}),
		)
		o.logger.LogOutput(ctx, outName, err)
		if err != nil {
			return err
		}

		if o.candidatesName == "" {
			return nil
		}
		data, err := o.codec.Marshal(res.Candidates)
		if err == nil {
			err = out.Put(ctx, o.candidatesName, data)
		}
		o.logger.LogOutput(ctx, o.candidatesName, err)
		return err
	})
	if err != nil {
		return nil, err
	}

	o.logger.LogView(ctx, o.viewer.View(ctx, res.Annotated))
	return res, nil
}
