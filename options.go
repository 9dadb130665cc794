package lonelypoint

import (
	"io"
	"log/slog"
	"runtime"

	"github.com/hupe1980/lonelypoint/codec"
	"github.com/hupe1980/lonelypoint/crystal"
	"github.com/hupe1980/lonelypoint/grid"
	"github.com/hupe1980/lonelypoint/internal/resource"
	"github.com/hupe1980/lonelypoint/neighbor"
	"github.com/hupe1980/lonelypoint/report"
	"github.com/hupe1980/lonelypoint/selector"
	"github.com/hupe1980/lonelypoint/viewer"
)

// DefaultMarker is the chemical symbol of the appended marker atom.
const DefaultMarker = "X"

// Bounds applied to a resolution derived from WithSpacing.
const (
	MinSpacingResolution = 2
	MaxSpacingResolution = 400
)

type options struct {
	resolution       int
	spacing          float64
	marker           string
	tieBreak         selector.Policy
	tieTolerance     float64
	engine           neighbor.Kind
	periodic         bool
	workers          int
	validateCell     bool
	extraMarkers     []crystal.Vec3
	candidates       int
	candidatesName   string
	codec            codec.Codec
	reportWriter     io.Writer
	reportFormat     report.Format
	viewer           viewer.Viewer
	resources        *resource.Controller
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a Finder.
type Option func(*options)

// WithResolution sets the number of samples per cell axis (default 100).
// The grid holds n³ points; n below 2 fails at the sample stage.
func WithResolution(n int) Option {
	return func(o *options) {
		o.resolution = n
	}
}

// WithSpacing derives the resolution from the cell instead: the longest
// lattice vector is sampled at most spacing Å apart. A non-positive spacing
// keeps the fixed resolution.
func WithSpacing(spacing float64) Option {
	return func(o *options) {
		o.spacing = spacing
	}
}

// WithMarker sets the symbol of the appended marker atom (default "X").
func WithMarker(symbol string) Option {
	return func(o *options) {
		o.marker = symbol
	}
}

// WithTieBreak chooses between equally lonely grid points.
//
// Both policies are deterministic for a fixed grid. EnumerationOrder (the
// default) picks the first maximum in grid order; LowestIndex collects all
// points within tol of the maximum and picks the lowest grid index, which
// absorbs floating point noise between symmetric points.
func WithTieBreak(p selector.Policy, tol float64) Option {
	return func(o *options) {
		o.tieBreak = p
		o.tieTolerance = tol
	}
}

// WithEngine selects the nearest-neighbour index (default kd-tree).
func WithEngine(kind neighbor.Kind) Option {
	return func(o *options) {
		o.engine = kind
	}
}

// WithPeriodic measures distances to the atoms of the 26 neighbouring cells
// too. Off by default: distances are taken to the listed atoms only.
func WithPeriodic(enabled bool) Option {
	return func(o *options) {
		o.periodic = enabled
	}
}

// WithWorkers sets the query parallelism (default GOMAXPROCS).
// The result does not depend on the number of workers.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithValidateCell rejects cells whose volume is within
// crystal.DefaultDegeneracyTolerance of zero with ErrDegenerateCell.
func WithValidateCell(enabled bool) Option {
	return func(o *options) {
		o.validateCell = enabled
	}
}

// WithExtraMarker appends another marker atom at a fixed fractional
// position after the loneliest point.
func WithExtraMarker(frac crystal.Vec3) Option {
	return func(o *options) {
		o.extraMarkers = append(o.extraMarkers, frac)
	}
}

// WithCandidates keeps the k loneliest grid points in Result.Candidates.
// k < 0 keeps every grid point. When name is not empty, Run also stores
// them as a JSON document next to the output.
func WithCandidates(k int, name string) Option {
	return func(o *options) {
		o.candidates = k
		o.candidatesName = name
	}
}

// WithCodec configures the codec used for the candidate dump.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithReport writes the human-readable report to w. Without it, or with a
// nil writer, no report is written.
func WithReport(w io.Writer, f report.Format) Option {
	return func(o *options) {
		o.reportWriter = w
		o.reportFormat = f
	}
}

// WithViewer hands the annotated structure to v after Run has written it.
func WithViewer(v viewer.Viewer) Option {
	return func(o *options) {
		if v == nil {
			v = viewer.Noop{}
		}
		o.viewer = v
	}
}

// WithResourceController shares a memory budget, query slots and an output
// rate limit between Finders.
func WithResourceController(c *resource.Controller) Option {
	return func(o *options) {
		o.resources = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring runs.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &lonelypoint.BasicMetricsCollector{}
//	f := lonelypoint.New(lonelypoint.WithMetricsCollector(metrics))
//	// ... run f ...
//	stats := metrics.GetStats()
//	fmt.Printf("Runs: %d, Avg search: %dns\n", stats.RunCount, stats.SearchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for runs.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := lonelypoint.NewJSONLogger(slog.LevelInfo)
//	f := lonelypoint.New(lonelypoint.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		resolution:       grid.DefaultResolution,
		marker:           DefaultMarker,
		tieBreak:         selector.EnumerationOrder,
		tieTolerance:     selector.DefaultTolerance,
		engine:           neighbor.KindKDTree,
		workers:          runtime.GOMAXPROCS(0),
		codec:            codec.Default,
		reportFormat:     report.DefaultFormat,
		viewer:           viewer.Noop{},
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.marker == "" {
		o.marker = DefaultMarker
	}
	return o
}
