package neighbor

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/lonelypoint/crystal"
)

var (
	// ErrEmptyAtomSet is returned when an index is built without any atoms.
	ErrEmptyAtomSet = errors.New("neighbor: atom set is empty")

	// ErrNonFinitePosition is returned when a point has a NaN or infinite coordinate.
	ErrNonFinitePosition = errors.New("neighbor: non-finite position")

	// ErrUnknownKind is returned for an unsupported index kind.
	ErrUnknownKind = errors.New("neighbor: unknown index kind")
)

// Result is the nearest atom for one query point.
type Result struct {
	Distance float64 `json:"distance"`
	Index    int     `json:"index"`
}

// Index answers nearest-neighbour queries over a fixed point set.
type Index interface {
	// Nearest returns the closest indexed point to q.
	Nearest(q crystal.Vec3) Result
	// Len returns the number of indexed points.
	Len() int
}

// Kind selects the index implementation.
type Kind string

const (
	KindKDTree Kind = "kdtree"
	KindFlat   Kind = "flat"
)

// ParseKind converts a configuration string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindKDTree, "":
		return KindKDTree, nil
	case KindFlat:
		return KindFlat, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Options configures Build.
type Options struct {
	Kind Kind
	// Periodic replicates the points over the 27 neighbouring images of Cell.
	Periodic bool
	Cell     crystal.Cell
}

// WithKind selects the index implementation.
func WithKind(k Kind) func(*Options) {
	return func(o *Options) {
		o.Kind = k
	}
}

// WithPeriodicImages makes the index see atoms of the neighbouring cells.
func WithPeriodicImages(cell crystal.Cell) func(*Options) {
	return func(o *Options) {
		o.Periodic = true
		o.Cell = cell
	}
}

// Build creates an index over points. It fails with ErrEmptyAtomSet before
// allocating anything when points is empty, and with ErrNonFinitePosition
// when a coordinate is NaN or infinite.
func Build(points []crystal.Vec3, optFns ...func(*Options)) (Index, error) {
	if len(points) == 0 {
		return nil, ErrEmptyAtomSet
	}
	for i, p := range points {
		if !p.IsFinite() {
			return nil, fmt.Errorf("%w: atom %d at %v", ErrNonFinitePosition, i, p)
		}
	}

	opts := Options{Kind: KindKDTree}
	for _, fn := range optFns {
		fn(&opts)
	}

	var base func([]crystal.Vec3) Index
	switch opts.Kind {
	case KindKDTree, "":
		base = func(p []crystal.Vec3) Index { return NewKDTree(p) }
	case KindFlat:
		base = func(p []crystal.Vec3) Index { return NewFlat(p) }
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, opts.Kind)
	}

	if opts.Periodic {
		return NewPeriodic(points, opts.Cell, base), nil
	}
	return base(points), nil
}

// best tracks the running nearest candidate by squared distance.
type best struct {
	d2  float64
	idx int
}

func newBest() best {
	return best{d2: math.Inf(1), idx: -1}
}

// offer keeps the closer candidate, preferring the lower index on ties.
func (b *best) offer(d2 float64, idx int) {
	if d2 < b.d2 || (d2 == b.d2 && idx < b.idx) {
		b.d2 = d2
		b.idx = idx
	}
}

func (b best) result() Result {
	return Result{Distance: math.Sqrt(b.d2), Index: b.idx}
}
