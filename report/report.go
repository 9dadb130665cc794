// Package report renders the diagnostic block describing the loneliest point.
package report

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/hupe1980/lonelypoint/crystal"
)

// Header is the first line of every report.
const Header = "=== LONELIEST POINT ==="

// Format holds explicit number formatting for the report.
type Format struct {
	// Precision is the number of decimals for the distance.
	Precision int
	// VectorPrecision is the number of decimals for coordinate components.
	VectorPrecision int
}

// DefaultFormat prints four decimals everywhere.
var DefaultFormat = Format{Precision: 4, VectorPrecision: 4}

// Fields are the values reported for one selected point.
type Fields struct {
	Distance      float64
	Fractional    crystal.Vec3
	Absolute      crystal.Vec3
	NearestIndex  int
	NearestSymbol string
}

// Emitter writes reports to W.
type Emitter struct {
	W      io.Writer
	Format Format
}

// NewEmitter creates an emitter. A zero Format selects DefaultFormat.
func NewEmitter(w io.Writer, f Format) *Emitter {
	if f == (Format{}) {
		f = DefaultFormat
	}
	return &Emitter{W: w, Format: f}
}

// Emit writes the header and the five labeled lines.
func (e *Emitter) Emit(f Fields) error {
	if e == nil || e.W == nil {
		return nil
	}
	_, err := fmt.Fprintf(e.W,
		"\n%s\nDistance to nearest atom: %.*f Å\nFractional position: %s\nCartesian position: %s Å\nNearest atom index: %d\nNearest atom type: %s\n",
		Header,
		e.Format.Precision, f.Distance,
		f.Fractional.Format(e.Format.VectorPrecision),
		f.Absolute.Format(e.Format.VectorPrecision),
		f.NearestIndex,
		f.NearestSymbol,
	)
	return err
}

// Attrs returns the fields as structured log attributes.
func (f Fields) Attrs() []slog.Attr {
	return []slog.Attr{
		slog.Float64("distance", f.Distance),
		slog.Any("fractional", f.Fractional),
		slog.Any("absolute", f.Absolute),
		slog.Int("nearest_index", f.NearestIndex),
		slog.String("nearest_symbol", f.NearestSymbol),
	}
}
