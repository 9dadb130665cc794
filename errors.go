package lonelypoint

import (
	"errors"
	"fmt"

	"github.com/hupe1980/lonelypoint/blobstore"
	"github.com/hupe1980/lonelypoint/crystal"
	"github.com/hupe1980/lonelypoint/grid"
	"github.com/hupe1980/lonelypoint/internal/resource"
	"github.com/hupe1980/lonelypoint/neighbor"
	"github.com/hupe1980/lonelypoint/structio"
)

var (
	// ErrInputNotFound is returned when the input structure does not exist.
	ErrInputNotFound = errors.New("input not found")

	// ErrMalformedStructure is returned when the input cannot be parsed.
	ErrMalformedStructure = errors.New("malformed structure")

	// ErrInvalidInput is returned for a structure without atoms.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDegenerateCell is returned by WithValidateCell for a cell of
	// (near) zero volume.
	ErrDegenerateCell = errors.New("degenerate cell")

	// ErrOutputWrite is returned when the annotated structure or the
	// candidate dump cannot be written.
	ErrOutputWrite = errors.New("output write failed")

	// ErrInvalidResolution is returned for fewer than two samples per axis.
	ErrInvalidResolution = errors.New("invalid resolution")

	// ErrResourceLimit is returned when the grid would exceed the memory budget.
	ErrResourceLimit = errors.New("resource limit exceeded")
)

// Stage names a step of the pipeline.
type Stage string

const (
	StageRead     Stage = "read"
	StageSample   Stage = "sample"
	StageSearch   Stage = "search"
	StageSelect   Stage = "select"
	StageAnnotate Stage = "annotate"
	StageWrite    Stage = "write"
)

// StageError reports the pipeline stage that failed.
//
// The cause, which matches one of the sentinel errors of this package where
// applicable, can be accessed via errors.Unwrap.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("lonelypoint: %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// wrapAs prefixes err with sentinel unless it already matches.
func wrapAs(sentinel, err error) error {
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

func translateError(stage Stage, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, neighbor.ErrEmptyAtomSet), errors.Is(err, neighbor.ErrNonFinitePosition):
		return wrapAs(ErrInvalidInput, err)
	case errors.Is(err, grid.ErrInvalidResolution):
		return wrapAs(ErrInvalidResolution, err)
	case errors.Is(err, resource.ErrMemoryLimitExceeded):
		return wrapAs(ErrResourceLimit, err)
	case errors.Is(err, crystal.ErrSingularCell):
		return wrapAs(ErrDegenerateCell, err)
	}

	switch stage {
	case StageRead:
		if errors.Is(err, blobstore.ErrNotFound) {
			return wrapAs(ErrInputNotFound, err)
		}
		if errors.Is(err, structio.ErrMalformed) || errors.Is(err, structio.ErrUnknownFormat) {
			return wrapAs(ErrMalformedStructure, err)
		}
	case StageWrite:
		return wrapAs(ErrOutputWrite, err)
	}
	return err
}
