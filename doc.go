// Package lonelypoint finds the loneliest point of a crystal structure: the
// point of a regular grid over the unit cell whose nearest atom is farthest
// away.
//
// # Quick Start
//
//	ctx := context.Background()
//	store := blobstore.NewLocalStore(".")
//
//	f := lonelypoint.New(lonelypoint.WithResolution(100))
//	res, err := f.Run(ctx, store, "NaCl.cif", store, "lis_NaCl.cif")
//
// Run reads the structure, samples the cell, queries the nearest atom of
// every grid point, selects the maximum, appends a marker atom ("X" by
// default) at it, prints a report and writes the annotated copy. Find runs
// the same pipeline on an in-memory structure without any I/O besides the
// report.
//
// # Grid
//
// The grid has n points per cell axis, including both faces, so it holds n³
// points enumerated with the first axis slowest. Positions are fractional
// coordinates multiplied by the cell matrix, whose rows are the lattice
// vectors. Distances are plain Euclidean distances to the listed atoms
// unless WithPeriodic is set.
//
// # Ties
//
// Symmetric structures often have several equally lonely points. The
// selection is deterministic: by default the first maximum in grid order is
// returned. See WithTieBreak.
//
// # Errors
//
// Every failure is a *StageError naming the pipeline stage. Its cause
// matches one of the sentinel errors where applicable:
//
//	var se *lonelypoint.StageError
//	if errors.As(err, &se) && errors.Is(err, lonelypoint.ErrInvalidInput) {
//	    // the structure has no atoms
//	}
package lonelypoint
