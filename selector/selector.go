// Package selector picks the loneliest sample from aligned neighbour results.
//
// Any maximal-distance point is a correct answer. Determinism is promised only
// relative to a fixed grid enumeration order; both policies below return the
// same index for the same input on every run.
package selector

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/lonelypoint/neighbor"
)

// ErrNoCandidates is returned when there is nothing to select from.
var ErrNoCandidates = errors.New("selector: no candidates")

// ErrUnknownPolicy is returned by ParsePolicy.
var ErrUnknownPolicy = errors.New("selector: unknown tie-break policy")

// DefaultTolerance is the distance slack used by LowestIndex to treat
// floating-point neighbours of the maximum as ties.
const DefaultTolerance = 1e-9

// Policy decides which of several maximal-distance points is reported.
type Policy int

const (
	// EnumerationOrder takes the first point after a stable descending sort,
	// i.e. the earliest exact maximum in grid enumeration order.
	EnumerationOrder Policy = iota
	// LowestIndex treats every point within the tolerance of the maximum as
	// equally valid and returns the lowest grid index among them.
	LowestIndex
)

func (p Policy) String() string {
	switch p {
	case EnumerationOrder:
		return "enumeration"
	case LowestIndex:
		return "lowest-index"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// ParsePolicy converts a configuration string to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "enumeration":
		return EnumerationOrder, nil
	case "lowest-index":
		return LowestIndex, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Select returns the grid index of the loneliest point.
func Select(results []neighbor.Result, policy Policy) (int, error) {
	return SelectWithTolerance(results, policy, DefaultTolerance)
}

// SelectWithTolerance is Select with an explicit tie tolerance for LowestIndex.
func SelectWithTolerance(results []neighbor.Result, policy Policy, tol float64) (int, error) {
	if len(results) == 0 {
		return -1, ErrNoCandidates
	}

	switch policy {
	case EnumerationOrder:
		// Equivalent to Rank(results, 1)[0] without sorting the whole grid.
		best := 0
		for i := 1; i < len(results); i++ {
			if results[i].Distance > results[best].Distance {
				best = i
			}
		}
		return best, nil
	case LowestIndex:
		ties := Ties(results, tol)
		return int(ties.Minimum()), nil
	default:
		return -1, fmt.Errorf("%w: %v", ErrUnknownPolicy, policy)
	}
}

// Rank returns grid indices ordered by descending distance. The sort is
// stable, so equal distances keep enumeration order. k <= 0 returns all.
func Rank(results []neighbor.Result, k int) []int {
	order := make([]int, len(results))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(results[b].Distance, results[a].Distance)
	})
	if k > 0 && k < len(order) {
		order = order[:k:k]
	}
	return order
}

// Ties returns every grid index whose distance is within tol of the maximum.
func Ties(results []neighbor.Result, tol float64) *roaring.Bitmap {
	bm := roaring.New()
	if len(results) == 0 {
		return bm
	}

	maxD := math.Inf(-1)
	for _, r := range results {
		maxD = max(maxD, r.Distance)
	}
	for i, r := range results {
		if maxD-r.Distance <= tol {
			bm.Add(uint32(i))
		}
	}
	return bm
}
