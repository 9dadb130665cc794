// Package distance provides point-to-point distance calculations in 3-space.
//
// # Supported Metrics
//
//   - MetricL2: Euclidean distance (default)
//   - MetricSquaredL2: Squared Euclidean distance, cheaper for comparisons
//
// # Usage
//
//	d2 := distance.SquaredL2(a, b)
//	d := distance.L2(a, b)
//	img := distance.MinimumImage(a, b, cell)
package distance
