// Package neighbor answers nearest-atom queries for batches of points.
//
// An Index is built once from the atom positions and is read-only afterwards,
// so it is safe for concurrent queries.
//
// # Index Types
//
//   - KDTree: static 3-d tree, O(log k) per query on average (default)
//   - Flat: linear scan, O(k) per query; exact reference implementation
//   - Periodic: wraps either of the above over the 27 neighbouring cell images
//
// # Usage
//
//	idx, err := neighbor.Build(positions, neighbor.WithKind(neighbor.KindKDTree))
//	results, err := neighbor.Query(ctx, idx, queries, neighbor.WithWorkers(8))
//
// results[i] always belongs to queries[i], regardless of the worker count.
//
// When several atoms are equidistant from a query point, both built-in
// indexes report the one with the lowest atom index. Callers should only rely
// on the distance.
package neighbor
