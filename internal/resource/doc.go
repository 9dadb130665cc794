// Package resource enforces per-process limits shared by concurrent searches:
// a memory budget for sampling grids, a cap on concurrent query shards and an
// output byte rate.
//
// A nil *Controller is valid and imposes no limits.
package resource
