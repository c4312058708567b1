// Package astar plans routes across square occupancy grids with A*.
//
// It exposes two main entry points:
//
//   - Search: run the algorithm to completion and get a Result.
//   - Stepper: iterate the search one expansion at a time to drive UIs or debugging tools.
//
// Step costs are 0.8 for axis-aligned and 1.2 for diagonal moves, accumulated
// with integer truncation. The heuristic is the truncated Euclidean distance.
// When the target is blocked or unreachable, the search ends at the expanded
// cell with the lowest nonzero score.
package astar
