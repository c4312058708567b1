package astar

import (
	"fmt"
	"math"
)

// Cell is a (row, column) grid position.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Add applies a movement step componentwise.
func (cell Cell) Add(step Cell) Cell {
	return Cell{Row: cell.Row + step.Row, Col: cell.Col + step.Col}
}

func (cell Cell) String() string {
	return fmt.Sprintf("(%d,%d)", cell.Row, cell.Col)
}

// Connectivity selects how many of the movement directions a search uses.
type Connectivity int

const (
	FourWay  Connectivity = 4
	EightWay Connectivity = 8
)

// Directions is the movement table. The first four entries are axis-aligned,
// the last four diagonal. Expansion order, and therefore tie-breaking, follows
// this order.
var Directions = [8]Cell{
	{0, 1}, {1, 0}, {0, -1}, {-1, 0},
	{-1, -1}, {1, 1}, {-1, 1}, {1, -1},
}

const (
	axisCost     = 0.8
	diagonalCost = 1.2
)

// StepCost returns the accumulated cost after moving along Directions[direction]
// from a node with cost g. The sum is truncated to an integer, so axis steps
// leave g unchanged and diagonal steps add one.
func StepCost(g uint, direction int) uint {
	cost := axisCost
	if direction >= 4 {
		cost = diagonalCost
	}
	return uint(float64(g) + cost)
}

// Heuristic returns the truncated Euclidean distance between two cells.
func Heuristic(from Cell, to Cell) uint {
	deltaRow := math.Abs(float64(from.Row - to.Row))
	deltaCol := math.Abs(float64(from.Col - to.Col))
	return uint(math.Sqrt(deltaRow*deltaRow + deltaCol*deltaCol))
}
