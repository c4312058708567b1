package astar

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyMap means a snapshot contained no occupied cells. The cycle is
	// skipped; it is not a failure.
	ErrEmptyMap = errors.New("no occupied cells in map")
	// ErrBufferSize means the buffer length is not side².
	ErrBufferSize = errors.New("occupancy buffer size mismatch")
	// ErrInvalidSide means the grid side length is not positive.
	ErrInvalidSide = errors.New("grid side must be positive")
)

// Grid is a square occupancy grid. Cells in the blocked set are not
// traversable; every other in-bounds cell is.
type Grid struct {
	side    int
	blocked map[Cell]struct{}
}

// NewGrid returns a fully traversable grid of the given side length.
func NewGrid(side int) (*Grid, error) {
	if side <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSide, side)
	}
	return &Grid{side: side, blocked: make(map[Cell]struct{})}, nil
}

// GridFromBuffer builds a grid from a row-major occupancy buffer. Cells whose
// value equals occupied are blocked. Buffer row zero is the far edge of the
// grid, see FlipRow.
func GridFromBuffer(side int, data []int8, occupied int8) (*Grid, error) {
	grid, err := NewGrid(side)
	if err != nil {
		return nil, err
	}
	if len(data) != side*side {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrBufferSize, len(data), side*side)
	}
	for index, value := range data {
		if value == occupied {
			grid.Block(CellAt(side, index))
		}
	}
	if grid.BlockedCount() == 0 {
		return nil, ErrEmptyMap
	}
	return grid, nil
}

// FlipRow maps a buffer row to a grid row.
func FlipRow(side int, bufferRow int) int {
	return side - 1 - bufferRow
}

// CellAt maps a row-major buffer index to a grid cell.
func CellAt(side int, index int) Cell {
	return Cell{Row: FlipRow(side, index/side), Col: index % side}
}

func (grid *Grid) Side() int { return grid.side }

func (grid *Grid) Block(cell Cell) {
	grid.blocked[cell] = struct{}{}
}

func (grid *Grid) Blocked(cell Cell) bool {
	_, ok := grid.blocked[cell]
	return ok
}

func (grid *Grid) BlockedCount() int { return len(grid.blocked) }

func (grid *Grid) InBounds(cell Cell) bool {
	return cell.Row >= 0 && cell.Row < grid.side && cell.Col >= 0 && cell.Col < grid.side
}

// Collides reports whether a cell is off-grid or blocked.
func (grid *Grid) Collides(cell Cell) bool {
	return !grid.InBounds(cell) || grid.Blocked(cell)
}
