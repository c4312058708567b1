package planner

import (
	"time"

	astar "github.com/pdrpinto/gridplanner"
	"github.com/pdrpinto/gridplanner/internal"
	"github.com/pdrpinto/gridplanner/internal/msgs"
)

// CellToPoint converts a grid cell into frame coordinates with the grid
// centre at the origin. Columns grow along x, rows shrink along y.
func CellToPoint(cell astar.Cell, side int, resolution float64) msgs.Point {
	half := side / 2
	return msgs.Point{
		X: float64(cell.Col-half) * resolution,
		Y: float64(half-cell.Row) * resolution,
	}
}

// ToPath converts a terminal-to-source cell sequence into a path message in
// source-to-terminal order.
func ToPath(cells []astar.Cell, cfg Config, stamp time.Time) msgs.Path {
	header := msgs.Header{Stamp: stamp, FrameID: cfg.Frame}
	path := msgs.Path{Header: header, Poses: make([]msgs.PoseStamped, 0, len(cells))}
	for _, cell := range internal.Reverse(cells) {
		path.Poses = append(path.Poses, msgs.PoseStamped{
			Header: header,
			Pose: msgs.Pose{
				Position:    CellToPoint(cell, cfg.Side, cfg.Resolution),
				Orientation: msgs.IdentityOrientation,
			},
		})
	}
	return path
}
