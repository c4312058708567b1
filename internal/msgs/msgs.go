// Package msgs mirrors the nav_msgs occupancy grid and path messages as JSON
// documents.
package msgs

import (
	"encoding/json"
	"fmt"
	"time"
)

// Header carries the frame and capture time of a message.
type Header struct {
	Seq     uint32    `json:"seq,omitempty"`
	Stamp   time.Time `json:"stamp"`
	FrameID string    `json:"frame_id"`
}

// MapMetaData describes the geometry of an occupancy grid.
type MapMetaData struct {
	Resolution float64 `json:"resolution"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

// OccupancyGrid is a row-major occupancy snapshot. Values follow the usual
// convention: 100 occupied, 0 free, -1 unknown.
type OccupancyGrid struct {
	Header Header      `json:"header"`
	Info   MapMetaData `json:"info"`
	Data   []int8      `json:"data"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// IdentityOrientation is the zero-yaw orientation.
var IdentityOrientation = Quaternion{W: 1}

type Pose struct {
	Position    Point      `json:"position"`
	Orientation Quaternion `json:"orientation"`
}

type PoseStamped struct {
	Header Header `json:"header"`
	Pose   Pose   `json:"pose"`
}

// Path is an ordered list of poses. RunID identifies the planning run that
// produced it.
type Path struct {
	Header Header        `json:"header"`
	RunID  string        `json:"run_id,omitempty"`
	Poses  []PoseStamped `json:"poses"`
}

// DecodeOccupancyGrid parses a JSON occupancy grid.
func DecodeOccupancyGrid(payload []byte) (OccupancyGrid, error) {
	var grid OccupancyGrid
	if err := json.Unmarshal(payload, &grid); err != nil {
		return OccupancyGrid{}, fmt.Errorf("decode occupancy grid: %w", err)
	}
	return grid, nil
}
