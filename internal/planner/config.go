package planner

import (
	"errors"
	"fmt"
	"math"

	astar "github.com/pdrpinto/gridplanner"
	"github.com/pdrpinto/gridplanner/internal/config"
)

// ErrGeometry is returned for a grid geometry the planner cannot search,
// either at startup or when a snapshot does not match the configuration.
var ErrGeometry = errors.New("invalid grid geometry")

// Config is the immutable per-process planning configuration.
type Config struct {
	Side         int
	Resolution   float64
	Connectivity astar.Connectivity
	Frame        string
	Occupied     int8
}

// NewConfig derives the grid side from the physical span and resolution and
// rejects geometries where the fixed source and target would coincide.
func NewConfig(span float64, resolution float64, enableCross bool, frame string, occupied int8) (Config, error) {
	if resolution <= 0 || math.IsNaN(resolution) || math.IsInf(resolution, 0) {
		return Config{}, fmt.Errorf("%w: resolution %v", ErrGeometry, resolution)
	}
	// The epsilon keeps spans like 5.0/0.1 from truncating to 49.
	side := int(math.Floor(span/resolution + 1e-9))
	if side <= 0 {
		return Config{}, fmt.Errorf("%w: span %v at resolution %v gives side %d", ErrGeometry, span, resolution, side)
	}

	connectivity := astar.FourWay
	if enableCross {
		connectivity = astar.EightWay
	}
	cfg := Config{
		Side:         side,
		Resolution:   resolution,
		Connectivity: connectivity,
		Frame:        frame,
		Occupied:     occupied,
	}
	if cfg.Source() == cfg.Target() {
		return Config{}, fmt.Errorf("%w: side %d leaves source and target on the same cell", ErrGeometry, side)
	}
	return cfg, nil
}

// FromSettings builds a Config from the loaded planner settings.
func FromSettings(settings config.PlannerConfig) (Config, error) {
	return NewConfig(settings.Size, settings.Resolution, settings.EnableCross, settings.RobotFrame, settings.OccupiedValue)
}

// Source is the grid centre.
func (c Config) Source() astar.Cell {
	return astar.Cell{Row: c.Side / 2, Col: c.Side / 2}
}

// Target is the centre row on the far column edge, straight ahead of the
// source.
func (c Config) Target() astar.Cell {
	return astar.Cell{Row: c.Side / 2, Col: c.Side - 1}
}
