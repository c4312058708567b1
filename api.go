package astar

import (
	"errors"
	"fmt"
)

var (
	// ErrNilGrid is returned when no grid is supplied.
	ErrNilGrid = errors.New("nil grid")
	// ErrOffGrid is returned when the source or target lies outside the grid.
	ErrOffGrid = errors.New("cell outside grid")
	// ErrSameCell is returned when source and target coincide.
	ErrSameCell = errors.New("source equals target")
	// ErrConnectivity is returned for a connectivity other than 4 or 8.
	ErrConnectivity = errors.New("connectivity must be 4 or 8")
)

// Result contains the outcome of a search
type Result struct {
	// Path runs from Terminal back to the source.
	Path     []Cell
	Terminal Cell
	// Cost is the accumulated G of the terminal node.
	Cost    uint
	Outcome Outcome
	// FellBack is set when the terminal was replaced by the closest
	// reachable visited node.
	FellBack bool
	Expanded int
}

// Found reports whether the search reached the target itself.
func (result Result) Found() bool {
	return result.Outcome == GoalReached && !result.FellBack
}

// Options defines parameters for the search.
type Options struct {
	Connectivity Connectivity
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithConnectivity selects 4- or 8-directional movement.
func WithConnectivity(connectivity Connectivity) Option {
	return func(options *Options) { options.Connectivity = connectivity }
}

// Search runs A* from source to target to completion. When the target cannot
// be reached the result ends at the closest reachable visited cell instead.
// Errors are only returned for invalid input.
func Search(grid *Grid, source Cell, target Cell, options ...Option) (Result, error) {
	stepper, err := NewStepper(grid, source, target, options...)
	if err != nil {
		return Result{}, err
	}
	return stepper.Result(), nil
}

func applyOptions(options []Option) Options {
	searchOptions := Options{
		Connectivity: FourWay,
	}
	for _, option := range options {
		option(&searchOptions)
	}
	return searchOptions
}

func validate(grid *Grid, source Cell, target Cell, options Options) error {
	if grid == nil {
		return ErrNilGrid
	}
	if options.Connectivity != FourWay && options.Connectivity != EightWay {
		return fmt.Errorf("%w: %d", ErrConnectivity, options.Connectivity)
	}
	if !grid.InBounds(source) {
		return fmt.Errorf("%w: source %v", ErrOffGrid, source)
	}
	if !grid.InBounds(target) {
		return fmt.Errorf("%w: target %v", ErrOffGrid, target)
	}
	if source == target {
		return fmt.Errorf("%w: %v", ErrSameCell, source)
	}
	return nil
}
