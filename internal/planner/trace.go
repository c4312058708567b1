package planner

import (
	astar "github.com/pdrpinto/gridplanner"
	"github.com/pdrpinto/gridplanner/internal/msgs"
)

// TraceStep summarizes one expansion of a traced run.
type TraceStep struct {
	Step     int          `json:"step"`
	Current  astar.Cell   `json:"current"`
	Frontier []astar.Cell `json:"frontier"`
	Visited  int          `json:"visited"`
	Outcome  string       `json:"outcome"`
}

// Trace plans like Plan but records the frontier after every expansion, up
// to limit steps (zero means no limit). The run always completes.
func (p *Planner) Trace(snapshot msgs.OccupancyGrid, limit int) ([]TraceStep, astar.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkGeometry(snapshot.Info); err != nil {
		return nil, astar.Result{}, err
	}
	grid, err := astar.GridFromBuffer(p.config.Side, snapshot.Data, p.config.Occupied)
	if err != nil {
		return nil, astar.Result{}, err
	}
	stepper, err := astar.NewStepper(grid, p.config.Source(), p.config.Target(), astar.WithConnectivity(p.config.Connectivity))
	if err != nil {
		return nil, astar.Result{}, err
	}

	var steps []TraceStep
	for !stepper.Done() {
		step := stepper.Step()
		if limit > 0 && len(steps) >= limit {
			continue
		}
		steps = append(steps, TraceStep{
			Step:     step.StepIndex,
			Current:  step.Current,
			Frontier: stepper.Frontier(),
			Visited:  len(stepper.Visited()),
			Outcome:  step.Outcome.String(),
		})
	}
	return steps, stepper.Result(), nil
}
