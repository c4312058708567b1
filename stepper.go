package astar

import (
	"container/heap"

	"github.com/pdrpinto/gridplanner/internal"
)

// Outcome describes how a search run stopped.
type Outcome int

const (
	Running Outcome = iota
	GoalReached
	Exhausted
)

func (outcome Outcome) String() string {
	switch outcome {
	case Running:
		return "running"
	case GoalReached:
		return "goal_reached"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// StepSnapshot exposes the per-iteration state of the search
type StepSnapshot struct {
	Current   Cell
	Done      bool
	Outcome   Outcome
	StepIndex int
}

// NodeInfo is a read-only view of one search node.
type NodeInfo struct {
	Cell      Cell
	G         uint
	H         uint
	HasParent bool
	Parent    Cell
}

// Stepper runs a single search one expansion at a time. A Stepper is not safe
// for concurrent use and cannot be reused for another grid.
type Stepper struct {
	grid         *Grid
	source       Cell
	target       Cell
	connectivity Connectivity

	nodes       []searchNode
	openSet     PriorityQueue
	openSetMap  map[Cell]*PriorityQueueItem
	closedSet   map[Cell]int
	closedOrder []int
	sequence    int

	current   int
	stepCount int
	outcome   Outcome
	result    *Result
}

// NewStepper prepares a search from source to target over grid.
func NewStepper(grid *Grid, source Cell, target Cell, options ...Option) (*Stepper, error) {
	searchOptions := applyOptions(options)
	if err := validate(grid, source, target, searchOptions); err != nil {
		return nil, err
	}

	s := &Stepper{
		grid:         grid,
		source:       source,
		target:       target,
		connectivity: searchOptions.Connectivity,
		openSet:      make(PriorityQueue, 0),
		openSetMap:   make(map[Cell]*PriorityQueueItem),
		closedSet:    make(map[Cell]int),
		current:      noParent,
	}
	heap.Init(&s.openSet)
	// The source starts with H = 0, not the heuristic distance.
	s.insert(searchNode{cell: source, parent: noParent})
	return s, nil
}

// Step advances the search by one node expansion and returns a snapshot
func (s *Stepper) Step() StepSnapshot {
	if s.outcome != Running {
		return s.snapshot()
	}
	if s.openSet.Len() == 0 {
		s.outcome = Exhausted
		return s.snapshot()
	}

	s.stepCount++
	currentItem := heap.Pop(&s.openSet).(*PriorityQueueItem)
	s.current = currentItem.Handle
	currentCell := s.nodes[s.current].cell
	delete(s.openSetMap, currentCell)

	if currentCell == s.target {
		s.outcome = GoalReached
		return s.snapshot()
	}

	s.closedSet[currentCell] = s.current
	s.closedOrder = append(s.closedOrder, s.current)

	for _, proposal := range s.proposals(s.current) {
		item, inOpen := s.openSetMap[proposal.ToCell]
		if !inOpen {
			s.insert(searchNode{
				cell:   proposal.ToCell,
				g:      proposal.GScore,
				h:      Heuristic(proposal.ToCell, s.target),
				parent: proposal.FromHandle,
			})
			continue
		}
		successor := &s.nodes[item.Handle]
		if proposal.GScore < successor.g {
			successor.parent = proposal.FromHandle
			successor.g = proposal.GScore
			item.Score = successor.score()
			heap.Fix(&s.openSet, item.IndexInQueue)
		}
	}

	return s.snapshot()
}

// Done reports whether the search has stopped.
func (s *Stepper) Done() bool { return s.outcome != Running }

// Frontier lists the cells currently in the open set.
func (s *Stepper) Frontier() []Cell {
	cells := make([]Cell, 0, len(s.openSetMap))
	for _, item := range s.openSet {
		cells = append(cells, s.nodes[item.Handle].cell)
	}
	return cells
}

// Visited lists expanded cells in expansion order.
func (s *Stepper) Visited() []Cell {
	cells := make([]Cell, 0, len(s.closedOrder))
	for _, handle := range s.closedOrder {
		cells = append(cells, s.nodes[handle].cell)
	}
	return cells
}

// Nodes returns every node created so far, in creation order.
func (s *Stepper) Nodes() []NodeInfo {
	infos := make([]NodeInfo, 0, len(s.nodes))
	for _, node := range s.nodes {
		info := NodeInfo{Cell: node.cell, G: node.g, H: node.h}
		if node.parent != noParent {
			info.HasParent = true
			info.Parent = s.nodes[node.parent].cell
		}
		infos = append(infos, info)
	}
	return infos
}

// Result runs the search to completion if needed, applies the fallback and
// reconstructs the path. The node arena is released afterwards.
func (s *Stepper) Result() Result {
	if s.result != nil {
		return *s.result
	}
	for !s.Done() {
		s.Step()
	}

	terminal := s.current
	fellBack := false
	if s.outcome == Exhausted || (terminal != noParent && s.grid.Blocked(s.nodes[terminal].cell)) {
		if closest := s.closestVisited(); closest != noParent {
			terminal = closest
			fellBack = true
		}
	}

	result := Result{
		Outcome:  s.outcome,
		FellBack: fellBack,
		Expanded: len(s.closedOrder),
	}
	if terminal != noParent {
		handles := internal.ReconstructPath(func(handle int) int { return s.nodes[handle].parent }, terminal)
		result.Path = make([]Cell, len(handles))
		for i, handle := range handles {
			result.Path[i] = s.nodes[handle].cell
		}
		result.Terminal = s.nodes[terminal].cell
		result.Cost = s.nodes[terminal].g
	}

	s.result = &result
	s.release()
	return result
}

// closestVisited returns the expanded node with the lowest nonzero score,
// preferring the earliest expanded on ties, or noParent if there is none.
func (s *Stepper) closestVisited() int {
	best := noParent
	for _, handle := range s.closedOrder {
		score := s.nodes[handle].score()
		if score == 0 {
			continue
		}
		if best == noParent || score < s.nodes[best].score() {
			best = handle
		}
	}
	return best
}

func (s *Stepper) insert(node searchNode) {
	handle := len(s.nodes)
	s.nodes = append(s.nodes, node)
	item := &PriorityQueueItem{Handle: handle, Score: node.score(), Sequence: s.sequence}
	s.sequence++
	heap.Push(&s.openSet, item)
	s.openSetMap[node.cell] = item
}

func (s *Stepper) snapshot() StepSnapshot {
	snapshot := StepSnapshot{
		Done:      s.outcome != Running,
		Outcome:   s.outcome,
		StepIndex: s.stepCount,
	}
	if s.current != noParent && s.current < len(s.nodes) {
		snapshot.Current = s.nodes[s.current].cell
	}
	return snapshot
}

func (s *Stepper) release() {
	s.nodes = nil
	s.openSet = nil
	s.openSetMap = map[Cell]*PriorityQueueItem{}
	s.closedSet = map[Cell]int{}
	s.closedOrder = nil
	s.current = noParent
}
