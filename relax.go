package astar

// noParent marks the source node in the arena.
const noParent = -1

// searchNode is one visited or frontier cell of a single run. Nodes live in
// the stepper's arena and refer to their parent by handle.
type searchNode struct {
	cell   Cell
	g      uint
	h      uint
	parent int
}

func (node searchNode) score() uint { return node.g + node.h }

// RelaxProposal is the candidate produced for one neighbour while expanding a
// node.
type RelaxProposal struct {
	FromHandle int
	ToCell     Cell
	GScore     uint
}

// proposals lists the admissible neighbours of the node at handle in
// direction order. Off-grid, blocked and visited cells are skipped.
func (s *Stepper) proposals(handle int) []RelaxProposal {
	current := s.nodes[handle]
	result := make([]RelaxProposal, 0, int(s.connectivity))
	for direction := 0; direction < int(s.connectivity); direction++ {
		neighbour := current.cell.Add(Directions[direction])
		if s.grid.Collides(neighbour) {
			continue
		}
		if _, closed := s.closedSet[neighbour]; closed {
			continue
		}
		result = append(result, RelaxProposal{
			FromHandle: handle,
			ToCell:     neighbour,
			GScore:     StepCost(current.g, direction),
		})
	}
	return result
}
