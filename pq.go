package astar

// PriorityQueueItem is a frontier entry referring to a node in the arena.
type PriorityQueueItem struct {
	Handle       int
	Score        uint
	Sequence     int
	IndexInQueue int
}

// PriorityQueue orders frontier entries by score, then by insertion sequence.
// Popping therefore yields the same node a front-to-back linear scan of an
// insertion-ordered frontier would pick with a strict less-than comparison.
type PriorityQueue []*PriorityQueueItem

func (queue PriorityQueue) Len() int { return len(queue) }
func (queue PriorityQueue) Less(i, j int) bool {
	if queue[i].Score != queue[j].Score {
		return queue[i].Score < queue[j].Score
	}
	return queue[i].Sequence < queue[j].Sequence
}
func (queue PriorityQueue) Swap(i, j int) {
	queue[i], queue[j] = queue[j], queue[i]
	queue[i].IndexInQueue = i
	queue[j].IndexInQueue = j
}

func (queue *PriorityQueue) Push(x any) {
	item := x.(*PriorityQueueItem)
	item.IndexInQueue = len(*queue)
	*queue = append(*queue, item)
}

func (queue *PriorityQueue) Pop() any {
	oldQueue := *queue
	n := len(oldQueue)
	item := oldQueue[n-1]
	oldQueue[n-1] = nil
	item.IndexInQueue = -1
	*queue = oldQueue[:n-1]
	return item
}
