package balance

import "github.com/offlayer/dispatch/types"

// queueItem is one pending tile in a rank's preferred work queue, ordered
// by priority (typically the tile's last known error estimate — higher
// error renders first under the dynamic balancer).
type queueItem struct {
	tile     types.TileID
	priority float64
}

// priorityQueue is a max-heap of queueItem by priority, implementing
// container/heap.Interface.
type priorityQueue []*queueItem

func (q priorityQueue) Len() int            { return len(q) }
func (q priorityQueue) Less(i, j int) bool  { return q[i].priority > q[j].priority }
func (q priorityQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *priorityQueue) Push(x interface{}) { *q = append(*q, x.(*queueItem)) }
func (q *priorityQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
