package balance

import (
	"container/heap"
	"sync"

	"github.com/offlayer/dispatch/types"
)

// DefaultReplicationErrorFactor and DefaultMaxReplicas are the dynamic
// balancer's replication policy defaults: a tile is handed to a second
// rank once its error estimate exceeds the running average by this
// factor, capped at this many simultaneous owners.
const (
	DefaultReplicationErrorFactor = 2.0
	DefaultMaxReplicas            = 2
)

// QueueDepthObserver receives the coordinator's total pending tile count
// whenever it changes (metrics.Registry implements this without balance
// importing metrics).
type QueueDepthObserver interface {
	SetBalancerQueueDepth(n int)
}

// Dynamic is the work-stealing tile coordinator: each rank has a preferred
// priority queue ordered by last-known error estimate, and a rank that
// drains its own queue steals from whichever other rank is carrying the
// largest backlog. High-error tiles are additionally replicated onto a
// second rank so a slow straggler doesn't stall the whole frame on one
// tile (spec §4.7's dynamic load balancer, grounded on
// MPILoadBalancer.h's interactive mode, reworked as an explicit
// coordinator rather than a shared-singleton scheduler per the package's
// redesign).
type Dynamic struct {
	ReplicationErrorFactor float64
	MaxReplicas            int

	mu       sync.Mutex
	queues   []priorityQueue
	replicas map[types.TileID]int
	errSum   float64
	errCount int
	observer QueueDepthObserver
}

// NewDynamic returns a Dynamic coordinator sized for numWorkers ranks,
// with default replication policy settings.
func NewDynamic(numWorkers int) *Dynamic {
	d := &Dynamic{
		ReplicationErrorFactor: DefaultReplicationErrorFactor,
		MaxReplicas:            DefaultMaxReplicas,
		queues:                 make([]priorityQueue, numWorkers),
		replicas:               make(map[types.TileID]int),
	}
	for i := range d.queues {
		heap.Init(&d.queues[i])
	}
	return d
}

// WithObserver attaches obs to receive queue-depth updates. Pass nil to
// disable reporting.
func (d *Dynamic) WithObserver(obs QueueDepthObserver) *Dynamic {
	d.observer = obs
	return d
}

// pendingLocked returns the total pending tile count. Callers must hold
// d.mu.
func (d *Dynamic) pendingLocked() int {
	total := 0
	for _, q := range d.queues {
		total += len(q)
	}
	return total
}

func (d *Dynamic) reportDepth() {
	if d.observer == nil {
		return
	}
	d.mu.Lock()
	n := d.pendingLocked()
	d.mu.Unlock()
	d.observer.SetBalancerQueueDepth(n)
}

func (d *Dynamic) averageError() float64 {
	if d.errCount == 0 {
		return 0
	}
	return d.errSum / float64(d.errCount)
}

// Enqueue offers tile to its preferred rank's queue, prioritized by
// errorEstimate. If errorEstimate exceeds the running average error by
// ReplicationErrorFactor and the tile has not already reached
// MaxReplicas owners, it is also pushed onto the least-loaded other
// rank's queue so two ranks race to resolve it.
func (d *Dynamic) Enqueue(tile types.TileID, preferredRank int, errorEstimate float32) {
	d.mu.Lock()

	est := float64(errorEstimate)
	avg := d.averageError()
	d.errSum += est
	d.errCount++

	heap.Push(&d.queues[preferredRank], &queueItem{tile: tile, priority: est})
	d.replicas[tile] = 1

	if avg > 0 && est > d.ReplicationErrorFactor*avg && d.replicas[tile] < d.MaxReplicas {
		victim := d.leastLoadedRank(preferredRank)
		if victim >= 0 {
			heap.Push(&d.queues[victim], &queueItem{tile: tile, priority: est})
			d.replicas[tile]++
		}
	}
	d.mu.Unlock()
	d.reportDepth()
}

// leastLoadedRank returns the rank (other than exclude) with the
// shortest queue, or -1 if there is no other rank.
func (d *Dynamic) leastLoadedRank(exclude int) int {
	best := -1
	for i, q := range d.queues {
		if i == exclude {
			continue
		}
		if best == -1 || len(q) < len(d.queues[best]) {
			best = i
		}
	}
	return best
}

// mostLoadedRank returns the rank (other than exclude) carrying the
// largest backlog, or -1 if every other rank's queue is empty.
func (d *Dynamic) mostLoadedRank(exclude int) int {
	best := -1
	for i, q := range d.queues {
		if i == exclude || len(q) == 0 {
			continue
		}
		if best == -1 || len(q) > len(d.queues[best]) {
			best = i
		}
	}
	return best
}

// NextTile returns the next tile rank should render: its own
// highest-priority pending tile if it has one, otherwise a tile stolen
// from the most heavily loaded other rank. Returns false once every
// queue is empty.
func (d *Dynamic) NextTile(rank int) (types.TileID, bool) {
	d.mu.Lock()

	var tile types.TileID
	var ok bool
	switch {
	case len(d.queues[rank]) > 0:
		item := heap.Pop(&d.queues[rank]).(*queueItem)
		tile, ok = item.tile, true
	default:
		if victim := d.mostLoadedRank(rank); victim != -1 {
			item := heap.Pop(&d.queues[victim]).(*queueItem)
			tile, ok = item.tile, true
		}
	}
	d.mu.Unlock()

	if ok {
		d.reportDepth()
	}
	return tile, ok
}

// Pending returns the number of tiles still queued across every rank.
func (d *Dynamic) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pendingLocked()
}

// Reset clears all queues and replication/error-tracking state, for
// reuse across frames.
func (d *Dynamic) Reset() {
	d.mu.Lock()
	for i := range d.queues {
		d.queues[i] = d.queues[i][:0]
	}
	d.replicas = make(map[types.TileID]int)
	d.errSum = 0
	d.errCount = 0
	d.mu.Unlock()
	d.reportDepth()
}
