// Package handle allocates and tracks the opaque object handles addressed
// throughout the offload core. Unlike the identity manager it is grounded
// on, it never recycles a freed slot: spec invariant "a handle is never
// reused within a process lifetime" rules out the teacher's epoch+free-list
// scheme outright, so Allocator is a bare monotonic counter instead.
package handle

import (
	"sync/atomic"

	"github.com/offlayer/dispatch/types"
)

// Allocator mints handles for objects owned by one rank. Only the host
// (rank 0) allocates handles in offload mode; workers receive them already
// assigned, decoded off the wire.
type Allocator struct {
	rank    uint16
	counter atomic.Uint32
}

// NewAllocator returns an Allocator that stamps every handle it mints with
// the given owning rank.
func NewAllocator(rank uint16) *Allocator {
	return &Allocator{rank: rank}
}

// Next returns the next handle for this rank. The underlying counter never
// resets or wraps back to a previously issued value within the allocator's
// lifetime; callers must not call Next after the counter is exhausted
// (2^32-1 allocations), which Release does not make available again.
func (a *Allocator) Next() types.Handle {
	c := a.counter.Add(1)
	return types.NewHandle(c, a.rank)
}

// Rank returns the owning rank this allocator stamps into every handle.
func (a *Allocator) Rank() uint16 {
	return a.rank
}

// Issued returns the number of handles minted so far.
func (a *Allocator) Issued() uint32 {
	return a.counter.Load()
}
