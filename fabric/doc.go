// Package fabric implements the group fabric (C1): process-group bootstrap
// and the barrier/broadcast/point-to-point primitives every other component
// layers on top of.
//
// Grounded on original_source/modules/mpi/common/SocketBcastFabric.h: a
// dedicated send goroutine per peer drains a transactional outbox so a slow
// peer never blocks the caller issuing a broadcast, and
// original_source/modules/mpi/common/MPICommon.h's Group abstraction for
// barrier/broadcast/send/recv. Fan-out across peers uses
// golang.org/x/sync/errgroup, the same pattern
// other_examples/psampaz-bigslice__exec-bigmachine.go.go uses to coordinate
// a distributed machine group.
package fabric
