package fabric

import "context"

// Group is the process-group abstraction every other component depends on:
// barrier, broadcast, and point-to-point send/recv across a fixed set of
// ranks (spec §4.1). Rank 0 is always the host; ranks 1..Size()-1 are
// workers.
//
// Grounded on original_source's ospray::mpi::Group (rank/size/barrier) and
// SocketBcastFabric's broadcast/send/recv split, generalized to an
// interface so host and worker each get their own concrete implementation
// (Host, Worker) over the same per-peer connection code (peer.go).
type Group interface {
	// Rank returns this process's rank within the group.
	Rank() int
	// Size returns the number of ranks in the group, including the host.
	Size() int

	// Barrier blocks until every rank in the group has called Barrier.
	Barrier(ctx context.Context) error

	// Broadcast sends payload from the host to every worker. Called only
	// by the host; workers receive via RecvBroadcast.
	Broadcast(ctx context.Context, payload []byte) error
	// RecvBroadcast blocks until the next broadcast payload arrives.
	// Called only by workers.
	RecvBroadcast(ctx context.Context) ([]byte, error)

	// Send delivers payload to a single peer rank.
	Send(ctx context.Context, rank int, payload []byte) error
	// Recv blocks until a point-to-point payload arrives from rank.
	Recv(ctx context.Context, rank int) ([]byte, error)

	// Close tears down every connection in the group. Subsequent calls on
	// any method return ErrClosed.
	Close() error
}
