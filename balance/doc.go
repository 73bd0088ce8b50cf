// Package balance implements the tile load balancer (C7): a static
// round-robin strategy and a dynamic work-stealing coordinator, plus the
// frame state machine every render pass drives through.
//
// Grounded on original_source/ospray/mpi/MPILoadBalancer.h's
// staticLoadBalancer::Master/Slave split (tileID % numWorkers,
// numPreAllocated) for Static, and container/heap-based per-rank priority
// queues for Dynamic's work-stealing coordinator — go-ethereum's
// common/prque was considered but its retrieval pack carries only stub
// files, so this uses the standard library's container/heap directly (see
// DESIGN.md).
package balance
