// Package dispatch implements the worker dispatcher (C5): a single-threaded
// receive-decode-dispatch loop that reads broadcast command buffers off a
// fabric.Group, decodes wire.Record frames, and invokes the handler
// registered for each tag.
//
// Grounded on original_source/ospray/mpi/worker.cpp's runWorker decode loop
// and its three-way handler split (local-only, replies-required,
// collective); the task pool spawned work runs on is a fixed-size,
// channel-based pool in the shape of ygrebnov-workers' pool.Pool
// (Get()/Put()), reimplemented locally rather than imported — see
// DESIGN.md for why.
package dispatch
