// Package batch implements the host's command buffer and flush policy (C4):
// accumulating wire.Record frames into a byte buffer, routing oversized data
// payloads to a sidechannel broadcast ahead of the command that references
// them, and triggering an automatic flush on size, count, or per-tag
// thresholds.
//
// Grounded on the teacher's core/queue.go "accumulate then submit" shape,
// generalized from one GPU queue submission to one broadcast flush per
// batch.
package batch
