package batch

import (
	"bytes"
	"sync"

	"github.com/offlayer/dispatch/types"
	"github.com/offlayer/dispatch/wire"
)

// Sender is the fabric-side dependency a Buffer flushes through. It is
// defined here, at the point of use, rather than imported from the fabric
// package, so batch has no dependency on fabric's transport details.
type Sender interface {
	// Sidechannel broadcasts a raw payload to every worker, ahead of the
	// command that references it (spec §4.4 "sidechannel").
	Sidechannel(payload []byte) error
	// Flush broadcasts the accumulated command buffer, framed with the
	// u64 total-bytes header the flush protocol requires.
	Flush(payload []byte) error
}

// Observer receives counters a Buffer's caller may want to expose
// (metrics.Registry implements this without batch importing metrics).
// All methods are optional to implement; WithObserver(nil) disables
// reporting.
type Observer interface {
	CommandsFlushed(n int)
	BytesFlushed(n int64)
	SidechannelBytes(n int64)
}

// Buffer accumulates encoded command records and applies the host's flush
// policy (spec §4.4). A Buffer is owned by exactly one goroutine (the
// host's main thread, per spec §5); PutRecord and EncodeDataArray are not
// safe for concurrent use from multiple goroutines on the same Buffer.
type Buffer struct {
	policy   Policy
	sender   Sender
	observer Observer

	mu    sync.Mutex
	buf   bytes.Buffer
	count int
}

// NewBuffer returns an empty Buffer governed by policy, flushing through
// sender.
func NewBuffer(policy Policy, sender Sender) *Buffer {
	return &Buffer{policy: policy, sender: sender}
}

// WithObserver attaches obs to receive flush counters. Pass nil to
// disable reporting.
func (b *Buffer) WithObserver(obs Observer) *Buffer {
	b.observer = obs
	return b
}

// PutRecord appends a pre-encoded command record to the buffer and triggers
// an automatic flush if the tag's Flushing predicate is true or the buffer's
// size/count thresholds are exceeded.
func (b *Buffer) PutRecord(tag wire.Tag, payload []byte) error {
	b.mu.Lock()
	if err := wire.WriteRecord(&b.buf, tag, payload); err != nil {
		b.mu.Unlock()
		return err
	}
	b.count++
	needsFlush := tag.Flushing() ||
		int64(b.buf.Len()) > b.policy.FlushBytes ||
		b.count > b.policy.FlushCommands
	b.mu.Unlock()

	if needsFlush {
		return b.Flush()
	}
	return nil
}

// EncodeDataArray appends d to enc inline if its byte length is within the
// policy's inline threshold; otherwise it broadcasts d's bytes over the
// sidechannel first and appends only the header, so the enclosing command's
// payload never exceeds the threshold on its own (spec §4.4).
func (b *Buffer) EncodeDataArray(enc *wire.Encoder, d *types.DataArray) error {
	if d.ByteLength() <= b.policy.InlineThreshold {
		return enc.PutDataArray(d)
	}
	if err := b.sender.Sidechannel(d.Bytes); err != nil {
		return err
	}
	if b.observer != nil {
		b.observer.SidechannelBytes(int64(len(d.Bytes)))
	}
	return enc.PutDataArrayHeader(d)
}

// Flush broadcasts the accumulated buffer through the sender and resets the
// buffer for the next batch, regardless of whether the broadcast succeeds —
// a failed flush is fatal to the fabric (spec §7 ProtocolError), so there is
// no reason to retain the stale bytes.
func (b *Buffer) Flush() error {
	b.mu.Lock()
	payload := make([]byte, b.buf.Len())
	copy(payload, b.buf.Bytes())
	flushed := b.count
	b.buf.Reset()
	b.count = 0
	b.mu.Unlock()

	if len(payload) == 0 {
		return nil
	}
	if b.observer != nil {
		b.observer.CommandsFlushed(flushed)
		b.observer.BytesFlushed(int64(len(payload)))
	}
	return b.sender.Flush(payload)
}

// Len returns the number of bytes currently buffered, unflushed.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

// Count returns the number of records currently buffered, unflushed.
func (b *Buffer) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}
