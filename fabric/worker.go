package fabric

import (
	"context"
	"fmt"
	"sync"
)

// Worker is the rank>0 Group implementation: a single connection to the
// host, over which broadcasts, barrier markers, sidechannel payloads, and
// point-to-point frames all multiplex.
type Worker struct {
	rank int
	size int

	mu       sync.RWMutex
	hostPeer *peer
	closed   bool
}

var _ Group = (*Worker)(nil)

func (w *Worker) Rank() int { return w.rank }
func (w *Worker) Size() int { return w.size }

// Broadcast is never called on a worker: only the host originates
// broadcasts.
func (w *Worker) Broadcast(ctx context.Context, payload []byte) error {
	return fmt.Errorf("fabric: Worker.Broadcast is not valid; only the host broadcasts")
}

func (w *Worker) RecvBroadcast(ctx context.Context) ([]byte, error) {
	return w.recvKind(ctx, frameBroadcast)
}

// RecvSidechannel blocks for the next sidechannel payload, which by the
// flush protocol always precedes the command that references it.
func (w *Worker) RecvSidechannel(ctx context.Context) ([]byte, error) {
	return w.recvKind(ctx, frameSidechannel)
}

func (w *Worker) recvKind(ctx context.Context, want frameKind) ([]byte, error) {
	w.mu.RLock()
	p := w.hostPeer
	closed := w.closed
	w.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case f := <-p.inbound:
			if f.err != nil {
				return nil, f.err
			}
			if f.kind == frameBarrier {
				// Echo the barrier marker back immediately; it does not
				// block whatever this call was actually waiting for.
				if err := p.enqueue(frameBarrier, nil); err != nil {
					return nil, err
				}
				continue
			}
			if f.kind != want {
				return nil, &ProtocolError{Reason: fmt.Sprintf("expected frame kind %d, got %d", want, f.kind)}
			}
			return f.payload, nil
		}
	}
}

func (w *Worker) Send(ctx context.Context, rank int, payload []byte) error {
	if rank != 0 {
		return fmt.Errorf("fabric: worker can only send to the host (rank 0), got %d", rank)
	}
	w.mu.RLock()
	p := w.hostPeer
	closed := w.closed
	w.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	return p.enqueue(framePointToPoint, payload)
}

func (w *Worker) Recv(ctx context.Context, rank int) ([]byte, error) {
	if rank != 0 {
		return nil, fmt.Errorf("fabric: worker can only receive from the host (rank 0), got %d", rank)
	}
	return w.recvKind(ctx, framePointToPoint)
}

// Barrier waits for the host's barrier marker and echoes it back.
func (w *Worker) Barrier(ctx context.Context) error {
	w.mu.RLock()
	p := w.hostPeer
	closed := w.closed
	w.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case f := <-p.inbound:
		if f.err != nil {
			return f.err
		}
		if f.kind != frameBarrier {
			return &ProtocolError{Reason: "expected barrier marker"}
		}
		return p.enqueue(frameBarrier, nil)
	}
}

func (w *Worker) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.hostPeer.close()
}
