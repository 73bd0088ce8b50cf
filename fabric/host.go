package fabric

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Host is the rank-0 Group implementation: it fans broadcasts, barriers,
// and point-to-point sends out to every worker peer, using
// golang.org/x/sync/errgroup so a failure on any one peer's connection
// surfaces promptly instead of hanging the caller (grounded on the
// distributed machine-group coordination in
// other_examples/psampaz-bigslice__exec-bigmachine.go.go).
type Host struct {
	size int

	mu     sync.RWMutex
	peers  map[int]*peer
	closed bool
}

var _ Group = (*Host)(nil)

func (h *Host) Rank() int { return 0 }
func (h *Host) Size() int { return h.size }

func (h *Host) Broadcast(ctx context.Context, payload []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ErrClosed
	}
	g, _ := errgroup.WithContext(ctx)
	for _, p := range h.peers {
		p := p
		g.Go(func() error { return p.enqueue(frameBroadcast, payload) })
	}
	return g.Wait()
}

// RecvBroadcast is never called on the host: broadcasts originate here.
func (h *Host) RecvBroadcast(ctx context.Context) ([]byte, error) {
	return nil, fmt.Errorf("fabric: Host.RecvBroadcast is not valid; the host is the broadcast source")
}

func (h *Host) Send(ctx context.Context, rank int, payload []byte) error {
	h.mu.RLock()
	p, ok := h.peers[rank]
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	if !ok {
		return fmt.Errorf("fabric: unknown rank %d", rank)
	}
	return p.enqueue(framePointToPoint, payload)
}

func (h *Host) Recv(ctx context.Context, rank int) ([]byte, error) {
	h.mu.RLock()
	p, ok := h.peers[rank]
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}
	if !ok {
		return nil, fmt.Errorf("fabric: unknown rank %d", rank)
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case f := <-p.inbound:
		if f.err != nil {
			return nil, f.err
		}
		return f.payload, nil
	}
}

// Barrier broadcasts a barrier marker to every worker and waits for each to
// echo it back, concurrently, via errgroup.
func (h *Host) Barrier(ctx context.Context) error {
	h.mu.RLock()
	peers := make([]*peer, 0, len(h.peers))
	for _, p := range h.peers {
		peers = append(peers, p)
	}
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range peers {
		p := p
		g.Go(func() error {
			if err := p.enqueue(frameBarrier, nil); err != nil {
				return err
			}
			select {
			case <-gctx.Done():
				return gctx.Err()
			case f := <-p.inbound:
				if f.err != nil {
					return f.err
				}
				if f.kind != frameBarrier {
					return &ProtocolError{Reason: "expected barrier ack"}
				}
				return nil
			}
		})
	}
	return g.Wait()
}

// Sidechannel broadcasts a raw payload ahead of the command that references
// it, satisfying batch.Sender. On the wire it is indistinguishable from an
// ordinary broadcast; ordering (not framing) is what makes it a sidechannel.
func (h *Host) Sidechannel(payload []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ErrClosed
	}
	g, _ := errgroup.WithContext(context.Background())
	for _, p := range h.peers {
		p := p
		g.Go(func() error { return p.enqueue(frameSidechannel, payload) })
	}
	return g.Wait()
}

// Flush broadcasts the host's batched command buffer, satisfying
// batch.Sender. The flush protocol's u64 total-bytes header is implicit in
// writeFrame's own length prefix, so Flush is just a broadcast.
func (h *Host) Flush(payload []byte) error {
	return h.Broadcast(context.Background(), payload)
}

func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	var firstErr error
	for _, p := range h.peers {
		if err := p.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
