package dispatch

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/offlayer/dispatch/fabric"
	"github.com/offlayer/dispatch/wire"
)

type fakeBroadcaster struct {
	mu      sync.Mutex
	buffers [][]byte
	idx     int
}

func (f *fakeBroadcaster) RecvBroadcast(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.idx >= len(f.buffers) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	b := f.buffers[f.idx]
	f.idx++
	return b, nil
}

func encodeBuffer(t *testing.T, records ...wire.Record) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, r := range records {
		require.NoError(t, wire.WriteRecord(&buf, r.Tag, r.Payload))
	}
	return buf.Bytes()
}

func TestLoop_OrderingWithinOneBuffer(t *testing.T) {
	var order []string
	var mu sync.Mutex
	handlers := HandlerTable{}
	handlers.Register(wire.TagSetParam, Local, func(ctx context.Context, payload []byte) error {
		mu.Lock()
		order = append(order, "A")
		mu.Unlock()
		return nil
	})
	handlers.Register(wire.TagCommit, Local, func(ctx context.Context, payload []byte) error {
		mu.Lock()
		order = append(order, "B")
		mu.Unlock()
		return nil
	})

	buf := encodeBuffer(t, wire.Record{Tag: wire.TagSetParam}, wire.Record{Tag: wire.TagCommit})
	broadcaster := &fakeBroadcaster{buffers: [][]byte{buf}}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	loop := NewLoop(broadcaster, handlers, NewPool(ctx, 2), nil)
	_ = loop.Run(ctx)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"A", "B"}, order)
}

func TestLoop_UnknownTagIsProtocolError(t *testing.T) {
	handlers := HandlerTable{}
	buf := encodeBuffer(t, wire.Record{Tag: wire.Tag(9999)})
	broadcaster := &fakeBroadcaster{buffers: [][]byte{buf}}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	loop := NewLoop(broadcaster, handlers, NewPool(ctx, 1), nil)
	err := loop.Run(ctx)
	require.Error(t, err)
	var perr *fabric.ProtocolError
	require.ErrorAs(t, err, &perr)
}

func TestLoop_CollectiveSpawnedOffLoop(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	handlers := HandlerTable{}
	handlers.Register(wire.TagRenderFrame, Collective, func(ctx context.Context, payload []byte) error {
		close(started)
		<-release
		return nil
	})
	handlers.Register(wire.TagCommit, Local, func(ctx context.Context, payload []byte) error {
		return nil
	})

	buf := encodeBuffer(t, wire.Record{Tag: wire.TagRenderFrame}, wire.Record{Tag: wire.TagCommit})
	broadcaster := &fakeBroadcaster{buffers: [][]byte{buf}}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	loop := NewLoop(broadcaster, handlers, NewPool(ctx, 2), nil)
	go loop.Run(ctx)

	select {
	case <-started:
	case <-ctx.Done():
		t.Fatal("collective handler never started")
	}
	close(release)
}
