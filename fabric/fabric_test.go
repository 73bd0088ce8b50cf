package fabric

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// newHostWorkerPair wires a Host (rank 0) directly to a single Worker
// (rank 1) over an in-memory net.Pipe, bypassing Bootstrap's listener/dialer
// so the test is deterministic and needs no real sockets.
func newHostWorkerPair(t *testing.T) (*Host, *Worker) {
	t.Helper()
	connHost, connWorker := net.Pipe()

	host := &Host{size: 2, peers: map[int]*peer{1: newPeer(connHost, 1)}}
	worker := &Worker{rank: 1, size: 2, hostPeer: newPeer(connWorker, 0)}

	t.Cleanup(func() {
		host.Close()
		worker.Close()
	})
	return host, worker
}

func TestBroadcast_DeliversToWorker(t *testing.T) {
	host, worker := newHostWorkerPair(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan []byte, 1)
	go func() {
		payload, err := worker.RecvBroadcast(ctx)
		require.NoError(t, err)
		done <- payload
	}()

	require.NoError(t, host.Broadcast(ctx, []byte("hello workers")))
	select {
	case got := <-done:
		require.Equal(t, "hello workers", string(got))
	case <-ctx.Done():
		t.Fatal("timed out waiting for broadcast")
	}
}

func TestBarrier_RoundTrip(t *testing.T) {
	host, worker := newHostWorkerPair(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- worker.Barrier(ctx) }()

	require.NoError(t, host.Barrier(ctx))
	require.NoError(t, <-errc)
}

func TestSidechannel_PrecedesFlush(t *testing.T) {
	host, worker := newHostWorkerPair(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var order []string
	recvDone := make(chan struct{})
	go func() {
		defer close(recvDone)
		sc, err := worker.RecvSidechannel(ctx)
		require.NoError(t, err)
		order = append(order, "sidechannel:"+string(sc))

		cmd, err := worker.RecvBroadcast(ctx)
		require.NoError(t, err)
		order = append(order, "command:"+string(cmd))
	}()

	require.NoError(t, host.Sidechannel([]byte("bigdata")))
	require.NoError(t, host.Flush([]byte("new_shared_data")))

	<-recvDone
	require.Equal(t, []string{"sidechannel:bigdata", "command:new_shared_data"}, order)
}

func TestPointToPoint_RoundTrip(t *testing.T) {
	host, worker := newHostWorkerPair(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		payload, err := host.Recv(ctx, 1)
		if err != nil {
			errc <- err
			return
		}
		if string(payload) != "pick result" {
			errc <- &ProtocolError{Reason: "unexpected payload"}
			return
		}
		errc <- nil
	}()

	require.NoError(t, worker.Send(ctx, 0, []byte("pick result")))
	require.NoError(t, <-errc)
}

func TestHost_Close_UnblocksPeers(t *testing.T) {
	host, worker := newHostWorkerPair(t)
	require.NoError(t, host.Close())
	require.NoError(t, worker.Close())
}
