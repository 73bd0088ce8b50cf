package fabric

import (
	"net"
	"sync"
)

// inboundFrame pairs a received frame's kind with its payload for delivery
// to whichever Group method is waiting on it.
type inboundFrame struct {
	kind    frameKind
	payload []byte
	err     error
}

// peer owns one TCP connection to another rank. A dedicated send goroutine
// drains outbox so a slow or stalled peer never blocks the caller issuing a
// broadcast or send — grounded on
// original_source/modules/mpi/common/SocketBcastFabric.h's sendThreadLoop
// draining a TransactionalBuffer<Message> outbox.
type peer struct {
	rank int
	conn net.Conn

	outbox  chan frameMsg
	inbound chan inboundFrame

	closeOnce sync.Once
	done      chan struct{}
}

type frameMsg struct {
	kind    frameKind
	payload []byte
}

func newPeer(conn net.Conn, rank int) *peer {
	p := &peer{
		rank:    rank,
		conn:    conn,
		outbox:  make(chan frameMsg, 256),
		inbound: make(chan inboundFrame, 256),
		done:    make(chan struct{}),
	}
	go p.sendLoop()
	go p.recvLoop()
	return p
}

func (p *peer) sendLoop() {
	for {
		select {
		case msg, ok := <-p.outbox:
			if !ok {
				return
			}
			if err := writeFrame(p.conn, msg.kind, msg.payload); err != nil {
				p.close()
				return
			}
		case <-p.done:
			return
		}
	}
}

func (p *peer) recvLoop() {
	for {
		kind, payload, err := readFrame(p.conn)
		if err != nil {
			select {
			case p.inbound <- inboundFrame{err: err}:
			case <-p.done:
			}
			p.close()
			return
		}
		select {
		case p.inbound <- inboundFrame{kind: kind, payload: payload}:
		case <-p.done:
			return
		}
	}
}

// enqueue hands payload to the send goroutine without waiting for delivery.
func (p *peer) enqueue(kind frameKind, payload []byte) error {
	select {
	case p.outbox <- frameMsg{kind: kind, payload: payload}:
		return nil
	case <-p.done:
		return ErrClosed
	}
}

func (p *peer) close() error {
	p.closeOnce.Do(func() {
		close(p.done)
	})
	return p.conn.Close()
}
