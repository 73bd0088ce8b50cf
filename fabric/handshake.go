package fabric

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/offlayer/dispatch/wire"
)

// handshake exchanges the protocol version and announces the dialing
// rank. The first u32 after connection establishment is always the
// protocol version (spec §6 "Wire protocol"); a mismatch is a
// ProtocolError and closes the connection immediately.
func dialHandshake(conn net.Conn, rank int) error {
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], wire.ProtocolVersion)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(rank))
	if _, err := conn.Write(buf[:]); err != nil {
		return fmt.Errorf("fabric: handshake write: %w", err)
	}
	return nil
}

// acceptHandshake reads the version+rank the dialer sent and validates the
// protocol version, returning the dialer's announced rank.
func acceptHandshake(conn net.Conn) (rank int, err error) {
	var buf [8]byte
	if _, err := io.ReadFull(conn, buf[:]); err != nil {
		return 0, fmt.Errorf("fabric: handshake read: %w", err)
	}
	version := binary.LittleEndian.Uint32(buf[0:4])
	if version != wire.ProtocolVersion {
		return 0, &ProtocolError{Reason: fmt.Sprintf("version mismatch: got %d want %d", version, wire.ProtocolVersion)}
	}
	return int(binary.LittleEndian.Uint32(buf[4:8])), nil
}
