package fabric

import (
	"encoding/binary"
	"io"
)

// frameKind distinguishes what a frame on a peer connection carries, so a
// single TCP stream can multiplex broadcasts, point-to-point sends, and
// barrier markers without a separate socket per concern.
type frameKind uint8

const (
	frameBroadcast frameKind = iota
	framePointToPoint
	frameBarrier
	frameSidechannel
)

// writeFrame writes one frame: u8 kind, u64 payload length, payload.
func writeFrame(w io.Writer, kind frameKind, payload []byte) error {
	var header [9]byte
	header[0] = byte(kind)
	binary.LittleEndian.PutUint64(header[1:], uint64(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}

// readFrame reads one frame written by writeFrame.
func readFrame(r io.Reader) (frameKind, []byte, error) {
	var header [9]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, nil, err
	}
	kind := frameKind(header[0])
	n := binary.LittleEndian.Uint64(header[1:])
	payload := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return 0, nil, err
		}
	}
	return kind, payload, nil
}
