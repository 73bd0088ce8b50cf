package wire

import (
	"fmt"
	"io"
)

// Record is one decoded command stream record: a tag and its payload bytes
// (spec §3 "Command stream record").
type Record struct {
	Tag     Tag
	Payload []byte
}

// WriteRecord frames payload under tag and writes it to w: u16 tag, u32
// payload length, payload bytes.
func WriteRecord(w io.Writer, tag Tag, payload []byte) error {
	e := NewEncoder(w)
	if err := e.PutUint16(uint16(tag)); err != nil {
		return err
	}
	if err := e.PutUint32(uint32(len(payload))); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadRecord reads one record written by WriteRecord. It returns io.EOF only
// when zero bytes were available before the tag; a short read partway
// through a record is always ErrCorrupt-wrapped, never a bare EOF, so
// callers can tell "clean end of stream" from "truncated record".
func ReadRecord(r io.Reader) (Record, error) {
	d := NewDecoder(r)
	tag, err := d.GetUint16()
	if err == io.ErrUnexpectedEOF {
		return Record{}, fmt.Errorf("%w: truncated record tag", ErrCorrupt)
	}
	if err != nil {
		return Record{}, err
	}
	if Tag(tag) == TagProtocolErrorSentinel {
		return Record{}, &UnknownTypeError{Tag: tag}
	}
	length, err := d.GetUint32()
	if err != nil {
		return Record{}, fmt.Errorf("%w: truncated record length: %v", ErrCorrupt, err)
	}
	if uint64(length) > MaxContainerLen {
		return Record{}, &TooLargeError{Len: uint64(length), Limit: MaxContainerLen}
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Record{}, fmt.Errorf("%w: truncated record payload: %v", ErrCorrupt, err)
	}
	return Record{Tag: Tag(tag), Payload: payload}, nil
}
