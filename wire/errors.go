package wire

import (
	"errors"
	"fmt"
)

// ErrCorrupt is wrapped by any error the decoder raises on malformed input:
// a length prefix that can't be satisfied, an unrecognized DataType tag, or
// a reserved-bits violation in a decoded handle.
var ErrCorrupt = errors.New("wire: corrupt stream")

// UnknownTypeError reports a DataType tag the decoder does not recognize,
// almost always a protocol version mismatch between host and worker.
type UnknownTypeError struct {
	Tag uint16
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("wire: unknown DataType tag %d", e.Tag)
}

func (e *UnknownTypeError) Unwrap() error { return ErrCorrupt }

// TooLargeError reports a length prefix that exceeds MaxStringLen or
// MaxContainerLen, most often a decoder reading a stream out of alignment
// rather than an actually oversized payload.
type TooLargeError struct {
	Len   uint64
	Limit uint64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("wire: length %d exceeds limit %d", e.Len, e.Limit)
}

func (e *TooLargeError) Unwrap() error { return ErrCorrupt }
