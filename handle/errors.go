package handle

import (
	"errors"
	"fmt"

	"github.com/offlayer/dispatch/types"
)

// Sentinel errors a Registry's methods wrap and that callers can test for
// with errors.Is, mirroring the teacher's ValidationError/IDError pairing of
// a sentinel plus a structured type.
var (
	ErrNotFound = errors.New("handle: not found")
	ErrDuplicate = errors.New("handle: duplicate assignment")
	ErrReleased = errors.New("handle: already released")
)

// NotFoundError reports that a handle has no live entry in a Registry.
type NotFoundError struct {
	Handle types.Handle
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("handle: %s: not found", e.Handle)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// DuplicateError reports that Assign was called with a handle already
// present in the Registry.
type DuplicateError struct {
	Handle types.Handle
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("handle: %s: already assigned", e.Handle)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicate }
