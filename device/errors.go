package device

import (
	"errors"
	"fmt"

	"github.com/offlayer/dispatch/types"
)

// ErrState is the sentinel a StateError wraps, mirroring fabric's
// ProtocolError/handle's NotFoundError pairing of a sentinel plus a
// structured type.
var ErrState = errors.New("device: invalid object state")

// StateError reports that handle was used in an operation that requires
// it to be in a state it is not currently in — most commonly, used
// before ever being committed (spec §3: "an uncommitted object must not
// be used in rendering; using it fails with StateError").
type StateError struct {
	Handle types.Handle
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("device: %s: %s", e.Handle, e.Reason)
}

func (e *StateError) Unwrap() error { return ErrState }
