package balance

import "sync"

// Machine drives one frame through FrameState under a mutex, rejecting
// illegal transitions rather than silently clamping them.
type Machine struct {
	mu    sync.Mutex
	state FrameState
}

// NewMachine returns a Machine in state IDLE.
func NewMachine() *Machine {
	return &Machine{state: Idle}
}

// State returns the current state.
func (m *Machine) State() FrameState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Transition moves to next, or returns ErrInvalidTransition if the edge is
// not legal from the current state.
func (m *Machine) Transition(next FrameState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.CanTransition(next) {
		return &ErrInvalidTransition{From: m.state, To: next}
	}
	m.state = next
	return nil
}

// Cancel moves the machine to CANCELLED if that is a legal transition from
// the current state, and is a no-op (returns false, nil) if the frame has
// not been started (IDLE) or has already reached a terminal state (DONE or
// CANCELLED).
func (m *Machine) Cancel() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Done || m.state == Cancelled || m.state == Idle {
		return false, nil
	}
	if !m.state.CanTransition(Cancelled) {
		return false, &ErrInvalidTransition{From: m.state, To: Cancelled}
	}
	m.state = Cancelled
	return true, nil
}
