package object

import (
	"sync"

	"github.com/offlayer/dispatch/types"
)

// SubType names an object's concrete implementation within its Kind — e.g.
// a Renderer of kind KindRenderer might have SubType "scivis" or "ao". It is
// resolved at New-time from a string parameter and is immutable thereafter.
type SubType string

// Managed is the single tagged-variant representation for every object kind
// the offload core manages. Refcounting itself lives in handle.Registry
// (every Managed is stored there under its handle); Managed only owns the
// parameter map, dirty tracking, and kind-specific committed state.
type Managed struct {
	Kind    Kind
	SubType SubType

	mu            sync.RWMutex
	params        map[string]types.Parameter
	dirty         bool
	everCommitted bool

	// committed snapshots params at the last Commit call; handlers read
	// committed state during rendering so an in-flight SetParam never
	// produces a torn read mid-frame.
	committed map[string]types.Parameter
}

// New returns an empty Managed object of the given kind and subtype.
func New(kind Kind, subType SubType) *Managed {
	return &Managed{
		Kind:      kind,
		SubType:   subType,
		params:    make(map[string]types.Parameter),
		committed: make(map[string]types.Parameter),
	}
}

// SetParam assigns name to value in the object's pending parameter set and
// marks the object dirty. Nothing takes effect until Commit.
func (m *Managed) SetParam(name string, value types.Parameter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params[name] = value
	m.dirty = true
}

// RemoveParam deletes name from the pending parameter set and marks the
// object dirty.
func (m *Managed) RemoveParam(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.params, name)
	m.dirty = true
}

// Param returns the committed value of name and whether it is set.
// Readers outside the owning handler should read committed state, not
// pending edits, so a render in flight always sees a consistent snapshot.
func (m *Managed) Param(name string) (types.Parameter, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.committed[name]
	return p, ok
}

// PendingParam returns the pending (possibly uncommitted) value of name.
func (m *Managed) PendingParam(name string) (types.Parameter, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.params[name]
	return p, ok
}

// Dirty reports whether SetParam or RemoveParam has been called since the
// last Commit.
func (m *Managed) Dirty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirty
}

// Commit copies the pending parameter set into the committed set and clears
// the dirty bit. It returns false if the object was already clean, so
// callers can skip downstream recompute.
func (m *Managed) Commit() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.everCommitted = true
	if !m.dirty {
		return false
	}
	committed := make(map[string]types.Parameter, len(m.params))
	for k, v := range m.params {
		committed[k] = v
	}
	m.committed = committed
	m.dirty = false
	return true
}

// Committed reports whether Commit has been called at least once. An
// object that is merely clean (Dirty() == false) but was never
// committed — freshly constructed, no Commit call yet — is still
// unusable: operations that require a finished object check this, not
// Dirty (spec §3 "uncommitted object").
func (m *Managed) Committed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.everCommitted
}

// ReferencedHandles returns the handle of every handle-valued pending
// parameter: the references SetParam retained and RemoveParam has not yet
// released, whether or not they have been committed. Host and worker
// Release walk them when the object is destroyed.
func (m *Managed) ReferencedHandles() []types.Handle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []types.Handle
	for _, p := range m.params {
		if p.ReferencesHandle() {
			out = append(out, p.Handle)
		}
	}
	return out
}

// ForEachParam calls fn for every committed name/value pair.
func (m *Managed) ForEachParam(fn func(name string, p types.Parameter)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for k, v := range m.committed {
		fn(k, v)
	}
}
