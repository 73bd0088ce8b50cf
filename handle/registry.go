package handle

import (
	"sync"

	"github.com/offlayer/dispatch/types"
)

// entry wraps a stored value with the refcount the managed object model
// requires (spec §3: "refcounted; destroyed when the count reaches zero").
type entry[T any] struct {
	value    T
	refcount int32
}

// Registry maps handles to live values of type T, with built-in refcounting.
// Unlike the teacher's Registry, it never recycles a handle: Assign always
// inserts a brand-new map key and Unregister never frees it for reuse, so
// there is no epoch/index split to reason about — just presence or absence.
//
// Safe for concurrent use from the dispatcher's handler goroutines.
type Registry[T any] struct {
	mu      sync.RWMutex
	entries map[types.Handle]*entry[T]
}

// NewRegistry returns an empty Registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{entries: make(map[types.Handle]*entry[T])}
}

// Assign inserts item under handle h with an initial refcount of 1. It
// returns a DuplicateError if h is already present — handles are allocated
// exactly once (handle.Allocator) or decoded once off the wire, so a
// collision always indicates a protocol or replay bug.
func (r *Registry[T]) Assign(h types.Handle, item T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[h]; ok {
		return &DuplicateError{Handle: h}
	}
	r.entries[h] = &entry[T]{value: item, refcount: 1}
	return nil
}

// Get retrieves the value stored under h.
func (r *Registry[T]) Get(h types.Handle) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[h]
	if !ok {
		var zero T
		return zero, &NotFoundError{Handle: h}
	}
	return e.value, nil
}

// GetMut calls fn with a pointer to the value stored under h, under the
// registry's write lock.
func (r *Registry[T]) GetMut(h types.Handle, fn func(*T)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[h]
	if !ok {
		return &NotFoundError{Handle: h}
	}
	fn(&e.value)
	return nil
}

// Retain increments h's refcount and returns the new value.
func (r *Registry[T]) Retain(h types.Handle) (int32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[h]
	if !ok {
		return 0, &NotFoundError{Handle: h}
	}
	e.refcount++
	return e.refcount, nil
}

// Release decrements h's refcount. When the count reaches zero the entry is
// removed from the registry and destroyed reports true so the caller can run
// type-specific teardown on the returned value.
func (r *Registry[T]) Release(h types.Handle) (value T, destroyed bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[h]
	if !ok {
		var zero T
		return zero, false, &NotFoundError{Handle: h}
	}
	e.refcount--
	if e.refcount > 0 {
		return e.value, false, nil
	}
	delete(r.entries, h)
	return e.value, true, nil
}

// Contains reports whether h currently has a live entry.
func (r *Registry[T]) Contains(h types.Handle) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[h]
	return ok
}

// Count returns the number of live entries.
func (r *Registry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// ForEach calls fn for every live entry. Iteration stops early if fn returns
// false. fn must not call back into the registry; ForEach holds the read
// lock for its duration.
func (r *Registry[T]) ForEach(fn func(types.Handle, T) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for h, e := range r.entries {
		if !fn(h, e.value) {
			return
		}
	}
}
