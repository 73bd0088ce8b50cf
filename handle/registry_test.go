package handle

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/offlayer/dispatch/types"
)

func TestAllocator_NeverRepeats(t *testing.T) {
	a := NewAllocator(0)
	seen := make(map[types.Handle]bool)
	for i := 0; i < 10_000; i++ {
		h := a.Next()
		require.False(t, seen[h], "handle %s allocated twice", h)
		seen[h] = true
	}
}

func TestAllocator_StampsRank(t *testing.T) {
	a := NewAllocator(5)
	h := a.Next()
	require.Equal(t, uint16(5), h.Rank())
}

func TestRegistry_AssignGetRelease(t *testing.T) {
	r := NewRegistry[string]()
	h := types.NewHandle(1, 0)

	require.NoError(t, r.Assign(h, "world"))
	v, err := r.Get(h)
	require.NoError(t, err)
	require.Equal(t, "world", v)

	_, destroyed, err := r.Release(h)
	require.NoError(t, err)
	require.True(t, destroyed)
	require.False(t, r.Contains(h))
}

func TestRegistry_AssignDuplicate(t *testing.T) {
	r := NewRegistry[int]()
	h := types.NewHandle(1, 0)
	require.NoError(t, r.Assign(h, 1))

	err := r.Assign(h, 2)
	require.Error(t, err)
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
}

func TestRegistry_GetNotFound(t *testing.T) {
	r := NewRegistry[int]()
	_, err := r.Get(types.NewHandle(99, 0))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_RetainKeepsAliveUntilZero(t *testing.T) {
	r := NewRegistry[int]()
	h := types.NewHandle(1, 0)
	require.NoError(t, r.Assign(h, 10))

	n, err := r.Retain(h)
	require.NoError(t, err)
	require.Equal(t, int32(2), n)

	_, destroyed, err := r.Release(h)
	require.NoError(t, err)
	require.False(t, destroyed)
	require.True(t, r.Contains(h))

	_, destroyed, err = r.Release(h)
	require.NoError(t, err)
	require.True(t, destroyed)
}

func TestRegistry_ConcurrentAssign(t *testing.T) {
	r := NewRegistry[int]()
	a := NewAllocator(0)

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		h := a.Next()
		wg.Add(1)
		go func(h types.Handle, v int) {
			defer wg.Done()
			require.NoError(t, r.Assign(h, v))
		}(h, i)
	}
	wg.Wait()
	require.Equal(t, 200, r.Count())
}
