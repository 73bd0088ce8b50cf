package object

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/offlayer/dispatch/types"
)

func TestManaged_SetParamNotVisibleUntilCommit(t *testing.T) {
	m := New(KindCamera, "perspective")
	m.SetParam("fovy", types.Float32Param(60))

	_, ok := m.Param("fovy")
	require.False(t, ok, "uncommitted param must not be visible")
	require.True(t, m.Dirty())

	changed := m.Commit()
	require.True(t, changed)

	p, ok := m.Param("fovy")
	require.True(t, ok)
	require.Equal(t, float64(60), p.Float64)
	require.False(t, m.Dirty())
}

func TestManaged_CommitIdempotentWhenClean(t *testing.T) {
	m := New(KindWorld, "")
	require.False(t, m.Commit())
}

func TestManaged_RemoveParam(t *testing.T) {
	m := New(KindLight, "distant")
	m.SetParam("intensity", types.Float32Param(1))
	m.Commit()

	m.RemoveParam("intensity")
	m.Commit()

	_, ok := m.Param("intensity")
	require.False(t, ok)
}

func TestManaged_ReferencedHandles(t *testing.T) {
	m := New(KindInstance, "")
	h := types.NewHandle(3, 0)
	m.SetParam("group", types.HandleParam(types.DataTypeGroupHandle, h))
	m.SetParam("weight", types.Float32Param(1))
	m.Commit()

	refs := m.ReferencedHandles()
	require.Len(t, refs, 1)
	require.Equal(t, h, refs[0])
}
