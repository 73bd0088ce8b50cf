package device

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/offlayer/dispatch/types"
)

func TestNewFramebuffer_StandaloneHasNoBroadcast(t *testing.T) {
	d := newTestDevice(t)
	h, err := d.NewFramebuffer(128, 64, types.CompositingWriteOnce)
	require.NoError(t, err)
	require.True(t, d.registry.Contains(h))

	fb, err := d.framebuffer(h)
	require.NoError(t, err)
	require.Equal(t, 128, int(fb.Width))
	require.Equal(t, 64, int(fb.Height))
}

func TestFramebufferOps_MapAndVarianceAndProgress(t *testing.T) {
	d := newTestDevice(t)
	h, err := d.NewFramebuffer(64, 64, types.CompositingWriteOnce)
	require.NoError(t, err)

	fb, err := d.framebuffer(h)
	require.NoError(t, err)
	region, ok := fb.Region(0)
	require.True(t, ok)
	n := int(region.Width) * int(region.Height)
	samples := types.TileSamples{Color: make([]types.Vec4, n), Samples: 4, Variance: 0.5}
	require.NoError(t, fb.SetTile(0, samples))

	color, depth, err := d.Map(h)
	require.NoError(t, err)
	require.Len(t, color, 64*64)
	require.Len(t, depth, 64*64)
	require.NoError(t, d.Unmap(h))

	progress, err := d.GetFramebufferProgress(h)
	require.NoError(t, err)
	require.Greater(t, progress, float32(0))

	fb.EndFrame()
	variance, err := d.GetVariance(h)
	require.NoError(t, err)
	require.Equal(t, fb.Variance(), variance)
	require.Greater(t, variance, float32(0))
	require.Equal(t, float32(math.Inf(1)), fb.TileError(1), "an unknown tile has never been rendered")

	require.NoError(t, d.ResetAccumulation(h))
	require.Equal(t, int32(0), fb.AccumID())
}

func TestFramebufferOps_UnknownHandle(t *testing.T) {
	d := newTestDevice(t)
	_, _, err := d.Map(types.NullHandle)
	require.Error(t, err)
}
