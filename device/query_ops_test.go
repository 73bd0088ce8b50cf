package device

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/offlayer/dispatch/object"
	"github.com/offlayer/dispatch/render/raycast"
	"github.com/offlayer/dispatch/types"
)

func TestPick_HitsDefaultSphere(t *testing.T) {
	d := newTestDevice(t)
	h := d.nextHandle()
	cam := object.New(object.KindCamera, "")
	cam.SetParam(paramPosition, types.Vec3fParam(types.Vec3{X: 0, Y: 1, Z: 5}))
	cam.SetParam(paramDirection, types.Vec3fParam(types.Vec3{X: 0, Y: 0, Z: -1}))
	cam.Commit()
	require.NoError(t, d.registry.Assign(h, cam))

	point, ok, err := d.Pick(h, 0.5, 0.5)
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 0, point.X, 1e-3)
	require.InDelta(t, 1, point.Y, 1e-3)
}

func TestPick_MissesWhenAimedAway(t *testing.T) {
	d := newTestDevice(t)
	h := d.nextHandle()
	cam := object.New(object.KindCamera, "")
	cam.SetParam(paramPosition, types.Vec3fParam(types.Vec3{X: 0, Y: 1, Z: 5}))
	cam.SetParam(paramDirection, types.Vec3fParam(types.Vec3{X: 0, Y: 1, Z: 0}))
	cam.Commit()
	require.NoError(t, d.registry.Assign(h, cam))

	_, ok, err := d.Pick(h, 0.5, 0.5)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPick_NotMeaningfulForCustomRenderer(t *testing.T) {
	d := newTestDevice(t)
	d.renderer = fakeRenderer{}
	h := d.nextHandle()
	cam := object.New(object.KindCamera, "")
	cam.Commit()
	require.NoError(t, d.registry.Assign(h, cam))

	_, ok, err := d.Pick(h, 0.5, 0.5)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGetBounds_FallsBackToSceneBounds(t *testing.T) {
	d := newTestDevice(t)
	h := d.nextHandle()
	obj := object.New(object.KindGeometry, "")
	obj.Commit()
	require.NoError(t, d.registry.Assign(h, obj))

	b, err := d.GetBounds(h)
	require.NoError(t, err)
	require.Equal(t, d.renderer.(*raycast.Renderer).Scene.Bounds(), b)
}

func TestGetBounds_PrefersExplicitParam(t *testing.T) {
	d := newTestDevice(t)
	h := d.nextHandle()
	obj := object.New(object.KindGeometry, "")
	want := types.Box3{Lower: types.Vec3{X: -5}, Upper: types.Vec3{X: 5}}
	obj.SetParam("bounds", types.Parameter{Type: types.DataTypeBox3f, Box3f: want})
	obj.Commit()
	require.NoError(t, d.registry.Assign(h, obj))

	b, err := d.GetBounds(h)
	require.NoError(t, err)
	require.Equal(t, want, b)
}
