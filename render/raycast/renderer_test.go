package raycast

import (
	"context"
	"math/rand"
	"testing"

	"github.com/offlayer/dispatch/types"
	"github.com/stretchr/testify/require"
)

func TestRenderer_RenderTile_FillsEveryPixel(t *testing.T) {
	r := New(4)
	camera := types.Camera{
		Position:    types.Vec3{X: 0, Y: 1.5, Z: 5},
		Direction:   types.Vec3{X: 0, Y: -0.1, Z: -1}.Normalize(),
		Up:          types.Vec3{X: 0, Y: 1, Z: 0},
		AspectRatio: 1,
		FovY:        0.9,
	}
	region := types.TileRegion{X: 0, Y: 0, Width: 8, Height: 8}
	rng := rand.New(rand.NewSource(1))

	samples := r.RenderTile(context.Background(), camera, region, rng)

	require.Len(t, samples.Color, 8*8)
	require.EqualValues(t, 4, samples.Samples)
	for _, c := range samples.Color {
		require.Equal(t, float32(1), c.W)
	}
}

func TestRenderer_RenderTile_HitsSphereNearCenter(t *testing.T) {
	r := New(1)
	camera := types.Camera{
		Position:    types.Vec3{X: 0, Y: 1, Z: 5},
		Direction:   types.Vec3{X: 0, Y: 0, Z: -1},
		Up:          types.Vec3{X: 0, Y: 1, Z: 0},
		AspectRatio: 1,
		FovY:        0.5,
	}
	region := types.TileRegion{X: 0, Y: 0, Width: 16, Height: 16}
	rng := rand.New(rand.NewSource(1))

	samples := r.RenderTile(context.Background(), camera, region, rng)

	center := samples.Color[8*16+8]
	require.Greater(t, center.X, r.BackgroundColor.X)
}

func TestScene_Intersect_SphereBeforePlane(t *testing.T) {
	s := DefaultScene()
	origin := types.Vec3{X: 0, Y: 1, Z: 5}
	dir := types.Vec3{X: 0, Y: 0, Z: -1}

	h, ok := s.intersect(origin, dir, 1e-4)
	require.True(t, ok)
	require.InDelta(t, s.Sphere.Color.X, h.Color.X, 1e-6)
}

func TestScene_Intersect_MissesEverything(t *testing.T) {
	s := DefaultScene()
	origin := types.Vec3{X: 0, Y: 100, Z: 0}
	dir := types.Vec3{X: 0, Y: 1, Z: 0}

	_, ok := s.intersect(origin, dir, 1e-4)
	require.False(t, ok)
}
