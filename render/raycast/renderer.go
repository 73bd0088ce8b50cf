package raycast

import (
	"context"
	"math"
	"math/rand"

	"github.com/offlayer/dispatch/types"
)

// Renderer implements render.Renderer against a fixed Scene, shading
// hits with a constant-ambient term plus one shadow ray toward a
// directional light (mirrors SimpleAO's ambient-occlusion flavor without
// the hemisphere sampling loop, since the scene has exactly one
// occluder pair).
type Renderer struct {
	Scene           Scene
	SamplesPerPixel int
	LightDir        types.Vec3
	AmbientColor    types.Vec3
	BackgroundColor types.Vec3
}

// New returns a Renderer over the default scene with spp samples per
// pixel (spp <= 0 is clamped to 1).
func New(spp int) *Renderer {
	if spp <= 0 {
		spp = 1
	}
	return &Renderer{
		Scene:           DefaultScene(),
		SamplesPerPixel: spp,
		LightDir:        types.Vec3{X: -0.3, Y: 0.8, Z: -0.5}.Normalize(),
		AmbientColor:    types.Vec3{X: 0.15, Y: 0.15, Z: 0.18},
		BackgroundColor: types.Vec3{X: 0.05, Y: 0.05, Z: 0.08},
	}
}

// RenderTile fills in color samples for every pixel in region by casting
// one primary ray per pixel per sample, accumulating, and dividing by
// the sample count. It also reports a per-tile variance estimate: the
// mean, across the tile's pixels, of each pixel's own sample variance —
// a stand-in for the split-sample ("accumulate every other sample")
// buffer the original renderer keeps, adapted to a renderer that already
// loops over every sample for a pixel in one pass.
func (r *Renderer) RenderTile(ctx context.Context, camera types.Camera, region types.TileRegion, rng *rand.Rand) types.TileSamples {
	w, h := region.Width, region.Height
	color := make([]types.Vec4, w*h)
	n := float32(r.SamplesPerPixel)

	right := camera.Direction.Cross(camera.Up).Normalize()
	up := right.Cross(camera.Direction).Normalize()
	tanFovY := float32(math.Tan(float64(camera.FovY) / 2))
	tanFovX := tanFovY * camera.AspectRatio

	var varianceSum float32
	for py := int32(0); py < h; py++ {
		for px := int32(0); px < w; px++ {
			var sum, sumSq types.Vec3
			for s := 0; s < r.SamplesPerPixel; s++ {
				jx := rng.Float32()
				jy := rng.Float32()
				nx, ny := ndcFor(region, px, py, jx, jy)
				dir := camera.Direction.
					Add(right.Scale(nx * tanFovX)).
					Add(up.Scale(ny * tanFovY)).
					Normalize()
				c := r.shade(camera.Position, dir)
				sum = sum.Add(c)
				sumSq = sumSq.Add(types.Vec3{X: c.X * c.X, Y: c.Y * c.Y, Z: c.Z * c.Z})
			}
			avg := sum.Scale(1 / n)
			color[py*w+px] = types.Vec4{X: avg.X, Y: avg.Y, Z: avg.Z, W: 1}

			if n > 1 {
				meanSq := sumSq.Scale(1 / n)
				varianceSum += (meanSq.X - avg.X*avg.X) + (meanSq.Y - avg.Y*avg.Y) + (meanSq.Z - avg.Z*avg.Z)
			}
		}
	}

	var variance float32
	if pixels := float32(w) * float32(h); pixels > 0 {
		variance = varianceSum / (pixels * 3)
	}

	return types.TileSamples{Color: color, Samples: int32(r.SamplesPerPixel), Variance: variance}
}

// ndcFor maps a jittered pixel within region to normalized device
// coordinates in [-1, 1] across the full frame the region belongs to.
// Since Renderer has no notion of the full framebuffer extent beyond
// what region reports, coordinates are normalized against the region's
// own span — adequate for a single-tile preview scene where every tile
// renders the same analytic geometry independent of its neighbors.
func ndcFor(region types.TileRegion, px, py int32, jx, jy float32) (float32, float32) {
	w := float32(region.Width)
	h := float32(region.Height)
	nx := 2*((float32(px)+jx)/w) - 1
	ny := 1 - 2*((float32(py)+jy)/h)
	return nx, ny
}

func (r *Renderer) shade(origin, dir types.Vec3) types.Vec3 {
	hit, ok := r.Scene.intersect(origin, dir, 1e-4)
	if !ok {
		return r.BackgroundColor
	}

	shadowOrigin := hit.Point.Add(hit.Normal.Scale(1e-3))
	_, occluded := r.Scene.intersect(shadowOrigin, r.LightDir, 1e-4)

	lambert := hit.Normal.Dot(r.LightDir)
	if lambert < 0 {
		lambert = 0
	}
	if occluded {
		lambert = 0
	}

	direct := hit.Color.Scale(lambert)
	ambient := types.Vec3{
		X: hit.Color.X * r.AmbientColor.X,
		Y: hit.Color.Y * r.AmbientColor.Y,
		Z: hit.Color.Z * r.AmbientColor.Z,
	}
	return ambient.Add(direct)
}
