package raycast

import (
	"math"

	"github.com/offlayer/dispatch/types"
)

// sphere is an analytic sphere primitive.
type sphere struct {
	Center types.Vec3
	Radius float32
	Color  types.Vec3
}

// groundPlane is the y = Height plane, with the surface normal pointing
// up (+Y).
type groundPlane struct {
	Height float32
	Color  types.Vec3
}

// hit describes the closest surface a ray struck.
type hit struct {
	Distance float32
	Point    types.Vec3
	Normal   types.Vec3
	Color    types.Vec3
}

// Scene is the small fixed set of primitives every raycast.Renderer
// shades against: one sphere floating above a ground plane.
type Scene struct {
	Sphere sphere
	Ground groundPlane
}

// DefaultScene returns the scene New installs: a unit sphere centered at
// (0, 1, 0), resting on a gray ground plane at y = 0.
func DefaultScene() Scene {
	return Scene{
		Sphere: sphere{
			Center: types.Vec3{X: 0, Y: 1, Z: 0},
			Radius: 1,
			Color:  types.Vec3{X: 0.8, Y: 0.2, Z: 0.2},
		},
		Ground: groundPlane{
			Height: 0,
			Color:  types.Vec3{X: 0.6, Y: 0.6, Z: 0.6},
		},
	}
}

// intersect returns the closest primitive the ray (origin, dir — dir
// must be unit length) strikes at distance > tMin, or ok=false if
// nothing is hit.
func (s Scene) intersect(origin, dir types.Vec3, tMin float32) (hit, bool) {
	best := hit{}
	found := false
	bestT := float32(1e30)

	if t, ok := intersectSphere(origin, dir, s.Sphere, tMin); ok && t < bestT {
		bestT = t
		point := origin.Add(dir.Scale(t))
		best = hit{
			Distance: t,
			Point:    point,
			Normal:   point.Sub(s.Sphere.Center).Normalize(),
			Color:    s.Sphere.Color,
		}
		found = true
	}

	if t, ok := intersectPlane(origin, dir, s.Ground, tMin); ok && t < bestT {
		bestT = t
		point := origin.Add(dir.Scale(t))
		best = hit{
			Distance: t,
			Point:    point,
			Normal:   types.Vec3{X: 0, Y: 1, Z: 0},
			Color:    s.Ground.Color,
		}
		found = true
	}

	return best, found
}

// Trace casts one ray against the scene and reports the world-space hit
// point, if any (used by Pick rather than full shading).
func (s Scene) Trace(origin, dir types.Vec3, tMin float32) (types.Vec3, bool) {
	h, ok := s.intersect(origin, dir, tMin)
	return h.Point, ok
}

// Bounds returns a conservative world-space bounding box for the scene's
// finite geometry (the ground plane is excluded, since it is unbounded).
func (s Scene) Bounds() types.Box3 {
	r := s.Sphere.Radius
	return types.Box3{
		Lower: types.Vec3{X: s.Sphere.Center.X - r, Y: s.Sphere.Center.Y - r, Z: s.Sphere.Center.Z - r},
		Upper: types.Vec3{X: s.Sphere.Center.X + r, Y: s.Sphere.Center.Y + r, Z: s.Sphere.Center.Z + r},
	}
}

func intersectSphere(origin, dir types.Vec3, sp sphere, tMin float32) (float32, bool) {
	oc := origin.Sub(sp.Center)
	b := oc.Dot(dir)
	c := oc.Dot(oc) - sp.Radius*sp.Radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := float32(math.Sqrt(float64(disc)))
	t := -b - sq
	if t <= tMin {
		t = -b + sq
	}
	if t <= tMin {
		return 0, false
	}
	return t, true
}

func intersectPlane(origin, dir types.Vec3, pl groundPlane, tMin float32) (float32, bool) {
	if dir.Y == 0 {
		return 0, false
	}
	t := (pl.Height - origin.Y) / dir.Y
	if t <= tMin {
		return 0, false
	}
	return t, true
}
