package device

import (
	"fmt"
	"math"

	"github.com/offlayer/dispatch/render/raycast"
	"github.com/offlayer/dispatch/types"
)

// Pick casts a ray from camera through the normalized screen position
// (sx, sy in [0, 1], origin top-left) and reports the first surface it
// strikes in world. Only meaningful against the built-in raycast
// renderer; any other Renderer implementation has no picking geometry to
// query and Pick reports ok=false.
func (d *Device) Pick(camera types.Handle, sx, sy float32) (point types.Vec3, ok bool, err error) {
	obj, err := d.registry.Get(camera)
	if err != nil {
		return types.Vec3{}, false, err
	}
	r, isRaycast := d.renderer.(*raycast.Renderer)
	if !isRaycast {
		return types.Vec3{}, false, nil
	}

	cam, err := cameraFromObject(camera, obj)
	if err != nil {
		return types.Vec3{}, false, err
	}
	right := cam.Direction.Cross(cam.Up).Normalize()
	up := right.Cross(cam.Direction).Normalize()
	tanFovY := float32(math.Tan(float64(cam.FovY) / 2))
	tanFovX := tanFovY * cam.AspectRatio

	nx := 2*sx - 1
	ny := 1 - 2*sy
	dir := cam.Direction.
		Add(right.Scale(nx * tanFovX)).
		Add(up.Scale(ny * tanFovY)).
		Normalize()

	p, hitOk := r.Scene.Trace(cam.Position, dir, 1e-4)
	return p, hitOk, nil
}

// GetBounds returns handle's world-space bounding box. Geometry and
// volume objects report a "bounds" parameter set explicitly via
// SetParam; anything else falls back to the built-in raycast
// renderer's fixed scene bounds, when one is configured.
func (d *Device) GetBounds(h types.Handle) (types.Box3, error) {
	obj, err := d.registry.Get(h)
	if err != nil {
		return types.Box3{}, err
	}
	if p, ok := obj.Param("bounds"); ok && p.Type == types.DataTypeBox3f {
		return p.Box3f, nil
	}
	if r, isRaycast := d.renderer.(*raycast.Renderer); isRaycast {
		return r.Scene.Bounds(), nil
	}
	return types.Box3{}, fmt.Errorf("device: %s has no bounds", h)
}
