package device

import (
	"math"

	"github.com/offlayer/dispatch/object"
	"github.com/offlayer/dispatch/types"
)

// Camera parameter names — set via SetParam, read back by the renderer
// once the camera object is committed.
const (
	paramPosition  = "position"
	paramDirection = "direction"
	paramUp        = "up"
	paramAspect    = "aspect"
	paramFovY      = "fovy"
)

// cameraFromObject projects a committed Camera object's parameters into
// the plain struct render.Renderer implementations consume, filling in
// a sane default view for any parameter the caller never set. It fails
// with a StateError if h was never committed — an uncommitted object
// must not be used in rendering (spec §3).
func cameraFromObject(h types.Handle, obj *object.Managed) (types.Camera, error) {
	if !obj.Committed() {
		return types.Camera{}, &StateError{Handle: h, Reason: "camera is not committed"}
	}
	cam := types.Camera{
		Direction:   types.Vec3{X: 0, Y: 0, Z: -1},
		Up:          types.Vec3{X: 0, Y: 1, Z: 0},
		AspectRatio: 1,
		FovY:        float32(60 * math.Pi / 180),
	}
	if p, ok := obj.Param(paramPosition); ok {
		cam.Position = p.Vec3f
	}
	if p, ok := obj.Param(paramDirection); ok {
		cam.Direction = p.Vec3f.Normalize()
	}
	if p, ok := obj.Param(paramUp); ok {
		cam.Up = p.Vec3f.Normalize()
	}
	if p, ok := obj.Param(paramAspect); ok {
		cam.AspectRatio = float32(p.Float64)
	}
	if p, ok := obj.Param(paramFovY); ok {
		cam.FovY = float32(p.Float64)
	}
	return cam, nil
}
