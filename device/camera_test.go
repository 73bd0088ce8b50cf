package device

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/offlayer/dispatch/object"
	"github.com/offlayer/dispatch/types"
)

func TestCameraFromObject_Defaults(t *testing.T) {
	obj := object.New(object.KindCamera, "")
	obj.Commit()

	cam, err := cameraFromObject(types.NewHandle(1, 0), obj)
	require.NoError(t, err)
	require.Equal(t, types.Vec3{X: 0, Y: 0, Z: -1}, cam.Direction)
	require.Equal(t, types.Vec3{X: 0, Y: 1, Z: 0}, cam.Up)
	require.Equal(t, float32(1), cam.AspectRatio)
	require.InDelta(t, 60*math.Pi/180, float64(cam.FovY), 1e-6)
}

func TestCameraFromObject_ReadsCommittedParams(t *testing.T) {
	obj := object.New(object.KindCamera, "")
	obj.SetParam(paramPosition, types.Vec3fParam(types.Vec3{X: 1, Y: 2, Z: 3}))
	obj.SetParam(paramDirection, types.Vec3fParam(types.Vec3{X: 0, Y: 0, Z: -2}))
	obj.SetParam(paramAspect, types.Float32Param(16.0/9.0))
	obj.Commit()

	cam, err := cameraFromObject(types.NewHandle(1, 0), obj)
	require.NoError(t, err)
	require.Equal(t, types.Vec3{X: 1, Y: 2, Z: 3}, cam.Position)
	require.Equal(t, types.Vec3{X: 0, Y: 0, Z: -1}, cam.Direction)
	require.InDelta(t, 16.0/9.0, float64(cam.AspectRatio), 1e-6)
}

func TestCameraFromObject_IgnoresUncommittedParams(t *testing.T) {
	obj := object.New(object.KindCamera, "")
	obj.Commit()
	obj.SetParam(paramPosition, types.Vec3fParam(types.Vec3{X: 9, Y: 9, Z: 9}))

	cam, err := cameraFromObject(types.NewHandle(1, 0), obj)
	require.NoError(t, err)
	require.Equal(t, types.Vec3{}, cam.Position)
}

func TestCameraFromObject_UncommittedFailsWithStateError(t *testing.T) {
	obj := object.New(object.KindCamera, "")
	obj.SetParam(paramPosition, types.Vec3fParam(types.Vec3{X: 1, Y: 2, Z: 3}))

	_, err := cameraFromObject(types.NewHandle(1, 0), obj)
	require.Error(t, err)
	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
}
