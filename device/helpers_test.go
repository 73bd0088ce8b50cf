package device

import (
	"context"
	"math/rand"
	"testing"

	"github.com/offlayer/dispatch/framebuffer"
	"github.com/offlayer/dispatch/handle"
	"github.com/offlayer/dispatch/object"
	"github.com/offlayer/dispatch/render/raycast"
	"github.com/offlayer/dispatch/types"
)

// fakeRenderer is a render.Renderer stand-in with no queryable geometry,
// used to exercise Pick/GetBounds's "not meaningful" fallback path.
type fakeRenderer struct{}

func (fakeRenderer) RenderTile(ctx context.Context, camera types.Camera, region types.TileRegion, rng *rand.Rand) types.TileSamples {
	n := int(region.Width) * int(region.Height)
	return types.TileSamples{Color: make([]types.Vec4, n), Samples: 1}
}

// fakeGroup is a minimal fabric.Group plus sidechannelReceiver stand-in
// for worker-side handler tests that never need a real socket.
type fakeGroup struct {
	rank        int
	size        int
	sent        [][]byte
	sidechannel [][]byte
}

func (g *fakeGroup) Rank() int { return g.rank }
func (g *fakeGroup) Size() int { return g.size }
func (g *fakeGroup) Barrier(ctx context.Context) error                    { return nil }
func (g *fakeGroup) Broadcast(ctx context.Context, payload []byte) error { return nil }
func (g *fakeGroup) RecvBroadcast(ctx context.Context) ([]byte, error)   { return nil, nil }
func (g *fakeGroup) Send(ctx context.Context, rank int, payload []byte) error {
	g.sent = append(g.sent, payload)
	return nil
}
func (g *fakeGroup) Recv(ctx context.Context, rank int) ([]byte, error) { return nil, nil }
func (g *fakeGroup) Close() error                                       { return nil }

func (g *fakeGroup) RecvSidechannel(ctx context.Context) ([]byte, error) {
	if len(g.sidechannel) == 0 {
		return nil, context.DeadlineExceeded
	}
	next := g.sidechannel[0]
	g.sidechannel = g.sidechannel[1:]
	return next, nil
}

// DataArrayFixture is a small fixed byte payload reused by the
// inline/sidechannel decode tests.
var DataArrayFixture = types.DataArray{
	ElementType: types.DataTypeUint8,
	Extents:     types.Vec3i{X: 4, Y: 1, Z: 1},
	Bytes:       []byte{1, 2, 3, 4},
}

func newCommittedCamera() *object.Managed {
	cam := object.New(object.KindCamera, "")
	cam.SetParam(paramPosition, types.Vec3fParam(types.Vec3{X: 0, Y: 1, Z: 5}))
	cam.SetParam(paramDirection, types.Vec3fParam(types.Vec3{X: 0, Y: 0, Z: -1}))
	cam.Commit()
	return cam
}

// newTestDevice builds a standalone Device with no fabric group, as a
// unit under test for the host-local query/framebuffer/future bookkeeping
// that never touches the wire.
func newTestDevice(t *testing.T) *Device {
	t.Helper()
	return &Device{
		Size:      1,
		registry:  handle.NewRegistry[*object.Managed](),
		alloc:     handle.NewAllocator(0),
		renderer:  raycast.New(1),
		fbs:       make(map[types.Handle]*framebuffer.Framebuffer),
		futures:   make(map[types.Handle]*future),
		cancelled: make(map[types.Handle]bool),
	}
}
