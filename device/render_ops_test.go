package device

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/offlayer/dispatch/balance"
	"github.com/offlayer/dispatch/types"
)

func TestPlanAssignments_Static_CoversEveryTileExactlyOnce(t *testing.T) {
	d := newTestDevice(t)
	d.static = balance.Static{NumWorkers: 3}
	d.useDynamic = false

	fbuf := constantErrorFramebuffer{}
	assignments := d.planAssignments(fbuf, 10, 3)

	seen := make(map[types.TileID]int)
	for _, tiles := range assignments {
		for _, tile := range tiles {
			seen[tile]++
		}
	}
	require.Len(t, seen, 10)
	for tile, count := range seen {
		require.Equalf(t, 1, count, "tile %d assigned %d times", tile, count)
	}
}

func TestPlanAssignments_Dynamic_DrainsEveryTile(t *testing.T) {
	d := newTestDevice(t)
	d.static = balance.Static{NumWorkers: 2}
	d.dynamic = balance.NewDynamic(2)
	d.useDynamic = true

	fbuf := constantErrorFramebuffer{}
	assignments := d.planAssignments(fbuf, 6, 2)

	total := 0
	for _, tiles := range assignments {
		total += len(tiles)
	}
	require.Equal(t, 6, total)
	require.Equal(t, 0, d.dynamic.Pending())
}

type constantErrorFramebuffer struct{}

func (constantErrorFramebuffer) TileError(types.TileID) float32 { return 0 }

func TestFuture_IsReadyWaitCancelGetTaskDuration(t *testing.T) {
	d := newTestDevice(t)
	h := d.nextHandle()
	f := newFuture(time.Now())
	d.futures[h] = f
	d.cancelled[h] = false

	ready, err := d.IsReady(h)
	require.NoError(t, err)
	require.False(t, ready)

	require.NoError(t, d.Cancel(h))
	require.True(t, d.isCancelled(h))

	f.finish(time.Now())
	ready, err = d.IsReady(h)
	require.NoError(t, err)
	require.True(t, ready)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Wait(ctx, h))

	dur, err := d.GetTaskDuration(h)
	require.NoError(t, err)
	require.GreaterOrEqual(t, dur, time.Duration(0))
}

func TestFuture_UnknownHandle(t *testing.T) {
	d := newTestDevice(t)
	_, err := d.IsReady(types.NullHandle)
	require.Error(t, err)
}

func TestRenderFrame_RequiresHostBuffer(t *testing.T) {
	d := newTestDevice(t)
	_, err := d.RenderFrame(context.Background(), types.NullHandle, types.NullHandle, types.NullHandle, types.NullHandle)
	require.Error(t, err)
}
