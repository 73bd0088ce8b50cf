package device

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/offlayer/dispatch/types"
	"github.com/offlayer/dispatch/wire"
)

// RenderFrame renders one frame of world through camera into fb and
// returns a Future handle the caller polls or waits on. Tile ownership
// for the frame is computed once, host-side, from the configured load
// balancer (static round-robin, or dynamic priority queues seeded from
// the previous frame's per-tile error) and shipped to every worker in
// the same broadcast that starts the frame, so no further coordination
// is needed while tiles are in flight.
func (d *Device) RenderFrame(ctx context.Context, world, camera, fb, renderer types.Handle) (types.Handle, error) {
	if d.buf == nil {
		return types.NullHandle, fmt.Errorf("device: RenderFrame is host-only")
	}
	fbuf, err := d.framebuffer(fb)
	if err != nil {
		return types.NullHandle, err
	}

	// Priorities come from the frame that just finished, so plan
	// assignments before StartFrame discards its per-tile error
	// estimates.
	total := fbuf.NumTiles()
	numWorkers := max1(d.Size - 1)
	assignments := d.planAssignments(fbuf, total, numWorkers)
	fbuf.StartFrame()

	futureHandle := d.nextHandle()
	f := newFuture(time.Now())
	d.mu.Lock()
	d.futures[futureHandle] = f
	d.cancelled[futureHandle] = false
	d.mu.Unlock()

	var buf bytes.Buffer
	enc := wire.NewEncoder(&buf)
	for _, h := range []types.Handle{futureHandle, world, camera, fb, renderer} {
		if err := enc.PutHandle(h); err != nil {
			return types.NullHandle, err
		}
	}
	if err := enc.PutUint32(uint32(numWorkers)); err != nil {
		return types.NullHandle, err
	}
	for _, tiles := range assignments {
		if err := enc.PutUint32(uint32(len(tiles))); err != nil {
			return types.NullHandle, err
		}
		for _, t := range tiles {
			if err := enc.PutUint32(uint32(t)); err != nil {
				return types.NullHandle, err
			}
		}
	}
	if err := d.buf.PutRecord(wire.TagRenderFrame, buf.Bytes()); err != nil {
		return types.NullHandle, err
	}

	go d.awaitFrame(ctx, fbuf, f)
	return futureHandle, nil
}

func (d *Device) awaitFrame(ctx context.Context, fbuf interface {
	WaitUntilFinished(context.Context) error
	EndFrame() float32
}, f *future) {
	if err := fbuf.WaitUntilFinished(ctx); err != nil {
		return
	}
	fbuf.EndFrame()
	f.finish(time.Now())
}

// planAssignments returns, for each worker index, the tiles it should
// render this frame.
func (d *Device) planAssignments(fbuf interface{ TileError(types.TileID) float32 }, total, numWorkers int) [][]types.TileID {
	assignments := make([][]types.TileID, numWorkers)

	if !d.useDynamic {
		for w := 0; w < numWorkers; w++ {
			assignments[w] = d.static.TilesFor(w, total)
		}
		return assignments
	}

	d.dynamic.Reset()
	for id := 0; id < total; id++ {
		tile := types.TileID(id)
		pref := d.static.OwnerOf(tile)
		d.dynamic.Enqueue(tile, pref, fbuf.TileError(tile))
	}
	for d.dynamic.Pending() > 0 {
		drained := false
		for w := 0; w < numWorkers; w++ {
			if tile, ok := d.dynamic.NextTile(w); ok {
				assignments[w] = append(assignments[w], tile)
				drained = true
			}
		}
		if !drained {
			break
		}
	}
	return assignments
}

// IsReady reports whether futureHandle's frame has finished.
func (d *Device) IsReady(futureHandle types.Handle) (bool, error) {
	f, err := d.future(futureHandle)
	if err != nil {
		return false, err
	}
	return f.isFinished(), nil
}

// Wait blocks until futureHandle's frame finishes or ctx is canceled.
func (d *Device) Wait(ctx context.Context, futureHandle types.Handle) error {
	f, err := d.future(futureHandle)
	if err != nil {
		return err
	}
	select {
	case <-f.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel marks futureHandle's frame cancelled. Workers already
// rendering a tile finish it, but stop taking further tiles for this
// future (spec's best-effort Cancel semantics).
func (d *Device) Cancel(futureHandle types.Handle) error {
	if _, err := d.future(futureHandle); err != nil {
		return err
	}
	d.mu.Lock()
	d.cancelled[futureHandle] = true
	d.mu.Unlock()

	if d.buf == nil {
		return nil
	}
	var buf bytes.Buffer
	enc := wire.NewEncoder(&buf)
	if err := enc.PutHandle(futureHandle); err != nil {
		return err
	}
	return d.buf.PutRecord(wire.TagCancel, buf.Bytes())
}

// GetTaskDuration returns the wall-clock time futureHandle's frame took,
// valid once IsReady reports true.
func (d *Device) GetTaskDuration(futureHandle types.Handle) (time.Duration, error) {
	f, err := d.future(futureHandle)
	if err != nil {
		return 0, err
	}
	return f.taskDuration(), nil
}

func (d *Device) future(h types.Handle) (*future, error) {
	d.mu.Lock()
	f, ok := d.futures[h]
	d.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("device: %s is not a Future", h)
	}
	return f, nil
}

func (d *Device) isCancelled(h types.Handle) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancelled[h]
}
