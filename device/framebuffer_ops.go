package device

import (
	"bytes"
	"fmt"

	"github.com/offlayer/dispatch/framebuffer"
	"github.com/offlayer/dispatch/object"
	"github.com/offlayer/dispatch/types"
	"github.com/offlayer/dispatch/wire"
)

// NewFramebuffer constructs a tiled Framebuffer of width x height pixels
// under the given compositing mode, distributed across every worker
// rank, and (on the host) broadcasts its geometry so every worker's
// mirrored Framebuffer divides the same tiles the same way.
func (d *Device) NewFramebuffer(width, height int32, mode types.Compositing) (types.Handle, error) {
	h := d.nextHandle()
	if err := d.registry.Assign(h, object.New(object.KindFramebuffer, "")); err != nil {
		return types.NullHandle, err
	}

	numWorkers := max1(d.Size - 1)
	fb := framebuffer.New(width, height, numWorkers, mode)
	if d.metrics != nil {
		fb.WithObserver(d.metrics)
	}
	d.mu.Lock()
	d.fbs[h] = fb
	d.mu.Unlock()

	if d.buf == nil {
		return h, nil
	}

	var buf bytes.Buffer
	enc := wire.NewEncoder(&buf)
	if err := enc.PutHandle(h); err != nil {
		return types.NullHandle, err
	}
	if err := enc.PutInt32(width); err != nil {
		return types.NullHandle, err
	}
	if err := enc.PutInt32(height); err != nil {
		return types.NullHandle, err
	}
	if err := enc.PutUint8(uint8(mode)); err != nil {
		return types.NullHandle, err
	}
	if err := enc.PutUint32(uint32(numWorkers)); err != nil {
		return types.NullHandle, err
	}
	return h, d.buf.PutRecord(wire.TagNewFramebuffer, buf.Bytes())
}

func (d *Device) framebuffer(h types.Handle) (*framebuffer.Framebuffer, error) {
	d.mu.Lock()
	fb, ok := d.fbs[h]
	d.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("device: %s is not a Framebuffer", h)
	}
	return fb, nil
}

// Map returns the full-resolution color and depth buffers assembled from
// the framebuffer's current tile state (host-local; every tile
// contribution has already arrived through the result collectors by the
// time a caller awaits the owning Future).
func (d *Device) Map(h types.Handle) (color []types.Vec4, depth []float32, err error) {
	fb, err := d.framebuffer(h)
	if err != nil {
		return nil, nil, err
	}
	c, z := fb.Snapshot()
	return c, z, nil
}

// Unmap is a no-op: Map's returned slices are ordinary Go memory with no
// borrowed lifetime to release.
func (d *Device) Unmap(h types.Handle) error {
	_, err := d.framebuffer(h)
	return err
}

// GetVariance returns the framebuffer's average tile error as of the
// most recently completed frame.
func (d *Device) GetVariance(h types.Handle) (float32, error) {
	fb, err := d.framebuffer(h)
	if err != nil {
		return 0, err
	}
	return fb.Variance(), nil
}

// GetFramebufferProgress returns the fraction of the current frame's
// tiles that have arrived so far, in [0, 1].
func (d *Device) GetFramebufferProgress(h types.Handle) (float32, error) {
	fb, err := d.framebuffer(h)
	if err != nil {
		return 0, err
	}
	return fb.Progress(), nil
}

// ResetAccumulation clears a framebuffer's progressive accumulation id,
// both locally and (on the host) on every worker's mirrored copy, so the
// next RenderFrame starts a fresh refinement sequence.
func (d *Device) ResetAccumulation(h types.Handle) error {
	fb, err := d.framebuffer(h)
	if err != nil {
		return err
	}
	fb.ResetAccumulation()

	if d.buf == nil {
		return nil
	}
	var buf bytes.Buffer
	enc := wire.NewEncoder(&buf)
	if err := enc.PutHandle(h); err != nil {
		return err
	}
	return d.buf.PutRecord(wire.TagResetAccumulation, buf.Bytes())
}
