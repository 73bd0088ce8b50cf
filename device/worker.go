package device

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"

	"github.com/offlayer/dispatch/dispatch"
	"github.com/offlayer/dispatch/framebuffer"
	"github.com/offlayer/dispatch/internal/logging"
	"github.com/offlayer/dispatch/object"
	"github.com/offlayer/dispatch/types"
	"github.com/offlayer/dispatch/wire"
)

// sidechannelReceiver is the extra method *fabric.Worker exposes beyond
// fabric.Group, needed to fetch a data array whose bytes traveled ahead
// of its owning command (spec §4.4 "sidechannel").
type sidechannelReceiver interface {
	RecvSidechannel(ctx context.Context) ([]byte, error)
}

// workerHandlers builds the table a worker's dispatch.Loop dispatches
// every broadcast command through: one Local handler per object kind
// construction tag, mirroring the host's registry locally, plus the
// framebuffer/render/control handlers a worker needs to participate in
// a frame.
func (d *Device) workerHandlers() dispatch.HandlerTable {
	t := make(dispatch.HandlerTable, len(tagKinds)+16)

	for tag, kind := range tagKinds {
		tag, kind := tag, kind
		t.Register(tag, dispatch.Local, func(ctx context.Context, payload []byte) error {
			dec := wire.NewDecoder(bytes.NewReader(payload))
			h, err := dec.GetHandle()
			if err != nil {
				return err
			}
			subType, err := dec.GetString()
			if err != nil {
				return err
			}
			return d.registry.Assign(h, object.New(kind, object.SubType(subType)))
		})
	}

	t.Register(wire.TagNewData, dispatch.Local, d.handleNewData(false))
	t.Register(wire.TagNewSharedData, dispatch.Local, d.handleNewData(true))
	t.Register(wire.TagSetParam, dispatch.Local, d.handleSetParam)
	t.Register(wire.TagRemoveParam, dispatch.Local, d.handleRemoveParam)
	t.Register(wire.TagCommit, dispatch.Local, d.handleCommit)
	t.Register(wire.TagRetain, dispatch.Local, d.handleRetain)
	t.Register(wire.TagRelease, dispatch.Local, d.handleRelease)
	t.Register(wire.TagCopyData, dispatch.Local, d.handleCopyData)
	t.Register(wire.TagNewFramebuffer, dispatch.Local, d.handleNewFramebuffer)
	t.Register(wire.TagResetAccumulation, dispatch.Local, d.handleResetAccumulation)
	t.Register(wire.TagCancel, dispatch.Local, d.handleCancel)
	t.Register(wire.TagRenderFrame, dispatch.Collective, d.handleRenderFrame)
	t.Register(wire.TagShutdown, dispatch.Local, func(ctx context.Context, payload []byte) error {
		return d.group.Close()
	})

	return t
}

func (d *Device) handleNewData(shared bool) dispatch.Func {
	return func(ctx context.Context, payload []byte) error {
		dec := wire.NewDecoder(bytes.NewReader(payload))
		h, err := dec.GetHandle()
		if err != nil {
			return err
		}
		arr, err := d.decodeInboundDataArray(ctx, dec)
		if err != nil {
			return err
		}
		arr.Shared = shared
		obj := object.New(object.KindData, "")
		obj.SetParam("data", types.DataParam(arr))
		obj.Commit()
		return d.registry.Assign(h, obj)
	}
}

// decodeInboundDataArray reads a data array written by either
// Encoder.PutDataArray (header followed by an inline length-prefixed
// byte blob) or batch.Buffer.EncodeDataArray's sidechannel path (header
// only, nothing else in the record). The two are told apart by whether
// a length prefix follows the header at all: an empty read past the end
// of payload surfaces as io.EOF, which can only happen on the
// sidechannel path since the inline path always writes a length prefix.
func (d *Device) decodeInboundDataArray(ctx context.Context, dec *wire.Decoder) (*types.DataArray, error) {
	arr, err := dec.GetDataArrayHeader()
	if err != nil {
		return nil, err
	}
	raw, err := dec.GetBytes()
	if err == nil {
		arr.Bytes = raw
		return arr, nil
	}
	if !errors.Is(err, io.EOF) {
		return nil, err
	}
	sc, ok := d.group.(sidechannelReceiver)
	if !ok {
		return nil, fmt.Errorf("device: sidechannel data array but group cannot receive one")
	}
	raw, err = sc.RecvSidechannel(ctx)
	if err != nil {
		return nil, err
	}
	arr.Bytes = raw
	return arr, nil
}

func (d *Device) handleSetParam(ctx context.Context, payload []byte) error {
	dec := wire.NewDecoder(bytes.NewReader(payload))
	h, err := dec.GetHandle()
	if err != nil {
		return err
	}
	name, err := dec.GetString()
	if err != nil {
		return err
	}
	value, err := dec.GetParameter()
	if err != nil {
		return err
	}
	obj, err := d.registry.Get(h)
	if err != nil {
		return err
	}
	old, hadOld := obj.PendingParam(name)
	obj.SetParam(name, value)
	return d.applyParamRefcount(old, hadOld, value, true)
}

func (d *Device) handleRemoveParam(ctx context.Context, payload []byte) error {
	dec := wire.NewDecoder(bytes.NewReader(payload))
	h, err := dec.GetHandle()
	if err != nil {
		return err
	}
	name, err := dec.GetString()
	if err != nil {
		return err
	}
	obj, err := d.registry.Get(h)
	if err != nil {
		return err
	}
	old, hadOld := obj.PendingParam(name)
	obj.RemoveParam(name)
	return d.applyParamRefcount(old, hadOld, types.Parameter{}, false)
}

func (d *Device) handleCommit(ctx context.Context, payload []byte) error {
	dec := wire.NewDecoder(bytes.NewReader(payload))
	h, err := dec.GetHandle()
	if err != nil {
		return err
	}
	obj, err := d.registry.Get(h)
	if err != nil {
		return err
	}
	obj.Commit()
	return nil
}

func (d *Device) handleRetain(ctx context.Context, payload []byte) error {
	dec := wire.NewDecoder(bytes.NewReader(payload))
	h, err := dec.GetHandle()
	if err != nil {
		return err
	}
	_, err = d.registry.Retain(h)
	return err
}

func (d *Device) handleRelease(ctx context.Context, payload []byte) error {
	dec := wire.NewDecoder(bytes.NewReader(payload))
	h, err := dec.GetHandle()
	if err != nil {
		return err
	}
	return d.releaseLocal(h)
}

func (d *Device) handleCopyData(ctx context.Context, payload []byte) error {
	dec := wire.NewDecoder(bytes.NewReader(payload))
	dest, err := dec.GetHandle()
	if err != nil {
		return err
	}
	source, err := dec.GetHandle()
	if err != nil {
		return err
	}
	offset, err := dec.GetVec3i()
	if err != nil {
		return err
	}
	destObj, err := d.registry.Get(dest)
	if err != nil {
		return err
	}
	srcObj, err := d.registry.Get(source)
	if err != nil {
		return err
	}
	destParam, ok := destObj.Param("data")
	if !ok || destParam.Data == nil {
		return fmt.Errorf("device: %s is not a Data object", dest)
	}
	srcParam, ok := srcObj.Param("data")
	if !ok || srcParam.Data == nil {
		return fmt.Errorf("device: %s is not a Data object", source)
	}
	copyInto(destParam.Data, srcParam.Data, offset)
	return nil
}

func (d *Device) handleNewFramebuffer(ctx context.Context, payload []byte) error {
	dec := wire.NewDecoder(bytes.NewReader(payload))
	h, err := dec.GetHandle()
	if err != nil {
		return err
	}
	width, err := dec.GetInt32()
	if err != nil {
		return err
	}
	height, err := dec.GetInt32()
	if err != nil {
		return err
	}
	mode, err := dec.GetUint8()
	if err != nil {
		return err
	}
	numWorkers, err := dec.GetUint32()
	if err != nil {
		return err
	}
	fb := framebuffer.New(width, height, int(numWorkers), types.Compositing(mode))
	d.mu.Lock()
	d.fbs[h] = fb
	d.mu.Unlock()
	return nil
}

func (d *Device) handleResetAccumulation(ctx context.Context, payload []byte) error {
	dec := wire.NewDecoder(bytes.NewReader(payload))
	h, err := dec.GetHandle()
	if err != nil {
		return err
	}
	fb, err := d.framebuffer(h)
	if err != nil {
		return err
	}
	fb.ResetAccumulation()
	return nil
}

func (d *Device) handleCancel(ctx context.Context, payload []byte) error {
	dec := wire.NewDecoder(bytes.NewReader(payload))
	h, err := dec.GetHandle()
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.cancelled[h] = true
	d.mu.Unlock()
	return nil
}

// handleRenderFrame decodes this rank's tile assignment out of the
// broadcast RenderFrame command, renders each tile, and streams every
// result back to the host as it finishes, rather than batching them.
func (d *Device) handleRenderFrame(ctx context.Context, payload []byte) error {
	dec := wire.NewDecoder(bytes.NewReader(payload))
	futureHandle, err := dec.GetHandle()
	if err != nil {
		return err
	}
	_, err = dec.GetHandle() // world: unused by the built-in renderer, mirrored for parity
	if err != nil {
		return err
	}
	cameraHandle, err := dec.GetHandle()
	if err != nil {
		return err
	}
	fbHandle, err := dec.GetHandle()
	if err != nil {
		return err
	}
	_, err = dec.GetHandle() // renderer subtype handle, likewise unused
	if err != nil {
		return err
	}
	numWorkers, err := dec.GetUint32()
	if err != nil {
		return err
	}

	workerIndex := d.Rank - 1
	var mine []types.TileID
	for w := uint32(0); w < numWorkers; w++ {
		count, err := dec.GetUint32()
		if err != nil {
			return err
		}
		for i := uint32(0); i < count; i++ {
			tile, err := dec.GetUint32()
			if err != nil {
				return err
			}
			if int(w) == workerIndex {
				mine = append(mine, types.TileID(tile))
			}
		}
	}
	if workerIndex < 0 {
		return nil
	}

	cameraObj, err := d.registry.Get(cameraHandle)
	if err != nil {
		return err
	}
	fb, err := d.framebuffer(fbHandle)
	if err != nil {
		return err
	}
	cam, err := cameraFromObject(cameraHandle, cameraObj)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(int64(futureHandle) + int64(d.Rank)))

	for _, tile := range mine {
		if d.isCancelled(futureHandle) {
			break
		}
		region, ok := fb.Region(tile)
		if !ok {
			continue
		}
		samples := d.renderer.RenderTile(ctx, cam, region, rng)
		samples.Region = tile
		if err := fb.SetTile(tile, samples); err != nil {
			logging.Logger().Warn("device: worker failed to merge local tile", "tile", tile, "error", err)
		}
		if owner := fb.OwnerOf(tile); owner != workerIndex {
			// A work-stolen tile (balance.Dynamic.NextTile) whose static
			// owner is a different rank. fabric.Worker's point-to-point
			// Send/Recv only ever reach the host (rank 0) — there is no
			// worker-to-worker hop to forward this result over. It still
			// reaches the framebuffer correctly below, since the host's
			// per-rank collectors (collectFrom) merge every submission by
			// tile id, regardless of which rank rendered it.
			logging.Logger().Debug("device: worker rendered a tile it does not statically own",
				"tile", tile, "renderer", workerIndex, "owner", owner)
		}
		out, err := encodeTileSubmission(fbHandle, tile, samples)
		if err != nil {
			return err
		}
		if err := d.group.Send(ctx, 0, out); err != nil {
			return err
		}
	}
	return nil
}
