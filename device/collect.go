package device

import (
	"bytes"
	"context"

	"github.com/offlayer/dispatch/internal/logging"
	"github.com/offlayer/dispatch/types"
	"github.com/offlayer/dispatch/wire"
)

// startResultCollectors spawns one goroutine per worker rank, each
// reading that worker's point-to-point tile submissions and merging them
// into the owning Framebuffer. Mirrors the original's master-side
// MASTER_WRITE_TILE handling, reworked as explicit per-peer goroutines
// instead of a shared message-type switch.
func (d *Device) startResultCollectors(ctx context.Context) {
	for rank := 1; rank < d.Size; rank++ {
		rank := rank
		go d.collectFrom(ctx, rank)
	}
}

func (d *Device) collectFrom(ctx context.Context, rank int) {
	log := logging.Logger()
	for {
		payload, err := d.group.Recv(ctx, rank)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("device: tile collector exiting", "rank", rank, "error", err)
			return
		}
		if err := d.applyTileSubmission(payload); err != nil {
			log.Warn("device: dropped malformed tile submission", "rank", rank, "error", err)
		}
	}
}

func (d *Device) applyTileSubmission(payload []byte) error {
	r := bytes.NewReader(payload)
	dec := wire.NewDecoder(r)

	fbHandle, err := dec.GetHandle()
	if err != nil {
		return err
	}
	tile, err := dec.GetUint32()
	if err != nil {
		return err
	}
	samples, err := decodeTileSamples(dec)
	if err != nil {
		return err
	}

	d.mu.Lock()
	fb, ok := d.fbs[fbHandle]
	d.mu.Unlock()
	if !ok {
		return nil
	}
	return fb.SetTile(types.TileID(tile), samples)
}
