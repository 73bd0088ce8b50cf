package framebuffer

import "github.com/offlayer/dispatch/types"

// tileState is the owning rank's exclusively-held bookkeeping for one tile
// (spec §5: "per-tile accumulation state is owned exclusively by the owner
// rank; no cross-rank lock is ever taken on it").
type tileState struct {
	color    []types.Vec4
	depth    []float32
	samples  int32
	variance float32
	written  bool
}

func newTileState(region types.TileRegion) *tileState {
	n := int(region.Width) * int(region.Height)
	return &tileState{color: make([]types.Vec4, n)}
}

// merge combines a contribution into the tile per the framebuffer's
// composition mode (spec §4.6 "composition mode").
func (ts *tileState) merge(mode types.Compositing, contribution types.TileSamples) error {
	switch mode {
	case types.CompositingWriteOnce:
		if ts.written {
			return ErrAlreadyWritten
		}
		copy(ts.color, contribution.Color)
		ts.depth = contribution.Depth
		ts.written = true

	case types.CompositingZComposite:
		if !ts.written {
			copy(ts.color, contribution.Color)
			ts.depth = append([]float32(nil), contribution.Depth...)
			ts.written = true
			break
		}
		for i, c := range contribution.Color {
			if i >= len(ts.depth) || i >= len(contribution.Depth) {
				continue
			}
			if contribution.Depth[i] < ts.depth[i] {
				ts.color[i] = c
				ts.depth[i] = contribution.Depth[i]
			}
		}

	case types.CompositingAlphaBlend:
		if !ts.written {
			copy(ts.color, contribution.Color)
			ts.written = true
			break
		}
		for i, c := range contribution.Color {
			back := ts.color[i]
			a := c.W
			ts.color[i] = types.Vec4{
				X: c.X*a + back.X*(1-a),
				Y: c.Y*a + back.Y*(1-a),
				Z: c.Z*a + back.Z*(1-a),
				W: a + back.W*(1-a),
			}
		}
	}

	// Running sample-weighted average: a tile that receives several
	// contributions in one frame (Z/alpha compositing) blends their
	// variance estimates the same way it blends their color.
	total := ts.samples + contribution.Samples
	if total > 0 {
		ts.variance = (ts.variance*float32(ts.samples) + contribution.Variance*float32(contribution.Samples)) / float32(total)
	}
	ts.samples = total
	return nil
}
