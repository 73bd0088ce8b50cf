package framebuffer

import (
	"context"
	"math"
	"sync"

	"github.com/offlayer/dispatch/types"
)

// Observer receives a count each time a tile is merged, and the
// progress ratio whenever it changes (metrics.Registry implements this
// without framebuffer importing metrics).
type Observer interface {
	TileAccumulated()
	SetFrameProgress(ratio float32)
}

// Framebuffer is the tiled framebuffer (C6): a grid of TileSize-aligned
// tiles, each owned by exactly one rank, composited as contributions arrive
// and accumulated across frames by AccumID.
type Framebuffer struct {
	Width, Height int32
	NumWorkers    int
	Compositing   types.Compositing

	mu        sync.Mutex
	tiles     map[types.TileID]*tileState
	regions   map[types.TileID]types.TileRegion
	total     int
	completed int
	accumID   int32
	done      chan struct{}
	observer  Observer
	variance  float32
}

// New returns a Framebuffer of width x height pixels, divided into
// TileSize-aligned tiles and distributed across numWorkers ranks.
func New(width, height int32, numWorkers int, mode types.Compositing) *Framebuffer {
	fb := &Framebuffer{
		Width:       width,
		Height:      height,
		NumWorkers:  numWorkers,
		Compositing: mode,
		regions:     make(map[types.TileID]types.TileRegion),
	}
	var id types.TileID
	for y := int32(0); y < height; y += types.TileSize {
		for x := int32(0); x < width; x += types.TileSize {
			w := min32(types.TileSize, width-x)
			h := min32(types.TileSize, height-y)
			fb.regions[id] = types.TileRegion{X: x, Y: y, Width: w, Height: h}
			id++
		}
	}
	fb.total = int(id)
	fb.StartFrame()
	return fb
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

// Region returns the pixel region tile occupies.
func (fb *Framebuffer) Region(tile types.TileID) (types.TileRegion, bool) {
	r, ok := fb.regions[tile]
	return r, ok
}

// WithObserver attaches obs to receive tile/progress counters. Pass nil
// to disable reporting.
func (fb *Framebuffer) WithObserver(obs Observer) *Framebuffer {
	fb.observer = obs
	return fb
}

// NumTiles returns the total number of tiles in the framebuffer.
func (fb *Framebuffer) NumTiles() int { return fb.total }

// OwnerOf returns the rank that owns tile.
func (fb *Framebuffer) OwnerOf(tile types.TileID) int {
	return OwnerOf(tile, fb.NumWorkers)
}

// StartFrame resets per-tile completion state for a new frame, without
// touching AccumID — accumulation survives across frames until
// ResetAccumulation is called explicitly (spec §4.6).
func (fb *Framebuffer) StartFrame() {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.tiles = make(map[types.TileID]*tileState, fb.total)
	for id, region := range fb.regions {
		fb.tiles[id] = newTileState(region)
	}
	fb.completed = 0
	fb.done = make(chan struct{})
}

// SetTile merges a rendered tile's samples into the framebuffer's running
// state and marks the tile complete for this frame.
func (fb *Framebuffer) SetTile(tile types.TileID, samples types.TileSamples) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	ts, ok := fb.tiles[tile]
	if !ok {
		return ErrUnknownTile
	}
	firstWrite := !ts.written
	if err := ts.merge(fb.Compositing, samples); err != nil {
		return err
	}
	if firstWrite {
		fb.completed++
		if fb.observer != nil {
			fb.observer.TileAccumulated()
			if fb.total > 0 {
				fb.observer.SetFrameProgress(float32(fb.completed) / float32(fb.total))
			}
		}
		if fb.completed >= fb.total {
			select {
			case <-fb.done:
			default:
				close(fb.done)
			}
		}
	}
	return nil
}

// TileError returns the tile's current variance/error estimate, used by
// adaptive accumulation and the dynamic load balancer's replication
// policy. A tile that has not been rendered this frame — unknown, or
// known but never written — reports +Inf, so a balancer comparing error
// estimates always treats it as the most urgent tile rather than the
// quietest.
func (fb *Framebuffer) TileError(tile types.TileID) float32 {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	ts, ok := fb.tiles[tile]
	if !ok || !ts.written {
		return float32(math.Inf(1))
	}
	return ts.variance
}

// AccumID returns the current accumulation id: the number of frames'
// contributions folded into the framebuffer since the last reset.
func (fb *Framebuffer) AccumID() int32 {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.accumID
}

// ResetAccumulation zeros the accumulation id, causing the next frame to
// start a fresh progressive refinement (spec "ResetAccumulation" host API).
func (fb *Framebuffer) ResetAccumulation() {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.accumID = 0
}

// EndFrame finalizes the current frame's accumulation id and returns the
// framebuffer's average tile error. Spec §4.6 names end_frame a collective
// barrier; the actual cross-rank synchronization is the caller's
// responsibility (fabric.Group.Barrier), since Framebuffer itself has no
// fabric dependency — EndFrame only does the local bookkeeping half.
func (fb *Framebuffer) EndFrame() float32 {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.accumID++
	if fb.total == 0 {
		return 0
	}
	var sum float32
	for _, ts := range fb.tiles {
		sum += ts.variance
	}
	fb.variance = sum / float32(fb.total)
	return fb.variance
}

// Variance returns the average tile error computed by the most recent
// EndFrame call.
func (fb *Framebuffer) Variance() float32 {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.variance
}

// Snapshot assembles the full-resolution color and depth buffers from
// every tile's current state, in row-major pixel order (spec's "Map"
// host API entry point, grounded on ospMapFrameBuffer).
func (fb *Framebuffer) Snapshot() (color []types.Vec4, depth []float32) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	color = make([]types.Vec4, fb.Width*fb.Height)
	depth = make([]float32, fb.Width*fb.Height)
	for id, region := range fb.regions {
		ts, ok := fb.tiles[id]
		if !ok {
			continue
		}
		for y := int32(0); y < region.Height; y++ {
			for x := int32(0); x < region.Width; x++ {
				srcIdx := y*region.Width + x
				dstIdx := (region.Y+y)*fb.Width + (region.X + x)
				if int(srcIdx) < len(ts.color) {
					color[dstIdx] = ts.color[srcIdx]
				}
				if int(srcIdx) < len(ts.depth) {
					depth[dstIdx] = ts.depth[srcIdx]
				}
			}
		}
	}
	return color, depth
}

// Progress returns the fraction of tiles completed in the current frame,
// in [0, 1].
func (fb *Framebuffer) Progress() float32 {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.total == 0 {
		return 1
	}
	return float32(fb.completed) / float32(fb.total)
}

// WaitUntilFinished blocks until every tile in the current frame has been
// set, or ctx is canceled.
func (fb *Framebuffer) WaitUntilFinished(ctx context.Context) error {
	fb.mu.Lock()
	done := fb.done
	fb.mu.Unlock()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
