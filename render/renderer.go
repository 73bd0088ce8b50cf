package render

import (
	"context"
	"math/rand"

	"github.com/offlayer/dispatch/types"
)

// Renderer produces samples for one tile region of one camera view.
// Implementations are stateless across calls except for whatever they
// choose to derive from rng, so tile generation is trivially parallel
// across a task pool.
type Renderer interface {
	RenderTile(ctx context.Context, camera types.Camera, region types.TileRegion, rng *rand.Rand) types.TileSamples
}
