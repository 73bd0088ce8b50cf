package balance

import "github.com/offlayer/dispatch/types"

// Static is the round-robin tile load balancer: tile ownership is
// tileID % numWorkers, fixed for the lifetime of the framebuffer (spec
// §4.7, grounded on staticLoadBalancer::Master/Slave).
type Static struct {
	NumWorkers int
}

// TilesFor returns every tile rank owns, in ascending order.
func (s Static) TilesFor(rank int, total int) []types.TileID {
	var out []types.TileID
	for id := types.TileID(0); int(id) < total; id++ {
		if int(id)%s.NumWorkers == rank {
			out = append(out, id)
		}
	}
	return out
}

// OwnerOf returns the owning rank for tile, identical to
// framebuffer.OwnerOf — duplicated here as a value-receiver method so
// Static satisfies a Strategy interface without importing framebuffer.
func (s Static) OwnerOf(tile types.TileID) int {
	if s.NumWorkers <= 0 {
		return 0
	}
	return int(tile) % s.NumWorkers
}
