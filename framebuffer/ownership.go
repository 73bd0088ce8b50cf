package framebuffer

import "github.com/offlayer/dispatch/types"

// OwnerOf returns the rank that owns tileID, a deterministic hash/modulo
// over the worker count (spec §4.6, resolved from
// original_source/ospray/mpi/MPILoadBalancer.h's tileID % numWorkers
// static assignment). Every rank computes the same answer independently;
// no coordination is needed to learn who owns a tile.
func OwnerOf(tileID types.TileID, numWorkers int) int {
	if numWorkers <= 0 {
		return 0
	}
	return int(tileID) % numWorkers
}
