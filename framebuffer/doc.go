// Package framebuffer implements the tiled framebuffer (C6): tile
// ownership, composition, accumulation, and the local bookkeeping of
// end_frame. EndFrame does not synchronize ranks itself.
//
// Grounded on original_source/ospray/mpi/DistributedFrameBuffer.h: tile
// ownership by a deterministic rank hash, and distinct write-once /
// z-composite / alpha-blend tile classes. Tile delivery is a single hop:
// every finished tile is merged into the host's Framebuffer through
// SetTile, and no owning rank forwards tiles.
package framebuffer
