// Package raycast is a minimal built-in render.Renderer: it intersects
// each tile against a small fixed analytic scene (a sphere and a ground
// plane) and shades with a constant ambient term plus one shadow ray,
// accumulating spp samples per pixel and dividing by the sample count.
//
// It exists so the core's integration tests and example cmd/ binaries
// have something real to call without a full path tracer. It depends
// only on render and the public types package, never on core, fabric,
// or dispatch internals.
//
// Grounded on original_source/ospray/render/raycast/raycast.cpp's
// one-renderer-per-tile shape and simpleAO/SimpleAO.cpp's
// accumulate-then-divide-by-spp loop.
package raycast
