// Package render defines the Renderer plugin seam: the one call the
// core makes to turn a camera and a tile region into pixel samples.
// Everything about materials, geometry, and lighting lives behind this
// interface and outside the core (spec §11).
//
// Grounded on original_source/ospray/render/Renderer.h's renderTile
// virtual call and raycast/raycast.cpp's one-renderer-per-tile shape.
package render
