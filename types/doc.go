// Package types defines the wire-visible value types shared by every
// component of the offload core: scalars, small vectors and boxes, affine
// transforms, the parameter tagged union, data array descriptors, and the
// tile/camera shapes the framebuffer and renderer exchange.
//
// These types are deliberately free of any dependency on handle, wire, or
// fabric so that they can be imported by the render plugin surface without
// pulling in the distributed machinery.
package types
