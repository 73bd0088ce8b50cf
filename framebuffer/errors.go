package framebuffer

import "errors"

// ErrAlreadyWritten is returned by SetTile when a write-once tile receives
// a second contribution in the same frame (spec §4.6).
var ErrAlreadyWritten = errors.New("framebuffer: tile already written in write-once mode")

// ErrUnknownTile is returned when a tile ID falls outside the framebuffer's
// tile grid.
var ErrUnknownTile = errors.New("framebuffer: unknown tile id")
