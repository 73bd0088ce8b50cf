// Package object implements the managed object model every handle in the
// offload core addresses: a refcounted, tagged-variant value with a
// name→parameter map and a committed/dirty bit (spec §3 "Managed object").
package object

import "fmt"

// Kind discriminates the ~16 object variants the object model supports.
// Objects are represented by one struct tagged with a Kind rather than by
// Go-level inheritance, mirroring the tagged-union shape used throughout the
// wire codec (spec §3, §5).
type Kind uint8

const (
	KindUnknown Kind = iota
	KindRenderer
	KindCamera
	KindWorld
	KindGeometry
	KindVolume
	KindFramebuffer
	KindFuture
	KindData
	KindTexture
	KindMaterial
	KindTransferFunction
	KindLight
	KindImageOp
	KindInstance
	KindGroup
	KindModel
)

var kindNames = [...]string{
	"Unknown", "Renderer", "Camera", "World", "Geometry", "Volume",
	"Framebuffer", "Future", "Data", "Texture", "Material",
	"TransferFunction", "Light", "ImageOp", "Instance", "Group", "Model",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}
