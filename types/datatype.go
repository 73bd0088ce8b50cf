package types

import "fmt"

// DataType tags every typed payload that can cross the wire: parameter
// values, data array element types, and tagged-union discriminants. The set
// is closed — extending it is a protocol version bump (see wire.ProtocolVersion).
type DataType uint16

const (
	// DataTypeUnknown is never valid on the wire; it catches zero-value bugs.
	DataTypeUnknown DataType = iota

	DataTypeBool
	DataTypeInt8
	DataTypeUint8
	DataTypeInt16
	DataTypeUint16
	DataTypeInt32
	DataTypeUint32
	DataTypeInt64
	DataTypeUint64
	DataTypeFloat32
	DataTypeFloat64

	DataTypeVec2f
	DataTypeVec3f
	DataTypeVec4f
	DataTypeVec3i

	DataTypeBox3f

	DataTypeAffine3f
	DataTypeLinear3f

	DataTypeString

	DataTypeHandle // an object handle: Renderer, Camera, World, Geometry, ...
	DataTypeData   // a data array (see DataArray)

	// Object-kind handle subtags — used so a worker can verify type
	// agreement on receipt of a handle parameter (spec §3 "Parameter").
	DataTypeRendererHandle
	DataTypeCameraHandle
	DataTypeWorldHandle
	DataTypeGeometryHandle
	DataTypeVolumeHandle
	DataTypeFramebufferHandle
	DataTypeFutureHandle
	DataTypeTextureHandle
	DataTypeMaterialHandle
	DataTypeTransferFunctionHandle
	DataTypeLightHandle
	DataTypeImageOpHandle
	DataTypeInstanceHandle
	DataTypeGroupHandle
	DataTypeModelHandle
)

func (d DataType) String() string {
	switch d {
	case DataTypeUnknown:
		return "Unknown"
	case DataTypeBool:
		return "Bool"
	case DataTypeInt8:
		return "Int8"
	case DataTypeUint8:
		return "Uint8"
	case DataTypeInt16:
		return "Int16"
	case DataTypeUint16:
		return "Uint16"
	case DataTypeInt32:
		return "Int32"
	case DataTypeUint32:
		return "Uint32"
	case DataTypeInt64:
		return "Int64"
	case DataTypeUint64:
		return "Uint64"
	case DataTypeFloat32:
		return "Float32"
	case DataTypeFloat64:
		return "Float64"
	case DataTypeVec2f:
		return "Vec2f"
	case DataTypeVec3f:
		return "Vec3f"
	case DataTypeVec4f:
		return "Vec4f"
	case DataTypeVec3i:
		return "Vec3i"
	case DataTypeBox3f:
		return "Box3f"
	case DataTypeAffine3f:
		return "Affine3f"
	case DataTypeLinear3f:
		return "Linear3f"
	case DataTypeString:
		return "String"
	case DataTypeHandle:
		return "Handle"
	case DataTypeData:
		return "Data"
	default:
		if d.IsObjectHandle() {
			return fmt.Sprintf("Handle(%d)", d)
		}
		return fmt.Sprintf("DataType(%d)", uint16(d))
	}
}

// IsObjectHandle reports whether d is one of the object-kind handle subtags.
func (d DataType) IsObjectHandle() bool {
	return d >= DataTypeRendererHandle && d <= DataTypeModelHandle
}

// ElementSize returns the byte size of one element of type d, or 0 if d has
// no fixed element size (e.g. DataTypeString, DataTypeData).
func ElementSize(d DataType) int {
	switch d {
	case DataTypeBool, DataTypeInt8, DataTypeUint8:
		return 1
	case DataTypeInt16, DataTypeUint16:
		return 2
	case DataTypeInt32, DataTypeUint32, DataTypeFloat32:
		return 4
	case DataTypeInt64, DataTypeUint64, DataTypeFloat64, DataTypeHandle:
		return 8
	case DataTypeVec2f:
		return 8
	case DataTypeVec3f, DataTypeVec3i:
		return 12
	case DataTypeVec4f:
		return 16
	case DataTypeBox3f:
		return 24
	case DataTypeLinear3f:
		return 36
	case DataTypeAffine3f:
		return 48
	default:
		if d.IsObjectHandle() {
			return 8
		}
		return 0
	}
}
