package types

// Parameter is a tagged union over the ~40 typed payloads a managed object's
// name→value map can hold (spec §3 "Parameter"). Exactly one of the typed
// fields is meaningful, selected by Type.
type Parameter struct {
	Type DataType

	Bool    bool
	Int64   int64
	Uint64  uint64
	Float64 float64

	Vec2f Vec2
	Vec3f Vec3
	Vec4f Vec4
	Vec3i Vec3i

	Box3f Box3

	Affine3f AffineSpace3
	Linear3f Linear3

	Str string

	Handle Handle // valid when Type == DataTypeHandle or an object-handle subtag

	Data *DataArray // valid when Type == DataTypeData
}

// BoolParam builds a bool-typed parameter.
func BoolParam(v bool) Parameter { return Parameter{Type: DataTypeBool, Bool: v} }

// Int32Param builds an int32-typed parameter.
func Int32Param(v int32) Parameter { return Parameter{Type: DataTypeInt32, Int64: int64(v)} }

// Uint32Param builds a uint32-typed parameter.
func Uint32Param(v uint32) Parameter { return Parameter{Type: DataTypeUint32, Uint64: uint64(v)} }

// Float32Param builds a float32-typed parameter.
func Float32Param(v float32) Parameter {
	return Parameter{Type: DataTypeFloat32, Float64: float64(v)}
}

// Vec3fParam builds a Vec3f-typed parameter.
func Vec3fParam(v Vec3) Parameter { return Parameter{Type: DataTypeVec3f, Vec3f: v} }

// StringParam builds a string-typed parameter.
func StringParam(v string) Parameter { return Parameter{Type: DataTypeString, Str: v} }

// HandleParam builds a handle-typed parameter tagged with the referenced
// object kind, so a receiving worker can verify type agreement.
func HandleParam(kind DataType, h Handle) Parameter {
	return Parameter{Type: kind, Handle: h}
}

// DataParam builds a data-array-typed parameter.
func DataParam(d *DataArray) Parameter { return Parameter{Type: DataTypeData, Data: d} }

// ReferencesHandle reports whether this parameter's value is a managed
// object handle — true for DataTypeHandle and any object-kind subtag. Object
// model refcounting (spec §3) only applies to parameters for which this is
// true.
func (p Parameter) ReferencesHandle() bool {
	return p.Type == DataTypeHandle || p.Type.IsObjectHandle()
}

// DataArray is a shared or owned byte buffer plus element type, extents, and
// byte strides (spec §3 "Data array"). A zero stride on an axis means
// "tightly packed, inferred from element size and lower axes."
type DataArray struct {
	ElementType DataType
	Extents     Vec3i // (nx, ny, nz)
	Strides     Vec3i // (sx, sy, sz) in bytes; 0 means tightly packed

	Bytes  []byte // owned storage, or a view over host memory for shared data
	Shared bool   // true if Bytes aliases caller-owned memory (NewSharedData)
}

// tightStrides computes the tightly-packed strides for the array's element
// type and extents, independent of whatever Strides currently holds.
func (d *DataArray) tightStrides() Vec3i {
	elemSize := int32(ElementSize(d.ElementType))
	sx := elemSize
	sy := sx * d.Extents.X
	sz := sy * d.Extents.Y
	return Vec3i{sx, sy, sz}
}

// EffectiveStrides returns the strides actually used to address the array:
// any axis whose declared stride is zero is replaced by the tightly-packed
// stride for that axis (spec §3).
func (d *DataArray) EffectiveStrides() Vec3i {
	tight := d.tightStrides()
	eff := d.Strides
	if eff.X == 0 {
		eff.X = tight.X
	}
	if eff.Y == 0 {
		eff.Y = tight.Y
	}
	if eff.Z == 0 {
		eff.Z = tight.Z
	}
	return eff
}

// Compact reports whether the array's effective strides equal the
// tightly-packed strides — a derived predicate, never stored state (spec §3).
func (d *DataArray) Compact() bool {
	return d.EffectiveStrides() == d.tightStrides()
}

// ByteLength returns the total number of bytes the array's extents and
// effective strides imply are addressable.
func (d *DataArray) ByteLength() int64 {
	eff := d.EffectiveStrides()
	nx, ny, nz := int64(d.Extents.X), int64(d.Extents.Y), int64(d.Extents.Z)
	if nx == 0 || ny == 0 || nz == 0 {
		return 0
	}
	// Last element's offset on each axis, plus one element.
	last := (nx-1)*int64(eff.X) + (ny-1)*int64(eff.Y) + (nz-1)*int64(eff.Z)
	return last + int64(ElementSize(d.ElementType))
}
