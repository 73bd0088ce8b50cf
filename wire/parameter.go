package wire

import "github.com/offlayer/dispatch/types"

// PutParameter writes a Parameter as a u16 DataType tag followed by the
// type-specific payload (spec §5 "tagged union").
func (e *Encoder) PutParameter(p types.Parameter) error {
	if err := e.PutUint16(uint16(p.Type)); err != nil {
		return err
	}
	switch {
	case p.Type == types.DataTypeBool:
		return e.PutBool(p.Bool)
	case p.Type == types.DataTypeInt8:
		return e.PutInt8(int8(p.Int64))
	case p.Type == types.DataTypeUint8:
		return e.PutUint8(uint8(p.Uint64))
	case p.Type == types.DataTypeInt16:
		return e.PutInt16(int16(p.Int64))
	case p.Type == types.DataTypeUint16:
		return e.PutUint16(uint16(p.Uint64))
	case p.Type == types.DataTypeInt32:
		return e.PutInt32(int32(p.Int64))
	case p.Type == types.DataTypeUint32:
		return e.PutUint32(uint32(p.Uint64))
	case p.Type == types.DataTypeInt64:
		return e.PutInt64(p.Int64)
	case p.Type == types.DataTypeUint64:
		return e.PutUint64(p.Uint64)
	case p.Type == types.DataTypeFloat32:
		return e.PutFloat32(float32(p.Float64))
	case p.Type == types.DataTypeFloat64:
		return e.PutFloat64(p.Float64)
	case p.Type == types.DataTypeVec2f:
		return e.PutVec2(p.Vec2f)
	case p.Type == types.DataTypeVec3f:
		return e.PutVec3(p.Vec3f)
	case p.Type == types.DataTypeVec4f:
		return e.PutVec4(p.Vec4f)
	case p.Type == types.DataTypeVec3i:
		return e.PutVec3i(p.Vec3i)
	case p.Type == types.DataTypeBox3f:
		return e.PutBox3(p.Box3f)
	case p.Type == types.DataTypeAffine3f:
		return e.PutAffine3(p.Affine3f)
	case p.Type == types.DataTypeLinear3f:
		return e.PutLinear3(p.Linear3f)
	case p.Type == types.DataTypeString:
		return e.PutString(p.Str)
	case p.Type == types.DataTypeData:
		return e.PutDataArray(p.Data)
	case p.Type == types.DataTypeHandle, p.Type.IsObjectHandle():
		return e.PutHandle(p.Handle)
	default:
		return &UnknownTypeError{Tag: uint16(p.Type)}
	}
}

// GetParameter reads a Parameter written by PutParameter.
func (d *Decoder) GetParameter() (types.Parameter, error) {
	tag, err := d.GetUint16()
	if err != nil {
		return types.Parameter{}, err
	}
	dt := types.DataType(tag)
	p := types.Parameter{Type: dt}

	switch {
	case dt == types.DataTypeBool:
		p.Bool, err = d.GetBool()
	case dt == types.DataTypeInt8:
		var v int8
		v, err = d.GetInt8()
		p.Int64 = int64(v)
	case dt == types.DataTypeUint8:
		var v uint8
		v, err = d.GetUint8()
		p.Uint64 = uint64(v)
	case dt == types.DataTypeInt16:
		var v int16
		v, err = d.GetInt16()
		p.Int64 = int64(v)
	case dt == types.DataTypeUint16:
		var v uint16
		v, err = d.GetUint16()
		p.Uint64 = uint64(v)
	case dt == types.DataTypeInt32:
		var v int32
		v, err = d.GetInt32()
		p.Int64 = int64(v)
	case dt == types.DataTypeUint32:
		var v uint32
		v, err = d.GetUint32()
		p.Uint64 = uint64(v)
	case dt == types.DataTypeInt64:
		p.Int64, err = d.GetInt64()
	case dt == types.DataTypeUint64:
		p.Uint64, err = d.GetUint64()
	case dt == types.DataTypeFloat32:
		var v float32
		v, err = d.GetFloat32()
		p.Float64 = float64(v)
	case dt == types.DataTypeFloat64:
		p.Float64, err = d.GetFloat64()
	case dt == types.DataTypeVec2f:
		p.Vec2f, err = d.GetVec2()
	case dt == types.DataTypeVec3f:
		p.Vec3f, err = d.GetVec3()
	case dt == types.DataTypeVec4f:
		p.Vec4f, err = d.GetVec4()
	case dt == types.DataTypeVec3i:
		p.Vec3i, err = d.GetVec3i()
	case dt == types.DataTypeBox3f:
		p.Box3f, err = d.GetBox3()
	case dt == types.DataTypeAffine3f:
		p.Affine3f, err = d.GetAffine3()
	case dt == types.DataTypeLinear3f:
		p.Linear3f, err = d.GetLinear3()
	case dt == types.DataTypeString:
		p.Str, err = d.GetString()
	case dt == types.DataTypeData:
		p.Data, err = d.GetDataArray()
	case dt == types.DataTypeHandle, dt.IsObjectHandle():
		p.Handle, err = d.GetHandle()
	default:
		return types.Parameter{}, &UnknownTypeError{Tag: tag}
	}
	if err != nil {
		return types.Parameter{}, err
	}
	return p, nil
}
