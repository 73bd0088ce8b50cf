package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/offlayer/dispatch/types"
)

// MaxStringLen and MaxContainerLen bound the length prefixes the decoder
// will honor, protecting it against a corrupt stream driving an enormous
// allocation.
const (
	MaxStringLen    = 1 << 24  // 16 MiB
	MaxContainerLen = 1 << 34  // 16 GiB, covers the largest legal data array
)

// Decoder deserializes values written by an Encoder from an underlying
// io.Reader.
type Decoder struct {
	r io.Reader
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

func (d *Decoder) GetBool() (bool, error) {
	v, err := d.GetUint8()
	return v != 0, err
}

func (d *Decoder) GetUint8() (uint8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (d *Decoder) GetUint16() (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func (d *Decoder) GetUint32() (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func (d *Decoder) GetUint64() (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func (d *Decoder) GetInt8() (int8, error) {
	v, err := d.GetUint8()
	return int8(v), err
}

func (d *Decoder) GetInt16() (int16, error) {
	v, err := d.GetUint16()
	return int16(v), err
}

func (d *Decoder) GetInt32() (int32, error) {
	v, err := d.GetUint32()
	return int32(v), err
}

func (d *Decoder) GetInt64() (int64, error) {
	v, err := d.GetUint64()
	return int64(v), err
}

func (d *Decoder) GetFloat32() (float32, error) {
	v, err := d.GetUint32()
	if err != nil {
		return 0, err
	}
	return float32frombits(v), nil
}

func (d *Decoder) GetFloat64() (float64, error) {
	v, err := d.GetUint64()
	if err != nil {
		return 0, err
	}
	return float64frombits(v), nil
}

func (d *Decoder) GetString() (string, error) {
	n, err := d.GetUint32()
	if err != nil {
		return "", err
	}
	if uint64(n) > MaxStringLen {
		return "", &TooLargeError{Len: uint64(n), Limit: MaxStringLen}
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func (d *Decoder) GetBytes() ([]byte, error) {
	n, err := d.GetUint64()
	if err != nil {
		return nil, err
	}
	if n > MaxContainerLen {
		return nil, &TooLargeError{Len: n, Limit: MaxContainerLen}
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *Decoder) GetVec2() (types.Vec2, error) {
	x, err := d.GetFloat32()
	if err != nil {
		return types.Vec2{}, err
	}
	y, err := d.GetFloat32()
	return types.Vec2{X: x, Y: y}, err
}

func (d *Decoder) GetVec3() (types.Vec3, error) {
	x, err := d.GetFloat32()
	if err != nil {
		return types.Vec3{}, err
	}
	y, err := d.GetFloat32()
	if err != nil {
		return types.Vec3{}, err
	}
	z, err := d.GetFloat32()
	return types.Vec3{X: x, Y: y, Z: z}, err
}

func (d *Decoder) GetVec4() (types.Vec4, error) {
	x, err := d.GetFloat32()
	if err != nil {
		return types.Vec4{}, err
	}
	y, err := d.GetFloat32()
	if err != nil {
		return types.Vec4{}, err
	}
	z, err := d.GetFloat32()
	if err != nil {
		return types.Vec4{}, err
	}
	w, err := d.GetFloat32()
	return types.Vec4{X: x, Y: y, Z: z, W: w}, err
}

func (d *Decoder) GetVec3i() (types.Vec3i, error) {
	x, err := d.GetInt32()
	if err != nil {
		return types.Vec3i{}, err
	}
	y, err := d.GetInt32()
	if err != nil {
		return types.Vec3i{}, err
	}
	z, err := d.GetInt32()
	return types.Vec3i{X: x, Y: y, Z: z}, err
}

func (d *Decoder) GetBox3() (types.Box3, error) {
	lower, err := d.GetVec3()
	if err != nil {
		return types.Box3{}, err
	}
	upper, err := d.GetVec3()
	return types.Box3{Lower: lower, Upper: upper}, err
}

func (d *Decoder) GetLinear3() (types.Linear3, error) {
	vx, err := d.GetVec3()
	if err != nil {
		return types.Linear3{}, err
	}
	vy, err := d.GetVec3()
	if err != nil {
		return types.Linear3{}, err
	}
	vz, err := d.GetVec3()
	return types.Linear3{VX: vx, VY: vy, VZ: vz}, err
}

func (d *Decoder) GetAffine3() (types.AffineSpace3, error) {
	l, err := d.GetLinear3()
	if err != nil {
		return types.AffineSpace3{}, err
	}
	p, err := d.GetVec3()
	return types.AffineSpace3{L: l, P: p}, err
}

func (d *Decoder) GetHandle() (types.Handle, error) {
	v, err := d.GetUint64()
	if err != nil {
		return 0, err
	}
	h := types.Handle(v)
	if h.Reserved() != 0 {
		return 0, fmt.Errorf("%w: %s has non-zero reserved bits", ErrCorrupt, h)
	}
	return h, nil
}

// GetDataArrayHeader reads a data array's metadata written by
// Encoder.PutDataArrayHeader, with Bytes left nil for the caller to fill in
// from a sidechannel delivery.
func (d *Decoder) GetDataArrayHeader() (*types.DataArray, error) {
	elemType, err := d.GetUint16()
	if err != nil {
		return nil, err
	}
	extents, err := d.GetVec3i()
	if err != nil {
		return nil, err
	}
	strides, err := d.GetVec3i()
	if err != nil {
		return nil, err
	}
	return &types.DataArray{
		ElementType: types.DataType(elemType),
		Extents:     extents,
		Strides:     strides,
	}, nil
}

// GetDataArray reads a data array written by Encoder.PutDataArray.
func (d *Decoder) GetDataArray() (*types.DataArray, error) {
	arr, err := d.GetDataArrayHeader()
	if err != nil {
		return nil, err
	}
	raw, err := d.GetBytes()
	if err != nil {
		return nil, err
	}
	arr.Bytes = raw
	return arr, nil
}
