package wire

import (
	"encoding/binary"
	"io"

	"github.com/offlayer/dispatch/types"
)

// Encoder serializes values in the command codec's deterministic
// little-endian format onto an underlying io.Writer. Every Put method
// returns the first write error encountered; once one occurs, the encoder
// should be discarded rather than reused.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

func (e *Encoder) PutBool(v bool) error {
	var b byte
	if v {
		b = 1
	}
	_, err := e.w.Write([]byte{b})
	return err
}

func (e *Encoder) PutUint8(v uint8) error {
	_, err := e.w.Write([]byte{v})
	return err
}

func (e *Encoder) PutUint16(v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	_, err := e.w.Write(buf[:])
	return err
}

func (e *Encoder) PutUint32(v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := e.w.Write(buf[:])
	return err
}

func (e *Encoder) PutUint64(v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := e.w.Write(buf[:])
	return err
}

func (e *Encoder) PutInt8(v int8) error   { return e.PutUint8(uint8(v)) }
func (e *Encoder) PutInt16(v int16) error { return e.PutUint16(uint16(v)) }
func (e *Encoder) PutInt32(v int32) error { return e.PutUint32(uint32(v)) }
func (e *Encoder) PutInt64(v int64) error { return e.PutUint64(uint64(v)) }

func (e *Encoder) PutFloat32(v float32) error {
	return e.PutUint32(math32bits(v))
}

func (e *Encoder) PutFloat64(v float64) error {
	return e.PutUint64(math64bits(v))
}

// PutString writes a u32 byte length followed by the UTF-8 bytes of s.
func (e *Encoder) PutString(s string) error {
	if err := e.PutUint32(uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(e.w, s)
	return err
}

// PutBytes writes a u64 byte length followed by raw bytes, used for data
// array payloads and any other variable-length blob.
func (e *Encoder) PutBytes(b []byte) error {
	if err := e.PutUint64(uint64(len(b))); err != nil {
		return err
	}
	_, err := e.w.Write(b)
	return err
}

func (e *Encoder) PutVec2(v types.Vec2) error {
	if err := e.PutFloat32(v.X); err != nil {
		return err
	}
	return e.PutFloat32(v.Y)
}

func (e *Encoder) PutVec3(v types.Vec3) error {
	if err := e.PutFloat32(v.X); err != nil {
		return err
	}
	if err := e.PutFloat32(v.Y); err != nil {
		return err
	}
	return e.PutFloat32(v.Z)
}

func (e *Encoder) PutVec4(v types.Vec4) error {
	if err := e.PutFloat32(v.X); err != nil {
		return err
	}
	if err := e.PutFloat32(v.Y); err != nil {
		return err
	}
	if err := e.PutFloat32(v.Z); err != nil {
		return err
	}
	return e.PutFloat32(v.W)
}

func (e *Encoder) PutVec3i(v types.Vec3i) error {
	if err := e.PutInt32(v.X); err != nil {
		return err
	}
	if err := e.PutInt32(v.Y); err != nil {
		return err
	}
	return e.PutInt32(v.Z)
}

func (e *Encoder) PutBox3(b types.Box3) error {
	if err := e.PutVec3(b.Lower); err != nil {
		return err
	}
	return e.PutVec3(b.Upper)
}

func (e *Encoder) PutLinear3(l types.Linear3) error {
	if err := e.PutVec3(l.VX); err != nil {
		return err
	}
	if err := e.PutVec3(l.VY); err != nil {
		return err
	}
	return e.PutVec3(l.VZ)
}

func (e *Encoder) PutAffine3(a types.AffineSpace3) error {
	if err := e.PutLinear3(a.L); err != nil {
		return err
	}
	return e.PutVec3(a.P)
}

func (e *Encoder) PutHandle(h types.Handle) error {
	return e.PutUint64(uint64(h))
}

// PutDataArrayHeader writes a data array's metadata (element type, extents,
// strides) without its bytes. Used by the batch layer when the array's
// payload travels over the sidechannel instead of inline (spec §4.4).
func (e *Encoder) PutDataArrayHeader(d *types.DataArray) error {
	if err := e.PutUint16(uint16(d.ElementType)); err != nil {
		return err
	}
	if err := e.PutVec3i(d.Extents); err != nil {
		return err
	}
	return e.PutVec3i(d.Strides)
}

// PutDataArray writes a data array's metadata followed by its raw bytes
// inline. Used directly when the payload is small enough for the batch
// layer's inline threshold.
func (e *Encoder) PutDataArray(d *types.DataArray) error {
	if err := e.PutDataArrayHeader(d); err != nil {
		return err
	}
	return e.PutBytes(d.Bytes)
}
