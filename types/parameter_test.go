package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataArray_EffectiveStrides_TightlyPacked(t *testing.T) {
	d := &DataArray{ElementType: DataTypeFloat32, Extents: Vec3i{4, 3, 1}}
	require.True(t, d.Compact())
	eff := d.EffectiveStrides()
	require.Equal(t, Vec3i{4, 16, 48}, eff)
	require.Equal(t, int64(48), d.ByteLength())
}

func TestDataArray_EffectiveStrides_CustomStride(t *testing.T) {
	d := &DataArray{
		ElementType: DataTypeFloat32,
		Extents:     Vec3i{4, 1, 1},
		Strides:     Vec3i{X: 8}, // padded, not tightly packed
	}
	require.False(t, d.Compact())
	require.Equal(t, int64(32), d.ByteLength())
}

func TestParameter_ReferencesHandle(t *testing.T) {
	p := HandleParam(DataTypeCameraHandle, NewHandle(1, 0))
	require.True(t, p.ReferencesHandle())

	f := Float32Param(1.5)
	require.False(t, f.ReferencesHandle())
}

func TestParameter_Constructors(t *testing.T) {
	require.Equal(t, DataTypeBool, BoolParam(true).Type)
	require.Equal(t, DataTypeVec3f, Vec3fParam(Vec3{1, 2, 3}).Type)
	require.Equal(t, "hi", StringParam("hi").Str)
}
