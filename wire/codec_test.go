package wire

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/offlayer/dispatch/types"
)

func TestScalarRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	e := NewEncoder(&buf)
	require.NoError(t, e.PutBool(true))
	require.NoError(t, e.PutInt32(-42))
	require.NoError(t, e.PutUint64(1<<40))
	require.NoError(t, e.PutFloat32(3.25))
	require.NoError(t, e.PutFloat64(2.5))
	require.NoError(t, e.PutString("hello world"))

	d := NewDecoder(&buf)
	b, err := d.GetBool()
	require.NoError(t, err)
	require.True(t, b)

	i, err := d.GetInt32()
	require.NoError(t, err)
	require.Equal(t, int32(-42), i)

	u, err := d.GetUint64()
	require.NoError(t, err)
	require.Equal(t, uint64(1<<40), u)

	f32, err := d.GetFloat32()
	require.NoError(t, err)
	require.Equal(t, float32(3.25), f32)

	f64, err := d.GetFloat64()
	require.NoError(t, err)
	require.Equal(t, 2.5, f64)

	s, err := d.GetString()
	require.NoError(t, err)
	require.Equal(t, "hello world", s)
}

func TestVectorRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	e := NewEncoder(&buf)
	v3 := types.Vec3{X: 1, Y: 2, Z: 3}
	box := types.Box3{Lower: types.Vec3{X: -1, Y: -1, Z: -1}, Upper: v3}
	affine := types.Identity()

	require.NoError(t, e.PutVec3(v3))
	require.NoError(t, e.PutBox3(box))
	require.NoError(t, e.PutAffine3(affine))

	d := NewDecoder(&buf)
	gotV3, err := d.GetVec3()
	require.NoError(t, err)
	require.Equal(t, v3, gotV3)

	gotBox, err := d.GetBox3()
	require.NoError(t, err)
	require.Equal(t, box, gotBox)

	gotAffine, err := d.GetAffine3()
	require.NoError(t, err)
	require.Equal(t, affine, gotAffine)
}

func TestDataArrayRoundTrip(t *testing.T) {
	src := &types.DataArray{
		ElementType: types.DataTypeFloat32,
		Extents:     types.Vec3i{X: 4, Y: 2, Z: 1},
		Bytes:       bytes.Repeat([]byte{0xAB}, 32),
	}
	var buf bytes.Buffer
	require.NoError(t, NewEncoder(&buf).PutDataArray(src))

	got, err := NewDecoder(&buf).GetDataArray()
	require.NoError(t, err)
	require.Equal(t, src.ElementType, got.ElementType)
	require.Equal(t, src.Extents, got.Extents)
	require.Equal(t, src.Bytes, got.Bytes)
}

// TestParameterRoundTrip is property #1 from the spec: for every recognized
// tag and arbitrary valid payload, decode(encode(x)) == x.
func TestParameterRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cases := []types.Parameter{
		types.BoolParam(true),
		types.Int32Param(rng.Int31()),
		types.Uint32Param(uint32(rng.Int63())),
		types.Float32Param(rng.Float32()),
		types.Vec3fParam(types.Vec3{X: rng.Float32(), Y: rng.Float32(), Z: rng.Float32()}),
		types.StringParam("a parameter value"),
		types.HandleParam(types.DataTypeWorldHandle, types.NewHandle(9, 1)),
		types.DataParam(&types.DataArray{
			ElementType: types.DataTypeUint8,
			Extents:     types.Vec3i{X: 3, Y: 1, Z: 1},
			Bytes:       []byte{1, 2, 3},
		}),
	}

	for _, p := range cases {
		var buf bytes.Buffer
		require.NoError(t, NewEncoder(&buf).PutParameter(p))
		got, err := NewDecoder(&buf).GetParameter()
		require.NoError(t, err)
		require.Equal(t, p, got)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecord(&buf, TagCommit, []byte{1, 2, 3, 4}))

	rec, err := ReadRecord(&buf)
	require.NoError(t, err)
	require.Equal(t, TagCommit, rec.Tag)
	require.Equal(t, []byte{1, 2, 3, 4}, rec.Payload)
}

func TestReadRecord_UnknownTagIsProtocolError(t *testing.T) {
	var buf bytes.Buffer
	e := NewEncoder(&buf)
	require.NoError(t, e.PutUint16(uint16(TagProtocolErrorSentinel)))

	_, err := ReadRecord(&buf)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestGetString_TooLargeRejected(t *testing.T) {
	var buf bytes.Buffer
	e := NewEncoder(&buf)
	require.NoError(t, e.PutUint32(MaxStringLen+1))

	_, err := NewDecoder(&buf).GetString()
	require.Error(t, err)
	require.ErrorIs(t, err, ErrCorrupt)
}
