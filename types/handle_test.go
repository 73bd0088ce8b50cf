package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewHandle_RoundTrip(t *testing.T) {
	h := NewHandle(42, 3)
	require.Equal(t, uint32(42), h.Counter())
	require.Equal(t, uint16(3), h.Rank())
	require.Equal(t, uint16(0), h.Reserved())
	require.False(t, h.IsNull())
}

func TestHandle_Null(t *testing.T) {
	var h Handle
	require.True(t, h.IsNull())
	require.Equal(t, "Handle(null)", h.String())
}

func TestNewHandle_DistinctRanksDoNotCollide(t *testing.T) {
	a := NewHandle(1, 0)
	b := NewHandle(1, 1)
	require.NotEqual(t, a, b)
}

func TestHandle_String(t *testing.T) {
	h := NewHandle(7, 2)
	require.Equal(t, "Handle(rank=2, counter=7)", h.String())
}
