package balance

import (
	"testing"

	"github.com/offlayer/dispatch/types"
	"github.com/stretchr/testify/require"
)

func TestDynamic_NextTile_PrefersOwnQueueByPriority(t *testing.T) {
	d := NewDynamic(2)
	d.MaxReplicas = 1 // no replica of tile 2 on rank 1 for rank 0 to steal
	d.Enqueue(1, 0, 0.1)
	d.Enqueue(2, 0, 0.9)

	tile, ok := d.NextTile(0)
	require.True(t, ok)
	require.Equal(t, types.TileID(2), tile)

	tile, ok = d.NextTile(0)
	require.True(t, ok)
	require.Equal(t, types.TileID(1), tile)

	_, ok = d.NextTile(0)
	require.False(t, ok)
}

func TestDynamic_NextTile_StealsFromMostLoadedRank(t *testing.T) {
	d := NewDynamic(3)
	d.Enqueue(1, 1, 0.1)
	d.Enqueue(2, 1, 0.2)
	d.Enqueue(3, 2, 0.1)

	tile, ok := d.NextTile(0)
	require.True(t, ok)
	require.Equal(t, types.TileID(2), tile)
}

func TestDynamic_Enqueue_ReplicatesHighErrorTile(t *testing.T) {
	d := NewDynamic(3)
	d.MaxReplicas = 2
	d.ReplicationErrorFactor = 2.0

	d.Enqueue(1, 0, 0.1)
	d.Enqueue(2, 0, 0.1)
	d.Enqueue(3, 0, 10.0)

	require.Equal(t, 2, d.replicas[3])
	require.Equal(t, 4, d.Pending())
}

func TestDynamic_Reset_ClearsQueuesAndReplicas(t *testing.T) {
	d := NewDynamic(2)
	d.Enqueue(1, 0, 0.5)
	require.Equal(t, 1, d.Pending())
	d.Reset()
	require.Equal(t, 0, d.Pending())
	_, ok := d.NextTile(0)
	require.False(t, ok)
}
