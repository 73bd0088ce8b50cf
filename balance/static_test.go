package balance

import (
	"testing"

	"github.com/offlayer/dispatch/types"
	"github.com/stretchr/testify/require"
)

func TestStatic_TilesFor_PartitionsExhaustively(t *testing.T) {
	s := Static{NumWorkers: 3}
	total := 10
	seen := make(map[types.TileID]int)
	for rank := 0; rank < s.NumWorkers; rank++ {
		for _, tile := range s.TilesFor(rank, total) {
			seen[tile] = rank
		}
	}
	require.Len(t, seen, total)
	for id, rank := range seen {
		require.Equal(t, int(id)%s.NumWorkers, rank)
	}
}

func TestStatic_OwnerOf_MatchesModulo(t *testing.T) {
	s := Static{NumWorkers: 4}
	for id := types.TileID(0); id < 16; id++ {
		require.Equal(t, int(id)%4, s.OwnerOf(id))
	}
}

func TestStatic_OwnerOf_ZeroWorkersIsSafe(t *testing.T) {
	s := Static{NumWorkers: 0}
	require.Equal(t, 0, s.OwnerOf(5))
}
