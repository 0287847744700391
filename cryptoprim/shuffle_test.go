package cryptoprim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeShuffledIndexIsDeterministic(t *testing.T) {
	var seed Hash
	for i := range seed {
		seed[i] = 0x01
	}

	const n = 7
	first := make([]uint64, n)
	for i := uint64(0); i < n; i++ {
		first[i] = ComputeShuffledIndex(i, n, seed)
	}

	for rep := 0; rep < 3; rep++ {
		for i := uint64(0); i < n; i++ {
			require.Equal(t, first[i], ComputeShuffledIndex(i, n, seed))
		}
	}
}

func TestComputeShuffledIndexIsBijection(t *testing.T) {
	var seed Hash
	for i := range seed {
		seed[i] = 0x42
	}

	const n = 37
	seen := make(map[uint64]bool, n)
	for i := uint64(0); i < n; i++ {
		out := ComputeShuffledIndex(i, n, seed)
		require.Less(t, out, uint64(n))
		require.False(t, seen[out], "index %d collided with a prior output", i)
		seen[out] = true
	}
	require.Len(t, seen, n)
}

func TestComputeShuffledIndexDifferentSeedsDiffer(t *testing.T) {
	var seedA, seedB Hash
	seedB[0] = 0xff

	const n = 20
	same := 0
	for i := uint64(0); i < n; i++ {
		if ComputeShuffledIndex(i, n, seedA) == ComputeShuffledIndex(i, n, seedB) {
			same++
		}
	}
	require.Less(t, same, n)
}

func TestComputeShuffledIndexSmallDomains(t *testing.T) {
	var seed Hash
	require.Equal(t, uint64(0), ComputeShuffledIndex(0, 0, seed))
	require.Equal(t, uint64(0), ComputeShuffledIndex(0, 1, seed))
}
