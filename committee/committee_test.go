package committee

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PsycheFoundation/psyche-coordinator-go/cryptoprim"
)

func testSeed(b byte) cryptoprim.Hash {
	var h cryptoprim.Hash
	for i := range h {
		h[i] = b
	}
	return h
}

func TestPartitionCoversEveryClientExactlyOnce(t *testing.T) {
	seed := testSeed(0x11)
	const n = 20
	const verificationPercent = 25

	roles := Partition(n, seed, verificationPercent)
	require.Len(t, roles, n)

	counts := map[Role]int{}
	for _, r := range roles {
		counts[r]++
	}

	require.Equal(t, n, counts[Trainer]+counts[Verifier]+counts[TieBreaker])
}

func TestPartitionIsDeterministic(t *testing.T) {
	seed := testSeed(0x22)
	const n = 15

	first := Partition(n, seed, 30)
	second := Partition(n, seed, 30)
	require.Equal(t, first, second)
}

func TestTieBreakerCountZeroWhenAllVerifiers(t *testing.T) {
	require.Equal(t, uint64(0), TieBreakerCount(5, 5))
	require.Equal(t, uint64(1), TieBreakerCount(5, 3))
}

func TestWitnessElectionRespectsWitnessNodes(t *testing.T) {
	seed := testSeed(0x33)
	const n = 10
	const witnessNodes = 3

	elected := 0
	for i := uint64(0); i < n; i++ {
		if _, ok := IsWitness(i, n, seed, witnessNodes); ok {
			elected++
		}
	}
	require.Equal(t, witnessNodes, elected)
}

func TestCheckpointerCountBounds(t *testing.T) {
	require.Equal(t, uint64(1), CheckpointerCount(1))
	require.Equal(t, uint64(1), CheckpointerCount(2))
	require.Equal(t, uint64(1), CheckpointerCount(5))
	require.Equal(t, uint64(2), CheckpointerCount(6))
}

func TestIsCheckpointerDeterministicAndBounded(t *testing.T) {
	seed := testSeed(0x44)
	const n = 9

	elected := 0
	for i := uint64(0); i < n; i++ {
		if IsCheckpointer(i, n, seed) {
			elected++
		}
	}
	require.Equal(t, int(CheckpointerCount(n)), elected)
}
