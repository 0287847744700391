package batchassign

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PsycheFoundation/psyche-coordinator-go/cryptoprim"
)

func TestBatchIDsForStepAreConsecutive(t *testing.T) {
	batches := BatchIDsForStep(2, 100, 4)
	require.Equal(t, []BatchID{108, 109, 110, 111}, batches)
}

func TestBatchIDsForStepSizeMatchesBatchSize(t *testing.T) {
	ids := BatchIDsForStep(0, 0, 8)
	require.Len(t, ids, 8)
	require.Equal(t, BatchID(0), ids[0])
	require.Equal(t, BatchID(7), ids[7])
}

func TestTrainerIndexWraps(t *testing.T) {
	require.Equal(t, uint64(0), TrainerIndex(10, 5))
	require.Equal(t, uint64(3), TrainerIndex(13, 5))
}

func TestVerifierSubsetDeterministicAndBounded(t *testing.T) {
	var seed cryptoprim.Hash
	seed[0] = 0x5

	first := VerifierSubset(7, 10, seed, 30)
	second := VerifierSubset(7, 10, seed, 30)
	require.Equal(t, first, second)

	for _, idx := range first {
		require.Less(t, idx, uint64(10))
	}
}

func TestVerifierSubsetDiffersPerBatch(t *testing.T) {
	var seed cryptoprim.Hash
	seed[0] = 0x6

	a := VerifierSubset(1, 10, seed, 30)
	b := VerifierSubset(2, 10, seed, 30)
	require.NotEqual(t, a, b)
}
