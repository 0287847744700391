// Package batchassign implements deterministic data batch assignment (C5):
// mapping a round's step to an ordered sequence of batch IDs, and each batch
// ID to the trainer responsible for producing it and the verifiers that
// cross-check it.
package batchassign

import (
	"github.com/PsycheFoundation/psyche-coordinator-go/committee"
	"github.com/PsycheFoundation/psyche-coordinator-go/cryptoprim"
)

// BatchID identifies one unit of training data within a run's overall data
// stream.
type BatchID uint64

// DataIndexForStep returns the starting data index for step s, given the
// data stream's starting offset and the configured batch size: a pure
// function of the model's initial data state so every observer assigns the
// same batches for the same step.
func DataIndexForStep(s uint64, startOffset uint64, globalBatchSize uint32) uint64 {
	return startOffset + s*uint64(globalBatchSize)
}

// BatchIDsForStep returns the ordered batch IDs for step s: B = global batch
// size consecutive IDs starting at DataIndexForStep(s).
func BatchIDsForStep(s uint64, startOffset uint64, globalBatchSize uint32) []BatchID {
	start := DataIndexForStep(s, startOffset, globalBatchSize)
	out := make([]BatchID, globalBatchSize)
	for i := uint32(0); i < globalBatchSize; i++ {
		out[i] = BatchID(start + uint64(i))
	}
	return out
}

// TrainerIndex returns the client index responsible for producing
// batchIDPosition, among numTrainers: batch_id_position mod num_trainers.
// The caller maps this index through the committee Trainer partition (the
// Trainer-role client at that index, in shuffled order) to find the actual
// client.
func TrainerIndex(batchIDPosition uint64, numTrainers uint64) uint64 {
	if numTrainers == 0 {
		return 0
	}
	return batchIDPosition % numTrainers
}

// VerifierSubset returns, for a batch at batchIDPosition, the indices (into
// the Verifier-role partition, size numVerifiers) of the verifiers assigned
// to cross-check it: a second-level shuffle over the verifier committee
// seeded by the batch position so the subset differs per batch.
func VerifierSubset(batchIDPosition uint64, numVerifiers uint64, seed cryptoprim.Hash, verificationPercent uint8) []uint64 {
	if numVerifiers == 0 {
		return nil
	}

	count := committee.VerifierCount(numVerifiers, verificationPercent)
	if count == 0 {
		if verificationPercent > 0 {
			count = 1
		} else {
			return nil
		}
	}

	salted := cryptoprim.ComputeSaltedSeed(seed, verifierSubsetSalt(batchIDPosition))

	out := make([]uint64, 0, count)
	seen := make(map[uint64]bool, count)
	for i := uint64(0); len(out) < int(count) && i < numVerifiers; i++ {
		idx := cryptoprim.ComputeShuffledIndex(i, numVerifiers, salted)
		if !seen[idx] {
			seen[idx] = true
			out = append(out, idx)
		}
	}
	return out
}

// verifierSubsetSalt derives a per-batch salt string so each batch's
// verifier subset is an independent shuffle of the verifier committee.
func verifierSubsetSalt(batchIDPosition uint64) string {
	const base = "verifier-subset:"
	buf := make([]byte, 0, len(base)+20)
	buf = append(buf, base...)
	buf = appendUint64(buf, batchIDPosition)
	return string(buf)
}

func appendUint64(buf []byte, v uint64) []byte {
	if v == 0 {
		return append(buf, '0')
	}
	var digits [20]byte
	i := len(digits)
	for v > 0 {
		i--
		digits[i] = byte('0' + v%10)
		v /= 10
	}
	return append(buf, digits[i:]...)
}
