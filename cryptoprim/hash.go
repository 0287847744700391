// Package cryptoprim implements the commitment, shuffle, bloom-filter, and
// Merkle-tree primitives of §4.7: the only cryptography the coordinator
// core performs is plain SHA-256 over byte strings, so this package is built
// on the standard library rather than an ecosystem hashing library (see
// DESIGN.md for why that's the correct call here, not a missed dependency).
package cryptoprim

import (
	"crypto/sha256"

	"github.com/luxfi/ids"
)

// Hash is a 32-byte content hash: a BatchId, a data_hash, a round's
// random_seed in byte form, or a broadcast_merkle root. It is exactly
// ids.ID, the fixed-width identifier type the rest of the luxfi stack uses,
// so coordinator hashes interoperate with validators/database/p2p code that
// already speaks ids.ID.
type Hash = ids.ID

// SHA256 returns the SHA-256 digest of data.
func SHA256(data []byte) Hash {
	return sha256.Sum256(data)
}

// SHA256V returns the SHA-256 digest of the concatenation of parts, without
// allocating an intermediate concatenated buffer for large inputs.
func SHA256V(parts ...[]byte) Hash {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// ComputeSaltedSeed derives a salt-bound seed: sha256(sha256(seed) || salt).
// Double-hashing the seed before mixing in the salt keeps the committee,
// witness, and checkpointer selections (which share the same round seed but
// different salts) from leaking a fixed-offset relationship to each other.
func ComputeSaltedSeed(seed Hash, salt string) Hash {
	firstHash := SHA256(seed[:])
	return SHA256V(firstHash[:], []byte(salt))
}
