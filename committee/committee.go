// Package committee implements deterministic committee, witness, and
// checkpointer selection (C4): every active client's role for a round is a
// pure function of the round's random seed, its index, and the total active
// count, so two observers with identical epoch state always agree.
package committee

import (
	"math"

	"github.com/PsycheFoundation/psyche-coordinator-go/config"
	"github.com/PsycheFoundation/psyche-coordinator-go/cryptoprim"
)

// Salts used to derive independent shuffles from the same round seed. Each
// name matches the role it selects, mirroring the coordinator's original
// committee/witness/cooldown salt strings so replays against older event
// logs still reproduce the same selections.
const (
	saltCommittee = "committee"
	saltWitness   = "witness"
	saltCooldown  = "cooldown"
)

// Role is a client's committee assignment for one round.
type Role uint8

const (
	// TieBreaker is the default/zero role: clients not selected as Trainer
	// or Verifier fall back to TieBreaker duty for that round.
	TieBreaker Role = iota
	Verifier
	Trainer
)

func (r Role) String() string {
	switch r {
	case Trainer:
		return "Trainer"
	case Verifier:
		return "Verifier"
	default:
		return "TieBreaker"
	}
}

// shuffledIndex computes shuffled_index(i, N, seed, salt) as
// compute_shuffled_index(i, N, sha256(sha256(seed)||salt)).
func shuffledIndex(i, n uint64, seed cryptoprim.Hash, salt string) uint64 {
	salted := cryptoprim.ComputeSaltedSeed(seed, salt)
	return cryptoprim.ComputeShuffledIndex(i, n, salted)
}

// VerifierCount returns round(N * verification_percent / 100).
func VerifierCount(n uint64, verificationPercent uint8) uint64 {
	if n == 0 {
		return 0
	}
	count := math.Round(float64(n) * float64(verificationPercent) / 100.0)
	if count < 0 {
		count = 0
	}
	if uint64(count) > n {
		return n
	}
	return uint64(count)
}

// TieBreakerCount returns 1 if any trainers are present (N > verifierCount),
// else 0.
func TieBreakerCount(n, verifierCount uint64) uint64 {
	if n > verifierCount {
		return 1
	}
	return 0
}

// RoleOf returns client i's committee role out of n active clients for a
// round seeded by seed, given the configured verification_percent. The
// partition, in shuffled-index order, is Trainer first, then Verifier, then
// (at most one) TieBreaker.
func RoleOf(i, n uint64, seed cryptoprim.Hash, verificationPercent uint8) Role {
	position := shuffledIndex(i, n, seed, saltCommittee)

	verifierCount := VerifierCount(n, verificationPercent)
	tieBreakerCount := TieBreakerCount(n, verifierCount)
	trainerCount := n - verifierCount - tieBreakerCount

	switch {
	case position < trainerCount:
		return Trainer
	case position < trainerCount+verifierCount:
		return Verifier
	default:
		return TieBreaker
	}
}

// Partition computes every active client's role for a round in one pass,
// indexed by client index i in [0, n).
func Partition(n uint64, seed cryptoprim.Hash, verificationPercent uint8) []Role {
	roles := make([]Role, n)
	for i := uint64(0); i < n; i++ {
		roles[i] = RoleOf(i, n, seed, verificationPercent)
	}
	return roles
}

// IsWitness reports whether client i of n is elected witness for the round:
// the first witnessNodes positions of an independently-salted shuffle.
func IsWitness(i, n uint64, seed cryptoprim.Hash, witnessNodes uint32) (position uint64, elected bool) {
	position = shuffledIndex(i, n, seed, saltWitness)
	return position, position < uint64(witnessNodes)
}

// CheckpointerCount returns max(1, min(SolanaMaxNumCheckpointers, n/3)).
func CheckpointerCount(n uint64) uint64 {
	count := n / 3
	if count > config.SolanaMaxNumCheckpointers {
		count = config.SolanaMaxNumCheckpointers
	}
	if count < 1 {
		count = 1
	}
	return count
}

// IsCheckpointer reports whether client i of n is among the elected
// checkpointer committee for the epoch, using the cooldown salt.
func IsCheckpointer(i, n uint64, seed cryptoprim.Hash) bool {
	position := shuffledIndex(i, n, seed, saltCooldown)
	return position < CheckpointerCount(n)
}
