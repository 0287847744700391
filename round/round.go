// Package round implements the ring buffer of in-flight rounds (C6): the
// last config.NumStoredRounds rounds are retained so a witness submission
// that arrives one round late can still be reconciled against the round it
// names.
package round

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/PsycheFoundation/psyche-coordinator-go/config"
	"github.com/PsycheFoundation/psyche-coordinator-go/container"
	"github.com/PsycheFoundation/psyche-coordinator-go/cryptoprim"
)

// WitnessProof proves the submitter was elected witness for the round and
// records whether they assert inclusion.
type WitnessProof struct {
	Position uint64
	Index    uint64
	Witness  container.SmallBoolean
}

// Witness is one client's attestation for a round: which clients and
// broadcasts it observed, the per-batch commitments it verified, and its
// view of the broadcast merkle root over those commitments' data hashes.
type Witness struct {
	Proof            WitnessProof
	ParticipantBloom *cryptoprim.Bloom
	BroadcastBloom   *cryptoprim.Bloom
	Commitments      []cryptoprim.Commitment
	BroadcastMerkle  cryptoprim.Hash
}

// Round is one element of the ring buffer: the state belonging to a single
// training step within an epoch.
type Round struct {
	Height             uint32
	RandomSeed         cryptoprim.Hash
	ClientsLenAtStart  uint64
	BatchesLenAtStart  uint64
	TieBreakerTasks    []uint64
	Witnesses          *container.FixedVec[Witness]

	// HealthyClients is derived once the round closes: bit i set means
	// committee index i was reconciled as healthy.
	HealthyClients *bitset.BitSet
}

// NewRound allocates a round at the given height, to be pushed into a Ring.
func NewRound(height uint32, seed cryptoprim.Hash, clientsLenAtStart, batchesLenAtStart uint64) *Round {
	return &Round{
		Height:            height,
		RandomSeed:        seed,
		ClientsLenAtStart: clientsLenAtStart,
		BatchesLenAtStart: batchesLenAtStart,
		Witnesses:         container.NewFixedVec[Witness](config.SolanaMaxNumWitnesses),
	}
}

// HasWitnessFrom reports whether a witness with the given committee index
// has already been recorded for this round (dedup key for P-style
// DuplicateWitness rejection).
func (r *Round) HasWitnessFrom(index uint64) bool {
	for _, w := range r.Witnesses.Iter() {
		if w.Proof.Index == index {
			return true
		}
	}
	return false
}

// Ring is the fixed-depth buffer of recent rounds, most-recently-pushed
// last.
type Ring struct {
	rounds *container.FixedVec[*Round]
}

// NewRing returns an empty round ring buffer.
func NewRing() *Ring {
	return &Ring{rounds: container.NewFixedVec[*Round](config.NumStoredRounds)}
}

// Push appends r, evicting the oldest retained round if the ring is full.
func (ring *Ring) Push(r *Round) {
	ring.rounds.PushOverwrite(r)
}

// Head returns the most recently pushed round.
func (ring *Ring) Head() (*Round, bool) {
	return ring.rounds.Last()
}

// ByHeight finds a retained round by its height, for reconciling a witness
// submission that names an older round still within the ring's depth.
func (ring *Ring) ByHeight(height uint32) (*Round, bool) {
	for _, r := range ring.rounds.Iter() {
		if r.Height == height {
			return r, true
		}
	}
	return nil, false
}

// Len returns the number of rounds currently retained.
func (ring *Ring) Len() int {
	return ring.rounds.Len()
}

// MarshalJSON delegates to the underlying FixedVec, preserving both the
// retained rounds and the ring's depth.
func (ring *Ring) MarshalJSON() ([]byte, error) {
	return ring.rounds.MarshalJSON()
}

func (ring *Ring) UnmarshalJSON(data []byte) error {
	fv := container.NewFixedVec[*Round](0)
	if err := fv.UnmarshalJSON(data); err != nil {
		return err
	}
	ring.rounds = fv
	return nil
}
