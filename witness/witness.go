// Package witness implements the witness & health-check processor (C8):
// validating and storing witness submissions, and reconciling them when a
// round closes into a majority broadcast root, a unioned liveness view, and
// Dropped/Ejected markings.
package witness

import (
	"errors"

	"github.com/bits-and-blooms/bitset"

	"github.com/PsycheFoundation/psyche-coordinator-go/bag"
	"github.com/PsycheFoundation/psyche-coordinator-go/cryptoprim"
	"github.com/PsycheFoundation/psyche-coordinator-go/roster"
	"github.com/PsycheFoundation/psyche-coordinator-go/round"
)

var (
	ErrDuplicateWitness = errors.New("witness: already recorded for this round")
	ErrInvalidWitness   = errors.New("witness: proof does not match selection")
	ErrWitnessesFull    = errors.New("witness: per-round witness buffer is full")
)

// ValidateWitness checks a submission before it is stored: the submitter
// must be within the elected witness_nodes window, must correspond to a
// currently active client, and must not already have a recorded witness for
// this round.
func ValidateWitness(r *round.Round, epoch *roster.EpochRoster, proof round.WitnessProof, witnessNodes uint32) error {
	if proof.Position >= uint64(witnessNodes) {
		return ErrInvalidWitness
	}
	if _, ok := epoch.At(int(proof.Index)); !ok {
		return ErrInvalidWitness
	}
	if r.HasWitnessFrom(proof.Index) {
		return ErrDuplicateWitness
	}
	return nil
}

// Record validates and appends w to r.Witnesses.
func Record(r *round.Round, epoch *roster.EpochRoster, w round.Witness, witnessNodes uint32) error {
	if err := ValidateWitness(r, epoch, w.Proof, witnessNodes); err != nil {
		return err
	}
	if err := r.Witnesses.Push(w); err != nil {
		return ErrWitnessesFull
	}
	return nil
}

// Reconciliation is the outcome of closing a round: the agreed broadcast
// root, the unioned liveness views, and which committee indices were newly
// marked Dropped this round.
type Reconciliation struct {
	MajorityMerkle   cryptoprim.Hash
	ParticipantBloom *cryptoprim.Bloom
	BroadcastBloom   *cryptoprim.Bloom
	NewlyDropped     []int
}

// Reconcile closes r against epoch: it takes the majority broadcast_merkle
// root, unions every submitted bloom, and marks any client absent from the
// unioned participant bloom for a second consecutive round as Dropped.
//
// Ties in the majority vote are broken deterministically by scanning
// witnesses in their stored submission order and taking the first root that
// reaches the maximum tally, rather than relying on map iteration order
// (which Go does not guarantee is stable run to run).
func Reconcile(r *round.Round, epoch *roster.EpochRoster) Reconciliation {
	witnesses := r.Witnesses.Iter()

	rec := Reconciliation{}

	rec.MajorityMerkle = majorityRoot(witnesses)

	if len(witnesses) > 0 {
		rec.ParticipantBloom = witnesses[0].ParticipantBloom
		rec.BroadcastBloom = witnesses[0].BroadcastBloom
		for _, w := range witnesses[1:] {
			if w.ParticipantBloom != nil {
				rec.ParticipantBloom.Union(w.ParticipantBloom)
			}
			if w.BroadcastBloom != nil {
				rec.BroadcastBloom.Union(w.BroadcastBloom)
			}
		}
	}

	healthy := bitset.New(uint(epoch.Len()))
	for i, c := range epoch.List() {
		if c.State != roster.Healthy {
			continue
		}

		present := rec.ParticipantBloom == nil || rec.ParticipantBloom.MayContain(clientHash(c.ID))
		consecutive, _ := epoch.RecordAbsence(i, present)

		if present {
			healthy.Set(uint(i))
			continue
		}

		if consecutive >= 2 {
			epoch.SetState(i, roster.Dropped)
			rec.NewlyDropped = append(rec.NewlyDropped, i)
		}
	}
	r.HealthyClients = healthy

	return rec
}

// majorityRoot tallies each witness's asserted root via bag.Bag but
// resolves ties by scanning witnesses in their stored (replicated) order
// and returning the first root whose tally equals the computed maximum,
// keeping the result a pure function of replicated state instead of Go's
// non-deterministic map iteration order.
func majorityRoot(witnesses []round.Witness) cryptoprim.Hash {
	if len(witnesses) == 0 {
		return cryptoprim.Hash{}
	}

	tally := bag.New[cryptoprim.Hash]()
	for _, w := range witnesses {
		tally.Add(w.BroadcastMerkle)
	}

	_, maxCount := tally.Mode()

	for _, w := range witnesses {
		if tally.Count(w.BroadcastMerkle) == maxCount {
			return w.BroadcastMerkle
		}
	}
	return witnesses[0].BroadcastMerkle
}

// clientHash derives the bloom-membership key for a client ID.
func clientHash(id roster.ClientID) cryptoprim.Hash {
	return cryptoprim.SHA256(id[:])
}
