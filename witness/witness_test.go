package witness

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PsycheFoundation/psyche-coordinator-go/cryptoprim"
	"github.com/PsycheFoundation/psyche-coordinator-go/roster"
	"github.com/PsycheFoundation/psyche-coordinator-go/round"
)

func testClientID(b byte) roster.ClientID {
	var id roster.ClientID
	id[0] = b
	return id
}

func TestValidateWitnessRejectsOutOfRangePosition(t *testing.T) {
	r := round.NewRound(1, cryptoprim.Hash{}, 2, 4)
	epoch := roster.NewEpochRoster([]roster.ClientID{testClientID(1), testClientID(2)})

	proof := round.WitnessProof{Position: 5, Index: 0}
	err := ValidateWitness(r, epoch, proof, 2)
	require.ErrorIs(t, err, ErrInvalidWitness)
}

func TestValidateWitnessRejectsUnknownIndex(t *testing.T) {
	r := round.NewRound(1, cryptoprim.Hash{}, 2, 4)
	epoch := roster.NewEpochRoster([]roster.ClientID{testClientID(1)})

	proof := round.WitnessProof{Position: 0, Index: 5}
	err := ValidateWitness(r, epoch, proof, 2)
	require.ErrorIs(t, err, ErrInvalidWitness)
}

func TestRecordRejectsDuplicate(t *testing.T) {
	r := round.NewRound(1, cryptoprim.Hash{}, 2, 4)
	epoch := roster.NewEpochRoster([]roster.ClientID{testClientID(1), testClientID(2)})

	w := round.Witness{Proof: round.WitnessProof{Position: 0, Index: 0}}
	require.NoError(t, Record(r, epoch, w, 2))

	err := Record(r, epoch, w, 2)
	require.ErrorIs(t, err, ErrDuplicateWitness)
}

func TestReconcileMajorityMerkleBreaksTiesInSubmissionOrder(t *testing.T) {
	r := round.NewRound(1, cryptoprim.Hash{}, 2, 4)
	epoch := roster.NewEpochRoster([]roster.ClientID{testClientID(1), testClientID(2)})

	rootA := cryptoprim.SHA256([]byte("a"))
	rootB := cryptoprim.SHA256([]byte("b"))

	require.NoError(t, Record(r, epoch, round.Witness{
		Proof:           round.WitnessProof{Position: 0, Index: 0},
		BroadcastMerkle: rootA,
	}, 2))
	require.NoError(t, Record(r, epoch, round.Witness{
		Proof:           round.WitnessProof{Position: 1, Index: 1},
		BroadcastMerkle: rootB,
	}, 2))

	rec := Reconcile(r, epoch)
	require.Equal(t, rootA, rec.MajorityMerkle)
}

func TestReconcileMarksDroppedAfterSecondAbsence(t *testing.T) {
	a := testClientID(1)
	b := testClientID(2)

	epoch := roster.NewEpochRoster([]roster.ClientID{a, b})

	bloomWithA := cryptoprim.NewBloom(2)
	bloomWithA.Insert(cryptoprim.SHA256(a[:]))

	for round_num := 0; round_num < 2; round_num++ {
		r := round.NewRound(uint32(round_num), cryptoprim.Hash{}, 2, 4)
		require.NoError(t, Record(r, epoch, round.Witness{
			Proof:            round.WitnessProof{Position: 0, Index: 0},
			ParticipantBloom: bloomWithA,
			BroadcastBloom:   cryptoprim.NewBloom(2),
		}, 1))
		Reconcile(r, epoch)
	}

	c, ok := epoch.At(1)
	require.True(t, ok)
	require.Equal(t, roster.Dropped, c.State)

	ca, ok := epoch.At(0)
	require.True(t, ok)
	require.Equal(t, roster.Healthy, ca.State)
}

func TestAccusationTallyMajorityEjects(t *testing.T) {
	a := testClientID(1)
	b := testClientID(2)
	c := testClientID(3)
	accused := testClientID(4)

	epoch := roster.NewEpochRoster([]roster.ClientID{a, b, c, accused})
	tally := NewAccusationTally()

	tally.Record(epoch, HealthCheck{From: a, Against: []roster.ClientID{accused}})
	tally.Record(epoch, HealthCheck{From: b, Against: []roster.ClientID{accused}})
	tally.Record(epoch, HealthCheck{From: c, Against: []roster.ClientID{accused}})

	idx, ok := epoch.IndexOf(accused)
	require.True(t, ok)

	require.Equal(t, []int{idx}, tally.Majority(epoch))
}

func TestAccusationTallyIgnoresUnknownAccuser(t *testing.T) {
	a := testClientID(1)
	accused := testClientID(2)
	stranger := testClientID(99)

	epoch := roster.NewEpochRoster([]roster.ClientID{a, accused})
	tally := NewAccusationTally()

	tally.Record(epoch, HealthCheck{From: stranger, Against: []roster.ClientID{accused}})
	require.Empty(t, tally.Majority(epoch))
}

