package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSettleEpochDividesEvenly(t *testing.T) {
	rates := Rates{EarningRateTotalShared: 100}
	per, err := SettleEpoch(rates, 4)
	require.NoError(t, err)
	require.Equal(t, uint64(25), per)
}

func TestSettleEpochFloorsRemainder(t *testing.T) {
	rates := Rates{EarningRateTotalShared: 10}
	per, err := SettleEpoch(rates, 3)
	require.NoError(t, err)
	require.Equal(t, uint64(3), per)
}

func TestSettleEpochRejectsZeroHealthy(t *testing.T) {
	_, err := SettleEpoch(Rates{EarningRateTotalShared: 10}, 0)
	require.ErrorIs(t, err, ErrNoHealthyClients)
}

func TestTreasuryClaimBoundedByTopUps(t *testing.T) {
	tr := NewTreasury()
	require.NoError(t, tr.TopUp(100))

	var p [32]byte
	p[0] = 1

	require.NoError(t, tr.Claim(p, 200, 60))
	require.Equal(t, uint64(60), tr.ClaimedBy(p))

	err := tr.Claim(p, 200, 60)
	require.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestTreasuryClaimBoundedByEarned(t *testing.T) {
	tr := NewTreasury()
	require.NoError(t, tr.TopUp(1000))

	var p [32]byte
	p[0] = 2

	err := tr.Claim(p, 50, 60)
	require.ErrorIs(t, err, ErrClaimExceedsEarned)
}

func TestCheckpointGateFirstWins(t *testing.T) {
	g := NewCheckpointGate(1)

	require.NoError(t, g.Submit("hub/x", "rev1"))
	err := g.Submit("hub/y", "rev2")
	require.ErrorIs(t, err, ErrAlreadyCheckpointed)

	repoID, revision, ok := g.Accepted()
	require.True(t, ok)
	require.Equal(t, "hub/x", repoID)
	require.Equal(t, "rev1", revision)
}
