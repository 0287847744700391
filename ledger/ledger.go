// Package ledger implements the earning/slashing accrual and treasury claim
// accounting (C9). Rates apply to the epoch that just ended; a change via
// SetFutureEpochRates only takes effect starting the next epoch.
package ledger

import (
	"encoding/json"
	"errors"

	"github.com/PsycheFoundation/psyche-coordinator-go/safemath"
)

// Rates are the per-epoch earning and slashing amounts in effect for one
// epoch's settlement.
type Rates struct {
	// EarningRateTotalShared is split evenly among every Healthy client.
	EarningRateTotalShared uint64
	// SlashingRatePerClient is charged to every Ejected/Dropped client.
	SlashingRatePerClient uint64
}

var ErrNoHealthyClients = errors.New("ledger: cannot settle with zero healthy clients")

// SettleEpoch computes the per-client earning for an epoch with
// healthyCount Healthy clients under rates: floor(total_shared /
// healthyCount), so the sum paid out never exceeds EarningRateTotalShared.
func SettleEpoch(rates Rates, healthyCount uint64) (perClientEarning uint64, err error) {
	if healthyCount == 0 {
		return 0, ErrNoHealthyClients
	}
	return rates.EarningRateTotalShared / healthyCount, nil
}

// Treasury tracks aggregate claims against the earned-points ledger: the
// coordinator exposes authoritative earned[client] balances, and the
// treasury is the separate account that converts points into collateral,
// enforcing non-double-claim per participant.
type Treasury struct {
	totalTopUps                 uint64
	totalClaimedCollateralAmount uint64
	totalClaimedEarnedPoints    uint64
	claimed                      map[[32]byte]uint64
}

var (
	ErrInsufficientBalance = errors.New("ledger: claim exceeds available collateral")
	ErrClaimExceedsEarned  = errors.New("ledger: claim exceeds participant's remaining earned points")
)

// NewTreasury returns an empty treasury.
func NewTreasury() *Treasury {
	return &Treasury{claimed: make(map[[32]byte]uint64)}
}

// TopUp records additional collateral the treasury has received.
func (t *Treasury) TopUp(amount uint64) error {
	sum, err := safemath.Add64(t.totalTopUps, amount)
	if err != nil {
		return err
	}
	t.totalTopUps = sum
	return nil
}

// Claim redeems points earned points of collateral for participant, bounded
// by the participant's total earned balance and the treasury's remaining
// balance (P7: sum(claimed_collateral) <= treasury_top_ups).
func (t *Treasury) Claim(participant [32]byte, totalEarned, points uint64) error {
	already := t.claimed[participant]

	newClaimedForParticipant, err := safemath.Add64(already, points)
	if err != nil {
		return err
	}
	if newClaimedForParticipant > totalEarned {
		return ErrClaimExceedsEarned
	}

	available, err := safemath.Sub64(t.totalTopUps, t.totalClaimedCollateralAmount)
	if err != nil {
		return err
	}
	if points > available {
		return ErrInsufficientBalance
	}

	claimedCollateral, err := safemath.Add64(t.totalClaimedCollateralAmount, points)
	if err != nil {
		return err
	}
	claimedPoints, err := safemath.Add64(t.totalClaimedEarnedPoints, points)
	if err != nil {
		return err
	}

	t.claimed[participant] = newClaimedForParticipant
	t.totalClaimedCollateralAmount = claimedCollateral
	t.totalClaimedEarnedPoints = claimedPoints
	return nil
}

// TotalClaimedCollateralAmount reports the treasury's running total of
// collateral paid out.
func (t *Treasury) TotalClaimedCollateralAmount() uint64 {
	return t.totalClaimedCollateralAmount
}

// ClaimedBy reports how much a participant has claimed so far.
func (t *Treasury) ClaimedBy(participant [32]byte) uint64 {
	return t.claimed[participant]
}

type treasuryWire struct {
	TotalTopUps                  uint64
	TotalClaimedCollateralAmount uint64
	TotalClaimedEarnedPoints     uint64
	Claimed                      []treasuryClaimWire
}

type treasuryClaimWire struct {
	Participant [32]byte
	Amount      uint64
}

// MarshalJSON flattens the claimed map into pairs: [32]byte is not a valid
// JSON object key.
func (t *Treasury) MarshalJSON() ([]byte, error) {
	claimed := make([]treasuryClaimWire, 0, len(t.claimed))
	for participant, amount := range t.claimed {
		claimed = append(claimed, treasuryClaimWire{Participant: participant, Amount: amount})
	}
	return json.Marshal(treasuryWire{
		TotalTopUps:                  t.totalTopUps,
		TotalClaimedCollateralAmount: t.totalClaimedCollateralAmount,
		TotalClaimedEarnedPoints:     t.totalClaimedEarnedPoints,
		Claimed:                      claimed,
	})
}

func (t *Treasury) UnmarshalJSON(data []byte) error {
	var wire treasuryWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	t.totalTopUps = wire.TotalTopUps
	t.totalClaimedCollateralAmount = wire.TotalClaimedCollateralAmount
	t.totalClaimedEarnedPoints = wire.TotalClaimedEarnedPoints
	t.claimed = make(map[[32]byte]uint64, len(wire.Claimed))
	for _, c := range wire.Claimed {
		t.claimed[c.Participant] = c.Amount
	}
	return nil
}
