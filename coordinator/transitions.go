package coordinator

import (
	"time"

	"github.com/PsycheFoundation/psyche-coordinator-go/batchassign"
	"github.com/PsycheFoundation/psyche-coordinator-go/cryptoprim"
	"github.com/PsycheFoundation/psyche-coordinator-go/ledger"
	"github.com/PsycheFoundation/psyche-coordinator-go/roster"
	"github.com/PsycheFoundation/psyche-coordinator-go/round"
	"github.com/PsycheFoundation/psyche-coordinator-go/witness"
)

// applyTick is the only place run_state advances: every phase boundary in
// §4.1's DAG is evaluated here, in the order a tick's wall-clock time makes
// relevant transitions possible.
func (c *Coordinator) applyTick(e Tick) (TickResult, error) {
	prev := c.RunState
	result := TickResult{PreviousState: prev, NewState: prev}

	switch prev {
	case Uninitialized:
		if c.configSet && c.modelSet && uint32(c.Roster.Len()) >= c.Config.InitMinClients {
			c.startEpoch(e.NowUnix)
			c.RunState = Warmup
		}

	case Paused:
		if c.resumeRequested && uint32(c.Roster.Len()) >= c.Config.MinClients {
			c.resumeRequested = false
			c.Progress.PhaseStartUnixTime = e.NowUnix
			c.RunState = Warmup
		}

	case Warmup:
		if c.clientsBelowMin() {
			c.enterPaused()
			break
		}
		if c.elapsedSince(e.NowUnix) >= c.Config.WarmupTime {
			if err := c.startRound(e.NowUnix); err != nil {
				return TickResult{}, err
			}
			c.RunState = RoundTrain
		}

	case RoundTrain:
		if c.clientsBelowMin() {
			c.enterPaused()
			break
		}
		if c.elapsedSince(e.NowUnix) >= c.Config.MaxRoundTrainTime || c.allTrainersWitnessed() {
			c.Progress.PhaseStartUnixTime = e.NowUnix
			c.RunState = RoundWitness
		}

	case RoundWitness:
		if c.clientsBelowMin() {
			c.enterPaused()
			break
		}
		if c.elapsedSince(e.NowUnix) >= c.Config.RoundWitnessTime || c.witnessCountReached() {
			dropped, ejected := c.closeRoundWitness()
			result.NewlyDropped = dropped
			result.NewlyEjected = ejected

			c.epochRoundsCompleted++
			c.Progress.Step++

			if c.epochRoundsCompleted >= c.Config.RoundsPerEpoch {
				c.enterCooldown(e.NowUnix)
				c.RunState = Cooldown
			} else if err := c.startRound(e.NowUnix); err != nil {
				return TickResult{}, err
			} else {
				c.RunState = RoundTrain
			}
		}

	case Cooldown:
		if c.elapsedSince(e.NowUnix) >= c.Config.CooldownTime {
			c.settleEpoch()

			if c.Progress.Step >= c.Config.TotalSteps {
				c.halted = true
				c.RunState = Finished
			} else {
				c.Progress.Epoch++
				c.startEpoch(e.NowUnix)
				c.Checkpoint = nil
				c.RunState = Warmup
				result.EpochAdvanced = true
			}
		}

	case Finished:
		// A Tick on an already-Finished, not-yet-halted coordinator is a
		// harmless no-op; only FreeCoordinator may release it.
	}

	result.NewState = c.RunState
	return c.recordOutcome(result), nil
}

func (c *Coordinator) elapsedSince(nowUnix int64) time.Duration {
	return time.Duration(nowUnix-c.Progress.PhaseStartUnixTime) * time.Second
}

// clientsBelowMin reports whether the active roster has dropped below
// MinClients. On the first such tick it sets lowMembershipSinceUnix to the
// current phase's start time, but it applies no grace period:
// config.WaitingForMembersExtraSeconds is not consulted, and the caller
// pauses on the first tick that sees too few active clients.
func (c *Coordinator) clientsBelowMin() bool {
	active := uint32(c.Roster.ActiveLen())
	if active >= c.Config.MinClients {
		c.lowMembershipSinceUnix = 0
		return false
	}
	if c.lowMembershipSinceUnix == 0 {
		c.lowMembershipSinceUnix = c.Progress.PhaseStartUnixTime
	}
	return true
}

func (c *Coordinator) enterPaused() {
	c.resumeRequested = false
	c.RunState = Paused
}

// startEpoch materializes the epoch roster and resets epoch-scoped counters
// at Uninitialized->Warmup and at the start of every subsequent epoch.
func (c *Coordinator) startEpoch(nowUnix int64) {
	c.Roster.PromotePending()
	c.EpochRoster = roster.NewEpochRoster(c.Roster.ActiveSnapshot())
	c.epochRoundsCompleted = 0
	c.Progress.PhaseStartUnixTime = nowUnix
	c.CurrentRates = c.FutureRates
}

// startRound pushes a new round into the ring and computes its committee
// and batch assignment, per §4.1's Warmup->RoundTrain and
// RoundWitness->RoundTrain notes.
func (c *Coordinator) startRound(nowUnix int64) error {
	n := c.activeClientCount()
	batchesLen := uint64(c.Config.GlobalBatchSize)

	if n > batchesLen {
		return ErrMoreClientsThanBatches
	}

	var priorSeed cryptoprim.Hash
	var priorHeight uint32
	if head, ok := c.Rounds.Head(); ok {
		priorSeed = head.RandomSeed
		priorHeight = head.Height
	}

	seed := deriveRoundSeed(priorSeed, c.Progress.Epoch, c.Progress.Step, nowUnix)

	r := round.NewRound(priorHeight+1, seed, n, batchesLen)

	batches := batchassign.BatchIDsForStep(uint64(c.Progress.Step), 0, c.Config.GlobalBatchSize)

	// The tie-breaker committee member (at most one, per committee.Partition)
	// stands in for whichever trainer fails to produce its assigned batch, so
	// it is handed every batch in the round rather than a fixed subset.
	tieBreakerTasks := make([]uint64, len(batches))
	for bi := range batches {
		tieBreakerTasks[bi] = uint64(batches[bi])
	}
	r.TieBreakerTasks = tieBreakerTasks

	c.Rounds.Push(r)
	c.Progress.PhaseStartUnixTime = nowUnix
	return nil
}

// allTrainersWitnessed is a simplification: this slice of the system does
// not track individual trainer broadcasts apart from witness reports, so it
// treats "every trainer accounted for" as every currently active client
// having submitted a witness for the round already. It is an OR-condition
// alongside the elapsed-time check, so it only ever shortens RoundTrain, and
// the elapsed-time branch remains the authoritative fallback.
func (c *Coordinator) allTrainersWitnessed() bool {
	head, ok := c.Rounds.Head()
	if !ok || c.EpochRoster == nil {
		return false
	}
	return head.Witnesses.Len() >= c.EpochRoster.Len() && c.EpochRoster.Len() > 0
}

// witnessCountReached reports whether witness_nodes worth of witnesses have
// already been recorded for the current round.
func (c *Coordinator) witnessCountReached() bool {
	head, ok := c.Rounds.Head()
	if !ok {
		return false
	}
	return uint32(head.Witnesses.Len()) >= c.Config.WitnessNodes
}

// closeRoundWitness reconciles the current round's witnesses (C8) and
// applies the health-check accusation majority, returning the clients newly
// marked Dropped or Ejected this round.
func (c *Coordinator) closeRoundWitness() (dropped, ejected []roster.ClientID) {
	head, ok := c.Rounds.Head()
	if !ok || c.EpochRoster == nil {
		return nil, nil
	}

	rec := witness.Reconcile(head, c.EpochRoster)
	for _, idx := range rec.NewlyDropped {
		if ec, ok := c.EpochRoster.At(idx); ok {
			dropped = append(dropped, ec.ID)
		}
	}

	tally, ok := c.pendingAccusations[head.Height]
	if ok {
		for _, idx := range tally.Majority(c.EpochRoster) {
			if ec, ok := c.EpochRoster.At(idx); ok && ec.State == roster.Healthy {
				c.EpochRoster.SetState(idx, roster.Ejected)
				ejected = append(ejected, ec.ID)
			}
		}
		delete(c.pendingAccusations, head.Height)
	}

	return dropped, ejected
}

// enterCooldown prepares checkpoint gating for the epoch that is ending.
func (c *Coordinator) enterCooldown(nowUnix int64) {
	c.Progress.PhaseStartUnixTime = nowUnix
	c.Checkpoint = ledger.NewCheckpointGate(c.Progress.Epoch)
}

// settleEpoch accrues earning/slashing for the epoch that is ending, per
// §4.6: Healthy clients split CurrentRates.EarningRateTotalShared,
// Ejected/Dropped clients accrue CurrentRates.SlashingRatePerClient.
func (c *Coordinator) settleEpoch() {
	if c.EpochRoster == nil {
		return
	}

	clients := c.EpochRoster.List()
	healthyCount := uint64(0)
	for _, ec := range clients {
		if ec.State == roster.Healthy {
			healthyCount++
		}
	}

	perClientEarning, err := ledger.SettleEpoch(c.CurrentRates, healthyCount)
	if err != nil {
		perClientEarning = 0
	}

	for _, ec := range clients {
		switch ec.State {
		case roster.Healthy:
			if perClientEarning > 0 {
				_ = c.Roster.Credit(ec.ID, perClientEarning)
				if c.metrics != nil {
					c.metrics.PointsEarned.Add(float64(perClientEarning))
				}
			}
		case roster.Dropped, roster.Ejected:
			if c.CurrentRates.SlashingRatePerClient > 0 {
				_ = c.Roster.Slash(ec.ID, c.CurrentRates.SlashingRatePerClient)
			}
		}
	}
}
