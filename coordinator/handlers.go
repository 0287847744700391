package coordinator

import (
	"errors"

	"github.com/PsycheFoundation/psyche-coordinator-go/authorization"
	"github.com/PsycheFoundation/psyche-coordinator-go/committee"
	"github.com/PsycheFoundation/psyche-coordinator-go/model"
	"github.com/PsycheFoundation/psyche-coordinator-go/roster"
	"github.com/PsycheFoundation/psyche-coordinator-go/witness"
)

// applyJoin admits e.ClientID to the pending set, subject to join_authority
// approving e.AuthUser to act on its behalf (P5: join is idempotent, so a
// client already on the roster re-joining is a no-op rather than an error).
// Legal only while the run has not yet committed to an active round
// (§4.2: run_state ∈ {Uninitialized, Warmup, Paused}).
func (c *Coordinator) applyJoin(e Join) (TickResult, error) {
	if c.RunState != Uninitialized && c.RunState != Warmup && c.RunState != Paused {
		c.rejectMetric("invalid_run_state")
		return TickResult{}, ErrInvalidRunState
	}
	if !c.JoinAuthority.IsValidFor(e.ClientID, e.AuthUser, authorization.JoinRun) {
		c.rejectMetric("unauthorized_join")
		return TickResult{}, ErrUnauthorized
	}

	if err := c.Roster.Join(e.ClientID, c.Progress.Epoch); err != nil {
		c.rejectMetric("clients_full")
		return TickResult{}, ErrClientsFull
	}

	result := TickResult{PreviousState: c.RunState, NewState: c.RunState}
	return c.recordOutcome(result), nil
}

// applyWithdraw exits e.ClientID from the active roster immediately; its
// persistent earned/slashed balances are untouched.
func (c *Coordinator) applyWithdraw(e Withdraw) (TickResult, error) {
	if err := c.Roster.Withdraw(e.ClientID); err != nil {
		c.rejectMetric("invalid_withdraw")
		return TickResult{}, ErrInvalidWithdraw
	}

	if c.EpochRoster != nil {
		if idx, ok := c.EpochRoster.IndexOf(e.ClientID); ok {
			c.EpochRoster.SetState(idx, roster.Withdrawn)
		}
	}

	result := TickResult{PreviousState: c.RunState, NewState: c.RunState}
	return c.recordOutcome(result), nil
}

// applyWitnessSubmission records one client's attestation for the round
// named by e.RoundHeight, legal only while that round is still retained in
// the ring and the run is actively training or witnessing it.
func (c *Coordinator) applyWitnessSubmission(e WitnessSubmission) (TickResult, error) {
	if c.RunState != RoundTrain && c.RunState != RoundWitness {
		c.rejectMetric("invalid_run_state")
		return TickResult{}, ErrInvalidRunState
	}
	if c.EpochRoster == nil {
		c.rejectMetric("no_active_round")
		return TickResult{}, ErrNoActiveRound
	}

	r, ok := c.Rounds.ByHeight(e.RoundHeight)
	if !ok {
		c.rejectMetric("no_active_round")
		return TickResult{}, ErrNoActiveRound
	}

	position, elected := committee.IsWitness(e.Proof.Index, uint64(c.EpochRoster.Len()), r.RandomSeed, c.Config.WitnessNodes)
	if !elected || position != e.Proof.Position {
		c.rejectMetric("invalid_committee_proof")
		return TickResult{}, ErrInvalidCommitteeProof
	}

	w := e.Witness
	w.Proof = e.Proof

	if err := witness.Record(r, c.EpochRoster, w, c.Config.WitnessNodes); err != nil {
		switch {
		case errors.Is(err, witness.ErrDuplicateWitness):
			c.rejectMetric("duplicate_witness")
			return TickResult{}, ErrDuplicateWitness
		case errors.Is(err, witness.ErrWitnessesFull):
			c.rejectMetric("witnesses_full")
			return TickResult{}, ErrWitnessesFull
		default:
			c.rejectMetric("invalid_witness")
			return TickResult{}, ErrInvalidWitness
		}
	}

	result := TickResult{PreviousState: c.RunState, NewState: c.RunState, WitnessElected: true}
	return c.recordOutcome(result), nil
}

// applyHealthCheckSubmission tallies an accusation against the current
// round's pending health-check vote, resolved when the round closes.
func (c *Coordinator) applyHealthCheckSubmission(e HealthCheckSubmission) (TickResult, error) {
	if c.RunState != RoundTrain && c.RunState != RoundWitness {
		c.rejectMetric("invalid_run_state")
		return TickResult{}, ErrInvalidRunState
	}
	if c.EpochRoster == nil {
		c.rejectMetric("invalid_health_check")
		return TickResult{}, ErrInvalidHealthCheck
	}
	if _, ok := c.EpochRoster.IndexOf(e.HealthCheck.From); !ok {
		c.rejectMetric("invalid_health_check")
		return TickResult{}, ErrInvalidHealthCheck
	}

	head, ok := c.Rounds.Head()
	if !ok {
		c.rejectMetric("no_active_round")
		return TickResult{}, ErrNoActiveRound
	}

	tally, ok := c.pendingAccusations[head.Height]
	if !ok {
		tally = witness.NewAccusationTally()
		c.pendingAccusations[head.Height] = tally
	}
	tally.Record(c.EpochRoster, e.HealthCheck)

	result := TickResult{PreviousState: c.RunState, NewState: c.RunState}
	return c.recordOutcome(result), nil
}

// applyCheckpointSubmission accepts the first valid checkpoint publication
// from the elected checkpointer committee during Cooldown.
func (c *Coordinator) applyCheckpointSubmission(e CheckpointSubmission) (TickResult, error) {
	if c.RunState != Cooldown || c.Checkpoint == nil || c.EpochRoster == nil {
		c.rejectMetric("invalid_run_state")
		return TickResult{}, ErrInvalidRunState
	}

	idx, ok := c.EpochRoster.IndexOf(e.ClientID)
	if !ok {
		c.rejectMetric("unauthorized")
		return TickResult{}, ErrUnauthorized
	}

	head, ok := c.Rounds.Head()
	if !ok {
		c.rejectMetric("no_active_round")
		return TickResult{}, ErrNoActiveRound
	}

	if !committee.IsCheckpointer(uint64(idx), uint64(c.EpochRoster.Len()), head.RandomSeed) {
		c.rejectMetric("unauthorized")
		return TickResult{}, ErrUnauthorized
	}

	if err := c.Checkpoint.Submit(e.RepoID, e.Revision); err != nil {
		c.rejectMetric("already_checkpointed")
		return TickResult{}, ErrAlreadyCheckpointed
	}

	c.Model.Checkpoint = model.HubCheckpoint(e.RepoID, e.Revision)

	result := TickResult{PreviousState: c.RunState, NewState: c.RunState, CheckpointAccepted: true}
	return c.recordOutcome(result), nil
}

// requireMainAuthority rejects any authority-only event not signed by
// c.MainAuthority.
func (c *Coordinator) requireMainAuthority(signer authorization.Principal) error {
	if signer != c.MainAuthority {
		c.rejectMetric("not_main_authority")
		return ErrNotMainAuthority
	}
	return nil
}

// applySetConfig replaces the run's policy knobs; only legal from the main
// authority, only once the incoming config passes its own validation, and
// only while no round is active (§3: config is fixed for the duration of a
// round once one starts).
func (c *Coordinator) applySetConfig(e SetConfig) (TickResult, error) {
	if err := c.requireMainAuthority(e.Signer); err != nil {
		return TickResult{}, err
	}
	if c.RunState != Uninitialized && c.RunState != Warmup && c.RunState != Paused {
		c.rejectMetric("invalid_run_state")
		return TickResult{}, ErrInvalidRunState
	}
	if err := e.Config.Valid(); err != nil {
		c.rejectMetric("invalid_config")
		return TickResult{}, err
	}

	c.Config = e.Config
	c.configSet = true

	result := TickResult{PreviousState: c.RunState, NewState: c.RunState}
	return c.recordOutcome(result), nil
}

// applySetModel replaces the model reference; only legal from the main
// authority, and only while no round is active.
func (c *Coordinator) applySetModel(e SetModel) (TickResult, error) {
	if err := c.requireMainAuthority(e.Signer); err != nil {
		return TickResult{}, err
	}
	if c.RunState != Uninitialized && c.RunState != Warmup && c.RunState != Paused {
		c.rejectMetric("invalid_run_state")
		return TickResult{}, ErrInvalidRunState
	}
	if err := e.Model.Valid(); err != nil {
		c.rejectMetric("invalid_model")
		return TickResult{}, err
	}

	c.Model = e.Model
	c.modelSet = true

	result := TickResult{PreviousState: c.RunState, NewState: c.RunState}
	return c.recordOutcome(result), nil
}

// applySetPaused pauses or resumes the run. Pausing takes effect immediately
// (§8 scenario 4: the authority's SetPaused(true) moves run_state to Paused
// without waiting for a Tick); resuming only requests a resume, which the
// next Tick honors once MinClients is met again.
func (c *Coordinator) applySetPaused(e SetPaused) (TickResult, error) {
	if err := c.requireMainAuthority(e.Signer); err != nil {
		return TickResult{}, err
	}

	prev := c.RunState
	result := TickResult{PreviousState: prev, NewState: prev}

	if e.Paused {
		if c.RunState != Finished {
			c.resumeRequested = false
			c.RunState = Paused
		}
	} else {
		c.resumeRequested = true
	}

	result.NewState = c.RunState
	return c.recordOutcome(result), nil
}

// applySetFutureEpochRates changes earning/slashing rates effective starting
// the next epoch; only legal from the main authority.
func (c *Coordinator) applySetFutureEpochRates(e SetFutureEpochRates) (TickResult, error) {
	if err := c.requireMainAuthority(e.Signer); err != nil {
		return TickResult{}, err
	}

	c.FutureRates = e.Rates

	result := TickResult{PreviousState: c.RunState, NewState: c.RunState}
	return c.recordOutcome(result), nil
}

// applyUpdateClientVersion records a client's self-reported software
// version; relayed and signed by the main authority rather than
// self-asserted by the client directly.
func (c *Coordinator) applyUpdateClientVersion(e UpdateClientVersion) (TickResult, error) {
	if err := c.requireMainAuthority(e.Signer); err != nil {
		return TickResult{}, err
	}

	if err := c.Roster.UpdateVersion(e.ClientID, e.Version); err != nil {
		c.rejectMetric("unknown_client")
		return TickResult{}, roster.ErrUnknownClient
	}

	result := TickResult{PreviousState: c.RunState, NewState: c.RunState}
	return c.recordOutcome(result), nil
}

// applyFreeCoordinator releases a halted coordinator; only legal once
// already Halted, and only from the main authority.
func (c *Coordinator) applyFreeCoordinator(e FreeCoordinator) (TickResult, error) {
	if err := c.requireMainAuthority(e.Signer); err != nil {
		return TickResult{}, err
	}
	if !c.halted {
		c.rejectMetric("invalid_run_state")
		return TickResult{}, ErrInvalidRunState
	}

	result := TickResult{PreviousState: c.RunState, NewState: c.RunState}
	return c.recordOutcome(result), nil
}
