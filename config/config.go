// Package config defines the coordinator's policy knobs (RunConfig) and the
// fixed capacity/size constants the persistence layout depends on, following
// the teacher's Parameters/DefaultParams/Valid pattern for consensus
// parameters.
package config

import (
	"errors"
	"time"

	"github.com/PsycheFoundation/psyche-coordinator-go/errs"
)

// Fixed capacity and size constants the persistence layout depends on. These
// bound every fixed-capacity container in the coordinator so its wire
// representation has a constant size regardless of roster or round content.
const (
	// SolanaRunIDMaxLen bounds a run's human-assigned identifier.
	SolanaRunIDMaxLen = 32
	// SolanaMaxStringLen bounds any metadata display string.
	SolanaMaxStringLen = 256
	// SolanaMaxNumClients is the hard cap on the active roster.
	SolanaMaxNumClients = 1024
	// SolanaMaxNumWitnesses bounds the per-round witness buffer.
	SolanaMaxNumWitnesses = 1024
	// SolanaMaxNumCheckpointers bounds the checkpointer committee size.
	SolanaMaxNumCheckpointers = 8
	// NumStoredRounds is the ring buffer depth: enough to accept a witness
	// for the round that just closed and the one before it.
	NumStoredRounds = 3
	// ExtendedMetadataBytes is the size of the opaque model metadata blob.
	ExtendedMetadataBytes = 2048
	// WaitingForMembersExtraSeconds is a grace period, in seconds, for a
	// roster that just dropped below MinClients. The coordinator's phase
	// transitions do not read it: they pause on the first tick that sees too
	// few active clients.
	WaitingForMembersExtraSeconds = 10
	// BloomFalseRate is the only false-positive tolerance knob for bloom
	// membership checks; it must be identical across every observer.
	BloomFalseRate = 0.01
)

var (
	// ErrConfigInvalid is returned by Valid for any violated constraint not
	// given its own sentinel below; the aggregate message lists every
	// violation found.
	ErrConfigInvalid           = errors.New("invalid run config")
	ErrMinClientsTooLow        = errors.New("min_clients must be >= 1")
	ErrInitMinClientsTooLow    = errors.New("init_min_clients must be >= min_clients")
	ErrGlobalBatchSizeTooLow   = errors.New("global_batch_size must be >= 1")
	ErrWitnessNodesTooLow      = errors.New("witness_nodes must be >= 1")
	ErrVerificationPercentBad  = errors.New("verification_percent must be in [0, 100]")
	ErrTotalStepsTooLow        = errors.New("total_steps must be >= 1")
	ErrRoundsPerEpochTooLow    = errors.New("rounds_per_epoch must be >= 1")
	ErrWarmupTimeNegative      = errors.New("warmup_time must be >= 0")
	ErrRoundTrainTimeTooLow    = errors.New("max_round_train_time must be > 0")
	ErrRoundWitnessTimeTooLow  = errors.New("round_witness_time must be > 0")
	ErrCooldownTimeNegative    = errors.New("cooldown_time must be >= 0")
	ErrCooldownWorkersTooLow   = errors.New("cooldown_workers must be >= 0")
)

// RunConfig holds the policy knobs that govern phase timing, roster sizing,
// and data batching for a run. It corresponds to the coordinator's `config`
// field.
type RunConfig struct {
	WarmupTime         time.Duration
	MaxRoundTrainTime  time.Duration
	RoundWitnessTime   time.Duration
	CooldownTime       time.Duration
	MinClients         uint32
	InitMinClients     uint32
	GlobalBatchSize    uint32
	WitnessNodes       uint32
	VerificationPercent uint8
	TotalSteps         uint32
	RoundsPerEpoch     uint32
	CooldownWorkers    uint32
}

// DefaultRunConfig returns a small but workable configuration, suitable as a
// starting point for local simulation before a deployment overrides it.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		WarmupTime:          10 * time.Second,
		MaxRoundTrainTime:   60 * time.Second,
		RoundWitnessTime:    20 * time.Second,
		CooldownTime:        10 * time.Second,
		MinClients:          1,
		InitMinClients:      1,
		GlobalBatchSize:     8,
		WitnessNodes:        1,
		VerificationPercent: 20,
		TotalSteps:          100,
		RoundsPerEpoch:      10,
		CooldownWorkers:     1,
	}
}

// Valid checks every constraint on c, aggregating every violation found
// rather than stopping at the first one.
func (c RunConfig) Valid() error {
	var e errs.Errs

	if c.MinClients < 1 {
		e.Add(ErrMinClientsTooLow)
	}
	if c.InitMinClients < c.MinClients {
		e.Add(ErrInitMinClientsTooLow)
	}
	if c.GlobalBatchSize < 1 {
		e.Add(ErrGlobalBatchSizeTooLow)
	}
	if c.WitnessNodes < 1 {
		e.Add(ErrWitnessNodesTooLow)
	}
	if c.VerificationPercent > 100 {
		e.Add(ErrVerificationPercentBad)
	}
	if c.TotalSteps < 1 {
		e.Add(ErrTotalStepsTooLow)
	}
	if c.RoundsPerEpoch < 1 {
		e.Add(ErrRoundsPerEpochTooLow)
	}
	if c.WarmupTime < 0 {
		e.Add(ErrWarmupTimeNegative)
	}
	if c.MaxRoundTrainTime <= 0 {
		e.Add(ErrRoundTrainTimeTooLow)
	}
	if c.RoundWitnessTime <= 0 {
		e.Add(ErrRoundWitnessTimeTooLow)
	}
	if c.CooldownTime < 0 {
		e.Add(ErrCooldownTimeNegative)
	}

	if e.Errored() {
		return e.Err()
	}
	return nil
}
