// Package coordinator implements the top-level round/epoch state machine
// (C7): the single entry point every tick and client message passes through,
// producing a new state plus a TickResult describing what happened.
//
// The state machine is deliberately single-threaded: Apply runs to
// completion without blocking or spawning goroutines, so the exact same
// core can run embedded in a replicated program, a centralized server, or a
// deterministic simulation, with callers responsible for serializing events
// before they reach Apply.
package coordinator

import (
	"github.com/PsycheFoundation/psyche-coordinator-go/authorization"
	"github.com/PsycheFoundation/psyche-coordinator-go/config"
	"github.com/PsycheFoundation/psyche-coordinator-go/cryptoprim"
	"github.com/PsycheFoundation/psyche-coordinator-go/ledger"
	logpkg "github.com/PsycheFoundation/psyche-coordinator-go/log"
	"github.com/PsycheFoundation/psyche-coordinator-go/metrics"
	"github.com/PsycheFoundation/psyche-coordinator-go/model"
	"github.com/PsycheFoundation/psyche-coordinator-go/roster"
	"github.com/PsycheFoundation/psyche-coordinator-go/round"
	"github.com/PsycheFoundation/psyche-coordinator-go/witness"
	"go.uber.org/zap"
)

// RunState is the top-level phase the coordinator is in.
type RunState uint8

const (
	Uninitialized RunState = iota
	Paused
	Warmup
	RoundTrain
	RoundWitness
	Cooldown
	Finished
)

func (s RunState) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Paused:
		return "Paused"
	case Warmup:
		return "Warmup"
	case RoundTrain:
		return "RoundTrain"
	case RoundWitness:
		return "RoundWitness"
	case Cooldown:
		return "Cooldown"
	case Finished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// Progress tracks where the run is within its overall step count.
type Progress struct {
	Epoch              uint16
	Step               uint32
	PhaseStartUnixTime int64
}

// Coordinator is the full replicated state. Every mutation happens through
// Apply; no other component is granted unscoped write access to it.
type Coordinator struct {
	RunState RunState
	Progress Progress

	Config config.RunConfig
	Model  model.Model

	Roster      *roster.Roster
	EpochRoster *roster.EpochRoster
	Rounds      *round.Ring

	CurrentRates ledger.Rates
	FutureRates  ledger.Rates
	Treasury     *ledger.Treasury
	Checkpoint   *ledger.CheckpointGate

	MainAuthority authorization.Principal
	JoinAuthority *authorization.Grantor

	halted bool

	// configSet/modelSet track whether SetConfig/SetModel have ever been
	// applied: Uninitialized->Warmup requires both before InitMinClients is
	// even consulted.
	configSet bool
	modelSet  bool

	// resumeRequested is set by SetPaused(false) and cleared once a Tick
	// actually moves the coordinator out of Paused.
	resumeRequested bool

	// epochRoundsCompleted counts rounds finished within the current epoch,
	// compared against Config.RoundsPerEpoch to decide when to enter
	// Cooldown.
	epochRoundsCompleted uint32

	// lowMembershipSinceUnix is set to the current phase's start time when
	// the active roster is first seen below MinClients and reset to zero once
	// it recovers; no phase transition reads its value.
	lowMembershipSinceUnix int64

	// pendingAccusations holds in-flight health-check tallies, keyed by the
	// round height they were raised against, until that round closes.
	pendingAccusations map[uint32]*witness.AccusationTally

	log     logpkg.Logger
	metrics *metrics.Coordinator
}

// New returns an Uninitialized coordinator owned by mainAuthority.
func New(mainAuthority authorization.Principal, log logpkg.Logger, m *metrics.Coordinator) *Coordinator {
	return &Coordinator{
		RunState:           Uninitialized,
		Roster:             roster.New(),
		Rounds:             round.NewRing(),
		Treasury:           ledger.NewTreasury(),
		pendingAccusations: make(map[uint32]*witness.AccusationTally),
		MainAuthority:      mainAuthority,
		JoinAuthority: authorization.NewGrantor(mainAuthority),
		log:           log,
		metrics:       m,
	}
}

// TickResult is what Apply returns alongside the (possibly unchanged)
// coordinator state: the phase transition, if any, plus event-specific
// outputs observers may care about.
type TickResult struct {
	PreviousState RunState
	NewState      RunState

	WitnessElected    bool
	CheckpointAccepted bool
	EpochAdvanced     bool
	NewlyDropped      []roster.ClientID
	NewlyEjected      []roster.ClientID
}

func (c *Coordinator) recordOutcome(result TickResult) TickResult {
	if c.metrics == nil {
		return result
	}
	c.metrics.Epoch.Set(float64(c.Progress.Epoch))
	c.metrics.Step.Set(float64(c.Progress.Step))
	if head, ok := c.Rounds.Head(); ok {
		c.metrics.RoundHeight.Set(float64(head.Height))
	}
	if c.EpochRoster != nil {
		c.metrics.ActiveClients.Set(float64(c.EpochRoster.Len()))
		c.metrics.HealthyClients.Set(float64(len(c.EpochRoster.Healthy())))
	}
	if result.EpochAdvanced {
		c.metrics.EpochsFinished.Inc()
	}
	if result.CheckpointAccepted {
		c.metrics.Checkpoints.Inc()
	}
	c.metrics.ClientsSlashed.Add(float64(len(result.NewlyDropped) + len(result.NewlyEjected)))
	return result
}

func (c *Coordinator) rejectMetric(reason string) {
	if c.log != nil {
		c.log.WithFields(zap.String("reason", reason), zap.Stringer("run_state", c.RunState)).Warn("event rejected")
	}
	if c.metrics == nil {
		return
	}
	c.metrics.RejectedEvents.WithLabelValues(reason).Inc()
}

// activeClientCount returns how many clients are currently materialized
// into the epoch roster.
func (c *Coordinator) activeClientCount() uint64 {
	if c.EpochRoster == nil {
		return 0
	}
	return uint64(c.EpochRoster.Len())
}

// deriveRoundSeed hashes together the prior seed, epoch, step, and tick time
// to produce the new round's random_seed, per §4.1.
func deriveRoundSeed(priorSeed cryptoprim.Hash, epoch uint16, step uint32, nowUnix int64) cryptoprim.Hash {
	var epochBytes [2]byte
	epochBytes[0] = byte(epoch >> 8)
	epochBytes[1] = byte(epoch)

	var stepBytes [4]byte
	for i := 0; i < 4; i++ {
		stepBytes[i] = byte(step >> (8 * (3 - i)))
	}

	var timeBytes [8]byte
	for i := 0; i < 8; i++ {
		timeBytes[i] = byte(nowUnix >> (8 * (7 - i)))
	}

	return cryptoprim.SHA256V(priorSeed[:], epochBytes[:], stepBytes[:], timeBytes[:])
}
