package coordinator

import (
	"github.com/PsycheFoundation/psyche-coordinator-go/authorization"
	"github.com/PsycheFoundation/psyche-coordinator-go/config"
	"github.com/PsycheFoundation/psyche-coordinator-go/ledger"
	"github.com/PsycheFoundation/psyche-coordinator-go/model"
	"github.com/PsycheFoundation/psyche-coordinator-go/roster"
	"github.com/PsycheFoundation/psyche-coordinator-go/round"
	"github.com/PsycheFoundation/psyche-coordinator-go/witness"
)

// Event is the closed set of state-changing inputs the coordinator accepts.
// Every event is applied atomically: Apply either commits every write the
// event implies, or none of them.
type Event interface {
	isEvent()
}

// Tick is the only event type an external ticker submits; it carries the
// current wall-clock time so phase timeouts are evaluated pull-based rather
// than by a timer thread.
type Tick struct {
	NowUnix int64
}

// Join admits a client to the pending set, subject to join_authority
// approval.
type Join struct {
	ClientID   roster.ClientID
	AuthUser   authorization.Principal
}

// Withdraw voluntarily exits a client from the active roster.
type Withdraw struct {
	ClientID roster.ClientID
}

// WitnessSubmission carries one client's attestation for a round.
type WitnessSubmission struct {
	RoundHeight uint32
	Proof       round.WitnessProof
	Witness     round.Witness
}

// HealthCheckSubmission accuses peers of non-response during the round.
type HealthCheckSubmission struct {
	HealthCheck witness.HealthCheck
}

// CheckpointSubmission is a checkpointer committee member's attempt to
// publish the epoch's checkpoint.
type CheckpointSubmission struct {
	ClientID roster.ClientID
	RepoID   string
	Revision string
}

// SetConfig replaces the run's policy knobs; authority-only.
type SetConfig struct {
	Signer authorization.Principal
	Config config.RunConfig
}

// SetModel replaces the model reference; authority-only.
type SetModel struct {
	Signer authorization.Principal
	Model  model.Model
}

// SetPaused requests a pause or resume; authority-only.
type SetPaused struct {
	Signer authorization.Principal
	Paused bool
}

// SetFutureEpochRates changes earning/slashing rates effective next epoch;
// authority-only.
type SetFutureEpochRates struct {
	Signer authorization.Principal
	Rates  ledger.Rates
}

// UpdateClientVersion records a client's self-reported software version;
// authority-only (relayed by the harness, not self-asserted by the client).
type UpdateClientVersion struct {
	Signer   authorization.Principal
	ClientID roster.ClientID
	Version  string
}

// FreeCoordinator releases a halted coordinator's resources; authority-only.
type FreeCoordinator struct {
	Signer authorization.Principal
}

func (Tick) isEvent()                  {}
func (Join) isEvent()                  {}
func (Withdraw) isEvent()              {}
func (WitnessSubmission) isEvent()     {}
func (HealthCheckSubmission) isEvent() {}
func (CheckpointSubmission) isEvent()  {}
func (SetConfig) isEvent()             {}
func (SetModel) isEvent()              {}
func (SetPaused) isEvent()             {}
func (SetFutureEpochRates) isEvent()   {}
func (UpdateClientVersion) isEvent()   {}
func (FreeCoordinator) isEvent()       {}
