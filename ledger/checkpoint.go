package ledger

import (
	"encoding/json"
	"errors"
)

// ErrAlreadyCheckpointed is returned when a second checkpoint is submitted
// for an epoch that already has one.
var ErrAlreadyCheckpointed = errors.New("ledger: epoch already checkpointed")

// CheckpointGate arbitrates the checkpointer committee's race during
// Cooldown: the first accepted Checkpoint message wins, and every
// subsequent one for the same epoch is rejected.
type CheckpointGate struct {
	epoch     uint16
	set       bool
	repoID    string
	revision  string
}

// NewCheckpointGate returns a gate for the given epoch, with no checkpoint
// accepted yet.
func NewCheckpointGate(epoch uint16) *CheckpointGate {
	return &CheckpointGate{epoch: epoch}
}

// Submit records repoID/revision as the epoch's checkpoint if none has been
// accepted yet; otherwise it rejects with ErrAlreadyCheckpointed.
func (g *CheckpointGate) Submit(repoID, revision string) error {
	if g.set {
		return ErrAlreadyCheckpointed
	}
	g.set = true
	g.repoID = repoID
	g.revision = revision
	return nil
}

// Accepted reports the winning checkpoint, if any has been accepted.
func (g *CheckpointGate) Accepted() (repoID, revision string, ok bool) {
	return g.repoID, g.revision, g.set
}

type checkpointGateWire struct {
	Epoch    uint16
	Set      bool
	RepoID   string
	Revision string
}

func (g *CheckpointGate) MarshalJSON() ([]byte, error) {
	return json.Marshal(checkpointGateWire{
		Epoch:    g.epoch,
		Set:      g.set,
		RepoID:   g.repoID,
		Revision: g.revision,
	})
}

func (g *CheckpointGate) UnmarshalJSON(data []byte) error {
	var wire checkpointGateWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	g.epoch = wire.Epoch
	g.set = wire.Set
	g.repoID = wire.RepoID
	g.revision = wire.Revision
	return nil
}
