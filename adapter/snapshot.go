package adapter

import (
	"encoding/json"
	"errors"

	"github.com/luxfi/database"

	"github.com/PsycheFoundation/psyche-coordinator-go/config"
	"github.com/PsycheFoundation/psyche-coordinator-go/coordinator"
	"github.com/PsycheFoundation/psyche-coordinator-go/ledger"
	"github.com/PsycheFoundation/psyche-coordinator-go/model"
	"github.com/PsycheFoundation/psyche-coordinator-go/roster"
	"github.com/PsycheFoundation/psyche-coordinator-go/round"
)

// snapshotKey is the single key a run's coordinator snapshot lives under;
// one SnapshotStore is scoped to exactly one run.
var snapshotKey = []byte("psyche/coordinator/snapshot")

// Snapshot is the durable slice of Coordinator state a deployment needs to
// resume from. Committees, batch assignment, and shuffles are pure
// functions of RandomSeed/Epoch/Step and need no storage of their own, but
// the accrual history (who has earned or been slashed how much) and the
// in-flight round/epoch bookkeeping are not rederivable from those three
// values alone, so the full roster, ring, treasury, and checkpoint gate
// ride along too.
type Snapshot struct {
	RunState     coordinator.RunState
	Progress     coordinator.Progress
	Config       config.RunConfig
	Model        model.Model
	CurrentRates ledger.Rates
	FutureRates  ledger.Rates

	Roster      *roster.Roster
	EpochRoster *roster.EpochRoster
	Rounds      *round.Ring
	Treasury    *ledger.Treasury
	Checkpoint  *ledger.CheckpointGate
}

// ErrNoSnapshot is returned by Load when the store has never been written
// to, distinguishing "fresh run" from a decode failure.
var ErrNoSnapshot = errors.New("adapter: no snapshot stored for this run")

// SnapshotStore persists a Coordinator's resumable state into a
// database.Database, following the teacher's Serializer pattern of a thin
// wrapper around a raw key-value store rather than an ORM.
type SnapshotStore struct {
	db database.Database
}

// NewSnapshotStore returns a store backed by db.
func NewSnapshotStore(db database.Database) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Save encodes snap and writes it under the run's snapshot key.
func (s *SnapshotStore) Save(snap Snapshot) error {
	encoded, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.db.Put(snapshotKey, encoded)
}

// Load reads back the most recently saved snapshot.
func (s *SnapshotStore) Load() (Snapshot, error) {
	var snap Snapshot

	has, err := s.db.Has(snapshotKey)
	if err != nil {
		return snap, err
	}
	if !has {
		return snap, ErrNoSnapshot
	}

	encoded, err := s.db.Get(snapshotKey)
	if err != nil {
		return snap, err
	}

	if err := json.Unmarshal(encoded, &snap); err != nil {
		return snap, err
	}
	return snap, nil
}

// Clear removes the stored snapshot, for a run that has finished and been
// freed.
func (s *SnapshotStore) Clear() error {
	return s.db.Delete(snapshotKey)
}
