// Package model holds the coordinator's view of the model under training.
// The core only reads a handful of fields off the much larger model
// configuration clients fetch out of band (GCS/Hub); this package models
// exactly that on-chain-minimal slice plus the opaque metadata blob clients
// read for display purposes.
package model

import (
	"encoding/json"
	"errors"

	"github.com/PsycheFoundation/psyche-coordinator-go/config"
)

// CheckpointKind discriminates the three places model weights can currently
// live.
type CheckpointKind uint8

const (
	// CheckpointP2P means weights are being distributed peer-to-peer among
	// active clients, with no durable off-chain copy yet.
	CheckpointP2P CheckpointKind = iota
	// CheckpointHub means weights were committed to a Hub repository at a
	// specific revision; new clients resume from there.
	CheckpointHub
	// CheckpointEphemeral means the run has no durable checkpoint at all
	// (used for short-lived test runs).
	CheckpointEphemeral
)

// Checkpoint is the model's current origin. RepoID/Revision are only
// meaningful when Kind == CheckpointHub.
type Checkpoint struct {
	Kind     CheckpointKind
	RepoID   string
	Revision string
}

// HubCheckpoint returns a Checkpoint pointing at a Hub repository.
func HubCheckpoint(repoID, revision string) Checkpoint {
	return Checkpoint{Kind: CheckpointHub, RepoID: repoID, Revision: revision}
}

// P2PCheckpoint returns a Checkpoint with no durable repo, indicating weights
// currently live only in the P2P swarm.
func P2PCheckpoint() Checkpoint {
	return Checkpoint{Kind: CheckpointP2P}
}

// Model is the on-chain-minimal slice of model configuration the coordinator
// core reads and writes.
type Model struct {
	MaxSeqLen            uint32
	Checkpoint           Checkpoint
	ColdStartWarmupSteps uint32
}

var (
	ErrMaxSeqLenZero = errors.New("model: max_seq_len must be > 0")
	ErrHubRepoEmpty  = errors.New("model: hub checkpoint requires a non-empty repo id")
)

// Valid checks the fields the core depends on.
func (m Model) Valid() error {
	if m.MaxSeqLen == 0 {
		return ErrMaxSeqLenZero
	}
	if m.Checkpoint.Kind == CheckpointHub && m.Checkpoint.RepoID == "" {
		return ErrHubRepoEmpty
	}
	return nil
}

// ExtendedMetadata is the opaque, fixed-size JSON blob observers read for
// display purposes; its byte width is fixed so the persistence layout stays
// a constant size regardless of what a run names itself.
type ExtendedMetadata struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	NumParameters  uint64 `json:"num_parameters"`
	VocabSize      uint64 `json:"vocab_size"`
	ClientVersion  string `json:"client_version"`
}

// ErrExtendedMetadataTooLarge is returned by AsJSON when the encoded blob
// would exceed config.ExtendedMetadataBytes.
var ErrExtendedMetadataTooLarge = errors.New("model: extended metadata exceeds fixed blob size")

// AsJSON encodes m, padded to exactly config.ExtendedMetadataBytes with
// trailing zero bytes, matching the fixed-size slot the persistence layout
// reserves for it.
func (m ExtendedMetadata) AsJSON() ([config.ExtendedMetadataBytes]byte, error) {
	var out [config.ExtendedMetadataBytes]byte

	encoded, err := json.Marshal(m)
	if err != nil {
		return out, err
	}
	if len(encoded) > config.ExtendedMetadataBytes {
		return out, ErrExtendedMetadataTooLarge
	}

	copy(out[:], encoded)
	return out, nil
}

// ExtendedMetadataFromJSON decodes a fixed-size blob back into an
// ExtendedMetadata, treating trailing NUL bytes as padding.
func ExtendedMetadataFromJSON(blob [config.ExtendedMetadataBytes]byte) (ExtendedMetadata, error) {
	var m ExtendedMetadata

	end := len(blob)
	for end > 0 && blob[end-1] == 0 {
		end--
	}
	if end == 0 {
		return m, nil
	}

	if err := json.Unmarshal(blob[:end], &m); err != nil {
		return m, err
	}
	return m, nil
}
