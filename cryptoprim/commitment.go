package cryptoprim

import "encoding/binary"

// Commitment is what a trainer broadcasts for a batch before the
// witness-health round closes: a binding hash of the batch's training step,
// a per-commitment nonce, the committing client's index, and the hash of
// the actual payload, without revealing the payload itself.
type Commitment struct {
	DataHash    Hash
	Step        uint32
	Nonce       uint64
	ClientIndex uint64
}

// NewCommitment derives DataHash from the commitment's fields and the hash
// of the payload it binds to: sha256(step || nonce || client_index ||
// payload_hash). Committing to a hash of the payload rather than the
// payload itself keeps commitments a fixed, small size regardless of batch
// size.
func NewCommitment(step uint32, nonce, clientIndex uint64, payloadHash Hash) Commitment {
	var stepBytes [4]byte
	binary.BigEndian.PutUint32(stepBytes[:], step)

	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], nonce)

	var clientIndexBytes [8]byte
	binary.BigEndian.PutUint64(clientIndexBytes[:], clientIndex)

	return Commitment{
		DataHash:    SHA256V(stepBytes[:], nonceBytes[:], clientIndexBytes[:], payloadHash[:]),
		Step:        step,
		Nonce:       nonce,
		ClientIndex: clientIndex,
	}
}

// Verify reports whether c's DataHash is consistent with payloadHash: a
// witness recomputes this rather than trusting the broadcast DataHash as-is.
func (c Commitment) Verify(payloadHash Hash) bool {
	return c.DataHash == NewCommitment(c.Step, c.Nonce, c.ClientIndex, payloadHash).DataHash
}
