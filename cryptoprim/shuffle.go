package cryptoprim

import (
	"encoding/binary"
	"math/bits"
)

// numShuffleRounds returns ceil(log2(n)) + 4 rounds: enough swap-or-not
// rounds to mix a domain of size n, plus a small fixed margin so tiny
// domains (committees of size 1 or 2) still get adequately shuffled.
func numShuffleRounds(n uint64) int {
	if n <= 1 {
		return 4
	}
	return bits.Len64(n-1) + 4
}

// ComputeShuffledIndex maps index i, 0 <= i < n, to its shuffled position in
// [0, n) under seed using the swap-or-not shuffle: a fixed number of rounds,
// each reflecting i about a seed- and round-derived pivot depending on a
// pseudorandom bit. The construction is a bijection on [0, n) for any round
// count, so every distinct input index maps to a distinct output index;
// running it forward from i gives the permuted position, and there is no
// need for an inverse since no component asks for one.
func ComputeShuffledIndex(i, n uint64, seed Hash) uint64 {
	if n <= 1 {
		return 0
	}

	rounds := numShuffleRounds(n)
	index := i

	for round := 0; round < rounds; round++ {
		pivot := shufflePivot(seed, round, n)
		flip := (pivot + n - index) % n

		position := index
		if flip > position {
			position = flip
		}

		if shuffleBit(seed, round, position) {
			index = flip
		}
	}

	return index
}

// shufflePivot derives this round's reflection point in [0, n) from
// sha256(seed || round).
func shufflePivot(seed Hash, round int, n uint64) uint64 {
	digest := SHA256V(seed[:], []byte{byte(round)})
	return binary.BigEndian.Uint64(digest[:8]) % n
}

// shuffleBit derives the single pseudorandom bit that decides whether
// position is reflected this round, from sha256(seed || round || position).
func shuffleBit(seed Hash, round int, position uint64) bool {
	var positionBytes [8]byte
	binary.BigEndian.PutUint64(positionBytes[:], position)
	digest := SHA256V(seed[:], []byte{byte(round)}, positionBytes[:])
	byteValue := digest[(position/8)%uint64(len(digest))]
	return (byteValue>>(position%8))&1 == 1
}
