package cryptoprim

import (
	"encoding/binary"
	"math"

	"github.com/bits-and-blooms/bitset"

	"github.com/PsycheFoundation/psyche-coordinator-go/config"
)

// Bloom is a fixed-size bloom filter over Hash members, used for the
// participant and broadcast liveness sets a round accumulates: every client
// a witness observed gets inserted, and the union of all witnesses' filters
// is how the round decides who was seen without replicating the full set.
type Bloom struct {
	bits *bitset.BitSet
	k    uint
}

// NewBloom sizes a bloom filter for expecting n distinct members at
// config.BloomFalseRate, the run's single false-positive tolerance knob,
// following the standard m = -(n ln p) / (ln 2)^2, k = (m/n) ln 2 sizing
// formulas.
func NewBloom(n uint64) *Bloom {
	if n == 0 {
		n = 1
	}
	m := optimalM(n, config.BloomFalseRate)
	k := optimalK(m, n)
	return &Bloom{
		bits: bitset.New(m),
		k:    k,
	}
}

func optimalM(n uint64, p float64) uint {
	m := math.Ceil(-1 * float64(n) * math.Log(p) / math.Pow(math.Log(2), 2))
	if m < 1 {
		m = 1
	}
	return uint(m)
}

func optimalK(m uint, n uint64) uint {
	k := math.Round(float64(m) / float64(n) * math.Log(2))
	if k < 1 {
		k = 1
	}
	return uint(k)
}

// Insert adds item's hash to the filter.
func (b *Bloom) Insert(item Hash) {
	for _, h := range b.hashes(item) {
		b.bits.Set(h)
	}
}

// MayContain reports whether item could be a member: false means it
// definitely is not, true means it probably is.
func (b *Bloom) MayContain(item Hash) bool {
	for _, h := range b.hashes(item) {
		if !b.bits.Test(h) {
			return false
		}
	}
	return true
}

// Union folds other's bits into b in place, following the standard
// bloom-filter property that the union of two filters over the same
// parameters is itself a valid filter over the union of their members. This
// is how a round reconciles every witness's independently built bloom into
// one broadcast_bloom / participant_bloom.
func (b *Bloom) Union(other *Bloom) {
	b.bits.InPlaceUnion(other.bits)
}

// hashes derives b.k index positions from item using double hashing
// (Kirsch-Mitzenmacher): two independent SHA-256-derived values h1, h2 seed
// every subsequent slot as h1 + i*h2, avoiding k independent hash
// computations per insert/lookup.
func (b *Bloom) hashes(item Hash) []uint {
	digest := SHA256(item[:])
	h1 := binary.BigEndian.Uint64(digest[:8])
	h2 := binary.BigEndian.Uint64(digest[8:16])

	m := uint64(b.bits.Len())
	out := make([]uint, b.k)
	for i := uint(0); i < b.k; i++ {
		out[i] = uint((h1 + uint64(i)*h2) % m)
	}
	return out
}
