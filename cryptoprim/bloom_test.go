package cryptoprim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBloomInsertAndMayContain(t *testing.T) {
	b := NewBloom(100)

	present := make([]Hash, 10)
	for i := range present {
		present[i] = SHA256([]byte{byte(i)})
		b.Insert(present[i])
	}

	for _, h := range present {
		require.True(t, b.MayContain(h))
	}
}

func TestBloomAbsentMostlyFalse(t *testing.T) {
	b := NewBloom(50)
	for i := 0; i < 50; i++ {
		b.Insert(SHA256([]byte{byte(i)}))
	}

	falsePositives := 0
	const trials = 500
	for i := 0; i < trials; i++ {
		// Three-byte inputs never collide with the one-byte members above.
		candidate := SHA256([]byte{0xff, byte(i), byte(i >> 8)})
		if b.MayContain(candidate) {
			falsePositives++
		}
	}
	require.Less(t, falsePositives, trials/5)
}

func TestBloomUnion(t *testing.T) {
	a := NewBloom(20)
	b := NewBloom(20)

	ha := SHA256([]byte("a"))
	hb := SHA256([]byte("b"))
	a.Insert(ha)
	b.Insert(hb)

	a.Union(b)
	require.True(t, a.MayContain(ha))
	require.True(t, a.MayContain(hb))
}
