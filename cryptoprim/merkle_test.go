package cryptoprim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func leaf(b byte) Hash {
	return SHA256([]byte{b})
}

func TestMerkleRootOrderIndependent(t *testing.T) {
	// Swapping the two leaves of every sibling pair leaves the root unchanged.
	leaves := []Hash{leaf(1), leaf(2), leaf(3), leaf(4), leaf(5)}
	swapped := []Hash{leaf(2), leaf(1), leaf(4), leaf(3), leaf(5)}

	require.Equal(t, MerkleRoot(leaves), MerkleRoot(swapped))
}

func TestMerkleRootSingleLeaf(t *testing.T) {
	l := leaf(7)
	require.Equal(t, l, MerkleRoot([]Hash{l}))
}

func TestMerkleRootOddDuplicatesLast(t *testing.T) {
	leaves := []Hash{leaf(1), leaf(2), leaf(3)}
	withDuplicate := []Hash{leaf(1), leaf(2), leaf(3), leaf(3)}

	require.Equal(t, MerkleRoot(leaves), MerkleRoot(withDuplicate))
}

func TestMerkleRootChangesWithContent(t *testing.T) {
	a := MerkleRoot([]Hash{leaf(1), leaf(2)})
	b := MerkleRoot([]Hash{leaf(1), leaf(3)})
	require.NotEqual(t, a, b)
}
