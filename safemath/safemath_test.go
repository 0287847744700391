package safemath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdd64Overflow(t *testing.T) {
	_, err := Add64(math.MaxUint64, 1)
	require.ErrorIs(t, err, ErrOverflow)

	got, err := Add64(10, 20)
	require.NoError(t, err)
	require.Equal(t, uint64(30), got)
}

func TestSub64Underflow(t *testing.T) {
	_, err := Sub64(10, 20)
	require.ErrorIs(t, err, ErrUnderflow)

	got, err := Sub64(30, 20)
	require.NoError(t, err)
	require.Equal(t, uint64(10), got)
}

func TestMul64Overflow(t *testing.T) {
	_, err := Mul64(math.MaxUint64, 2)
	require.ErrorIs(t, err, ErrOverflow)

	got, err := Mul64(10, 20)
	require.NoError(t, err)
	require.Equal(t, uint64(200), got)
}

func TestMinMax(t *testing.T) {
	require.Equal(t, 1, Min(1, 2))
	require.Equal(t, 2, Max(1, 2))
	require.Equal(t, uint64(1), Min64(1, 2))
	require.Equal(t, uint64(2), Max64(1, 2))
}
