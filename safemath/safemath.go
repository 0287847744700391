// Package safemath provides overflow-checked arithmetic for the ledger's
// earned/slashed accrual, so a replicated coordinator can never silently
// wrap a balance and diverge from its peers.
package safemath

import (
	"errors"
	"math"

	"golang.org/x/exp/constraints"
)

var (
	ErrOverflow  = errors.New("safemath: overflow")
	ErrUnderflow = errors.New("safemath: underflow")
)

// Add64 returns a + b, failing with ErrOverflow instead of wrapping.
func Add64(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// Sub64 returns a - b, failing with ErrUnderflow instead of wrapping.
func Sub64(a, b uint64) (uint64, error) {
	if a < b {
		return 0, ErrUnderflow
	}
	return a - b, nil
}

// Mul64 returns a * b, failing with ErrOverflow instead of wrapping.
func Mul64(a, b uint64) (uint64, error) {
	if b != 0 && a > math.MaxUint64/b {
		return 0, ErrOverflow
	}
	return a * b, nil
}

// Min returns the smaller of a and b.
func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Min64 returns the minimum of two uint64 values.
func Min64(a, b uint64) uint64 { return Min(a, b) }

// Max64 returns the maximum of two uint64 values.
func Max64(a, b uint64) uint64 { return Max(a, b) }
