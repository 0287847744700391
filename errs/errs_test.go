package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	errFoo = errors.New("foo")
	errBar = errors.New("bar")
)

func TestErrsEmpty(t *testing.T) {
	var e Errs
	require.False(t, e.Errored())
	require.NoError(t, e.Err())
	require.Equal(t, 0, e.Len())
}

func TestErrsSingle(t *testing.T) {
	var e Errs
	e.Add(errFoo)
	require.Equal(t, errFoo, e.Err())
}

func TestErrsMultipleStillUnwrap(t *testing.T) {
	var e Errs
	e.Add(errFoo)
	e.Add(errBar)
	e.Add(nil)

	err := e.Err()
	require.Error(t, err)
	require.ErrorIs(t, err, errFoo)
	require.ErrorIs(t, err, errBar)
	require.Equal(t, 2, e.Len())
}
