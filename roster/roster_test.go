package roster

import (
	"testing"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"
)

func testClientID(b byte) ClientID {
	var id ClientID
	id[0] = b
	return id
}

func TestJoinIsIdempotent(t *testing.T) {
	r := New()
	a := testClientID(1)

	require.NoError(t, r.Join(a, 0))
	require.NoError(t, r.Join(a, 0))

	require.Equal(t, 1, r.Len())
}

func TestPromotePendingActivatesJoinedClients(t *testing.T) {
	r := New()
	a := testClientID(1)
	require.NoError(t, r.Join(a, 0))

	require.Equal(t, 0, r.ActiveLen())
	r.PromotePending()
	require.Equal(t, 1, r.ActiveLen())

	snapshot := r.ActiveSnapshot()
	require.Equal(t, []ClientID{a}, snapshot)
}

func TestCreditAndSlashRequireKnownClient(t *testing.T) {
	r := New()
	unknown := testClientID(9)

	require.ErrorIs(t, r.Credit(unknown, 10), ErrUnknownClient)
	require.ErrorIs(t, r.Slash(unknown, 10), ErrUnknownClient)
}

func TestCreditIsMonotonic(t *testing.T) {
	r := New()
	a := testClientID(1)
	require.NoError(t, r.Join(a, 0))

	require.NoError(t, r.Credit(a, 5))
	require.NoError(t, r.Credit(a, 7))

	c, ok := r.Get(a)
	require.True(t, ok)
	require.Equal(t, uint64(12), c.Earned)
}

func TestWithdrawDeactivatesWithoutDeleting(t *testing.T) {
	r := New()
	a := testClientID(1)
	require.NoError(t, r.Join(a, 0))
	r.PromotePending()

	require.NoError(t, r.Withdraw(a))
	require.Equal(t, 0, r.ActiveLen())
	require.Equal(t, 1, r.Len())
}

func TestEpochRosterIndexOfAndSetState(t *testing.T) {
	a := testClientID(1)
	b := testClientID(2)
	er := NewEpochRoster([]ClientID{a, b})

	idx, ok := er.IndexOf(b)
	require.True(t, ok)
	require.Equal(t, 1, idx)

	require.True(t, er.SetState(idx, Dropped))
	c, ok := er.At(idx)
	require.True(t, ok)
	require.Equal(t, Dropped, c.State)

	healthy := er.Healthy()
	require.Equal(t, []int{0}, healthy)
}

func TestEpochRosterUnknownClientIDs(t *testing.T) {
	er := NewEpochRoster(nil)
	require.Equal(t, 0, er.Len())

	_, ok := er.IndexOf(ids.NodeID{})
	require.False(t, ok)
}
