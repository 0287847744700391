package authorization

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func principal(b byte) Principal {
	var p Principal
	p[0] = b
	return p
}

func TestGrantorAuthorizeAndCheck(t *testing.T) {
	grantor := principal(1)
	grantee := principal(2)
	g := NewGrantor(grantor)

	require.False(t, g.IsValidFor(grantee, grantee, JoinRun))

	g.Authorize(grantee, JoinRun)
	require.True(t, g.IsValidFor(grantee, grantee, JoinRun))
}

func TestGrantorDelegates(t *testing.T) {
	grantor := principal(1)
	grantee := principal(2)
	delegate := principal(3)
	stranger := principal(4)

	g := NewGrantor(grantor)
	g.Authorize(grantee, JoinRun, delegate)

	require.True(t, g.IsValidFor(grantee, delegate, JoinRun))
	require.False(t, g.IsValidFor(grantee, stranger, JoinRun))
}

func TestGrantorRevoke(t *testing.T) {
	grantor := principal(1)
	grantee := principal(2)

	g := NewGrantor(grantor)
	g.Authorize(grantee, JoinRun)
	require.True(t, g.IsValidFor(grantee, grantee, JoinRun))

	g.Revoke(grantee)
	require.False(t, g.IsValidFor(grantee, grantee, JoinRun))
}

func TestGrantScopeMismatch(t *testing.T) {
	grantor := principal(1)
	grantee := principal(2)
	g := NewGrantor(grantor)
	g.Authorize(grantee, JoinRun)

	require.False(t, g.IsValidFor(grantee, grantee, Scope("OTHER")))
}
