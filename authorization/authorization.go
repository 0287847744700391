// Package authorization implements the grantor/grantee delegation scheme
// §6 describes: a grantor authorizes a grantee (optionally with delegates)
// for a scope, and the coordinator's join_authority uses it to gate Join
// events for scope JoinRun.
package authorization

import "github.com/luxfi/ids"

// Principal identifies a grantor, grantee, or delegate.
type Principal = ids.NodeID

// Scope names what an authorization permits.
type Scope string

// JoinRun is the scope the coordinator's join_authority grants.
const JoinRun Scope = "JOIN_RUN"

// Grant is one grantor's authorization of a grantee (and optional
// delegates) for a scope.
type Grant struct {
	Grantor   Principal
	Grantee   Principal
	Scope     Scope
	Active    bool
	Delegates []Principal
}

// IsValidFor reports whether user may act under g: the grant must be active
// and user must be the grantee or one of its delegates.
func (g Grant) IsValidFor(user Principal, scope Scope) bool {
	if !g.Active || g.Scope != scope {
		return false
	}
	if user == g.Grantee {
		return true
	}
	for _, d := range g.Delegates {
		if d == user {
			return true
		}
	}
	return false
}

// Grantor tracks the grants a single authority has issued, keyed by
// grantee.
type Grantor struct {
	principal Principal
	grants    map[Principal]Grant
}

// NewGrantor returns a Grantor acting as principal.
func NewGrantor(principal Principal) *Grantor {
	return &Grantor{principal: principal, grants: make(map[Principal]Grant)}
}

// Authorize records (or replaces) an active grant for grantee.
func (g *Grantor) Authorize(grantee Principal, scope Scope, delegates ...Principal) {
	g.grants[grantee] = Grant{
		Grantor:   g.principal,
		Grantee:   grantee,
		Scope:     scope,
		Active:    true,
		Delegates: delegates,
	}
}

// Revoke deactivates grantee's grant, if any; it is retained (not deleted)
// so a later IsValidFor check reports false rather than "no such grant".
func (g *Grantor) Revoke(grantee Principal) {
	if grant, ok := g.grants[grantee]; ok {
		grant.Active = false
		g.grants[grantee] = grant
	}
}

// IsValidFor reports whether user may act on behalf of grantee for scope,
// under this grantor's records.
func (g *Grantor) IsValidFor(grantee, user Principal, scope Scope) bool {
	grant, ok := g.grants[grantee]
	if !ok {
		return false
	}
	return grant.IsValidFor(user, scope)
}
