package adapter

import (
	"github.com/luxfi/ids"
	"github.com/luxfi/validators"

	"github.com/PsycheFoundation/psyche-coordinator-go/authorization"
	"github.com/PsycheFoundation/psyche-coordinator-go/coordinator"
	"github.com/PsycheFoundation/psyche-coordinator-go/roster"
)

// ValidatorSync diffs a validators.Manager's subnet validator set against
// what the coordinator's roster already knows, producing the Join/Withdraw
// events that bring the roster back in sync. It is the bridge between a
// deployment that delegates membership to an external validator set (rather
// than an open, permissionless Join) and the coordinator core, which only
// ever sees events.
type ValidatorSync struct {
	manager  validators.Manager
	subnetID ids.ID
	known    map[roster.ClientID]struct{}
}

// NewValidatorSync returns a sync bound to one subnet's validator set.
func NewValidatorSync(manager validators.Manager, subnetID ids.ID) *ValidatorSync {
	return &ValidatorSync{
		manager: manager,
		subnetID: subnetID,
		known:    make(map[roster.ClientID]struct{}),
	}
}

// Diff fetches the subnet's current validator set and returns the Join and
// Withdraw events needed to bring the roster up to date, signed by
// authority (the coordinator's configured join_authority grantee).
func (v *ValidatorSync) Diff(authority authorization.Principal) ([]coordinator.Event, error) {
	current, err := v.manager.GetValidators(v.subnetID)
	if err != nil {
		return nil, err
	}

	currentSet := make(map[roster.ClientID]struct{}, len(current))
	for _, nodeID := range current {
		currentSet[nodeID] = struct{}{}
	}

	var events []coordinator.Event

	for nodeID := range currentSet {
		if _, ok := v.known[nodeID]; !ok {
			events = append(events, coordinator.Join{ClientID: nodeID, AuthUser: authority})
		}
	}
	for nodeID := range v.known {
		if _, ok := currentSet[nodeID]; !ok {
			events = append(events, coordinator.Withdraw{ClientID: nodeID})
		}
	}

	v.known = currentSet
	return events, nil
}
