// Package roster implements the coordinator's client bookkeeping (C3): the
// persistent table of every client that has ever joined a run, and the
// per-epoch snapshot of who is actively participating. It follows the
// Set/Validator shape of the teacher's validators package, adapted from a
// light-weighted consensus roster to the coordinator's earned/slashed/active
// client record.
package roster

import (
	"encoding/json"
	"errors"

	"github.com/luxfi/ids"

	"github.com/PsycheFoundation/psyche-coordinator-go/config"
	"github.com/PsycheFoundation/psyche-coordinator-go/container"
	"github.com/PsycheFoundation/psyche-coordinator-go/safemath"
)

// ClientID identifies a client by its stable node identity.
type ClientID = ids.NodeID

var (
	ErrClientsFull  = errors.New("roster: persistent roster is full")
	ErrUnknownClient = errors.New("roster: client is not on the roster")
)

// Client is the persistent record for one client: it survives across
// epochs and is never deleted once created.
type Client struct {
	ID             ClientID
	Earned         uint64
	Slashed        uint64
	Active         bool
	FirstSeenEpoch uint16
	Version        string
}

// EpochState is the per-epoch liveness state of an epoch-local client.
type EpochState uint8

const (
	Healthy EpochState = iota
	Dropped
	Withdrawn
	Ejected
)

func (s EpochState) String() string {
	switch s {
	case Healthy:
		return "Healthy"
	case Dropped:
		return "Dropped"
	case Withdrawn:
		return "Withdrawn"
	case Ejected:
		return "Ejected"
	default:
		return "Unknown"
	}
}

// EpochClient is the mutable, epoch-scoped mirror of a persistent Client:
// materialized from the roster when the coordinator starts an epoch (on
// entering Warmup) and discarded at epoch end.
type EpochClient struct {
	ID           ClientID
	State        EpochState
	ExitedHeight *uint32

	// ConsecutiveAbsences counts consecutive rounds this client was absent
	// from the reconciled participant bloom; two in a row marks it Dropped.
	ConsecutiveAbsences uint8
}

// Roster is the persistent client table: indexed by ClientID, bounded by
// config.SolanaMaxNumClients, never shrinking.
type Roster struct {
	clients map[ClientID]*Client
	order   []ClientID
	pending map[ClientID]struct{}
}

// New returns an empty roster.
func New() *Roster {
	return &Roster{
		clients: make(map[ClientID]*Client),
		pending: make(map[ClientID]struct{}),
	}
}

// Join admits id to the pending set (P5: repeated joins never add a second
// record). A brand-new client is recorded into the persistent table
// immediately with Active=false; a known client is put back into the
// pending set, which changes nothing for a client already active or pending
// and lets a withdrawn client rejoin. A pending client becomes an active,
// training participant only when PromotePending runs, which the coordinator
// does each time it starts an epoch (on entering Warmup); a client that
// joins after that point waits for the next epoch.
func (r *Roster) Join(id ClientID, currentEpoch uint16) error {
	if _, ok := r.clients[id]; ok {
		r.pending[id] = struct{}{}
		return nil
	}

	if len(r.order) >= config.SolanaMaxNumClients {
		return ErrClientsFull
	}

	r.clients[id] = &Client{
		ID:             id,
		FirstSeenEpoch: currentEpoch,
	}
	r.order = append(r.order, id)
	r.pending[id] = struct{}{}
	return nil
}

// Withdraw flips a client's active bit off and removes it from pending;
// its persistent record (earned/slashed) is retained forever.
func (r *Roster) Withdraw(id ClientID) error {
	c, ok := r.clients[id]
	if !ok {
		return ErrUnknownClient
	}
	c.Active = false
	delete(r.pending, id)
	return nil
}

// PromotePending activates every pending client and clears the pending set,
// run when the coordinator starts an epoch (on entering Warmup).
func (r *Roster) PromotePending() {
	for id := range r.pending {
		if c, ok := r.clients[id]; ok {
			c.Active = true
		}
	}
	r.pending = make(map[ClientID]struct{})
}

// Get returns the persistent record for id.
func (r *Roster) Get(id ClientID) (Client, bool) {
	c, ok := r.clients[id]
	if !ok {
		return Client{}, false
	}
	return *c, ok
}

// Credit adds points to a known client's earned balance (P6: earned is
// monotonically non-decreasing, so this never accepts a negative delta).
func (r *Roster) Credit(id ClientID, points uint64) error {
	c, ok := r.clients[id]
	if !ok {
		return ErrUnknownClient
	}
	earned, err := safemath.Add64(c.Earned, points)
	if err != nil {
		return err
	}
	c.Earned = earned
	return nil
}

// Slash adds to a client's slashed balance.
func (r *Roster) Slash(id ClientID, amount uint64) error {
	c, ok := r.clients[id]
	if !ok {
		return ErrUnknownClient
	}
	slashed, err := safemath.Add64(c.Slashed, amount)
	if err != nil {
		return err
	}
	c.Slashed = slashed
	return nil
}

// UpdateVersion records a client's self-reported software version.
func (r *Roster) UpdateVersion(id ClientID, version string) error {
	c, ok := r.clients[id]
	if !ok {
		return ErrUnknownClient
	}
	c.Version = version
	return nil
}

// ActiveSnapshot returns, in join order, every client currently marked
// Active: the basis for materializing epoch_state.clients when the
// coordinator starts an epoch (on entering Warmup).
func (r *Roster) ActiveSnapshot() []ClientID {
	out := make([]ClientID, 0, len(r.order))
	for _, id := range r.order {
		if c := r.clients[id]; c.Active {
			out = append(out, id)
		}
	}
	return out
}

// Len returns the number of clients ever seen (persistent table size).
func (r *Roster) Len() int {
	return len(r.order)
}

// ActiveLen returns the number of currently active clients.
func (r *Roster) ActiveLen() int {
	n := 0
	for _, id := range r.order {
		if r.clients[id].Active {
			n++
		}
	}
	return n
}

type rosterWire struct {
	Clients []Client
	Pending []ClientID
}

// MarshalJSON encodes the persistent table in join order plus the pending
// set, the information needed to reconstruct the roster exactly.
func (r *Roster) MarshalJSON() ([]byte, error) {
	clients := make([]Client, 0, len(r.order))
	for _, id := range r.order {
		clients = append(clients, *r.clients[id])
	}
	pending := make([]ClientID, 0, len(r.pending))
	for id := range r.pending {
		pending = append(pending, id)
	}
	return json.Marshal(rosterWire{Clients: clients, Pending: pending})
}

func (r *Roster) UnmarshalJSON(data []byte) error {
	var wire rosterWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	r.clients = make(map[ClientID]*Client, len(wire.Clients))
	r.order = make([]ClientID, 0, len(wire.Clients))
	for i := range wire.Clients {
		c := wire.Clients[i]
		r.clients[c.ID] = &c
		r.order = append(r.order, c.ID)
	}
	r.pending = make(map[ClientID]struct{}, len(wire.Pending))
	for _, id := range wire.Pending {
		r.pending[id] = struct{}{}
	}
	return nil
}

// EpochRoster is the fixed-capacity, per-epoch mirror of active clients,
// indexed by committee index (a client's position in the order it was
// materialized, before any shuffle) rather than by ClientID.
type EpochRoster struct {
	clients *container.FixedVec[EpochClient]
}

// NewEpochRoster materializes clients into a new epoch roster, in the order
// given (the caller is responsible for handing them over in a fixed,
// agreed-upon order, typically the persistent roster's join order).
func NewEpochRoster(clients []ClientID) *EpochRoster {
	fv := container.NewFixedVec[EpochClient](config.SolanaMaxNumClients)
	for _, id := range clients {
		_ = fv.Push(EpochClient{ID: id, State: Healthy})
	}
	return &EpochRoster{clients: fv}
}

// Len is the number of clients materialized into this epoch.
func (er *EpochRoster) Len() int {
	return er.clients.Len()
}

// At returns the epoch-local client at committee index i.
func (er *EpochRoster) At(i int) (EpochClient, bool) {
	return er.clients.At(i)
}

// List returns every epoch-local client, in committee-index order.
func (er *EpochRoster) List() []EpochClient {
	return er.clients.Iter()
}

// IndexOf returns the committee index of id within this epoch's roster.
func (er *EpochRoster) IndexOf(id ClientID) (int, bool) {
	for i, c := range er.clients.Iter() {
		if c.ID == id {
			return i, true
		}
	}
	return 0, false
}

// SetState updates the epoch-local state for the client at index i.
func (er *EpochRoster) SetState(i int, state EpochState) bool {
	c, ok := er.clients.At(i)
	if !ok {
		return false
	}
	c.State = state
	return er.clients.Set(i, c)
}

// RecordAbsence increments the committee index's consecutive-absence
// counter and returns the new value, or resets it to zero when present is
// true. Used by the witness reconciliation pass to decide when an absent
// client crosses into Dropped.
func (er *EpochRoster) RecordAbsence(i int, present bool) (consecutive uint8, ok bool) {
	c, exists := er.clients.At(i)
	if !exists {
		return 0, false
	}
	if present {
		c.ConsecutiveAbsences = 0
	} else {
		c.ConsecutiveAbsences++
	}
	er.clients.Set(i, c)
	return c.ConsecutiveAbsences, true
}

// Healthy returns the committee indices still marked Healthy.
func (er *EpochRoster) Healthy() []int {
	var out []int
	for i, c := range er.clients.Iter() {
		if c.State == Healthy {
			out = append(out, i)
		}
	}
	return out
}

// MarshalJSON delegates to the underlying FixedVec, which carries both the
// materialized clients and the committee-size capacity bound.
func (er *EpochRoster) MarshalJSON() ([]byte, error) {
	return er.clients.MarshalJSON()
}

func (er *EpochRoster) UnmarshalJSON(data []byte) error {
	fv := container.NewFixedVec[EpochClient](0)
	if err := fv.UnmarshalJSON(data); err != nil {
		return err
	}
	er.clients = fv
	return nil
}
