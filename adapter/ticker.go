// Package adapter wires the deterministic coordinator core (§3-§7) to the
// surrounding world: wall-clock ticks, persistence, and the validator set a
// deployment draws its roster from. None of it participates in the state
// machine itself; every adapter here only ever produces coordinator.Event
// values for something else to call Coordinator.Apply with.
package adapter

import (
	"context"
	"time"

	"github.com/PsycheFoundation/psyche-coordinator-go/coordinator"
)

// Ticker emits a coordinator.Tick on every interval, carrying the wall-clock
// time the tick fired at so phase timeouts are evaluated pull-based instead
// of by a timer thread inside the core.
type Ticker struct {
	interval time.Duration
	ticks    chan coordinator.Tick
	stop     chan struct{}
}

// NewTicker returns a Ticker that has not yet been started.
func NewTicker(interval time.Duration) *Ticker {
	return &Ticker{
		interval: interval,
		ticks:    make(chan coordinator.Tick, 1),
		stop:     make(chan struct{}),
	}
}

// Ticks returns the channel Tick events arrive on.
func (t *Ticker) Ticks() <-chan coordinator.Tick {
	return t.ticks
}

// Run drives the ticker until ctx is done or Stop is called. It drops a tick
// rather than blocking if the consumer is still processing the previous one,
// since a late tick loses nothing: the next one still carries the current
// wall-clock time.
func (t *Ticker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stop:
			return
		case now := <-ticker.C:
			select {
			case t.ticks <- coordinator.Tick{NowUnix: now.Unix()}:
			default:
			}
		}
	}
}

// Stop halts Run.
func (t *Ticker) Stop() {
	close(t.stop)
}
