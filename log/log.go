// Package log wires the coordinator into github.com/luxfi/log, the
// zap-backed structured logger the rest of the luxfi stack uses. It exists
// only to pin the constructor call site so every coordinator component
// requests its logger the same way (New(component)), and so tests can swap
// in the library's no-op logger without importing zap directly.
package log

import "github.com/luxfi/log"

// Logger is the structured logger interface threaded through every
// component that performs a state transition or rejects an event.
type Logger = log.Logger

// New returns a named logger for component, following the same
// log.NewLogger(name) convention the rest of the stack uses.
func New(component string) Logger {
	return log.NewLogger(component)
}

// NewNoOp returns a logger that discards everything, used in tests and in
// any embedding (e.g. an on-chain program) with no log sink.
func NewNoOp() Logger {
	return log.NewNoOpLogger()
}
