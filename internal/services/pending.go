package services

import "sync/atomic"

// Pending is the one-flag-per-operation guard: a second Begin while the
// first is in flight fails instead of queueing.
type Pending struct {
	busy atomic.Bool
}

// Begin marks the operation in flight. It returns false if it already was.
func (p *Pending) Begin() bool { return p.busy.CompareAndSwap(false, true) }

// End clears the flag.
func (p *Pending) End() { p.busy.Store(false) }

// Busy reports whether the operation is in flight.
func (p *Pending) Busy() bool { return p.busy.Load() }
