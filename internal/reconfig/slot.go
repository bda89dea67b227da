// Package reconfig implements the double-buffered configuration handover
// between a control path and the processing path.
package reconfig

import (
	"errors"
	"sync"
)

// ErrBusy is returned by Submit while a pending configuration is waiting to
// be applied.
var ErrBusy = errors.New("configuration update already pending")

// State is the occupancy of a Slot.
type State int

// Slot states.
const (
	// StateNone means no configuration has been submitted.
	StateNone State = iota

	// StateActive means one configuration is active and none is queued.
	StateActive

	// StatePending means an active configuration is being replaced at the
	// next block boundary.
	StatePending
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateActive:
		return "active"
	case StatePending:
		return "pending"
	default:
		return "unknown"
	}
}

// Slot holds the active configuration and at most one pending replacement.
// Submit may run on any goroutine; Swap is called by the processing path at
// the start of each block.
type Slot[T any] struct {
	mu      sync.Mutex
	state   State
	active  *T
	pending *T
	changed bool
}

// Submit queues cfg. The first submission becomes active directly; later ones
// wait for the next Swap. A second submission before that Swap fails with
// ErrBusy and leaves the queued one in place.
func (s *Slot[T]) Submit(cfg *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateNone:
		s.active = cfg
		s.state = StateActive
		s.changed = true
	case StateActive:
		s.pending = cfg
		s.state = StatePending
	case StatePending:
		return ErrBusy
	}
	return nil
}

// Swap promotes a pending configuration and returns the active one, along
// with whether it changed since the previous Swap.
func (s *Slot[T]) Swap() (*T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StatePending {
		s.active = s.pending
		s.pending = nil
		s.state = StateActive
		s.changed = true
	}

	changed := s.changed
	s.changed = false
	return s.active, changed
}

// Active returns the active configuration, or nil.
func (s *Slot[T]) Active() *T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Latest returns the most recently submitted configuration: the pending one
// if any, else the active one.
func (s *Slot[T]) Latest() *T {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		return s.pending
	}
	return s.active
}

// HasPending reports whether a replacement is queued.
func (s *Slot[T]) HasPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StatePending
}

// State returns the current slot state.
func (s *Slot[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Clear drops both configurations. The next Swap reports a change if a
// configuration was active.
func (s *Slot[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		s.changed = true
	}
	s.active = nil
	s.pending = nil
	s.state = StateNone
}
