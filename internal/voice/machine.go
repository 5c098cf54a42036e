// Package voice drives the push-to-talk search flow: a small state
// machine around a speech engine and the hosted voice-search function.
package voice

import (
	"fmt"
	"sync"
)

// State is the current phase of the voice flow.
type State string

const (
	// StateIdle means no voice interaction is in progress.
	StateIdle State = "idle"
	// StateActivated means activation was accepted; capture starts after
	// a short delay so the activation keypress noise is not recorded.
	StateActivated State = "activated"
	// StateListening means audio is being captured and transcribed.
	StateListening State = "listening"
	// StateProcessing means a finalized transcript is being searched.
	StateProcessing State = "processing"
	// StateError means the last interaction failed; the flow can be
	// reactivated from here.
	StateError State = "error"
)

var validTransitions = map[State][]State{
	StateIdle:       {StateActivated, StateProcessing},
	StateActivated:  {StateListening, StateIdle, StateError},
	StateListening:  {StateProcessing, StateIdle, StateError},
	StateProcessing: {StateIdle, StateError},
	StateError:      {StateActivated, StateIdle, StateProcessing},
}

// machine serializes state transitions and rejects invalid ones.
type machine struct {
	mu      sync.Mutex
	current State
}

func newMachine() *machine {
	return &machine{current: StateIdle}
}

func (m *machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// transition moves to next if allowed from the current state, returning
// the previous state.
func (m *machine) transition(next State) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, allowed := range validTransitions[m.current] {
		if allowed == next {
			prev := m.current
			m.current = next
			return prev, nil
		}
	}
	return m.current, fmt.Errorf("invalid voice transition %s -> %s", m.current, next)
}

// transitionFrom moves to next only when currently in from. Used where a
// background goroutine must not clobber a state the user already changed.
func (m *machine) transitionFrom(from, to State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != from {
		return false
	}
	m.current = to
	return true
}
