package recognition

import (
	"sync"
	"time"
)

// State is the listening state of the controller
type State int

const (
	// StateIdle - not listening; start is allowed
	StateIdle State = iota

	// StateListening - a session is running; stop is allowed
	StateListening
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	default:
		return "unknown"
	}
}

var validTransitions = map[State][]State{
	StateIdle:      {StateListening},
	StateListening: {StateIdle},
}

// StateMachine guards Idle <-> Listening transitions
type StateMachine struct {
	mu        sync.RWMutex
	current   State
	stateTime time.Time
	now       func() time.Time
}

// NewStateMachine creates a state machine in StateIdle
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current:   StateIdle,
		stateTime: time.Now(),
		now:       time.Now,
	}
}

// Current returns the current state
func (sm *StateMachine) Current() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.current
}

// StateDuration returns how long the current state has lasted
func (sm *StateMachine) StateDuration() time.Duration {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.now().Sub(sm.stateTime)
}

// Transition moves to newState and reports whether it was allowed
func (sm *StateMachine) Transition(newState State) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if !isValidTransition(sm.current, newState) {
		return false
	}
	sm.current = newState
	sm.stateTime = sm.now()
	return true
}

func isValidTransition(from, to State) bool {
	for _, valid := range validTransitions[from] {
		if valid == to {
			return true
		}
	}
	return false
}
