package workflows

import (
	"carbon-connect/marketplace-backend/pkg/apperrors"
)

// Event is a named trigger applied to an entity's current state.
type Event string

// StateMachine enforces status transitions for a single entity type.
// Transitions are a state x event table; anything not in the table is an
// invalid transition.
type StateMachine[S ~string] struct {
	entity      string
	transitions map[S]map[Event]S
}

// New creates a state machine for the named entity with the given
// state x event -> next state table.
func New[S ~string](entity string, transitions map[S]map[Event]S) *StateMachine[S] {
	return &StateMachine[S]{entity: entity, transitions: transitions}
}

// Next returns the state reached by applying event to from, or a
// StateTransitionError carrying the current state.
func (m *StateMachine[S]) Next(from S, event Event) (S, error) {
	if events, ok := m.transitions[from]; ok {
		if to, ok := events[event]; ok {
			return to, nil
		}
	}
	return from, &apperrors.StateTransitionError{
		Entity:  m.entity,
		Current: string(from),
		Event:   string(event),
	}
}

// Can reports whether event is applicable in state from.
func (m *StateMachine[S]) Can(from S, event Event) bool {
	events, ok := m.transitions[from]
	if !ok {
		return false
	}
	_, ok = events[event]
	return ok
}

// Terminal reports whether no event applies in state s.
func (m *StateMachine[S]) Terminal(s S) bool {
	return len(m.transitions[s]) == 0
}
