package domain

import "fmt"

// Phase is the lifecycle phase of a remote session.
type Phase string

const (
	PhaseFresh   Phase = "fresh"   // No remote session registered yet
	PhaseActive  Phase = "active"  // Bootstrap succeeded, user code is forwarded
	PhaseFaulted Phase = "faulted" // Terminal until shutdown
)

// transitions lists the legal phase changes. Shutdown (back to Fresh) is legal from anywhere.
var transitions = map[Phase][]Phase{
	PhaseFresh:   {PhaseActive, PhaseFaulted, PhaseFresh},
	PhaseActive:  {PhaseFaulted, PhaseFresh},
	PhaseFaulted: {PhaseFresh},
}

// CanTransition reports whether the phase change from -> to is legal.
func CanTransition(from, to Phase) bool {
	for _, p := range transitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

// SessionState is the snapshot of a session lifecycle.
// The zero value is not valid; use NewSessionState.
type SessionState struct {
	Phase Phase `json:"phase"`

	// Fault holds the composed fatal message. Only set in PhaseFaulted.
	Fault string `json:"fault,omitempty"`

	// Bootstrapped is true once both bootstrap directives succeeded.
	// Always false in PhaseFresh and always true in PhaseActive.
	Bootstrapped bool `json:"bootstrapped"`
}

// NewSessionState returns the initial (Fresh) state.
func NewSessionState() SessionState {
	return SessionState{Phase: PhaseFresh}
}

// Initialized reports whether the bootstrap directives have been dispatched successfully.
func (s SessionState) Initialized() bool {
	return s.Bootstrapped
}

// FatalError returns the fault message, if any.
func (s SessionState) FatalError() (string, bool) {
	if s.Phase != PhaseFaulted {
		return "", false
	}
	return s.Fault, true
}

// Activate moves a Fresh session to Active.
func (s SessionState) Activate() (SessionState, error) {
	if !CanTransition(s.Phase, PhaseActive) {
		return s, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s.Phase, PhaseActive)
	}
	return SessionState{Phase: PhaseActive, Bootstrapped: true}, nil
}

// Fail moves the session to Faulted, recording the message.
// Whether the bootstrap completed is carried over from the current state.
func (s SessionState) Fail(message string) (SessionState, error) {
	if !CanTransition(s.Phase, PhaseFaulted) {
		return s, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s.Phase, PhaseFaulted)
	}
	return SessionState{Phase: PhaseFaulted, Fault: message, Bootstrapped: s.Bootstrapped}, nil
}

// Reset returns the initial state. Legal from every phase.
func (s SessionState) Reset() SessionState {
	return NewSessionState()
}
