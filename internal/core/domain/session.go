package domain

import "time"

// BackendKind names the identity backend chosen at startup.
type BackendKind string

const (
	BackendReal BackendKind = "real"
	BackendMock BackendKind = "mock"
)

// Phase is the lifecycle position of the process-wide session.
type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseLoading       Phase = "loading"
	PhaseAuthenticated Phase = "authenticated"
	PhaseAnonymous     Phase = "anonymous"
)

// validTransitions defines the session state machine. Loading is entered once
// and never re-entered.
var validTransitions = map[Phase][]Phase{
	PhaseUninitialized: {PhaseLoading},
	PhaseLoading:       {PhaseAuthenticated, PhaseAnonymous},
	PhaseAuthenticated: {PhaseAuthenticated, PhaseAnonymous},
	PhaseAnonymous:     {PhaseAuthenticated, PhaseAnonymous},
}

// CanTransitionTo reports whether moving from p to next is allowed.
func (p Phase) CanTransitionTo(next Phase) bool {
	for _, allowed := range validTransitions[p] {
		if allowed == next {
			return true
		}
	}
	return false
}

// SessionState is the single process-wide record of who is logged in.
type SessionState struct {
	CurrentUser *UserIdentity `json:"user"`
	Loading     bool          `json:"loading"`
	Backend     BackendKind   `json:"backend"`
}

// Phase derives the lifecycle phase from the state.
func (s SessionState) Phase() Phase {
	switch {
	case s.Loading:
		return PhaseLoading
	case s.CurrentUser != nil:
		return PhaseAuthenticated
	default:
		return PhaseAnonymous
	}
}

// Snapshot returns a copy that shares no pointers with s.
func (s SessionState) Snapshot() SessionState {
	s.CurrentUser = s.CurrentUser.Clone()
	return s
}

// SessionEvent is published to subscribers after every session change.
type SessionEvent struct {
	State SessionState `json:"state"`
	Phase Phase        `json:"phase"`
	At    time.Time    `json:"at"`
}
