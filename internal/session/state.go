// Package session manages the single WebSocket connection to the forecast backend.
package session

// State is the lifecycle state of a session's connection
type State int32

// Connection states
const (
	StateConnecting State = iota
	StateOpen
	StateClosedError
	StateClosedNormal
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosedError:
		return "closed-error"
	case StateClosedNormal:
		return "closed-normal"
	default:
		return "unknown"
	}
}

// Closed reports whether s is terminal
func (s State) Closed() bool {
	return s == StateClosedError || s == StateClosedNormal
}

// CanTransition reports whether the state machine allows moving from one
// state to another. Closed states are terminal.
func CanTransition(from, to State) bool {
	switch from {
	case StateConnecting:
		return to == StateOpen || to == StateClosedError || to == StateClosedNormal
	case StateOpen:
		return to == StateClosedError || to == StateClosedNormal
	default:
		return false
	}
}

// EventKind distinguishes session events
type EventKind int

// Event kinds
const (
	EventOpen EventKind = iota + 1
	EventFrame
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventOpen:
		return "open"
	case EventFrame:
		return "frame"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}
