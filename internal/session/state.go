package session

import "github.com/dohr-michael/devhelper/clients/answer"

// State is the request lifecycle of the session.
type State int

const (
	StateIdle State = iota
	StatePending
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether s is an outcome of a completed request.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Outcome is what a single Run did to the session.
type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomeFailed
	// OutcomeDiscarded means a newer submission had started, so the
	// response was dropped without touching the session.
	OutcomeDiscarded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Snapshot is the read-only view handed to the presentation layer.
type Snapshot struct {
	State          State           `json:"state"`
	SubmittedQuery string          `json:"submitted_query"`
	Answer         string          `json:"answer"`
	Sources        []answer.Source `json:"sources"`
	Seq            uint64          `json:"seq"`
}
