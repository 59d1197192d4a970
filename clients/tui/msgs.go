package tui

import (
	"github.com/dohr-michael/devhelper/clients/tui/components"
	"github.com/dohr-michael/devhelper/internal/session"
)

// answeredMsg is returned by the command running a submission.
type answeredMsg struct {
	Seq     uint64
	Outcome session.Outcome
}

// StatusMsg updates the status bar for the submission with sequence Seq.
type StatusMsg struct {
	Seq  uint64
	Kind components.StatusKind
	Text string
}
