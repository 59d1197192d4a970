package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dohr-michael/devhelper/clients/tui/components"
	"github.com/dohr-michael/devhelper/internal/events"
)

// Project converts a session lifecycle event into a typed tea.Msg.
// Returns nil for events that don't map to a TUI message.
func Project(e events.Event) tea.Msg {
	switch e.Type {
	case events.EventQuerySucceeded:
		p, ok := events.GetQuerySucceededPayload(e)
		if !ok {
			return nil
		}
		return StatusMsg{
			Seq:  p.Seq,
			Kind: components.StatusSuccess,
			Text: fmt.Sprintf("Answered in %s, %d of %d sources shown", roundDuration(p.Duration), p.ValidSources, p.RawSources),
		}
	case events.EventQueryFailed:
		p, ok := events.GetQueryFailedPayload(e)
		if !ok {
			return nil
		}
		return StatusMsg{
			Seq:  p.Seq,
			Kind: components.StatusFailure,
			Text: fmt.Sprintf("Request failed (%s) after %s", p.Kind, roundDuration(p.Duration)),
		}
	default:
		return nil
	}
}

func roundDuration(d time.Duration) time.Duration {
	if d < time.Second {
		return d.Round(time.Millisecond)
	}
	return d.Round(100 * time.Millisecond)
}

// FormatEvent renders an event as one line of the /history listing.
func FormatEvent(e events.Event) string {
	id := e.SubmissionID
	if len(id) > 8 {
		id = id[:8]
	}
	var detail string
	switch e.Type {
	case events.EventQuerySubmitted:
		if p, ok := events.GetQuerySubmittedPayload(e); ok {
			detail = fmt.Sprintf("#%d %q", p.Seq, p.Query)
		}
	case events.EventQuerySucceeded:
		if p, ok := events.GetQuerySucceededPayload(e); ok {
			detail = fmt.Sprintf("#%d %d of %d sources in %s", p.Seq, p.ValidSources, p.RawSources, roundDuration(p.Duration))
		}
	case events.EventQueryFailed:
		if p, ok := events.GetQueryFailedPayload(e); ok {
			detail = fmt.Sprintf("#%d %s in %s", p.Seq, p.Kind, roundDuration(p.Duration))
		}
	case events.EventQueryDiscarded:
		if p, ok := events.GetQueryDiscardedPayload(e); ok {
			detail = fmt.Sprintf("#%d superseded by #%d", p.Seq, p.Latest)
		}
	}
	return fmt.Sprintf("%s %-15s %s %s", e.Timestamp.Format("15:04:05"), e.Type, id, detail)
}
