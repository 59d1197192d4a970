package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Title is shown in the header bar.
const Title = "Developer AI Helper"

// Header displays the application title and the service endpoint.
type Header struct {
	width    int
	endpoint string
}

// NewHeader creates a new header component.
func NewHeader(endpoint string) *Header {
	return &Header{endpoint: endpoint}
}

// SetWidth sets the component width.
func (h *Header) SetWidth(width int) {
	h.width = width
}

// View renders the header.
func (h *Header) View() string {
	left := HeaderTitleStyle.Render(Title)
	right := HeaderEndpointStyle.Render(h.endpoint)
	return HeaderStyle.Width(h.width).Render(spread(left, right, h.width-2))
}

// StatusKind selects the color of the status line.
type StatusKind int

const (
	StatusIdle StatusKind = iota
	StatusPending
	StatusSuccess
	StatusFailure
)

// StatusBar is the bottom line: pending indicator or last outcome, plus key hints.
type StatusBar struct {
	width   int
	kind    StatusKind
	text    string
	spinner string
}

// NewStatusBar creates an idle status bar.
func NewStatusBar() *StatusBar {
	return &StatusBar{}
}

// SetWidth sets the component width.
func (s *StatusBar) SetWidth(width int) {
	s.width = width
}

// Set replaces the status text.
func (s *StatusBar) Set(kind StatusKind, text string) {
	s.kind = kind
	s.text = text
}

// SetSpinner sets the current spinner frame shown while pending.
func (s *StatusBar) SetSpinner(frame string) {
	s.spinner = frame
}

// Text returns the current status text.
func (s *StatusBar) Text() string {
	return s.text
}

// View renders the status bar.
func (s *StatusBar) View() string {
	var left string
	switch s.kind {
	case StatusPending:
		left = s.spinner + " " + StatusPendingStyle.Render(s.text)
	case StatusSuccess:
		left = StatusSuccessStyle.Render(s.text)
	case StatusFailure:
		left = StatusFailureStyle.Render(s.text)
	default:
		left = s.text
	}
	right := HintStyle.Render("pgup/pgdn scroll • ctrl+c quit")
	return StatusBarStyle.Width(s.width).Render(spread(left, right, s.width-2))
}

// spread places left and right at both ends of a line of width cells.
func spread(left, right string, width int) string {
	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}
	return left + strings.Repeat(" ", padding) + right
}
