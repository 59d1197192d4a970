// Package tui provides the interactive terminal client for the answer service.
package tui

import "github.com/charmbracelet/lipgloss"

// ColorPending adapts the spinner color to light and dark terminals.
var ColorPending = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"}
