// Package components provides reusable TUI components and styles.
package components

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// Color Palette
// =============================================================================

const (
	ColorPrimary   = "#7C3AED" // Violet - user queries, headings
	ColorSecondary = "#10B981" // Green - answers, success
	ColorAccent    = "#60A5FA" // Blue - source links
	ColorWarning   = "#F59E0B" // Amber - pending indicator
	ColorError     = "#EF4444" // Red - failures

	ColorMuted   = "#6B7280" // Gray - hints, labels
	ColorBorder  = "#374151" // Dark gray - separators
	ColorSurface = "#1E293B" // Header/status bar background

	ColorText    = "#E5E7EB"
	ColorTextDim = "#9CA3AF"
)

var (
	Primary   = lipgloss.Color(ColorPrimary)
	Secondary = lipgloss.Color(ColorSecondary)
	Accent    = lipgloss.Color(ColorAccent)
	Warning   = lipgloss.Color(ColorWarning)
	Error     = lipgloss.Color(ColorError)
	Muted     = lipgloss.Color(ColorMuted)
	Border    = lipgloss.Color(ColorBorder)
	Surface   = lipgloss.Color(ColorSurface)
	Text      = lipgloss.Color(ColorText)
	TextDim   = lipgloss.Color(ColorTextDim)
)

// =============================================================================
// Exchange Styles
// =============================================================================

var (
	// UserLabelStyle for the "You:" prefix
	UserLabelStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	// UserStyle for the submitted query
	UserStyle = lipgloss.NewStyle().
			Foreground(Text)

	// ErrorStyle for the failure message
	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	// SystemStyle for local notices (unknown command, cleared, ...)
	SystemStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// SourcesTitleStyle for the "Sources:" heading
	SourcesTitleStyle = lipgloss.NewStyle().
				Foreground(Secondary).
				Bold(true)

	SourceLabelStyle = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	SourceURLStyle   = lipgloss.NewStyle().Foreground(Accent).Underline(true)
	SourceTextStyle  = lipgloss.NewStyle().Foreground(TextDim)
)

// =============================================================================
// Input Styles
// =============================================================================

var (
	InputSeparatorStyle  = lipgloss.NewStyle().Foreground(Border)
	InputPromptCharStyle = lipgloss.NewStyle().Foreground(Primary).Bold(true)

	// HintStyle for keyboard hints
	HintStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// DisabledStyle for the input while a question is pending
	DisabledStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)
)

// =============================================================================
// Header / Status Bar Styles
// =============================================================================

var (
	// HeaderStyle for the title bar
	HeaderStyle = lipgloss.NewStyle().
			Background(Surface).
			Foreground(Text).
			Padding(0, 1)

	HeaderTitleStyle    = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	HeaderEndpointStyle = lipgloss.NewStyle().Foreground(TextDim)

	// StatusBarStyle for the bottom status line
	StatusBarStyle = lipgloss.NewStyle().
			Background(Surface).
			Foreground(TextDim).
			Padding(0, 1)

	StatusPendingStyle = lipgloss.NewStyle().Foreground(Warning)
	StatusSuccessStyle = lipgloss.NewStyle().Foreground(Secondary)
	StatusFailureStyle = lipgloss.NewStyle().Foreground(Error)
)

// =============================================================================
// Welcome Styles
// =============================================================================

var (
	WelcomeTitleStyle = lipgloss.NewStyle().
				Foreground(Primary).
				Bold(true)

	WelcomeSubtitleStyle = lipgloss.NewStyle().
				Foreground(Muted)

	HelpTextStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)
)
