package components

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

// StyleDevhelper selects the built-in palette matching the TUI colors.
const StyleDevhelper = "devhelper"

// MarkdownRenderer renders answers as styled terminal markdown. Renderers
// are cached per wrap width since glamour fixes the width at construction.
type MarkdownRenderer struct {
	style string

	mu        sync.Mutex
	renderers map[int]*glamour.TermRenderer
}

// NewMarkdownRenderer creates a renderer. style is "devhelper", "auto", or
// any glamour standard style name ("dark", "light", "notty", ...).
func NewMarkdownRenderer(style string) *MarkdownRenderer {
	if style == "" {
		style = StyleDevhelper
	}
	return &MarkdownRenderer{style: style, renderers: make(map[int]*glamour.TermRenderer)}
}

// Render renders markdown wrapped at width. If rendering fails the original
// content is returned.
func (m *MarkdownRenderer) Render(content string, width int) string {
	if content == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}

	r, err := m.renderer(width)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}

	// Trim the blank lines glamour adds around the document
	return strings.Trim(rendered, "\n")
}

func (m *MarkdownRenderer) renderer(width int) (*glamour.TermRenderer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.renderers[width]; ok {
		return r, nil
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width), glamour.WithEmoji()}
	switch m.style {
	case StyleDevhelper:
		opts = append(opts, glamour.WithStyles(devhelperStyle()))
	case "auto":
		opts = append(opts, glamour.WithAutoStyle())
	default:
		opts = append(opts, glamour.WithStandardStyle(m.style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	m.renderers[width] = r
	return r, nil
}

// devhelperStyle is the dark glamour style recolored with the TUI palette.
func devhelperStyle() ansi.StyleConfig {
	cfg := styles.DarkStyleConfig
	cfg.Document.Margin = uintPtr(0)
	cfg.Document.Color = stringPtr(ColorText)

	cfg.Heading.Color = stringPtr(ColorPrimary)
	cfg.H1.Color = stringPtr(ColorPrimary)
	cfg.H1.BackgroundColor = nil
	cfg.H2.Color = stringPtr(ColorPrimary)
	cfg.H3.Color = stringPtr(ColorSecondary)

	cfg.Link.Color = stringPtr(ColorAccent)
	cfg.LinkText.Color = stringPtr(ColorAccent)
	cfg.Code.Color = stringPtr(ColorWarning)
	cfg.CodeBlock.Margin = uintPtr(0)
	return cfg
}

func stringPtr(s string) *string { return &s }
func uintPtr(u uint) *uint       { return &u }
