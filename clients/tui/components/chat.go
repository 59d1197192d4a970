package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// SourceLink is one display-ready citation.
type SourceLink struct {
	Label string // "Source 1", "Source 2", ...
	URL   string
	Text  string
}

// Exchange is one question with its resolved answer.
type Exchange struct {
	Query   string
	Answer  string
	Sources []SourceLink
	Failed  bool
	Notice  bool // local message, not a service answer
}

// Chat is the scrollable history of exchanges.
type Chat struct {
	viewport viewport.Model
	markdown *MarkdownRenderer

	exchanges []Exchange
	pending   *Exchange

	width       int
	height      int
	ready       bool
	autoScroll  bool
	showWelcome bool
}

// NewChat creates a chat component rendering answers with md.
func NewChat(md *MarkdownRenderer) *Chat {
	if md == nil {
		md = NewMarkdownRenderer(StyleDevhelper)
	}
	return &Chat{
		markdown:    md,
		autoScroll:  true,
		showWelcome: true,
	}
}

// Update handles scrolling. Size is managed by the parent via SetSize.
func (c *Chat) Update(msg tea.Msg) (*Chat, tea.Cmd) {
	if !c.ready {
		return c, nil
	}

	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "pgup", "pgdown", "ctrl+up", "ctrl+down":
			c.viewport, cmd = c.viewport.Update(msg)
			c.autoScroll = c.viewport.AtBottom()
		}
	case tea.MouseMsg:
		c.viewport, cmd = c.viewport.Update(msg)
		c.autoScroll = c.viewport.AtBottom()
	}
	return c, cmd
}

// View renders the chat component.
func (c *Chat) View() string {
	if !c.ready {
		return "Initializing..."
	}
	return c.viewport.View()
}

// SetSize updates the component size.
func (c *Chat) SetSize(width, height int) {
	c.width = width
	c.height = height

	if !c.ready {
		c.viewport = viewport.New(width, height)
		c.ready = true
	} else {
		c.viewport.Width = width
		c.viewport.Height = height
	}
	c.refreshContent()
}

// Begin shows query as the question in flight. A previous pending question
// that never resolved is dropped.
func (c *Chat) Begin(query string) {
	c.showWelcome = false
	c.pending = &Exchange{Query: query}
	c.autoScroll = true
	c.refreshContent()
}

// Complete records the resolved exchange and clears the pending question.
func (c *Chat) Complete(ex Exchange) {
	c.exchanges = append(c.exchanges, ex)
	c.pending = nil
	c.refreshContent()
}

// AddNotice appends a local message.
func (c *Chat) AddNotice(text string) {
	c.showWelcome = false
	c.exchanges = append(c.exchanges, Exchange{Answer: text, Notice: true})
	c.refreshContent()
}

// Clear removes all exchanges and shows the welcome text again.
func (c *Chat) Clear() {
	c.exchanges = nil
	c.pending = nil
	c.showWelcome = true
	c.refreshContent()
}

// Exchanges returns the resolved exchanges.
func (c *Chat) Exchanges() []Exchange {
	return c.exchanges
}

// Pending returns the question in flight, if any.
func (c *Chat) Pending() (Exchange, bool) {
	if c.pending == nil {
		return Exchange{}, false
	}
	return *c.pending, true
}

func (c *Chat) refreshContent() {
	if !c.ready {
		return
	}
	c.viewport.SetContent(c.renderContent())
	if c.autoScroll {
		c.viewport.GotoBottom()
	}
}

func (c *Chat) renderContent() string {
	var b strings.Builder

	if c.showWelcome {
		b.WriteString(c.renderWelcome())
		b.WriteString("\n\n")
	}

	for _, ex := range c.exchanges {
		b.WriteString(c.renderExchange(ex))
		b.WriteString("\n\n")
	}

	if c.pending != nil {
		b.WriteString(c.renderQuery(c.pending.Query))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (c *Chat) renderWelcome() string {
	var b strings.Builder
	b.WriteString(WelcomeTitleStyle.Render(Title))
	b.WriteString(WelcomeSubtitleStyle.Render("  Ask a question about the documentation."))
	b.WriteString("\n\n")
	b.WriteString(HelpTextStyle.Render("  Tips: Enter to ask • Alt+Enter for a new line • /clear • /quit • Ctrl+C to quit"))
	return b.String()
}

func (c *Chat) renderExchange(ex Exchange) string {
	if ex.Notice {
		return SystemStyle.Render(WrapText(ex.Answer, c.contentWidth()))
	}

	var b strings.Builder
	b.WriteString(c.renderQuery(ex.Query))
	b.WriteString("\n\n")

	if ex.Failed {
		b.WriteString(ErrorStyle.Render(WrapText(ex.Answer, c.contentWidth())))
		return b.String()
	}

	b.WriteString(c.markdown.Render(ex.Answer, c.contentWidth()))
	if sources := RenderSources(ex.Sources, c.contentWidth()); sources != "" {
		b.WriteString("\n\n")
		b.WriteString(sources)
	}
	return b.String()
}

func (c *Chat) renderQuery(query string) string {
	prefix := UserLabelStyle.Render("You: ")
	wrapped := WrapText(query, c.contentWidth()-5)
	lines := strings.Split(wrapped, "\n")

	var b strings.Builder
	for i, line := range lines {
		if i == 0 {
			b.WriteString(prefix + UserStyle.Render(line))
		} else {
			b.WriteString("\n     " + UserStyle.Render(line))
		}
	}
	return b.String()
}

func (c *Chat) contentWidth() int {
	if c.width < 22 {
		return 20
	}
	return c.width - 2
}

// RenderSources renders the "Sources:" section, one line per link. It
// returns "" when there is nothing to cite.
func RenderSources(links []SourceLink, width int) string {
	if len(links) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(SourcesTitleStyle.Render("Sources:"))
	for _, l := range links {
		b.WriteString("\n  ")
		b.WriteString(SourceLabelStyle.Render(l.Label))
		b.WriteString("  ")
		maxURL := width - len(l.Label) - 4
		if maxURL < 10 {
			maxURL = 10
		}
		b.WriteString(SourceURLStyle.Render(TruncateString(l.URL, maxURL)))
		if l.Text != "" {
			b.WriteString(fmt.Sprintf("\n      %s", SourceTextStyle.Render(TruncateString(firstLine(l.Text), maxURL))))
		}
	}
	return b.String()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
