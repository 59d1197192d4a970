package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dohr-michael/devhelper/clients/tui/atoms"
	"github.com/dohr-michael/devhelper/clients/tui/components"
	"github.com/dohr-michael/devhelper/internal/events"
	"github.com/dohr-michael/devhelper/internal/session"
)

const historyLimit = 20

// App is the main TUI application model.
// Architecture: HEADER | CHAT | INPUT | STATUS
type App struct {
	// Components
	header  *components.Header
	chat    *components.Chat
	input   *components.Input
	status  *components.StatusBar
	spinner atoms.Spinner

	// State
	width      int
	height     int
	quitting   bool
	currentSeq uint64
	statusSeq  uint64

	// Dependencies
	ctx    context.Context
	cancel context.CancelFunc
	ctrl   *session.Controller
	bus    *events.Bus
}

// NewApp creates a new TUI application. Requests run under ctx and are
// cancelled when the user quits. bus may be nil.
func NewApp(ctx context.Context, ctrl *session.Controller, bus *events.Bus, endpoint string, md *components.MarkdownRenderer) *App {
	ctx, cancel := context.WithCancel(ctx)
	return &App{
		header:  components.NewHeader(endpoint),
		chat:    components.NewChat(md),
		input:   components.NewInput(),
		status:  components.NewStatusBar(),
		spinner: atoms.NewSpinner(ColorPending),
		ctx:     ctx,
		cancel:  cancel,
		ctrl:    ctrl,
		bus:     bus,
	}
}

// Init initializes the application.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.input.Init(), a.input.Focus())
}

// Update handles messages and updates state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateSizes()
		return a, nil

	case tea.KeyMsg:
		// Drop unparsed SGR mouse escape sequence fragments.
		if msg.Type == tea.KeyRunes && isMouseEscapeFragment(string(msg.Runes)) {
			return a, nil
		}

		switch msg.String() {
		case "ctrl+c":
			return a, a.quit()
		case "ctrl+l":
			a.clear()
			return a, nil
		case "pgup", "pgdown":
			var chatCmd tea.Cmd
			a.chat, chatCmd = a.chat.Update(msg)
			return a, chatCmd
		}

		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		cmds = append(cmds, cmd)

	case tea.MouseMsg:
		var chatCmd tea.Cmd
		a.chat, chatCmd = a.chat.Update(msg)
		cmds = append(cmds, chatCmd)

	case components.SubmitMsg:
		cmds = append(cmds, a.handleSubmit(msg.Text))

	case answeredMsg:
		cmds = append(cmds, a.handleAnswered(msg))

	case StatusMsg:
		if msg.Seq == a.currentSeq && !a.ctrl.Pending() {
			a.status.Set(msg.Kind, msg.Text)
			a.statusSeq = msg.Seq
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		a.status.SetSpinner(a.spinner.View())
		cmds = append(cmds, cmd)

	default:
		// Cursor blink and other textarea messages.
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return a, tea.Batch(cmds...)
}

// View renders the application: HEADER | CHAT | INPUT | STATUS.
func (a *App) View() string {
	if a.quitting {
		return "Goodbye!\n"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		a.header.View(),
		a.chat.View(),
		a.input.View(),
		a.status.View(),
	)
}

func (a *App) updateSizes() {
	chatHeight := a.height - 2 - a.input.Height() // header + status
	if chatHeight < 3 {
		chatHeight = 3
	}

	a.header.SetWidth(a.width)
	a.status.SetWidth(a.width)
	a.chat.SetSize(a.width, chatHeight)
	a.input.SetWidth(a.width)
}

// handleSubmit starts a question. The query text is passed by value; the
// input keeps its own copy so the user can edit and ask again.
func (a *App) handleSubmit(text string) tea.Cmd {
	if trimmed := strings.TrimSpace(text); strings.HasPrefix(trimmed, "/") {
		a.input.Reset()
		return a.handleSlashCommand(trimmed)
	}
	if a.ctrl.Pending() {
		return nil
	}

	sub := a.ctrl.Start(text)
	a.currentSeq = sub.Seq

	a.chat.Begin(a.ctrl.Snapshot().SubmittedQuery)
	a.input.SetDisabled(true)
	a.status.Set(components.StatusPending, "Asking...")
	spin := a.spinner.Start()
	a.status.SetSpinner(a.spinner.View())

	ctx := a.ctx
	return tea.Batch(spin, func() tea.Msg {
		return answeredMsg{Seq: sub.Seq, Outcome: sub.Run(ctx)}
	})
}

// handleAnswered renders the resolved snapshot and re-enables the input.
func (a *App) handleAnswered(msg answeredMsg) tea.Cmd {
	if msg.Outcome == session.OutcomeDiscarded || msg.Seq != a.currentSeq {
		return nil
	}

	snap := a.ctrl.Snapshot()
	if snap.Seq != msg.Seq {
		return nil
	}

	a.chat.Complete(exchangeFromSnapshot(snap))
	a.spinner.Stop()
	a.input.SetDisabled(false)

	if a.statusSeq != msg.Seq {
		if snap.State == session.StateFailed {
			a.status.Set(components.StatusFailure, "Request failed")
		} else {
			a.status.Set(components.StatusSuccess, "Answered")
		}
	}
	return a.input.Focus()
}

// handleSlashCommand processes slash commands.
func (a *App) handleSlashCommand(cmd string) tea.Cmd {
	parts := strings.Fields(cmd)
	command := parts[0]

	switch command {
	case "/quit", "/exit":
		return a.quit()
	case "/clear":
		a.clear()
	case "/history":
		a.chat.AddNotice(a.historyNotice())
	case "/help":
		a.chat.AddNotice("Enter asks the question, Alt+Enter inserts a new line. Commands: /clear, /history, /quit.")
	default:
		a.chat.AddNotice(fmt.Sprintf("Unknown command: %s", command))
	}

	return nil
}

// historyNotice lists the most recent lifecycle events recorded by the bus.
func (a *App) historyNotice() string {
	if a.bus == nil {
		return "No event history available."
	}
	recent := a.bus.History(historyLimit)
	if len(recent) == 0 {
		return "No events yet."
	}
	lines := make([]string, 0, len(recent)+1)
	lines = append(lines, "Recent events:")
	for _, e := range recent {
		lines = append(lines, FormatEvent(e))
	}
	return strings.Join(lines, "\n")
}

func (a *App) clear() {
	a.chat.Clear()
	if !a.ctrl.Pending() {
		a.status.Set(components.StatusIdle, "")
	}
}

func (a *App) quit() tea.Cmd {
	a.quitting = true
	a.cancel()
	return tea.Quit
}

// exchangeFromSnapshot converts the session view into a chat entry with
// numbered source links.
func exchangeFromSnapshot(snap session.Snapshot) components.Exchange {
	ex := components.Exchange{
		Query:  snap.SubmittedQuery,
		Answer: snap.Answer,
		Failed: snap.State == session.StateFailed,
	}
	for i, src := range snap.Sources {
		ex.Sources = append(ex.Sources, components.SourceLink{
			Label: session.SourceLabel(i),
			URL:   src.URL,
			Text:  src.Text,
		})
	}
	return ex
}

// isMouseEscapeFragment returns true if s looks like one or more unparsed
// SGR mouse escape sequence fragments (e.g. "[<65;80;14M" or concatenated
// "[<65;80;14M[<64;80;14M").
func isMouseEscapeFragment(s string) bool {
	if len(s) < 5 || s[0] != '[' || s[1] != '<' {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '[', r == '<', r == ';', r == 'M', r == 'm':
		default:
			return false
		}
	}
	return true
}
