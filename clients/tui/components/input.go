package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

const inputLines = 3

// Input is the multiline question editor. It owns the query text until the
// user submits it.
type Input struct {
	textarea textarea.Model
	width    int
	disabled bool
}

// NewInput creates an input; Enter submits and Alt+Enter inserts a new line.
func NewInput() *Input {
	ta := textarea.New()
	ta.Placeholder = "Ask a question..."
	ta.Prompt = ""
	ta.ShowLineNumbers = false
	ta.CharLimit = 4000
	ta.SetHeight(inputLines)
	ta.SetWidth(80)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))

	return &Input{textarea: ta, width: 80}
}

// Init returns the cursor blink command.
func (z *Input) Init() tea.Cmd {
	return textarea.Blink
}

// Focus gives the input keyboard focus.
func (z *Input) Focus() tea.Cmd {
	return z.textarea.Focus()
}

// Update handles key presses and textarea messages.
func (z *Input) Update(msg tea.Msg) (*Input, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if z.disabled {
			return z, nil
		}
		// Drop unparsed SGR mouse escape fragments (e.g. "[<64;75;23M")
		if msg.Type == tea.KeyRunes {
			s := string(msg.Runes)
			if len(s) >= 3 && s[0] == '[' && s[1] == '<' {
				return z, nil
			}
		}
		if msg.Type == tea.KeyEnter && !msg.Alt {
			text := z.textarea.Value()
			return z, func() tea.Msg { return SubmitMsg{Text: text} }
		}
	}

	var cmd tea.Cmd
	z.textarea, cmd = z.textarea.Update(msg)
	return z, cmd
}

// SetDisabled blocks submission and editing while a question is pending.
func (z *Input) SetDisabled(disabled bool) {
	z.disabled = disabled
	if disabled {
		z.textarea.Blur()
	}
}

// Disabled reports whether the input is disabled.
func (z *Input) Disabled() bool {
	return z.disabled
}

// Value returns the current query text.
func (z *Input) Value() string {
	return z.textarea.Value()
}

// SetValue replaces the query text.
func (z *Input) SetValue(s string) {
	z.textarea.SetValue(s)
}

// Reset clears the query text.
func (z *Input) Reset() {
	z.textarea.Reset()
}

// SetWidth sets the component width.
func (z *Input) SetWidth(width int) {
	z.width = width
	w := width - 4
	if w < 10 {
		w = 10
	}
	z.textarea.SetWidth(w)
}

// Height is the number of lines View renders.
func (z *Input) Height() int {
	return inputLines + 2
}

// View renders separator, prompt and editor, separator.
func (z *Input) View() string {
	sep := InputSeparatorStyle.Render(strings.Repeat("─", max(z.width, 1)))

	var body string
	if z.disabled {
		lines := make([]string, inputLines)
		lines[0] = InputPromptCharStyle.Render("❯ ") + DisabledStyle.Render("Waiting for the answer...")
		body = strings.Join(lines, "\n")
	} else {
		editor := strings.Split(z.textarea.View(), "\n")
		for i := range editor {
			if i == 0 {
				editor[i] = InputPromptCharStyle.Render("❯ ") + editor[i]
			} else {
				editor[i] = "  " + editor[i]
			}
		}
		body = strings.Join(editor, "\n")
	}

	return sep + "\n" + body + "\n" + sep
}
