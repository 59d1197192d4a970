package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dohr-michael/devhelper/clients/answer"
	"github.com/dohr-michael/devhelper/clients/tui/components"
	"github.com/dohr-michael/devhelper/internal/events"
	"github.com/dohr-michael/devhelper/internal/session"
)

type askFunc func(ctx context.Context, req answer.Request) (*answer.Response, error)

func (f askFunc) Ask(ctx context.Context, req answer.Request) (*answer.Response, error) {
	return f(ctx, req)
}

func newTestApp(t *testing.T, asker session.Asker) *App {
	t.Helper()
	app := NewApp(context.Background(), session.New(asker), nil, "http://localhost:8000", components.NewMarkdownRenderer("notty"))
	t.Cleanup(app.cancel)
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return app
}

// collect runs cmd and flattens batches, returning every produced message.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findAnswered(t *testing.T, msgs []tea.Msg) answeredMsg {
	t.Helper()
	for _, m := range msgs {
		if a, ok := m.(answeredMsg); ok {
			return a
		}
	}
	t.Fatal("no answeredMsg produced")
	return answeredMsg{}
}

func TestSubmitDisablesInputWhilePending(t *testing.T) {
	app := newTestApp(t, askFunc(func(context.Context, answer.Request) (*answer.Response, error) {
		return &answer.Response{Answer: "ok"}, nil
	}))

	cmd := app.handleSubmit("What is 3DS2?")
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if !app.input.Disabled() {
		t.Error("expected input disabled while pending")
	}
	if !app.ctrl.Pending() {
		t.Error("expected controller pending")
	}
	if p, ok := app.chat.Pending(); !ok || p.Query != "What is 3DS2?" {
		t.Errorf("expected pending exchange, got %+v", p)
	}
	if app.status.Text() != "Asking..." {
		t.Errorf("expected Asking... status, got %q", app.status.Text())
	}

	// A second submit while pending is ignored.
	if again := app.handleSubmit("another"); again != nil {
		t.Error("expected submit to be ignored while pending")
	}

	app.Update(findAnswered(t, collect(cmd)))

	if app.input.Disabled() {
		t.Error("expected input enabled after answer")
	}
	if _, ok := app.chat.Pending(); ok {
		t.Error("expected no pending exchange")
	}
	ex := app.chat.Exchanges()
	if len(ex) != 1 || ex[0].Answer != "ok" || ex[0].Query != "What is 3DS2?" {
		t.Fatalf("unexpected exchanges: %+v", ex)
	}
}

func TestAnswerShowsValidSources(t *testing.T) {
	app := newTestApp(t, askFunc(func(context.Context, answer.Request) (*answer.Response, error) {
		return &answer.Response{
			Answer: "3-D Secure 2.0",
			Context: []answer.Source{
				{URL: "https://example.com/a"},
				{URL: "#"},
				{URL: ""},
				{URL: "https://example.com/b"},
			},
		}, nil
	}))

	app.Update(findAnswered(t, collect(app.handleSubmit("What is 3DS2?"))))

	ex := app.chat.Exchanges()[0]
	if len(ex.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %+v", ex.Sources)
	}
	if ex.Sources[0].Label != "Source 1" || ex.Sources[1].Label != "Source 2" {
		t.Errorf("unexpected labels: %+v", ex.Sources)
	}
	if ex.Sources[1].URL != "https://example.com/b" {
		t.Errorf("unexpected second url %q", ex.Sources[1].URL)
	}

	view := app.View()
	if !strings.Contains(view, "Sources:") || !strings.Contains(view, "Source 2") {
		t.Errorf("expected sources in view:\n%s", view)
	}
}

func TestFailureRendersFixedMessage(t *testing.T) {
	app := newTestApp(t, askFunc(func(context.Context, answer.Request) (*answer.Response, error) {
		return nil, &answer.TransportError{URL: "http://localhost:8000/ask", Err: errors.New("connection refused")}
	}))

	app.Update(findAnswered(t, collect(app.handleSubmit("What is 3DS2?"))))

	ex := app.chat.Exchanges()[0]
	if !ex.Failed || ex.Answer != session.FailureMessage {
		t.Fatalf("expected failed exchange, got %+v", ex)
	}
	if len(ex.Sources) != 0 {
		t.Errorf("expected no sources, got %+v", ex.Sources)
	}
	if strings.Contains(app.View(), "Sources:") {
		t.Error("sources section must be omitted on failure")
	}
	if app.input.Disabled() {
		t.Error("expected input enabled after failure")
	}
}

func TestSubmitKeepsInputText(t *testing.T) {
	app := newTestApp(t, askFunc(func(context.Context, answer.Request) (*answer.Response, error) {
		return &answer.Response{Answer: "ok"}, nil
	}))
	app.input.SetValue("What is 3DS2?")

	app.Update(findAnswered(t, collect(app.handleSubmit(app.input.Value()))))

	if app.input.Value() != "What is 3DS2?" {
		t.Errorf("expected input text to stay, got %q", app.input.Value())
	}
}

func TestEmptySubmitIsSent(t *testing.T) {
	var got *answer.Request
	app := newTestApp(t, askFunc(func(_ context.Context, req answer.Request) (*answer.Response, error) {
		got = &req
		return &answer.Response{Answer: "Please ask something."}, nil
	}))

	app.Update(findAnswered(t, collect(app.handleSubmit(""))))

	if got == nil || got.Query != "" || got.TopK != 5 {
		t.Fatalf("expected empty query request with top_k 5, got %+v", got)
	}
}

func TestSlashCommands(t *testing.T) {
	app := newTestApp(t, askFunc(func(context.Context, answer.Request) (*answer.Response, error) {
		return &answer.Response{Answer: "ok"}, nil
	}))

	app.Update(findAnswered(t, collect(app.handleSubmit("q"))))
	if len(app.chat.Exchanges()) != 1 {
		t.Fatal("expected one exchange")
	}

	app.handleSubmit("/clear")
	if len(app.chat.Exchanges()) != 0 {
		t.Error("expected /clear to remove exchanges")
	}

	app.handleSubmit("/nope")
	ex := app.chat.Exchanges()
	if len(ex) != 1 || !ex[0].Notice || !strings.Contains(ex[0].Answer, "/nope") {
		t.Errorf("expected unknown command notice, got %+v", ex)
	}

	if cmd := app.handleSubmit("/quit"); cmd == nil {
		t.Fatal("expected quit command")
	}
	if !app.quitting || app.ctx.Err() == nil {
		t.Error("expected quit to cancel in-flight requests")
	}
}

func TestHistoryCommand(t *testing.T) {
	bus := events.NewBus(16)
	defer bus.Close()

	resolved, unsub := bus.SubscribeChan(2, events.EventQuerySucceeded)
	defer unsub()

	asker := askFunc(func(context.Context, answer.Request) (*answer.Response, error) {
		return &answer.Response{Answer: "ok", Context: []answer.Source{{URL: "https://a"}}}, nil
	})
	app := NewApp(context.Background(), session.New(asker, session.WithBus(bus)), bus, "http://localhost:8000", components.NewMarkdownRenderer("notty"))
	t.Cleanup(app.cancel)
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	app.handleSubmit("/history")
	if ex := app.chat.Exchanges(); len(ex) != 1 || ex[0].Answer != "No events yet." {
		t.Fatalf("expected empty history notice, got %+v", ex)
	}

	app.Update(findAnswered(t, collect(app.handleSubmit("What is 3DS2?"))))
	select {
	case <-resolved:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for dispatch")
	}

	app.handleSubmit("/history")
	ex := app.chat.Exchanges()
	notice := ex[len(ex)-1]
	if !notice.Notice || !strings.HasPrefix(notice.Answer, "Recent events:") {
		t.Fatalf("expected history notice, got %+v", notice)
	}
	if !strings.Contains(notice.Answer, `query.submitted`) || !strings.Contains(notice.Answer, `"What is 3DS2?"`) {
		t.Errorf("missing submitted event:\n%s", notice.Answer)
	}
	if !strings.Contains(notice.Answer, "1 of 1 sources") {
		t.Errorf("missing succeeded event:\n%s", notice.Answer)
	}
}

func TestHistoryWithoutBus(t *testing.T) {
	app := newTestApp(t, askFunc(func(context.Context, answer.Request) (*answer.Response, error) {
		return &answer.Response{Answer: "ok"}, nil
	}))
	app.handleSubmit("/history")
	if ex := app.chat.Exchanges(); len(ex) != 1 || ex[0].Answer != "No event history available." {
		t.Fatalf("unexpected notice %+v", ex)
	}
}

func TestStaleAnswerIgnored(t *testing.T) {
	app := newTestApp(t, askFunc(func(context.Context, answer.Request) (*answer.Response, error) {
		return &answer.Response{Answer: "ok"}, nil
	}))

	app.Update(answeredMsg{Seq: 42, Outcome: session.OutcomeSucceeded})
	if len(app.chat.Exchanges()) != 0 {
		t.Error("answer for an unknown submission must be ignored")
	}
}

func TestStatusFromEvents(t *testing.T) {
	app := newTestApp(t, askFunc(func(context.Context, answer.Request) (*answer.Response, error) {
		return &answer.Response{Answer: "ok", Context: []answer.Source{{URL: "https://a"}, {URL: "#"}}}, nil
	}))

	cmd := app.handleSubmit("q")
	app.Update(findAnswered(t, collect(cmd)))

	e := events.NewTypedEvent(events.SourceSession, events.QuerySucceededPayload{
		Seq:          app.currentSeq,
		RawSources:   2,
		ValidSources: 1,
		Duration:     1500 * time.Millisecond,
	})
	app.Update(Project(e))

	if got := app.status.Text(); got != "Answered in 1.5s, 1 of 2 sources shown" {
		t.Errorf("unexpected status %q", got)
	}
}

func TestProjectIgnoresOtherEvents(t *testing.T) {
	e := events.NewTypedEvent(events.SourceSession, events.QueryDiscardedPayload{Seq: 1, Latest: 2})
	if msg := Project(e); msg != nil {
		t.Errorf("expected nil, got %#v", msg)
	}
}

func TestIsMouseEscapeFragment(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"[<65;80;14M", true},
		{"[<65;80;14M[<64;80;14M", true},
		{"hello", false},
		{"[<6", false},
	}
	for _, tt := range tests {
		if got := isMouseEscapeFragment(tt.in); got != tt.want {
			t.Errorf("isMouseEscapeFragment(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
