package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dohr-michael/devhelper/clients/tui/components"
	"github.com/dohr-michael/devhelper/internal/events"
	"github.com/dohr-michael/devhelper/internal/session"
)

// Options configures Run.
type Options struct {
	Controller   *session.Controller
	Bus          *events.Bus // optional, feeds the status bar and /history
	Endpoint     string
	GlamourStyle string
}

// Run starts the interactive program and blocks until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Controller == nil {
		return errors.New("tui: controller is required")
	}

	app := NewApp(ctx, opts.Controller, opts.Bus, opts.Endpoint, components.NewMarkdownRenderer(opts.GlamourStyle))
	defer app.cancel()

	p := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	if opts.Bus != nil {
		unsubscribe := opts.Bus.Subscribe(func(e events.Event) {
			if msg := Project(e); msg != nil {
				// Send blocks until the program reads it; keep the bus moving.
				go p.Send(msg)
			}
		}, events.EventQuerySucceeded, events.EventQueryFailed)
		defer unsubscribe()
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
