package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/dohr-michael/devhelper/clients/tui"
	"github.com/dohr-michael/devhelper/internal/events"
	"github.com/dohr-michael/devhelper/internal/session"
)

// NewTUICommand returns the tui subcommand.
func NewTUICommand() *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Launch the interactive TUI",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "top-k",
				Aliases: []string{"k"},
				Usage:   "Number of sources to request (default: service.top_k, 5)",
			},
		},
		Action: runTUI,
	}
}

func runTUI(ctx context.Context, cmd *cli.Command) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal, use 'devhelper ask' instead")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The screen belongs to the TUI; logs go to a file.
	logPath := cfg.TUI.LogFile
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	setupLogging(cmd, logFile, cfg.Events.Level())

	bus := events.NewBus(cfg.Events.BufferSize)
	defer bus.Close()

	ctrl := session.New(newAnswerClient(cfg),
		session.WithTopK(topK(cmd, cfg)),
		session.WithBus(bus),
		session.WithLogger(slog.Default()),
	)

	slog.Info("tui started", "endpoint", cfg.Service.Endpoint, "top_k", ctrl.TopK())
	return tui.Run(ctx, tui.Options{
		Controller:   ctrl,
		Bus:          bus,
		Endpoint:     cfg.Service.Endpoint,
		GlamourStyle: cfg.TUI.GlamourStyle,
	})
}
