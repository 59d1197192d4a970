package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/devhelper/clients/answer"
	"github.com/dohr-michael/devhelper/clients/tui/components"
	"github.com/dohr-michael/devhelper/internal/events"
	"github.com/dohr-michael/devhelper/internal/session"
)

const lifecycleWait = 500 * time.Millisecond

// ErrAskFailed is returned by ask when the session ended in Failed.
var ErrAskFailed = errors.New("answer request failed")

// NewAskCommand returns the ask subcommand.
func NewAskCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Ask a question and print the answer with its sources",
		ArgsUsage: "<question...>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "top-k",
				Aliases: []string{"k"},
				Usage:   "Number of sources to request (default: service.top_k, 5)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the session snapshot as JSON",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Print lifecycle events on stderr",
			},
		},
		Action: runAsk,
	}
}

func runAsk(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return fmt.Errorf("usage: devhelper ask <question...>")
	}
	query := strings.Join(cmd.Args().Slice(), " ")

	setupLogging(cmd, os.Stderr, slog.LevelWarn)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	bus := events.NewBus(cfg.Events.BufferSize)
	defer bus.Close()

	var resolved <-chan events.Event
	if cmd.Bool("verbose") {
		ch, unsubscribe := bus.SubscribeChan(4, events.EventQuerySucceeded, events.EventQueryFailed, events.EventQueryDiscarded)
		defer unsubscribe()
		resolved = ch
	}

	ctrl := session.New(newAnswerClient(cfg),
		session.WithTopK(topK(cmd, cfg)),
		session.WithBus(bus),
		session.WithLogger(slog.Default()),
	)

	ctx, cancel := withServiceTimeout(ctx, cfg)
	defer cancel()

	sub := ctrl.Start(query)
	sub.Run(ctx)
	snap := ctrl.Snapshot()

	if resolved != nil {
		waitResolved(resolved, sub.Seq, lifecycleWait)
		printLifecycle(os.Stderr, bus.SubmissionHistory(sub.ID))
	}

	if cmd.Bool("json") {
		if err := writeSnapshotJSON(os.Stdout, snap, ctrl.RawSources()); err != nil {
			return err
		}
	} else {
		width, tty := terminalWidth(os.Stdout)
		var md *components.MarkdownRenderer
		if tty {
			md = components.NewMarkdownRenderer(cfg.TUI.GlamourStyle)
		}
		printSnapshot(os.Stdout, snap, md, width)
	}

	if snap.State == session.StateFailed {
		return ErrAskFailed
	}
	return nil
}

// writeSnapshotJSON writes the snapshot with the unfiltered service sources
// next to the displayable ones.
func writeSnapshotJSON(w io.Writer, snap session.Snapshot, raw []answer.Source) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	out := struct {
		session.Snapshot
		RawSources []answer.Source `json:"raw_sources"`
	}{snap, raw}
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// printSnapshot writes the answer followed by the numbered valid sources.
// md is nil when the output is not a terminal.
func printSnapshot(w io.Writer, snap session.Snapshot, md *components.MarkdownRenderer, width int) {
	if md != nil && snap.State == session.StateSucceeded {
		fmt.Fprintln(w, md.Render(snap.Answer, width))
	} else {
		fmt.Fprintln(w, snap.Answer)
	}

	if len(snap.Sources) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sources:")
	for i, src := range snap.Sources {
		fmt.Fprintf(w, "  %s  %s\n", session.SourceLabel(i), src.URL)
	}
}

// waitResolved blocks until the terminal event of submission seq has been
// dispatched, or until timeout.
func waitResolved(ch <-chan events.Event, seq uint64, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return false
			}
			if eventSeq(e) == seq {
				return true
			}
		case <-deadline:
			return false
		}
	}
}

// printLifecycle writes one line per event.
func printLifecycle(w io.Writer, history []events.Event) {
	for _, e := range history {
		fmt.Fprintf(w, "[%s] %s %s\n", e.Timestamp.Format("15:04:05.000"), e.Type, describeEvent(e))
	}
}

func describeEvent(e events.Event) string {
	switch e.Type {
	case events.EventQuerySubmitted:
		if p, ok := events.GetQuerySubmittedPayload(e); ok {
			return fmt.Sprintf("seq=%d top_k=%d query=%q", p.Seq, p.TopK, p.Query)
		}
	case events.EventQuerySucceeded:
		if p, ok := events.GetQuerySucceededPayload(e); ok {
			return fmt.Sprintf("seq=%d sources=%d valid=%d duration=%s", p.Seq, p.RawSources, p.ValidSources, p.Duration)
		}
	case events.EventQueryFailed:
		if p, ok := events.GetQueryFailedPayload(e); ok {
			return fmt.Sprintf("seq=%d kind=%s duration=%s error=%q", p.Seq, p.Kind, p.Duration, p.Error)
		}
	case events.EventQueryDiscarded:
		if p, ok := events.GetQueryDiscardedPayload(e); ok {
			return fmt.Sprintf("seq=%d latest=%d", p.Seq, p.Latest)
		}
	}
	return ""
}

func eventSeq(e events.Event) uint64 {
	switch e.Type {
	case events.EventQuerySucceeded:
		p, _ := events.GetQuerySucceededPayload(e)
		return p.Seq
	case events.EventQueryFailed:
		p, _ := events.GetQueryFailedPayload(e)
		return p.Seq
	case events.EventQueryDiscarded:
		p, _ := events.GetQueryDiscardedPayload(e)
		return p.Seq
	}
	return 0
}
