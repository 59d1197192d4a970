package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/devhelper/clients/answer"
	"github.com/dohr-michael/devhelper/internal/config"
	"github.com/dohr-michael/devhelper/internal/heartbeat"
)

const (
	heartbeatMaxAge = 2 * heartbeat.DefaultInterval
	probeTimeout    = 3 * time.Second
)

// NewStatusCommand returns the status subcommand.
func NewStatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Report whether a local `devhelper serve` is running",
		Action: runStatus,
	}
}

func runStatus(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd, os.Stderr, slog.LevelWarn)
	return printStatus(ctx, os.Stdout, config.HeartbeatPath())
}

func printStatus(ctx context.Context, w io.Writer, path string) error {
	status, hb, err := heartbeat.Check(path, heartbeatMaxAge)
	if err != nil {
		return err
	}

	switch status {
	case heartbeat.StatusDown:
		fmt.Fprintln(w, "devhelper serve: not running")
		return nil
	case heartbeat.StatusStale:
		fmt.Fprintf(w, "devhelper serve: stale (pid %d, last seen %s ago)\n",
			hb.PID, time.Since(hb.Timestamp).Truncate(time.Second))
		return nil
	}

	fmt.Fprintf(w, "devhelper serve: alive (pid %d, addr %s, uptime %s, %d fixtures)\n",
		hb.PID, hb.Addr, hb.Uptime, hb.Fixtures)

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	base, err := localServiceURL(hb.Addr)
	if err != nil {
		fmt.Fprintf(w, "health: %v\n", err)
		return nil
	}
	if err := answer.New(base).Health(probeCtx); err != nil {
		fmt.Fprintf(w, "health: %v\n", err)
		return nil
	}
	fmt.Fprintln(w, "health: ok")
	return nil
}

// localServiceURL turns a listen address into a URL reachable from this host.
// Wildcard and empty hosts map to loopback.
func localServiceURL(addr string) (string, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("invalid service address %q: %w", addr, err)
	}
	switch host {
	case "", "0.0.0.0":
		host = "127.0.0.1"
	case "::":
		host = "::1"
	}
	return "http://" + net.JoinHostPort(host, port), nil
}
