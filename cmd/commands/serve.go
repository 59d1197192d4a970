package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/devhelper/internal/config"
	"github.com/dohr-michael/devhelper/internal/devserver"
	"github.com/dohr-michael/devhelper/internal/heartbeat"
)

// NewServeCommand returns the serve subcommand.
func NewServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run a local answer service backed by YAML fixtures (SIGHUP reloads)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to listen on",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on",
			},
			&cli.StringFlag{
				Name:  "fixtures",
				Usage: "Path to the YAML fixtures file",
			},
		},
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(cmd, os.Stderr, cfg.Events.Level())

	// CLI flags override config
	if cmd.IsSet("host") {
		cfg.Serve.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Serve.Port = cmd.Int("port")
	}
	fixturesPath := func(c *config.Config) string {
		if cmd.IsSet("fixtures") {
			return cmd.String("fixtures")
		}
		return c.Serve.Fixtures
	}

	fixtures, err := devserver.LoadFixtures(fixturesPath(cfg))
	if err != nil {
		return err
	}
	slog.Info("fixtures loaded", "path", fixturesPath(cfg), "entries", len(fixtures.Entries))

	server := devserver.NewServer(fixtures, cfg.Serve.Host, cfg.Serve.Port)

	reloader := config.NewReloader(configPath, config.DotenvPath(), cfg)
	reloader.OnReload(func(c *config.Config) {
		f, err := devserver.LoadFixtures(fixturesPath(c))
		if err != nil {
			slog.Error("reload fixtures", "error", err)
			return
		}
		server.SetFixtures(f)
		slog.Info("fixtures reloaded", "path", fixturesPath(c), "entries", len(f.Entries))
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	hb := heartbeat.NewWriter(config.HeartbeatPath(), server.Addr(), server.FixtureCount)
	if err := hb.Start(); err != nil {
		slog.Warn("heartbeat disabled", "error", err)
	}
	defer hb.Stop()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	for {
		select {
		case <-hup:
			if err := reloader.Reload(); err != nil {
				slog.Error("reload failed", "error", err)
			}
		case <-ctx.Done():
			slog.Info("shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case err := <-errCh:
			return fmt.Errorf("serve: %w", err)
		}
	}
}
