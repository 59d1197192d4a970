package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/dohr-michael/devhelper/clients/answer"
	"github.com/dohr-michael/devhelper/internal/config"
)

// setupLogging installs the default slog handler. --debug wins over level.
func setupLogging(cmd *cli.Command, w io.Writer, level slog.Level) {
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// loadConfig reads the config file (defaults when missing) and applies the
// global flag overrides.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	configPath := cmd.String("config")
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", configPath, err)
	}

	if endpoint := cmd.String("endpoint"); endpoint != "" {
		cfg.Service.Endpoint = endpoint
	}
	slog.Debug("config loaded", "path", configPath, "endpoint", cfg.Service.Endpoint, "top_k", cfg.Service.TopK)
	return cfg, nil
}

// topK returns the --top-k flag when set, the configured value otherwise.
func topK(cmd *cli.Command, cfg *config.Config) int {
	if cmd.IsSet("top-k") {
		if n := cmd.Int("top-k"); n > 0 {
			return n
		}
	}
	return cfg.Service.TopK
}

func newAnswerClient(cfg *config.Config) *answer.Client {
	return answer.New(cfg.Service.Endpoint, answer.WithLogger(slog.Default()))
}

// withServiceTimeout bounds ctx by service.timeout when one is configured.
func withServiceTimeout(ctx context.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	if d := cfg.Service.Timeout.Duration(); d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

// terminalWidth returns the width of f when it is a terminal.
func terminalWidth(f *os.File) (int, bool) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return 0, false
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return 80, true
	}
	return w, true
}
