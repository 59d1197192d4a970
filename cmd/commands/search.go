package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/devhelper/clients/answer"
)

// NewSearchCommand returns the search subcommand.
func NewSearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Show the raw documents the service retrieves for a question",
		ArgsUsage: "<question...>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "top-k",
				Aliases: []string{"k"},
				Usage:   "Number of documents to retrieve (default: service.top_k, 5)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the raw response as JSON",
			},
		},
		Action: runSearch,
	}
}

func runSearch(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return fmt.Errorf("usage: devhelper search <question...>")
	}
	query := strings.Join(cmd.Args().Slice(), " ")

	setupLogging(cmd, os.Stderr, slog.LevelWarn)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := withServiceTimeout(ctx, cfg)
	defer cancel()

	resp, err := newAnswerClient(cfg).Search(ctx, answer.Request{Query: query, TopK: topK(cmd, cfg)})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if cmd.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	printSearch(os.Stdout, resp)
	return nil
}

func printSearch(w io.Writer, resp *answer.SearchResponse) {
	if len(resp.Results) == 0 {
		fmt.Fprintln(w, "No documents found.")
		return
	}
	for i, r := range resp.Results {
		source := r.SourceURL()
		if source == "" {
			source = "(no source)"
		}
		fmt.Fprintf(w, "%d. [%s] %s\n", i+1, r.ID, source)
		if text := strings.TrimSpace(r.Text); text != "" {
			for _, line := range strings.Split(text, "\n") {
				fmt.Fprintf(w, "   %s\n", line)
			}
		}
	}
}
