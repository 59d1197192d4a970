package commands

import (
	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/devhelper/internal/config"
)

// NewRootCommand returns the top-level CLI command.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "devhelper",
		Usage: "Ask the developer documentation assistant from your terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   config.ConfigPath(),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.StringFlag{
				Name:    "endpoint",
				Aliases: []string{"e"},
				Usage:   "Answer service base URL (overrides service.endpoint)",
				Sources: cli.EnvVars("DEVHELPER_ENDPOINT"),
			},
		},
		Commands: []*cli.Command{
			NewAskCommand(),
			NewSearchCommand(),
			NewTUICommand(),
			NewServeCommand(),
			NewStatusCommand(),
		},
	}
}
