package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/alexschlessinger/dispatch/arbiter"
	"github.com/alexschlessinger/dispatch/capability"
	"github.com/alexschlessinger/dispatch/config"
	"github.com/alexschlessinger/dispatch/internal/log"
)

func main() {
	app := &cli.Command{
		Name:  "dispatch",
		Usage: "Arbitrate and dispatch tool pools for an AI coding assistant",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Enable debug logging",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to override config file",
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   "Active model provider name",
			},
			&cli.StringSliceFlag{
				Name:  "native",
				Usage: "Capability the provider supports natively (can be specified multiple times)",
			},
		},
		Commands: []*cli.Command{
			toolsCommand(),
			filterCommand(),
			guidanceCommand(),
			execCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the override config and builds the resolver for the flags in
// effect. Shared by every subcommand.
func setup(cmd *cli.Command) (*arbiter.Resolver, *config.Config, error) {
	log.InitLogger(cmd.Bool("debug"))
	initColors()

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, nil, err
	}

	native := capability.NewTagSet()
	for _, tag := range cmd.StringSlice("native") {
		native.Add(capability.Tag(tag))
	}

	resolver := arbiter.New(cfg.Registry(), cfg.Classifier(), arbiter.Provider{
		Name:   cmd.String("provider"),
		Native: native,
	})

	return resolver, cfg, nil
}
