package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	var (
		cfg  agentConfig
		addr string
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve runs and stored reports over HTTP",
		Flags: append(agentFlags(&cfg),
			&cli.StringFlag{
				Name:        "addr",
				Value:       ":18900",
				Sources:     cli.EnvVars("SCENIC_SERVE_ADDR"),
				Usage:       "Server listen address",
				Destination: &addr,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cfg.reportDir == "" && cfg.reportURI == "" {
				return goerr.New("either --report-dir or --report-uri must be specified")
			}

			store, err := newReportStore(ctx, cfg.reportDir, cfg.reportURI, cfg.storageURL)
			if err != nil {
				return err
			}

			// The agent saves every report itself through the same store.
			agent, err := cfg.newAgent(ctx, nil)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			s := newServer(
				withAddr(addr),
				withStore(store),
				withRunner(agent),
				withRunOptions(cfg.runOptions),
			)
			return s.start(ctx)
		},
	}
}
