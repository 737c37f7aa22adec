package main

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scenic"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

type batchResult struct {
	Goal        string             `json:"goal"`
	RunID       string             `json:"run_id,omitempty"`
	Verdict     scenic.RunVerdict  `json:"verdict,omitempty"`
	Termination scenic.Termination `json:"termination,omitempty"`
	Steps       int                `json:"steps"`
	Error       string             `json:"error,omitempty"`
}

func batchCommand() *cli.Command {
	var (
		cfg         agentConfig
		goalsFile   string
		useExamples bool
		concurrency int
	)

	return &cli.Command{
		Name:      "batch",
		Usage:     "Run several goals concurrently, each with its own tool channel",
		ArgsUsage: "[GOAL...]",
		Flags: append(agentFlags(&cfg),
			&cli.StringFlag{
				Name:        "goals-file",
				Usage:       "File with one goal per line",
				Destination: &goalsFile,
			},
			&cli.BoolFlag{
				Name:        "examples",
				Usage:       "Add the built-in example goals",
				Destination: &useExamples,
			},
			&cli.IntFlag{
				Name:        "concurrency",
				Value:       2,
				Sources:     cli.EnvVars("SCENIC_BATCH_CONCURRENCY"),
				Usage:       "Number of runs executed at the same time",
				Destination: &concurrency,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			goals := cmd.Args().Slice()
			if goalsFile != "" {
				lines, err := readGoals(goalsFile)
				if err != nil {
					return err
				}
				goals = append(goals, lines...)
			}
			if useExamples {
				goals = append(goals, exampleGoals...)
			}
			if len(goals) == 0 {
				return goerr.New("no goal given: pass goals as arguments, --goals-file or --examples")
			}

			agent, err := cfg.newAgent(ctx, nil)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			results, err := runBatch(ctx, agent, &cfg, goals, concurrency)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			for _, r := range results {
				if err := enc.Encode(r); err != nil {
					return goerr.Wrap(err, "failed to write result")
				}
			}
			return nil
		},
	}
}

// runBatch runs goals with at most limit runs in flight. Results keep the order of goals.
func runBatch(ctx context.Context, agent *scenic.Agent, cfg *agentConfig, goals []string, limit int) ([]batchResult, error) {
	results := make([]batchResult, len(goals))

	eg, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		eg.SetLimit(limit)
	}

	for i, goal := range goals {
		eg.Go(func() error {
			logger := slog.Default().With("batch_index", i)
			results[i] = batchResult{Goal: goal}

			report, err := agent.Run(ctx, goal, cfg.runOptions()...)
			if err != nil {
				// Misuse such as an empty goal affects only this entry.
				logger.Warn("run rejected", "goal", goal, "error", err)
				results[i].Error = err.Error()
				return nil
			}

			results[i].RunID = report.RunID
			results[i].Verdict = report.Verdict
			results[i].Termination = report.Termination
			results[i].Steps = report.StepCount
			results[i].Error = report.Error
			logger.Info("run finished", "goal", goal, "verdict", report.Verdict)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func readGoals(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open goals file", goerr.V("path", path))
	}
	defer func() { _ = f.Close() }()

	var goals []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		goals = append(goals, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to read goals file", goerr.V("path", path))
	}
	return goals, nil
}
