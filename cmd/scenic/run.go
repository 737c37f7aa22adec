package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scenic"
	"github.com/urfave/cli/v3"
)

func runCommand() *cli.Command {
	var cfg agentConfig
	var output string

	return &cli.Command{
		Name:      "run",
		Usage:     "Pursue a single goal against an MCP scene editor",
		ArgsUsage: "GOAL",
		Flags: append(agentFlags(&cfg),
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "Write the run report as JSON to this file (\"-\" for stdout)",
				Destination: &output,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			goal := strings.Join(cmd.Args().Slice(), " ")
			if strings.TrimSpace(goal) == "" {
				return goerr.New("goal is required")
			}

			agent, err := cfg.newAgent(ctx, nil)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := runGoal(ctx, agent, &cfg, goal, os.Stdout)
			if err != nil {
				return err
			}
			return writeReport(output, report)
		},
	}
}

// runGoal runs goal and prints one line per completed step to w.
func runGoal(ctx context.Context, agent *scenic.Agent, cfg *agentConfig, goal string, w io.Writer) (*scenic.Report, error) {
	options := append(cfg.runOptions(), scenic.WithStepHook(func(ctx context.Context, step scenic.Step) error {
		_, err := fmt.Fprintln(w, formatStep(step))
		return err
	}))

	report, err := agent.Run(ctx, goal, options...)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(w, "result: %s (%s) after %d step(s)\n", report.Verdict, report.Termination, report.StepCount)
	if report.Error != "" {
		fmt.Fprintf(w, "error: %s\n", report.Error)
	}
	return report, nil
}

func formatStep(step scenic.Step) string {
	action := "(no action)"
	if step.Action != nil {
		action = step.Action.ToolName
		if step.Action.Rejection != "" {
			action += " [rejected]"
		}
	}

	line := fmt.Sprintf("step %d: %s -> %s, goal %s", step.Index, action, step.Verdict, step.Goal)
	if step.GoalReason != "" {
		line += ": " + step.GoalReason
	}
	if len(step.Degraded) > 0 {
		line += fmt.Sprintf(" (%d degraded)", len(step.Degraded))
	}
	return line
}

func writeReport(output string, report *scenic.Report) error {
	if output == "" {
		return nil
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal report")
	}
	if output == "-" {
		_, err := fmt.Println(string(data))
		return err
	}
	if err := os.WriteFile(output, data, 0600); err != nil {
		return goerr.Wrap(err, "failed to write report", goerr.V("path", output))
	}
	return nil
}
