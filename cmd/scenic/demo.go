package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scenic"
	"github.com/m-mizutani/scenic/internal/simscene"
	"github.com/m-mizutani/scenic/mcp"
	"github.com/urfave/cli/v3"
)

func demoCommand() *cli.Command {
	var (
		cfg         agentConfig
		requirePlay bool
		imagePath   string
		output      string
	)

	return &cli.Command{
		Name:      "demo",
		Usage:     "Run a goal against the built-in simulated scene editor",
		ArgsUsage: "[GOAL]",
		Flags: append(agentFlags(&cfg),
			&cli.BoolFlag{
				Name:        "require-play-mode",
				Usage:       "Render only in play mode, exercising the play toggle ritual",
				Destination: &requirePlay,
			},
			&cli.StringFlag{
				Name:        "image",
				Usage:       "Write the final rendered scene as PNG to this file",
				Destination: &imagePath,
			},
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
				goal = exampleGoals[1]
			}

			scene := newDemoScene(requirePlay)
			cfg.renderTool = simscene.ToolRenderScene
			cfg.endpoint = "in-process"

			agent, err := cfg.newAgent(ctx, demoConnector(scene, &cfg, requirePlay))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := runGoal(ctx, agent, &cfg, goal, os.Stdout)
			if err != nil {
				return err
			}

			if imagePath != "" {
				if err := writeSceneImage(scene, requirePlay, imagePath); err != nil {
					return err
				}
			}
			return writeReport(output, report)
		},
	}
}

func newDemoScene(requirePlay bool) *simscene.Scene {
	var options []simscene.Option
	if requirePlay {
		options = append(options, simscene.WithRequirePlayMode())
	}
	return simscene.New(options...)
}

// demoConnector serves every Connect from the same scene over an in-process MCP client.
func demoConnector(scene *simscene.Scene, cfg *agentConfig, requirePlay bool) scenic.Connector {
	options := []mcp.Option{
		mcp.WithRenderTool(simscene.ToolRenderScene),
		mcp.WithSettleDelay(cfg.settle),
	}
	if requirePlay {
		options = append(options, mcp.WithActiveModeToggle(simscene.ToolExecuteMenuItem, map[string]any{
			"menu_path": simscene.MenuPlay,
		}))
	}

	return scenic.ConnectorFunc(func(ctx context.Context, endpoint string) (scenic.ToolChannel, error) {
		c, err := mcp.NewInProcess(ctx, scene.MCPServer(), options...)
		if err != nil {
			return nil, err
		}
		return c, nil
	})
}

func writeSceneImage(scene *simscene.Scene, requirePlay bool, path string) error {
	if requirePlay && !scene.Playing() {
		scene.TogglePlay()
		defer scene.TogglePlay()
	}

	data, err := scene.Render()
	if err != nil {
		return goerr.Wrap(err, "failed to render scene")
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return goerr.Wrap(err, "failed to write scene image", goerr.V("path", path))
	}
	return nil
}
