package simscene_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/scenic"
	"github.com/m-mizutani/scenic/internal"
	"github.com/m-mizutani/scenic/internal/simscene"
	"github.com/m-mizutani/scenic/mcp"
	"github.com/m-mizutani/scenic/mock"
)

func connect(t *testing.T, s *simscene.Scene, options ...mcp.Option) *mcp.Client {
	t.Helper()
	client, err := mcp.NewInProcess(context.Background(), s.MCPServer(), options...)
	gt.NoError(t, err).Required()
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestServerTools(t *testing.T) {
	s := simscene.New()
	client := connect(t, s)
	ctx := context.Background()

	names := []string{}
	for _, c := range client.Capabilities() {
		names = append(names, c.Name)
	}
	gt.A(t, names).Length(3)

	result, err := client.Invoke(ctx, &scenic.ToolInvocation{
		ToolName: simscene.ToolManageGameObject,
		Arguments: map[string]any{
			"action":   "create",
			"name":     "Cube",
			"color":    "red",
			"position": map[string]any{"x": 1, "y": 0, "z": 2},
		},
	})
	gt.NoError(t, err).Required()
	gt.True(t, result.Success)

	cube, err := s.Find("Cube")
	gt.NoError(t, err)
	gt.Equal(t, cube.Position, simscene.Vec3{X: 1, Z: 2})

	result, err = client.Invoke(ctx, &scenic.ToolInvocation{
		ToolName:  simscene.ToolManageGameObject,
		Arguments: map[string]any{"action": "create", "name": "Cube"},
	})
	gt.NoError(t, err)
	gt.False(t, result.Success)

	result, err = client.Invoke(ctx, &scenic.ToolInvocation{
		ToolName:  simscene.ToolManageGameObject,
		Arguments: map[string]any{"action": "add_component", "objectName": "Cube", "componentType": "Rigidbody"},
	})
	gt.NoError(t, err)
	gt.True(t, result.Success)

	result, err = client.Invoke(ctx, &scenic.ToolInvocation{
		ToolName:  simscene.ToolExecuteMenuItem,
		Arguments: map[string]any{"menu_path": "File/Quit"},
	})
	gt.NoError(t, err)
	gt.False(t, result.Success)

	result, err = client.Invoke(ctx, &scenic.ToolInvocation{ToolName: simscene.ToolRenderScene})
	gt.NoError(t, err).Required()
	gt.NotNil(t, result.Image)
	gt.Equal(t, result.Image.MimeType(), "image/png")
}

func TestServerPlayModeRitual(t *testing.T) {
	s := simscene.New(simscene.WithRequirePlayMode())

	plain := connect(t, s)
	result, err := plain.Invoke(context.Background(), &scenic.ToolInvocation{ToolName: simscene.ToolRenderScene})
	gt.NoError(t, err)
	gt.False(t, result.Success)

	active := connect(t, s,
		mcp.WithActiveModeToggle(simscene.ToolExecuteMenuItem, map[string]any{"menu_path": simscene.MenuPlay}),
		mcp.WithSettleDelay(time.Millisecond),
	)
	result, err = active.Invoke(context.Background(), &scenic.ToolInvocation{ToolName: simscene.ToolRenderScene})
	gt.NoError(t, err)
	gt.True(t, result.Success)
	gt.NotNil(t, result.Image)
	gt.False(t, s.Playing())
}

func TestAgentAgainstSimulatedScene(t *testing.T) {
	s := simscene.New()
	connector := scenic.ConnectorFunc(func(ctx context.Context, endpoint string) (scenic.ToolChannel, error) {
		return mcp.NewInProcess(ctx, s.MCPServer())
	})

	reasoner := &mock.ReasonerMock{
		PlanFunc: func(ctx context.Context, req *scenic.PlanRequest) (*scenic.Plan, error) {
			for _, c := range req.Capabilities {
				gt.NotEqual(t, c.Name, simscene.ToolRenderScene)
			}
			if len(req.Memory) == 0 {
				return &scenic.Plan{
					Thought: "create a red cube",
					Action: &scenic.ToolInvocation{
						ToolName:  simscene.ToolManageGameObject,
						Arguments: map[string]any{"action": "create", "name": "Cube", "color": "red"},
					},
				}, nil
			}
			return &scenic.Plan{Thought: "the cube should be there"}, nil
		},
	}

	var judged int
	vision := &mock.VisionEvaluatorMock{
		DescribeFunc: func(ctx context.Context, snap *scenic.Snapshot) (string, error) {
			gt.True(t, snap.Available())
			return "a gray floor", nil
		},
		CompareFunc: func(ctx context.Context, before, after *scenic.Snapshot, question string) (string, error) {
			return "an object appeared", nil
		},
		JudgeGoalFunc: func(ctx context.Context, req *scenic.JudgeRequest) (*scenic.Judgment, error) {
			judged++
			if _, err := s.Find("Cube"); err == nil && judged > 1 {
				return &scenic.Judgment{Verdict: scenic.GoalAchieved, Reason: "cube visible", Recognized: true}, nil
			}
			return &scenic.Judgment{Verdict: scenic.GoalPartial, Reason: "not sure yet", Recognized: true}, nil
		},
	}

	agent := scenic.New(connector, reasoner, vision,
		scenic.WithEndpoint("in-process"),
		scenic.WithMaxSteps(5),
		scenic.WithLogger(internal.TestLogger()),
	)
	report, err := agent.Run(context.Background(), "place a red cube in the scene")
	gt.NoError(t, err).Required()

	gt.Equal(t, report.Verdict, scenic.RunAchieved)
	gt.A(t, report.Steps).Length(2)
	gt.True(t, report.Steps[0].Result.Success)
	gt.Equal(t, report.Steps[0].Verdict, scenic.StepPartial)
	gt.A(t, report.Steps[0].Degraded).Length(0)
	gt.Equal(t, report.BestVerdict, scenic.GoalAchieved)
}
