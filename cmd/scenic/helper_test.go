package main_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/scenic"
	"github.com/m-mizutani/scenic/mock"
)

func testPNG(t *testing.T) scenic.Image {
	t.Helper()
	var buf bytes.Buffer
	gt.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	img, err := scenic.NewImage(buf.Bytes())
	gt.NoError(t, err).Required()
	return img
}

// newTestAgent returns an agent whose goal is judged achieved once judgeAt steps are done.
func newTestAgent(t *testing.T, judgeAt int, options ...scenic.Option) *scenic.Agent {
	t.Helper()
	img := testPNG(t)

	connector := &mock.ConnectorMock{
		ConnectFunc: func(ctx context.Context, endpoint string) (scenic.ToolChannel, error) {
			return &mock.ToolChannelMock{
				CapabilitiesFunc: func() []scenic.Capability {
					return []scenic.Capability{{Name: scenic.DefaultRenderTool}}
				},
				InvokeFunc: func(ctx context.Context, inv *scenic.ToolInvocation) (*scenic.ToolResult, error) {
					return &scenic.ToolResult{ToolName: inv.ToolName, Success: true, Image: &img}, nil
				},
				CloseFunc: func() error { return nil },
			}, nil
		},
	}
	reasoner := &mock.ReasonerMock{
		PlanFunc: func(ctx context.Context, req *scenic.PlanRequest) (*scenic.Plan, error) {
			return &scenic.Plan{Thought: "look again"}, nil
		},
	}
	vision := &mock.VisionEvaluatorMock{
		DescribeFunc: func(ctx context.Context, snap *scenic.Snapshot) (string, error) {
			return "a room", nil
		},
		CompareFunc: func(ctx context.Context, before, after *scenic.Snapshot, question string) (string, error) {
			return "no change", nil
		},
		JudgeGoalFunc: func(ctx context.Context, req *scenic.JudgeRequest) (*scenic.Judgment, error) {
			// History holds one line per finished step plus the current one.
			if bytes.Count([]byte(req.History), []byte("\n"))+1 >= judgeAt {
				return &scenic.Judgment{Verdict: scenic.GoalAchieved, Reason: "looks right", Recognized: true}, nil
			}
			return &scenic.Judgment{Verdict: scenic.GoalPartial, Recognized: true}, nil
		},
	}

	return scenic.New(connector, reasoner, vision, options...)
}
