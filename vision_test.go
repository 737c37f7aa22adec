package scenic_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/scenic"
	"github.com/m-mizutani/scenic/mock"
)

func TestParseJudgment(t *testing.T) {
	type testCase struct {
		input      string
		verdict    scenic.GoalVerdict
		recognized bool
	}

	runTest := func(tc testCase) func(t *testing.T) {
		return func(t *testing.T) {
			j := scenic.ParseJudgment(tc.input)
			gt.Equal(t, j.Verdict, tc.verdict)
			gt.Equal(t, j.Recognized, tc.recognized)
			gt.Equal(t, j.Raw, tc.input)
		}
	}

	t.Run("strict json", runTest(testCase{
		input:      `{"verdict":"achieved","reason":"cube is visible"}`,
		verdict:    scenic.GoalAchieved,
		recognized: true,
	}))
	t.Run("json in code block", runTest(testCase{
		input:      "Here you go:\n```json\n{\"verdict\": \"partial\", \"reason\": \"no light\"}\n```",
		verdict:    scenic.GoalPartial,
		recognized: true,
	}))
	t.Run("json surrounded by prose", runTest(testCase{
		input:      `I think {"verdict": "Not Achieved", "reason": "empty"} is right`,
		verdict:    scenic.GoalNotAchieved,
		recognized: true,
	}))
	t.Run("marker achieved", runTest(testCase{
		input:      "The red cube is on the table. GOAL_ACHIEVED",
		verdict:    scenic.GoalAchieved,
		recognized: true,
	}))
	t.Run("marker partial", runTest(testCase{
		input:      "GOAL_PARTIAL: the cube exists but is blue",
		verdict:    scenic.GoalPartial,
		recognized: true,
	}))
	t.Run("marker not achieved", runTest(testCase{
		input:      "GOAL_NOT_ACHIEVED",
		verdict:    scenic.GoalNotAchieved,
		recognized: true,
	}))
	t.Run("conflicting markers", runTest(testCase{
		input:      "either GOAL_ACHIEVED or GOAL_NOT_ACHIEVED",
		verdict:    scenic.GoalNotAchieved,
		recognized: false,
	}))
	t.Run("unknown verdict in json", runTest(testCase{
		input:      `{"verdict":"maybe"}`,
		verdict:    scenic.GoalNotAchieved,
		recognized: false,
	}))
	t.Run("free text", runTest(testCase{
		input:      "Looks good to me!",
		verdict:    scenic.GoalNotAchieved,
		recognized: false,
	}))
	t.Run("empty", runTest(testCase{
		input:      "",
		verdict:    scenic.GoalNotAchieved,
		recognized: false,
	}))
}

func TestParseJudgmentIsDeterministic(t *testing.T) {
	inputs := []string{
		`{"verdict":"partial","reason":"half"}`,
		"GOAL_ACHIEVED",
		"GOAL_PARTIAL GOAL_ACHIEVED",
		"nothing useful",
	}
	for _, in := range inputs {
		first := *scenic.ParseJudgment(in)
		for range 5 {
			gt.Equal(t, *scenic.ParseJudgment(in), first)
		}
	}
}

func newTextClient(t *testing.T, texts ...string) *mock.LLMClientMock {
	t.Helper()
	return &mock.LLMClientMock{
		NewSessionFunc: func(ctx context.Context, options ...scenic.SessionOption) (scenic.Session, error) {
			return &mock.SessionMock{
				GenerateContentFunc: func(ctx context.Context, input ...scenic.Input) (*scenic.Response, error) {
					return &scenic.Response{Texts: texts, InputToken: 10, OutputToken: 5}, nil
				},
			}, nil
		},
	}
}

func TestVisionDescribe(t *testing.T) {
	img := testPNG(t)

	t.Run("sends image", func(t *testing.T) {
		var inputs []scenic.Input
		client := &mock.LLMClientMock{
			NewSessionFunc: func(ctx context.Context, options ...scenic.SessionOption) (scenic.Session, error) {
				cfg := scenic.NewSessionConfig(options...)
				gt.Equal(t, cfg.ContentType(), scenic.ContentTypeText)
				gt.NotEqual(t, cfg.SystemPrompt(), "")
				return &mock.SessionMock{
					GenerateContentFunc: func(ctx context.Context, input ...scenic.Input) (*scenic.Response, error) {
						inputs = input
						return &scenic.Response{Texts: []string{"  a red cube  "}}, nil
					},
				}, nil
			},
		}

		v := scenic.NewVision(client)
		desc, err := v.Describe(context.Background(), &scenic.Snapshot{Label: "original", Image: &img})
		gt.NoError(t, err)
		gt.Equal(t, desc, "a red cube")
		gt.A(t, inputs).Length(2)
		gt.S(t, inputs[0].String()).Contains(`"original"`)
		_, isImage := inputs[1].(scenic.Image)
		gt.True(t, isImage)
	})

	t.Run("degraded snapshot uses placeholder", func(t *testing.T) {
		client := newTextClient(t, "never")
		v := scenic.NewVision(client)
		desc, err := v.Describe(context.Background(), &scenic.Snapshot{Label: "original", Failure: "render timeout"})
		gt.NoError(t, err)
		gt.Equal(t, desc, scenic.PlaceholderDescription("render timeout"))
		gt.A(t, client.NewSessionCalls()).Length(0)
	})

	t.Run("llm failure", func(t *testing.T) {
		client := &mock.LLMClientMock{
			NewSessionFunc: func(ctx context.Context, options ...scenic.SessionOption) (scenic.Session, error) {
				return nil, errors.New("quota")
			},
		}
		_, err := scenic.NewVision(client).Describe(context.Background(), &scenic.Snapshot{Image: &img})
		gt.Error(t, err)
	})

	t.Run("empty response is an error", func(t *testing.T) {
		client := newTextClient(t)
		_, err := scenic.NewVision(client).Describe(context.Background(), &scenic.Snapshot{Image: &img})
		gt.Error(t, err)
	})
}

func TestVisionCompare(t *testing.T) {
	img := testPNG(t)
	before := &scenic.Snapshot{Label: scenic.SnapshotOriginal, Image: &img}
	after := &scenic.Snapshot{Label: scenic.SnapshotModified, Image: &img}

	t.Run("two images", func(t *testing.T) {
		var count int
		client := &mock.LLMClientMock{
			NewSessionFunc: func(ctx context.Context, options ...scenic.SessionOption) (scenic.Session, error) {
				return &mock.SessionMock{
					GenerateContentFunc: func(ctx context.Context, input ...scenic.Input) (*scenic.Response, error) {
						for _, in := range input {
							if _, ok := in.(scenic.Image); ok {
								count++
							}
						}
						return &scenic.Response{Texts: []string{"a cube was added"}}, nil
					},
				}, nil
			},
		}
		out, err := scenic.NewVision(client).Compare(context.Background(), before, after, "what changed?")
		gt.NoError(t, err)
		gt.Equal(t, out, "a cube was added")
		gt.Equal(t, count, 2)
	})

	t.Run("missing image falls back to describe", func(t *testing.T) {
		client := newTextClient(t, "only after")
		out, err := scenic.NewVision(client).Compare(context.Background(),
			&scenic.Snapshot{Label: scenic.SnapshotOriginal, Failure: "x"}, after, "q")
		gt.NoError(t, err)
		gt.Equal(t, out, "only after")
	})

	t.Run("both missing", func(t *testing.T) {
		client := newTextClient(t, "never")
		out, err := scenic.NewVision(client).Compare(context.Background(),
			&scenic.Snapshot{Failure: "x"}, &scenic.Snapshot{Failure: "y"}, "q")
		gt.NoError(t, err)
		gt.Equal(t, out, scenic.PlaceholderDescription("y"))
		gt.A(t, client.NewSessionCalls()).Length(0)
	})
}

func TestVisionJudgeGoal(t *testing.T) {
	img := testPNG(t)

	t.Run("json verdict", func(t *testing.T) {
		var images int
		client := &mock.LLMClientMock{
			NewSessionFunc: func(ctx context.Context, options ...scenic.SessionOption) (scenic.Session, error) {
				gt.Equal(t, scenic.NewSessionConfig(options...).ContentType(), scenic.ContentTypeJSON)
				return &mock.SessionMock{
					GenerateContentFunc: func(ctx context.Context, input ...scenic.Input) (*scenic.Response, error) {
						gt.S(t, input[0].String()).Contains("place a red cube")
						gt.S(t, input[0].String()).Contains("step 1: create_object")
						for _, in := range input[1:] {
							if _, ok := in.(scenic.Image); ok {
								images++
							}
						}
						return &scenic.Response{Texts: []string{`{"verdict":"achieved","reason":"visible"}`}}, nil
					},
				}, nil
			},
		}

		j, err := scenic.NewVision(client).JudgeGoal(context.Background(), &scenic.JudgeRequest{
			Goal: "place a red cube",
			Snapshots: []*scenic.Snapshot{
				{Label: scenic.SnapshotOriginal, Image: &img},
				{Label: scenic.SnapshotModified, Image: &img},
			},
			History:     "step 1: create_object -> ok",
			Attachments: []scenic.Attachment{{Image: img, Description: "reference"}},
		})
		gt.NoError(t, err)
		gt.Equal(t, j.Verdict, scenic.GoalAchieved)
		gt.Equal(t, j.Reason, "visible")
		gt.Equal(t, images, 3)
	})

	t.Run("no image skips llm", func(t *testing.T) {
		client := newTextClient(t, "GOAL_ACHIEVED")
		j, err := scenic.NewVision(client).JudgeGoal(context.Background(), &scenic.JudgeRequest{
			Goal:      "place a red cube",
			Snapshots: []*scenic.Snapshot{{Failure: "no camera"}},
		})
		gt.NoError(t, err)
		gt.Equal(t, j.Verdict, scenic.GoalNotAchieved)
		gt.A(t, client.NewSessionCalls()).Length(0)
	})

	t.Run("unrecognized output", func(t *testing.T) {
		client := newTextClient(t, "sure thing")
		j, err := scenic.NewVision(client).JudgeGoal(context.Background(), &scenic.JudgeRequest{
			Goal:      "place a red cube",
			Snapshots: []*scenic.Snapshot{{Image: &img}},
		})
		gt.NoError(t, err)
		gt.Equal(t, j.Verdict, scenic.GoalNotAchieved)
		gt.False(t, j.Recognized)
		gt.Equal(t, j.Raw, "sure thing")
	})
}
