package claude_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"log/slog"
	"os"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/scenic"
	"github.com/m-mizutani/scenic/llm/claude"
)

func testImage(t *testing.T) scenic.Image {
	t.Helper()
	var buf bytes.Buffer
	gt.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	img, err := scenic.NewImage(buf.Bytes())
	gt.NoError(t, err).Required()
	return img
}

func TestConvertInputs(t *testing.T) {
	blocks, err := claude.ConvertInputs(scenic.Text("describe"), testImage(t))
	gt.NoError(t, err).Required()
	gt.A(t, blocks).Length(2)
	gt.NotNil(t, blocks[0].OfText)
	gt.Equal(t, blocks[0].OfText.Text, "describe")
	gt.NotNil(t, blocks[1].OfImage)
}

func TestProcessResponse(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		resp, err := claude.ProcessResponse(nil)
		gt.NoError(t, err)
		gt.A(t, resp.Texts).Length(0)
	})

	t.Run("text and tool use", func(t *testing.T) {
		resp, err := claude.ProcessResponse(&anthropic.Message{
			Content: []anthropic.ContentBlockUnion{
				{Type: "text", Text: `{"verdict":"achieved"}`},
				{Type: "tool_use", ID: "toolu_1", Name: "create_object", Input: []byte(`{"name":"cube"}`)},
			},
			Usage: anthropic.Usage{InputTokens: 12, OutputTokens: 3},
		})
		gt.NoError(t, err).Required()
		gt.Equal(t, resp.Texts, []string{`{"verdict":"achieved"}`})
		gt.A(t, resp.FunctionCalls).Length(1)
		gt.Equal(t, resp.FunctionCalls[0].Name, "create_object")
		gt.Equal[any](t, resp.FunctionCalls[0].Arguments["name"], "cube")
		gt.Equal(t, resp.InputToken, 12)
		gt.Equal(t, resp.OutputToken, 3)
	})
}

func TestSessionParams(t *testing.T) {
	var got anthropic.MessageNewParams
	client := claude.NewWithAPIClient(func(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
		got = params
		return &anthropic.Message{Content: []anthropic.ContentBlockUnion{{Type: "text", Text: "GOAL_PARTIAL"}}}, nil
	}, claude.WithModel("claude-test"), claude.WithSystemPrompt("client prompt"))

	t.Run("json session", func(t *testing.T) {
		session, err := client.NewSession(context.Background(),
			scenic.WithSessionSystemPrompt("judge"),
			scenic.WithSessionContentType(scenic.ContentTypeJSON),
		)
		gt.NoError(t, err).Required()

		resp, err := session.GenerateContent(context.Background(), scenic.Text("goal"))
		gt.NoError(t, err).Required()
		gt.Equal(t, resp.Texts, []string{"GOAL_PARTIAL"})

		gt.Equal(t, string(got.Model), "claude-test")
		gt.Equal(t, got.MaxTokens, int64(4096))
		gt.A(t, got.System).Length(1)
		gt.Equal(t, got.System[0].Text, "judge\n\n"+claude.JSONInstruction)
		gt.A(t, got.Messages).Length(1)
	})

	t.Run("falls back to client prompt", func(t *testing.T) {
		session, err := client.NewSession(context.Background())
		gt.NoError(t, err).Required()
		_, err = session.GenerateContent(context.Background(), scenic.Text("hi"))
		gt.NoError(t, err)
		gt.Equal(t, got.System[0].Text, "client prompt")
	})
}

func TestSessionAPIError(t *testing.T) {
	client := claude.NewWithAPIClient(func(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
		return nil, errors.New("overloaded")
	})
	session, err := client.NewSession(context.Background())
	gt.NoError(t, err).Required()
	_, err = session.GenerateContent(context.Background(), scenic.Text("hi"))
	gt.Error(t, err)
}

func TestClaudeContentGenerate(t *testing.T) {
	apiKey, ok := os.LookupEnv("TEST_CLAUDE_API_KEY")
	if !ok {
		t.Skip("TEST_CLAUDE_API_KEY is not set")
	}

	ctx := ctxlog.With(context.Background(), slog.New(slog.NewTextHandler(os.Stdout, nil)))
	client, err := claude.New(ctx, apiKey)
	gt.NoError(t, err).Required()

	session, err := client.NewSession(ctx, scenic.WithSessionContentType(scenic.ContentTypeJSON))
	gt.NoError(t, err).Required()

	resp, err := session.GenerateContent(ctx, scenic.Text(`Return {"greeting": "hello"}`))
	gt.NoError(t, err)
	gt.A(t, resp.Texts).Longer(0)
}
