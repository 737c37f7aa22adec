package openai_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/scenic"
	"github.com/m-mizutani/scenic/llm/openai"
	goopenai "github.com/sashabaranov/go-openai"
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
	img := testImage(t)
	parts, err := openai.ConvertInputs(goopenai.ImageURLDetailLow, scenic.Text("what is this?"), img)
	gt.NoError(t, err).Required()
	gt.A(t, parts).Length(2)
	gt.Equal(t, parts[0].Text, "what is this?")
	gt.True(t, strings.HasPrefix(parts[1].ImageURL.URL, "data:image/png;base64,"))
	gt.Equal(t, parts[1].ImageURL.Detail, goopenai.ImageURLDetailLow)
}

func TestProcessResponse(t *testing.T) {
	t.Run("text and tool call", func(t *testing.T) {
		resp, err := openai.ProcessResponse(goopenai.ChatCompletionResponse{
			Choices: []goopenai.ChatCompletionChoice{{
				Message: goopenai.ChatCompletionMessage{
					Content: "creating",
					ToolCalls: []goopenai.ToolCall{{
						ID:       "call_1",
						Function: goopenai.FunctionCall{Name: "create_object", Arguments: `{"name":"cube"}`},
					}},
				},
			}},
			Usage: goopenai.Usage{PromptTokens: 20, CompletionTokens: 4},
		})
		gt.NoError(t, err).Required()
		gt.Equal(t, resp.Texts, []string{"creating"})
		gt.Equal(t, resp.FunctionCalls[0].ID, "call_1")
		gt.Equal[any](t, resp.FunctionCalls[0].Arguments["name"], "cube")
		gt.Equal(t, resp.InputToken, 20)
	})

	t.Run("broken tool arguments", func(t *testing.T) {
		_, err := openai.ProcessResponse(goopenai.ChatCompletionResponse{
			Choices: []goopenai.ChatCompletionChoice{{
				Message: goopenai.ChatCompletionMessage{
					ToolCalls: []goopenai.ToolCall{{Function: goopenai.FunctionCall{Name: "x", Arguments: "{"}}},
				},
			}},
		})
		gt.Error(t, err)
	})
}

func TestSessionRequest(t *testing.T) {
	var got goopenai.ChatCompletionRequest
	client := openai.NewWithAPIClient(func(ctx context.Context, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error) {
		got = req
		return goopenai.ChatCompletionResponse{
			Choices: []goopenai.ChatCompletionChoice{{Message: goopenai.ChatCompletionMessage{Content: `{"verdict":"partial"}`}}},
		}, nil
	}, openai.WithModel("gpt-test"), openai.WithTemperature(0.8))

	session, err := client.NewSession(context.Background(),
		scenic.WithSessionSystemPrompt("judge the scene"),
		scenic.WithSessionContentType(scenic.ContentTypeJSON),
	)
	gt.NoError(t, err).Required()

	resp, err := session.GenerateContent(context.Background(), scenic.Text("goal"), testImage(t))
	gt.NoError(t, err).Required()
	gt.Equal(t, resp.Texts, []string{`{"verdict":"partial"}`})

	gt.Equal(t, got.Model, "gpt-test")
	gt.Equal(t, got.Temperature, float32(0.8))
	gt.A(t, got.Messages).Length(2)
	gt.Equal(t, got.Messages[0].Role, goopenai.ChatMessageRoleSystem)
	gt.Equal(t, got.Messages[0].Content, "judge the scene")
	gt.A(t, got.Messages[1].MultiContent).Length(2)
	gt.Equal(t, got.ResponseFormat.Type, goopenai.ChatCompletionResponseFormatTypeJSONObject)
}

func TestOpenAIContentGenerate(t *testing.T) {
	apiKey, ok := os.LookupEnv("TEST_OPENAI_API_KEY")
	if !ok {
		t.Skip("TEST_OPENAI_API_KEY is not set")
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx = ctxlog.With(ctx, logger)

	client, err := openai.New(ctx, apiKey)
	gt.NoError(t, err).Required()

	session, err := client.NewSession(ctx)
	gt.NoError(t, err)

	result, err := session.GenerateContent(ctx, scenic.Text("Say hello in one word"))
	gt.NoError(t, err)
	gt.A(t, result.Texts).Longer(0)
}
