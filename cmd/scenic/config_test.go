package main_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/scenic"
	main "github.com/m-mizutani/scenic/cmd/scenic"
)

func TestParseHeaders(t *testing.T) {
	headers, err := main.ParseHeaders([]string{"Authorization: Bearer abc", "X-Trace:1"})
	gt.NoError(t, err).Required()
	gt.Equal(t, headers["Authorization"], "Bearer abc")
	gt.Equal(t, headers["X-Trace"], "1")

	_, err = main.ParseHeaders([]string{"no-colon"})
	gt.Error(t, err)

	_, err = main.ParseHeaders([]string{": value"})
	gt.Error(t, err)
}

func TestParseJSONObject(t *testing.T) {
	obj, err := main.ParseJSONObject(`{"menu_path":"Edit/Play"}`)
	gt.NoError(t, err)
	gt.Equal[any](t, obj["menu_path"], "Edit/Play")

	obj, err = main.ParseJSONObject("  ")
	gt.NoError(t, err)
	gt.Nil(t, obj)

	_, err = main.ParseJSONObject(`["x"]`)
	gt.Error(t, err)
}

func TestLoadAttachments(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	gt.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	imgPath := filepath.Join(dir, "sketch.png")
	gt.NoError(t, os.WriteFile(imgPath, buf.Bytes(), 0600))
	txtPath := filepath.Join(dir, "notes.txt")
	gt.NoError(t, os.WriteFile(txtPath, []byte("hello"), 0600))

	t.Run("description", func(t *testing.T) {
		attachments, err := main.LoadAttachments([]string{imgPath + "=layout sketch"})
		gt.NoError(t, err).Required()
		gt.A(t, attachments).Length(1)
		gt.Equal(t, attachments[0].Description, "layout sketch")
		gt.Equal(t, attachments[0].Image.MimeType(), "image/png")
	})

	t.Run("file name as description", func(t *testing.T) {
		attachments, err := main.LoadAttachments([]string{imgPath})
		gt.NoError(t, err).Required()
		gt.Equal(t, attachments[0].Description, "sketch.png")
	})

	t.Run("not an image", func(t *testing.T) {
		_, err := main.LoadAttachments([]string{txtPath})
		gt.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := main.LoadAttachments([]string{filepath.Join(dir, "none.png")})
		gt.Error(t, err)
	})
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := main.NewLogger(&buf, "json", "debug")
	gt.NoError(t, err).Required()
	logger.Debug("hello", "k", "v")
	gt.S(t, buf.String()).Contains(`"msg":"hello"`)

	buf.Reset()
	logger, err = main.NewLogger(&buf, "text", "warn")
	gt.NoError(t, err).Required()
	logger.Info("hidden")
	gt.Equal(t, buf.Len(), 0)
	gt.True(t, logger.Enabled(context.Background(), slog.LevelWarn))

	_, err = main.NewLogger(&buf, "xml", "info")
	gt.Error(t, err)
	_, err = main.NewLogger(&buf, "text", "loud")
	gt.Error(t, err)
}

func TestNewLLMClient(t *testing.T) {
	ctx := context.Background()

	_, err := main.NewAgentConfig("unknown").NewLLMClient(ctx)
	gt.Error(t, err)

	// API key is mandatory for OpenAI
	_, err = main.NewAgentConfig("openai").NewLLMClient(ctx)
	gt.Error(t, err)
}

func TestFormatStep(t *testing.T) {
	line := main.FormatStep(scenic.Step{
		Index:      2,
		Action:     &scenic.ToolInvocation{ToolName: "manage_gameobject", Rejection: "unknown"},
		Verdict:    scenic.StepFailed,
		Goal:       scenic.GoalNotAchieved,
		GoalReason: "nothing there",
		Degraded:   []string{"describe: timeout"},
	})
	gt.S(t, line).Contains("step 2: manage_gameobject [rejected] -> failed")
	gt.S(t, line).Contains("nothing there")
	gt.S(t, line).Contains("(1 degraded)")

	gt.S(t, main.FormatStep(scenic.Step{Index: 1})).Contains("(no action)")
}

func TestReadGoals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goals.txt")
	gt.NoError(t, os.WriteFile(path, []byte("# sample goals\nplace a red cube\n\n  add a light  \n"), 0600))

	goals, err := main.ReadGoals(path)
	gt.NoError(t, err)
	gt.Equal(t, goals, []string{"place a red cube", "add a light"})

	_, err = main.ReadGoals(filepath.Join(t.TempDir(), "none.txt"))
	gt.Error(t, err)
}

func TestRunGoal(t *testing.T) {
	var out bytes.Buffer
	report, err := main.RunGoal(context.Background(), newTestAgent(t, 2), "place a red cube", &out)
	gt.NoError(t, err).Required()
	gt.Equal(t, report.Verdict, scenic.RunAchieved)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	gt.A(t, lines).Length(3)
	gt.S(t, lines[0]).Contains("step 1: (no action) -> partial")
	gt.S(t, lines[2]).Contains("result: achieved (achieved) after 2 step(s)")

	_, err = main.RunGoal(context.Background(), newTestAgent(t, 1), "", &out)
	gt.Error(t, err)
}
