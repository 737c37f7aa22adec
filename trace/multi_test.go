package trace_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/scenic/trace"
)

func TestMultiHandlerFanOut(t *testing.T) {
	rec1 := trace.New()
	rec2 := trace.New()
	multi := trace.Multi(rec1, rec2)

	runCtx := multi.StartRun(context.Background(), "goal")
	stepCtx := multi.StartStep(runCtx, 1)

	llmCtx := multi.StartLLMCall(stepCtx, "plan")
	multi.EndLLMCall(llmCtx, &trace.LLMCallData{InputTokens: 10}, nil)

	toolCtx := multi.StartToolExec(stepCtx, "manage_gameobject", map[string]any{"name": "Cube"})
	multi.EndToolExec(toolCtx, map[string]any{"ok": true}, nil)

	multi.AddEvent(stepCtx, "note", nil)
	multi.EndStep(stepCtx, &trace.StepData{Index: 1, Verdict: "continuing"})
	multi.EndRun(runCtx, "not_achieved", nil)

	for _, rec := range []*trace.Recorder{rec1, rec2} {
		tr := rec.Trace()
		gt.Value(t, tr).NotNil()
		gt.A(t, tr.RootSpan.Children).Length(1)

		step := tr.RootSpan.Children[0]
		gt.A(t, step.Children).Length(3) // llm_call + tool_exec + event
		gt.Equal(t, step.Children[0].Kind, trace.SpanKindLLMCall)
		gt.Equal(t, step.Children[1].Kind, trace.SpanKindToolExec)
		gt.Equal(t, step.Children[2].Kind, trace.SpanKindEvent)
		gt.Equal(t, tr.RootSpan.Run.Verdict, "not_achieved")
	}
}

func TestMultiHandlerIsolation(t *testing.T) {
	rec1 := trace.New(trace.WithTraceID("one"))
	rec2 := trace.New(trace.WithTraceID("two"))
	multi := trace.Multi(rec1, nil, rec2)

	ctx := multi.StartRun(context.Background(), "goal")
	multi.EndRun(ctx, "achieved", nil)

	gt.Equal(t, rec1.Trace().TraceID, "one")
	gt.Equal(t, rec2.Trace().TraceID, "two")
	gt.True(t, rec1.Trace().RootSpan != rec2.Trace().RootSpan)
}

type failingRepository struct{}

func (failingRepository) Save(context.Context, *trace.Trace) error {
	return errors.New("save failed")
}

func TestMultiHandlerFinishJoinsErrors(t *testing.T) {
	ok := trace.New()
	bad := trace.New(trace.WithRepository(failingRepository{}))
	multi := trace.Multi(ok, bad)

	ctx := multi.StartRun(context.Background(), "goal")
	multi.EndRun(ctx, "achieved", nil)

	err := multi.Finish(ctx)
	gt.Error(t, err)
	gt.S(t, err.Error()).Contains("save failed")
}
