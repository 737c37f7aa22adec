package trace

import "context"

// Handler is the interface for trace backends.
// Implementations receive lifecycle events during a run and can record, export, or forward them.
type Handler interface {
	// StartRun starts the root span of a run.
	StartRun(ctx context.Context, goal string) context.Context
	// EndRun ends the root span with the final verdict of the run.
	EndRun(ctx context.Context, verdict string, err error)

	// StartStep starts a span for one loop iteration.
	StartStep(ctx context.Context, index int) context.Context
	// EndStep ends the step span.
	EndStep(ctx context.Context, data *StepData)

	// StartLLMCall starts an LLM call span. purpose tells which collaborator issued it
	// (e.g. "plan", "describe", "judge_goal").
	StartLLMCall(ctx context.Context, purpose string) context.Context
	// EndLLMCall ends an LLM call span with the given data.
	EndLLMCall(ctx context.Context, data *LLMCallData, err error)

	// StartToolExec starts a tool execution span.
	StartToolExec(ctx context.Context, toolName string, args map[string]any) context.Context
	// EndToolExec ends a tool execution span with the result.
	EndToolExec(ctx context.Context, result map[string]any, err error)

	// AddEvent adds an event to the current span.
	AddEvent(ctx context.Context, kind string, data any)

	// Finish completes the trace and performs any final operations.
	Finish(ctx context.Context) error
}
