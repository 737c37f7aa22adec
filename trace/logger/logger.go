package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/scenic/trace"
)

// Event represents a trace event type that can be selectively enabled.
type Event int

const (
	// Run enables logging of run start/end.
	Run Event = iota
	// Step enables logging of each completed step.
	Step
	// LLMRequest enables logging of LLM request details (system prompt, texts).
	LLMRequest
	// LLMResponse enables logging of LLM response details (texts, function calls, token usage).
	LLMResponse
	// ToolExec enables logging of tool execution (name, args, result, duration).
	ToolExec
	// CustomEvent enables logging of events added with AddEvent.
	CustomEvent

	eventCount
)

type config struct {
	logger *slog.Logger
	events map[Event]bool
}

// Option configures the logger handler.
type Option func(*config)

// WithLogger sets a custom slog.Logger. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithEvents enables only the specified event types.
// When not specified, all events are enabled.
func WithEvents(events ...Event) Option {
	return func(c *config) {
		c.events = make(map[Event]bool, len(events))
		for _, e := range events {
			c.events[e] = true
		}
	}
}

type handler struct {
	cfg config
}

// New creates a trace.Handler that writes trace events to slog.
func New(opts ...Option) trace.Handler {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.events == nil {
		cfg.events = make(map[Event]bool, eventCount)
		for i := Event(0); i < eventCount; i++ {
			cfg.events[i] = true
		}
	}

	return &handler{cfg: cfg}
}

func (h *handler) logger() *slog.Logger {
	if h.cfg.logger != nil {
		return h.cfg.logger
	}
	return slog.Default()
}

func (h *handler) enabled(e Event) bool {
	return h.cfg.events[e]
}

type startTimeKey struct{}

func withStartTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, startTimeKey{}, t)
}

func startTimeFrom(ctx context.Context) time.Time {
	t, _ := ctx.Value(startTimeKey{}).(time.Time)
	return t
}

type labelKey struct{}

func withLabel(ctx context.Context, label string) context.Context {
	return context.WithValue(ctx, labelKey{}, label)
}

func labelFrom(ctx context.Context) string {
	s, _ := ctx.Value(labelKey{}).(string)
	return s
}

type toolArgsKey struct{}

func (h *handler) StartRun(ctx context.Context, goal string) context.Context {
	if h.enabled(Run) {
		h.logger().InfoContext(ctx, "run started", slog.String("goal", goal))
	}
	return withStartTime(ctx, time.Now())
}

func (h *handler) EndRun(ctx context.Context, verdict string, err error) {
	if !h.enabled(Run) {
		return
	}

	attrs := []any{
		slog.String("verdict", verdict),
		slog.Duration("duration", time.Since(startTimeFrom(ctx))),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	h.logger().InfoContext(ctx, "run ended", attrs...)
}

func (h *handler) StartStep(ctx context.Context, index int) context.Context {
	return withStartTime(ctx, time.Now())
}

func (h *handler) EndStep(ctx context.Context, data *trace.StepData) {
	if !h.enabled(Step) || data == nil {
		return
	}

	attrs := []any{
		slog.Int("index", data.Index),
		slog.String("verdict", data.Verdict),
		slog.String("goal_verdict", data.GoalVerdict),
		slog.Duration("duration", time.Since(startTimeFrom(ctx))),
	}
	if data.ToolName != "" {
		attrs = append(attrs, slog.String("tool", data.ToolName), slog.Bool("rejected", data.Rejected))
	}
	if len(data.Degraded) > 0 {
		attrs = append(attrs, slog.Any("degraded", data.Degraded))
	}
	if data.Error != "" {
		attrs = append(attrs, slog.String("error", data.Error))
	}
	h.logger().InfoContext(ctx, "step completed", attrs...)
}

func (h *handler) StartLLMCall(ctx context.Context, purpose string) context.Context {
	return withLabel(withStartTime(ctx, time.Now()), purpose)
}

// EndLLMCall logs LLM call details. LLMRequest controls request details and LLMResponse
// controls response details; token usage is included when either is enabled.
func (h *handler) EndLLMCall(ctx context.Context, data *trace.LLMCallData, err error) {
	reqEnabled := h.enabled(LLMRequest)
	respEnabled := h.enabled(LLMResponse)
	if !reqEnabled && !respEnabled {
		return
	}

	attrs := []any{
		slog.String("purpose", labelFrom(ctx)),
		slog.Duration("duration", time.Since(startTimeFrom(ctx))),
	}

	if data != nil {
		attrs = append(attrs,
			slog.Int("input_tokens", data.InputTokens),
			slog.Int("output_tokens", data.OutputTokens),
		)
		if reqEnabled && data.Request != nil {
			attrs = append(attrs, slog.Any("request", data.Request))
		}
		if respEnabled && data.Response != nil {
			attrs = append(attrs, slog.Any("response", data.Response))
		}
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	h.logger().InfoContext(ctx, "llm call", attrs...)
}

func (h *handler) StartToolExec(ctx context.Context, toolName string, args map[string]any) context.Context {
	ctx = withLabel(withStartTime(ctx, time.Now()), toolName)
	return context.WithValue(ctx, toolArgsKey{}, args)
}

func (h *handler) EndToolExec(ctx context.Context, result map[string]any, err error) {
	if !h.enabled(ToolExec) {
		return
	}

	args, _ := ctx.Value(toolArgsKey{}).(map[string]any)
	attrs := []any{
		slog.String("tool", labelFrom(ctx)),
		slog.Any("args", args),
		slog.Duration("duration", time.Since(startTimeFrom(ctx))),
		slog.Any("result", result),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	h.logger().InfoContext(ctx, "tool execution", attrs...)
}

func (h *handler) AddEvent(ctx context.Context, kind string, data any) {
	if !h.enabled(CustomEvent) {
		return
	}

	h.logger().InfoContext(ctx, "event",
		slog.String("kind", kind),
		slog.Any("data", data),
	)
}

// Finish is a no-op. Persistence is the Recorder's responsibility.
func (h *handler) Finish(_ context.Context) error {
	return nil
}
