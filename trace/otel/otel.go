// Package otel provides an OpenTelemetry trace handler for scenic.
//
// It bridges run, step, LLM call and tool execution events to OpenTelemetry spans,
// so runs can be inspected in any OTel-compatible backend (Jaeger, Zipkin, OTLP, etc.).
//
// Basic usage with global TracerProvider:
//
//	agent := scenic.New(connector, reasoner, vision, scenic.WithTrace(otel.New()))
//
// With explicit TracerProvider:
//
//	agent := scenic.New(connector, reasoner, vision, scenic.WithTrace(
//	    otel.New(otel.WithTracerProvider(tp)),
//	))
package otel

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/scenic/trace"
	otelAPI "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	otelTrace "go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "github.com/m-mizutani/scenic"
)

// Option is a functional option for configuring the OTel handler.
type Option func(*handler)

// WithTracerProvider sets an explicit TracerProvider.
// If not set, the global TracerProvider is used.
func WithTracerProvider(tp otelTrace.TracerProvider) Option {
	return func(h *handler) {
		h.tracerProvider = tp
	}
}

type handler struct {
	tracerProvider otelTrace.TracerProvider
	tracer         otelTrace.Tracer
}

// New creates a new OTel trace handler.
func New(opts ...Option) trace.Handler {
	h := &handler{}
	for _, opt := range opts {
		opt(h)
	}

	if h.tracerProvider == nil {
		h.tracerProvider = otelAPI.GetTracerProvider()
	}
	h.tracer = h.tracerProvider.Tracer(tracerName)

	return h
}

func endSpan(span otelTrace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (h *handler) StartRun(ctx context.Context, goal string) context.Context {
	ctx, span := h.tracer.Start(ctx, "run",
		otelTrace.WithSpanKind(otelTrace.SpanKindInternal),
	)
	span.SetAttributes(goalAttr(goal))
	return ctx
}

func (h *handler) EndRun(ctx context.Context, verdict string, err error) {
	span := otelTrace.SpanFromContext(ctx)
	span.SetAttributes(runVerdictAttr(verdict))
	endSpan(span, err)
}

func (h *handler) StartStep(ctx context.Context, index int) context.Context {
	ctx, span := h.tracer.Start(ctx, fmt.Sprintf("step:%d", index),
		otelTrace.WithSpanKind(otelTrace.SpanKindInternal),
	)
	span.SetAttributes(stepIndexAttr(index))
	return ctx
}

func (h *handler) EndStep(ctx context.Context, data *trace.StepData) {
	span := otelTrace.SpanFromContext(ctx)
	if data == nil {
		span.End()
		return
	}

	span.SetAttributes(
		stepVerdictAttr(data.Verdict),
		goalVerdictAttr(data.GoalVerdict),
	)
	if data.ToolName != "" {
		span.SetAttributes(toolNameAttr(data.ToolName), toolRejectedAttr(data.Rejected))
	}
	for _, note := range data.Degraded {
		span.AddEvent("degraded", otelTrace.WithAttributes(eventDataAttr(note)))
	}
	if data.Error != "" {
		span.SetStatus(codes.Error, data.Error)
	}
	span.End()
}

func (h *handler) StartLLMCall(ctx context.Context, purpose string) context.Context {
	ctx, span := h.tracer.Start(ctx, fmt.Sprintf("llm:%s", purpose),
		otelTrace.WithSpanKind(otelTrace.SpanKindClient),
	)
	span.SetAttributes(llmPurposeAttr(purpose))
	return ctx
}

func (h *handler) EndLLMCall(ctx context.Context, data *trace.LLMCallData, err error) {
	span := otelTrace.SpanFromContext(ctx)
	if data != nil {
		span.SetAttributes(
			llmInputTokensAttr(data.InputTokens),
			llmOutputTokensAttr(data.OutputTokens),
		)
		if data.Request != nil {
			span.SetAttributes(llmImagesAttr(data.Request.Images))
		}
	}
	endSpan(span, err)
}

func (h *handler) StartToolExec(ctx context.Context, toolName string, args map[string]any) context.Context {
	ctx, span := h.tracer.Start(ctx, fmt.Sprintf("tool:%s", toolName),
		otelTrace.WithSpanKind(otelTrace.SpanKindClient),
	)
	span.SetAttributes(toolNameAttr(toolName))
	if args != nil {
		if b, err := json.Marshal(args); err == nil {
			span.SetAttributes(toolArgsAttr(string(b)))
		}
	}
	return ctx
}

func (h *handler) EndToolExec(ctx context.Context, result map[string]any, err error) {
	endSpan(otelTrace.SpanFromContext(ctx), err)
}

func (h *handler) AddEvent(ctx context.Context, kind string, data any) {
	span := otelTrace.SpanFromContext(ctx)
	if data == nil {
		span.AddEvent(kind)
		return
	}
	b, err := json.Marshal(data)
	if err != nil {
		span.AddEvent(kind)
		return
	}
	span.AddEvent(kind, otelTrace.WithAttributes(eventDataAttr(string(b))))
}

// Finish is a no-op: spans are exported by the TracerProvider's SpanProcessor.
func (h *handler) Finish(_ context.Context) error {
	return nil
}
