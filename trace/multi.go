package trace

import (
	"context"
	"errors"
)

// multiHandler fans out trace events to multiple Handler implementations.
// Each handler keeps its own context chain so that, for example, a Recorder and an OTel
// handler can both track their current span.
type multiHandler struct {
	handlers []Handler
}

// Multi creates a Handler that forwards all events to the given handlers. Nil handlers are skipped.
func Multi(handlers ...Handler) Handler {
	var hs []Handler
	for _, h := range handlers {
		if h != nil {
			hs = append(hs, h)
		}
	}
	return &multiHandler{handlers: hs}
}

type multiCtxKey struct{}

func (m *multiHandler) getContexts(ctx context.Context) []context.Context {
	if v, ok := ctx.Value(multiCtxKey{}).([]context.Context); ok && len(v) == len(m.handlers) {
		return v
	}
	ctxs := make([]context.Context, len(m.handlers))
	for i := range ctxs {
		ctxs[i] = ctx
	}
	return ctxs
}

// start runs fn for every handler on its own parent context and stores the results.
func (m *multiHandler) start(ctx context.Context, fn func(h Handler, parent context.Context) context.Context) context.Context {
	parents := m.getContexts(ctx)
	next := make([]context.Context, len(m.handlers))
	for i, h := range m.handlers {
		next[i] = fn(h, parents[i])
	}
	return context.WithValue(ctx, multiCtxKey{}, next)
}

func (m *multiHandler) each(ctx context.Context, fn func(h Handler, hctx context.Context)) {
	ctxs := m.getContexts(ctx)
	for i, h := range m.handlers {
		fn(h, ctxs[i])
	}
}

func (m *multiHandler) StartRun(ctx context.Context, goal string) context.Context {
	return m.start(ctx, func(h Handler, p context.Context) context.Context { return h.StartRun(p, goal) })
}

func (m *multiHandler) EndRun(ctx context.Context, verdict string, err error) {
	m.each(ctx, func(h Handler, c context.Context) { h.EndRun(c, verdict, err) })
}

func (m *multiHandler) StartStep(ctx context.Context, index int) context.Context {
	return m.start(ctx, func(h Handler, p context.Context) context.Context { return h.StartStep(p, index) })
}

func (m *multiHandler) EndStep(ctx context.Context, data *StepData) {
	m.each(ctx, func(h Handler, c context.Context) { h.EndStep(c, data) })
}

func (m *multiHandler) StartLLMCall(ctx context.Context, purpose string) context.Context {
	return m.start(ctx, func(h Handler, p context.Context) context.Context { return h.StartLLMCall(p, purpose) })
}

func (m *multiHandler) EndLLMCall(ctx context.Context, data *LLMCallData, err error) {
	m.each(ctx, func(h Handler, c context.Context) { h.EndLLMCall(c, data, err) })
}

func (m *multiHandler) StartToolExec(ctx context.Context, toolName string, args map[string]any) context.Context {
	return m.start(ctx, func(h Handler, p context.Context) context.Context { return h.StartToolExec(p, toolName, args) })
}

func (m *multiHandler) EndToolExec(ctx context.Context, result map[string]any, err error) {
	m.each(ctx, func(h Handler, c context.Context) { h.EndToolExec(c, result, err) })
}

func (m *multiHandler) AddEvent(ctx context.Context, kind string, data any) {
	m.each(ctx, func(h Handler, c context.Context) { h.AddEvent(c, kind, data) })
}

func (m *multiHandler) Finish(ctx context.Context) error {
	var errs []error
	for _, h := range m.handlers {
		if err := h.Finish(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
