package scenic

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scenic/trace"
)

// generate runs a single-shot LLM call in a fresh session and returns the joined text and the
// raw response. Each call is recorded as an LLM call span when a trace handler is bound.
func generate(ctx context.Context, client LLMClient, purpose string, opts []SessionOption, inputs ...Input) (string, *Response, error) {
	logger := LoggerFromContext(ctx)

	h := trace.HandlerFrom(ctx)
	if h != nil {
		ctx = h.StartLLMCall(ctx, purpose)
	}

	resp, err := generateContent(ctx, client, opts, inputs)

	if h != nil {
		h.EndLLMCall(ctx, newLLMCallData(purpose, opts, inputs, resp), err)
	}
	if err != nil {
		logger.Debug("llm call failed", "purpose", purpose, "error", err)
		return "", nil, err
	}

	logger.Debug("llm call done",
		"purpose", purpose,
		"input_tokens", resp.InputToken,
		"output_tokens", resp.OutputToken,
	)
	return strings.TrimSpace(strings.Join(resp.Texts, "\n")), resp, nil
}

func generateContent(ctx context.Context, client LLMClient, opts []SessionOption, inputs []Input) (*Response, error) {
	ssn, err := client.NewSession(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := ssn.GenerateContent(ctx, inputs...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate content")
	}
	if resp == nil || !resp.HasData() {
		return nil, goerr.New("LLM returned an empty response")
	}
	return resp, nil
}

func newLLMCallData(purpose string, opts []SessionOption, inputs []Input, resp *Response) *trace.LLMCallData {
	cfg := NewSessionConfig(opts...)
	req := &trace.LLMRequest{SystemPrompt: cfg.SystemPrompt()}
	for _, in := range inputs {
		switch v := in.(type) {
		case Text:
			req.Texts = append(req.Texts, string(v))
		case Image:
			req.Images++
		}
	}

	data := &trace.LLMCallData{Purpose: purpose, Request: req}
	if resp != nil {
		data.InputTokens = resp.InputToken
		data.OutputTokens = resp.OutputToken
		data.Response = &trace.LLMResponse{Texts: resp.Texts}
		for _, fc := range resp.FunctionCalls {
			data.Response.FunctionCalls = append(data.Response.FunctionCalls, &trace.FunctionCall{
				Name:      fc.Name,
				Arguments: fc.Arguments,
			})
		}
	}
	return data
}
