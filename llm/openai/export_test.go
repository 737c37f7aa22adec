package openai

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

var (
	ConvertInputs   = convertInputs
	ProcessResponse = processResponse
)

// ChatCompletionFunc replaces the OpenAI API in tests.
type ChatCompletionFunc func(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)

func (f ChatCompletionFunc) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return f(ctx, req)
}

func NewWithAPIClient(api ChatCompletionFunc, options ...Option) *Client {
	c := newClient(options)
	c.api = api
	return c
}
