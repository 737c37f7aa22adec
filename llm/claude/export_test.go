package claude

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
)

var (
	ConvertInputs   = convertInputs
	ProcessResponse = processResponse
)

const JSONInstruction = jsonInstruction

// NewMessageFunc replaces the Messages API in tests.
type NewMessageFunc func(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error)

func (f NewMessageFunc) NewMessage(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	return f(ctx, params)
}

func NewWithAPIClient(api NewMessageFunc, options ...Option) *Client {
	c := newClient(DefaultModel, options)
	c.api = api
	return c
}
