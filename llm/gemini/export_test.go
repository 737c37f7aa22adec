package gemini

import (
	"context"

	"google.golang.org/genai"
)

var (
	ConvertInputs   = convertInputs
	ProcessResponse = processResponse
)

// GenerateContentFunc replaces the Gemini API in tests.
type GenerateContentFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

func (f GenerateContentFunc) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return f(ctx, model, contents, config)
}

func NewWithAPIClient(api GenerateContentFunc, options ...Option) *Client {
	c := newClient(options)
	c.api = api
	return c
}
