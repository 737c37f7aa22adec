package claude

import (
	"context"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/vertex"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scenic"
)

var (
	// claudePromptScope is the logging scope for Claude prompts
	claudePromptScope = ctxlog.NewScope("claude_prompt", ctxlog.EnabledBy("SCENIC_LOGGING_CLAUDE_PROMPT"))

	// claudeResponseScope is the logging scope for Claude responses
	claudeResponseScope = ctxlog.NewScope("claude_response", ctxlog.EnabledBy("SCENIC_LOGGING_CLAUDE_RESPONSE"))
)

const (
	DefaultModel       = "claude-sonnet-4-20250514"
	DefaultVertexModel = "claude-sonnet-4@20250514"

	defaultMaxTokens = 4096
)

// jsonInstruction is appended to the system prompt of JSON sessions. The Messages API has no JSON mode.
const jsonInstruction = "Respond with a single JSON object and nothing else."

type apiClient interface {
	NewMessage(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error)
}

type realAPIClient struct {
	client *anthropic.Client
}

func (c *realAPIClient) NewMessage(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	return c.client.Messages.New(ctx, params)
}

// generationParameters represents the parameters for text generation.
type generationParameters struct {
	// Temperature controls randomness in the output.
	// Higher values make the output more random, lower values make it more focused.
	Temperature float64

	// TopP controls diversity via nucleus sampling.
	TopP float64

	// MaxTokens limits the number of tokens to generate.
	MaxTokens int64
}

// Client is a client for the Claude API. It implements scenic.LLMClient.
type Client struct {
	api apiClient

	defaultModel string
	params       generationParameters
	systemPrompt string
}

var _ scenic.LLMClient = (*Client)(nil)

// Option is a function that configures a Client.
type Option func(*Client)

// WithModel sets the default model to use for chat completions.
func WithModel(modelName string) Option {
	return func(c *Client) {
		c.defaultModel = modelName
	}
}

// WithTemperature sets the temperature parameter for text generation.
func WithTemperature(temp float64) Option {
	return func(c *Client) {
		c.params.Temperature = temp
	}
}

// WithTopP sets the top_p parameter for text generation.
func WithTopP(topP float64) Option {
	return func(c *Client) {
		c.params.TopP = topP
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
func WithMaxTokens(maxTokens int64) Option {
	return func(c *Client) {
		c.params.MaxTokens = maxTokens
	}
}

// WithSystemPrompt sets the system prompt used when a session does not set one.
func WithSystemPrompt(prompt string) Option {
	return func(c *Client) {
		c.systemPrompt = prompt
	}
}

func newClient(model string, options []Option) *Client {
	c := &Client{
		defaultModel: model,
		params: generationParameters{
			MaxTokens: defaultMaxTokens,
		},
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// New creates a new client for the Claude API.
func New(ctx context.Context, apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.New("API key is required")
	}

	c := newClient(DefaultModel, options)
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	c.api = &realAPIClient{client: &client}
	return c, nil
}

// NewWithVertex creates a client for Claude models served by Vertex AI.
// Credentials are resolved with Google Application Default Credentials.
func NewWithVertex(ctx context.Context, location, projectID string, options ...Option) (*Client, error) {
	if location == "" {
		return nil, goerr.New("location is required")
	}
	if projectID == "" {
		return nil, goerr.New("projectID is required")
	}

	c := newClient(DefaultVertexModel, options)
	client := anthropic.NewClient(vertex.WithGoogleAuth(ctx, location, projectID))
	c.api = &realAPIClient{client: &client}
	return c, nil
}

// NewSession implements scenic.LLMClient.
func (c *Client) NewSession(ctx context.Context, options ...scenic.SessionOption) (scenic.Session, error) {
	cfg := scenic.NewSessionConfig(options...)

	systemPrompt := cfg.SystemPrompt()
	if systemPrompt == "" {
		systemPrompt = c.systemPrompt
	}
	if cfg.ContentType() == scenic.ContentTypeJSON {
		if systemPrompt != "" {
			systemPrompt += "\n\n"
		}
		systemPrompt += jsonInstruction
	}

	return &Session{
		api:          c.api,
		model:        c.defaultModel,
		params:       c.params,
		systemPrompt: systemPrompt,
	}, nil
}

type Session struct {
	api          apiClient
	model        string
	params       generationParameters
	systemPrompt string
}

func (s *Session) createParams(input ...scenic.Input) (anthropic.MessageNewParams, error) {
	blocks, err := convertInputs(input...)
	if err != nil {
		return anthropic.MessageNewParams{}, err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: s.params.MaxTokens,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	}
	if s.systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: s.systemPrompt}}
	}
	if s.params.Temperature > 0 {
		params.Temperature = anthropic.Float(s.params.Temperature)
	}
	if s.params.TopP > 0 {
		params.TopP = anthropic.Float(s.params.TopP)
	}
	return params, nil
}

// GenerateContent implements scenic.Session.
func (s *Session) GenerateContent(ctx context.Context, input ...scenic.Input) (*scenic.Response, error) {
	params, err := s.createParams(input...)
	if err != nil {
		return nil, err
	}

	logger := ctxlog.From(ctx, claudePromptScope)
	if logger.Enabled(ctx, slog.LevelInfo) {
		logger.Info("Claude prompt",
			"model", s.model,
			"system_prompt", s.systemPrompt,
			"inputs", logInputs(input),
		)
	}

	resp, err := s.api.NewMessage(ctx, params)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create message", goerr.V("model", s.model))
	}

	response, err := processResponse(resp)
	if err != nil {
		return nil, err
	}

	responseLogger := ctxlog.From(ctx, claudeResponseScope)
	if responseLogger.Enabled(ctx, slog.LevelInfo) {
		responseLogger.Info("Claude response",
			"model", resp.Model,
			"stop_reason", resp.StopReason,
			"usage", map[string]any{
				"input_tokens":  resp.Usage.InputTokens,
				"output_tokens": resp.Usage.OutputTokens,
			},
			"texts", response.Texts,
		)
	}

	return response, nil
}
