package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scenic"
	"github.com/sashabaranov/go-openai"
)

var (
	// openaiPromptScope is the logging scope for OpenAI prompts
	openaiPromptScope = ctxlog.NewScope("openai_prompt", ctxlog.EnabledBy("SCENIC_LOGGING_OPENAI_PROMPT"))

	// openaiResponseScope is the logging scope for OpenAI responses
	openaiResponseScope = ctxlog.NewScope("openai_response", ctxlog.EnabledBy("SCENIC_LOGGING_OPENAI_RESPONSE"))
)

const (
	// DefaultModel accepts image input and sampling parameters.
	DefaultModel = "gpt-4o"
)

// apiClient is the interface for OpenAI API calls
type apiClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// generationParameters represents the parameters for text generation.
type generationParameters struct {
	// Temperature controls randomness in the output.
	Temperature float32

	// TopP controls diversity via nucleus sampling.
	TopP float32

	// MaxTokens limits the number of tokens to generate.
	MaxTokens int

	// ReasoningEffort tunes how much reasoning time reasoning models spend ("low", "medium", "high").
	ReasoningEffort string
}

// Client is a client for the OpenAI API. It implements scenic.LLMClient.
type Client struct {
	api apiClient

	// defaultModel is the model to use for chat completions.
	// It can be overridden using WithModel option.
	defaultModel string

	// baseURL is the custom base URL for the OpenAI API.
	baseURL string

	params generationParameters

	// systemPrompt is used when the session does not set one.
	systemPrompt string

	// imageDetail is passed on every image part.
	imageDetail openai.ImageURLDetail
}

var _ scenic.LLMClient = (*Client)(nil)

// Option is a function that configures a Client.
type Option func(*Client)

// WithModel sets the default model to use for chat completions.
// See default model in [DefaultModel].
func WithModel(modelName string) Option {
	return func(c *Client) {
		c.defaultModel = modelName
	}
}

// WithTemperature sets the temperature parameter for text generation.
// Range: 0.0 to 2.0
func WithTemperature(temp float32) Option {
	return func(c *Client) {
		c.params.Temperature = temp
	}
}

// WithTopP sets the top_p parameter for text generation.
func WithTopP(topP float32) Option {
	return func(c *Client) {
		c.params.TopP = topP
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
func WithMaxTokens(maxTokens int) Option {
	return func(c *Client) {
		c.params.MaxTokens = maxTokens
	}
}

// WithReasoningEffort sets the reasoning effort for reasoning models.
func WithReasoningEffort(effort string) Option {
	return func(c *Client) {
		c.params.ReasoningEffort = effort
	}
}

// WithSystemPrompt sets the default system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(c *Client) {
		c.systemPrompt = prompt
	}
}

// WithImageDetail sets the detail level of image inputs ("low", "high" or "auto").
func WithImageDetail(detail string) Option {
	return func(c *Client) {
		c.imageDetail = openai.ImageURLDetail(detail)
	}
}

// WithBaseURL sets the custom base URL for the OpenAI API.
// Allows usage with compatible endpoints, proxies, or self-hosted instances.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

func newClient(options []Option) *Client {
	c := &Client{
		defaultModel: DefaultModel,
		imageDetail:  openai.ImageURLDetailAuto,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// New creates a new client for the OpenAI API.
func New(ctx context.Context, apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.New("API key is required")
	}

	client := newClient(options)

	config := openai.DefaultConfig(apiKey)
	if client.baseURL != "" {
		config.BaseURL = client.baseURL
	}
	client.api = openai.NewClientWithConfig(config)

	return client, nil
}

// NewSession implements scenic.LLMClient.
func (c *Client) NewSession(ctx context.Context, options ...scenic.SessionOption) (scenic.Session, error) {
	cfg := scenic.NewSessionConfig(options...)

	systemPrompt := cfg.SystemPrompt()
	if systemPrompt == "" {
		systemPrompt = c.systemPrompt
	}

	return &Session{
		api:          c.api,
		model:        c.defaultModel,
		params:       c.params,
		systemPrompt: systemPrompt,
		contentType:  cfg.ContentType(),
		imageDetail:  c.imageDetail,
	}, nil
}

// Session is a single chat completion exchange. It keeps no history.
type Session struct {
	api          apiClient
	model        string
	params       generationParameters
	systemPrompt string
	contentType  scenic.ContentType
	imageDetail  openai.ImageURLDetail
}

func (s *Session) createRequest(input ...scenic.Input) (openai.ChatCompletionRequest, error) {
	parts, err := convertInputs(s.imageDetail, input...)
	if err != nil {
		return openai.ChatCompletionRequest{}, err
	}

	var messages []openai.ChatCompletionMessage
	if s.systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: s.systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:         openai.ChatMessageRoleUser,
		MultiContent: parts,
	})

	req := openai.ChatCompletionRequest{
		Model:           s.model,
		Messages:        messages,
		Temperature:     s.params.Temperature,
		TopP:            s.params.TopP,
		MaxTokens:       s.params.MaxTokens,
		ReasoningEffort: s.params.ReasoningEffort,
	}

	if s.contentType == scenic.ContentTypeJSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	return req, nil
}

// GenerateContent implements scenic.Session.
func (s *Session) GenerateContent(ctx context.Context, input ...scenic.Input) (*scenic.Response, error) {
	req, err := s.createRequest(input...)
	if err != nil {
		return nil, err
	}

	logger := ctxlog.From(ctx, openaiPromptScope)
	if logger.Enabled(ctx, slog.LevelInfo) {
		logger.Info("OpenAI prompt",
			"model", req.Model,
			"system_prompt", s.systemPrompt,
			"messages", logParts(req.Messages[len(req.Messages)-1].MultiContent),
		)
	}

	resp, err := s.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create chat completion", goerr.V("model", req.Model))
	}

	response, err := processResponse(resp)
	if err != nil {
		return nil, err
	}

	responseLogger := ctxlog.From(ctx, openaiResponseScope)
	if responseLogger.Enabled(ctx, slog.LevelInfo) {
		var finishReason openai.FinishReason
		if len(resp.Choices) > 0 {
			finishReason = resp.Choices[0].FinishReason
		}
		responseLogger.Info("OpenAI response",
			"model", resp.Model,
			"finish_reason", finishReason,
			"usage", map[string]any{
				"prompt_tokens":     resp.Usage.PromptTokens,
				"completion_tokens": resp.Usage.CompletionTokens,
				"total_tokens":      resp.Usage.TotalTokens,
			},
			"texts", response.Texts,
		)
	}

	return response, nil
}

func logParts(parts []openai.ChatMessagePart) []map[string]any {
	var out []map[string]any
	for _, p := range parts {
		switch p.Type {
		case openai.ChatMessagePartTypeText:
			out = append(out, map[string]any{"type": "text", "content": p.Text})
		case openai.ChatMessagePartTypeImageURL:
			out = append(out, map[string]any{"type": "image", "size": fmt.Sprintf("%d bytes (base64)", len(p.ImageURL.URL))})
		}
	}
	return out
}
