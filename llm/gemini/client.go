package gemini

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scenic"
	"google.golang.org/genai"
)

const (
	DefaultModel = "gemini-2.0-flash"
)

var (
	// geminiPromptScope is the logging scope for Gemini prompts
	geminiPromptScope = ctxlog.NewScope("gemini_prompt", ctxlog.EnabledBy("SCENIC_LOGGING_GEMINI_PROMPT"))

	// geminiResponseScope is the logging scope for Gemini responses
	geminiResponseScope = ctxlog.NewScope("gemini_response", ctxlog.EnabledBy("SCENIC_LOGGING_GEMINI_RESPONSE"))
)

// apiClient is the subset of the genai client used by Session. Calls are stateless.
type apiClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type realAPIClient struct {
	client *genai.Client
}

func (r *realAPIClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return r.client.Models.GenerateContent(ctx, model, contents, config)
}

// Client is a client for the Gemini API. It implements scenic.LLMClient.
type Client struct {
	api apiClient

	// defaultModel is the model to use for generation.
	// It can be overridden using WithModel option.
	defaultModel string

	// generationConfig contains the default generation parameters
	generationConfig *genai.GenerateContentConfig

	// systemPrompt is used when the session does not set one.
	systemPrompt string
}

var _ scenic.LLMClient = (*Client)(nil)

// Option is a configuration option for the Gemini client.
type Option func(*Client)

// WithModel sets the model to use for text generation.
// Default: "gemini-2.0-flash"
func WithModel(model string) Option {
	return func(c *Client) {
		c.defaultModel = model
	}
}

// WithTemperature sets the temperature parameter for text generation.
// Range: 0.0 to 2.0
func WithTemperature(temp float32) Option {
	return func(c *Client) {
		c.generationConfig.Temperature = &temp
	}
}

// WithTopP sets the top_p parameter for text generation.
func WithTopP(topP float32) Option {
	return func(c *Client) {
		c.generationConfig.TopP = &topP
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
func WithMaxTokens(maxTokens int32) Option {
	return func(c *Client) {
		c.generationConfig.MaxOutputTokens = maxTokens
	}
}

// WithThinkingBudget sets the thinking budget for models that support it.
// A value of -1 enables automatic thinking budget allocation.
func WithThinkingBudget(budget int32) Option {
	return func(c *Client) {
		c.generationConfig.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: &budget}
	}
}

// WithSystemPrompt sets the default system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(c *Client) {
		c.systemPrompt = prompt
	}
}

func newClient(options []Option) *Client {
	c := &Client{
		defaultModel:     DefaultModel,
		generationConfig: &genai.GenerateContentConfig{},
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// New creates a new client for Gemini on Vertex AI.
func New(ctx context.Context, projectID, location string, options ...Option) (*Client, error) {
	if projectID == "" {
		return nil, goerr.New("projectID is required")
	}
	if location == "" {
		return nil, goerr.New("location is required")
	}

	client := newClient(options)
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client", goerr.V("project", projectID), goerr.V("location", location))
	}
	client.api = &realAPIClient{client: gc}
	return client, nil
}

// NewWithAPIKey creates a new client for the Gemini Developer API.
func NewWithAPIKey(ctx context.Context, apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.New("API key is required")
	}

	client := newClient(options)
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client")
	}
	client.api = &realAPIClient{client: gc}
	return client, nil
}

// NewSession implements scenic.LLMClient.
func (c *Client) NewSession(ctx context.Context, options ...scenic.SessionOption) (scenic.Session, error) {
	cfg := scenic.NewSessionConfig(options...)

	config := &genai.GenerateContentConfig{}
	*config = *c.generationConfig

	switch cfg.ContentType() {
	case scenic.ContentTypeJSON:
		config.ResponseMIMEType = "application/json"
	case scenic.ContentTypeText:
		config.ResponseMIMEType = "text/plain"
	}

	systemPrompt := cfg.SystemPrompt()
	if systemPrompt == "" {
		systemPrompt = c.systemPrompt
	}
	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Role:  "system",
			Parts: []*genai.Part{{Text: systemPrompt}},
		}
	}

	return &Session{
		api:          c.api,
		model:        c.defaultModel,
		config:       config,
		systemPrompt: systemPrompt,
	}, nil
}

// Session is a single Gemini exchange. It keeps no history.
type Session struct {
	api          apiClient
	model        string
	config       *genai.GenerateContentConfig
	systemPrompt string
}

// GenerateContent implements scenic.Session.
func (s *Session) GenerateContent(ctx context.Context, input ...scenic.Input) (*scenic.Response, error) {
	parts, err := convertInputs(input...)
	if err != nil {
		return nil, err
	}
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	promptLogger := ctxlog.From(ctx, geminiPromptScope)
	if promptLogger.Enabled(ctx, slog.LevelInfo) {
		promptLogger.Info("Gemini prompt",
			"model", s.model,
			"system_prompt", s.systemPrompt,
			"messages", logParts(parts),
		)
	}

	result, err := s.api.GenerateContent(ctx, s.model, contents, s.config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate content", goerr.V("model", s.model))
	}

	response, err := processResponse(result)
	if err != nil {
		return nil, err
	}

	responseLogger := ctxlog.From(ctx, geminiResponseScope)
	if responseLogger.Enabled(ctx, slog.LevelInfo) {
		var finishReason string
		if len(result.Candidates) > 0 {
			finishReason = string(result.Candidates[0].FinishReason)
		}
		responseLogger.Info("Gemini response",
			"finish_reason", finishReason,
			"usage", map[string]any{
				"prompt_tokens":     response.InputToken,
				"candidates_tokens": response.OutputToken,
			},
			"texts", response.Texts,
		)
	}

	return response, nil
}
