package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scenic"
	"github.com/m-mizutani/scenic/llm/claude"
	"github.com/m-mizutani/scenic/llm/gemini"
	"github.com/m-mizutani/scenic/llm/openai"
	"github.com/m-mizutani/scenic/mcp"
	"github.com/m-mizutani/scenic/trace"
	"github.com/urfave/cli/v3"
)

const (
	providerGemini = "gemini"
	providerOpenAI = "openai"
	providerClaude = "claude"
)

// agentConfig holds the flags shared by every command that runs the agent.
type agentConfig struct {
	provider    string
	model       string
	temperature float64

	gcpProject  string
	gcpLocation string

	geminiAPIKey  string
	openaiAPIKey  string
	openaiBaseURL string
	claudeAPIKey  string

	endpoint   string
	headers    []string
	envVars    []string
	renderTool string
	renderArgs string
	toggleTool string
	toggleArgs string
	settle     time.Duration

	maxSteps         int
	connectTimeout   time.Duration
	reasoningTimeout time.Duration
	visionTimeout    time.Duration
	toolTimeout      time.Duration

	memoryWindow int
	tokenBudget  int
	tokenEncoder string

	attachments []string
	reportDir   string
	reportURI   string
	storageURL  string
	traceDir    string
}

func agentFlags(cfg *agentConfig) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "provider",
			Value:       providerGemini,
			Sources:     cli.EnvVars("SCENIC_PROVIDER"),
			Usage:       "LLM provider for reasoning and vision (gemini, openai, claude)",
			Destination: &cfg.provider,
		},
		&cli.StringFlag{
			Name:        "model",
			Sources:     cli.EnvVars("SCENIC_MODEL"),
			Usage:       "Model name. The provider default is used when empty",
			Destination: &cfg.model,
		},
		&cli.FloatFlag{
			Name:        "temperature",
			Value:       0.8,
			Sources:     cli.EnvVars("SCENIC_TEMPERATURE"),
			Usage:       "Sampling temperature",
			Destination: &cfg.temperature,
		},
		&cli.StringFlag{
			Name:        "gcp-project",
			Sources:     cli.EnvVars("SCENIC_GCP_PROJECT", "GOOGLE_CLOUD_PROJECT"),
			Usage:       "Google Cloud project for Vertex AI",
			Destination: &cfg.gcpProject,
		},
		&cli.StringFlag{
			Name:        "gcp-location",
			Value:       "us-central1",
			Sources:     cli.EnvVars("SCENIC_GCP_LOCATION"),
			Usage:       "Vertex AI location",
			Destination: &cfg.gcpLocation,
		},
		&cli.StringFlag{
			Name:        "gemini-api-key",
			Sources:     cli.EnvVars("SCENIC_GEMINI_API_KEY", "GEMINI_API_KEY"),
			Usage:       "Gemini API key. Vertex AI is used when empty",
			Destination: &cfg.geminiAPIKey,
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Sources:     cli.EnvVars("SCENIC_OPENAI_API_KEY", "OPENAI_API_KEY"),
			Usage:       "OpenAI API key",
			Destination: &cfg.openaiAPIKey,
		},
		&cli.StringFlag{
			Name:        "openai-base-url",
			Sources:     cli.EnvVars("SCENIC_OPENAI_BASE_URL"),
			Usage:       "Base URL of an OpenAI compatible API",
			Destination: &cfg.openaiBaseURL,
		},
		&cli.StringFlag{
			Name:        "claude-api-key",
			Sources:     cli.EnvVars("SCENIC_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"),
			Usage:       "Anthropic API key. Claude on Vertex AI is used when empty",
			Destination: &cfg.claudeAPIKey,
		},
		&cli.StringFlag{
			Name:        "endpoint",
			Aliases:     []string{"e"},
			Sources:     cli.EnvVars("SCENIC_ENDPOINT"),
			Usage:       "MCP server: a command line for stdio, or an http(s) URL (path ending in /sse for SSE)",
			Destination: &cfg.endpoint,
		},
		&cli.StringSliceFlag{
			Name:        "header",
			Sources:     cli.EnvVars("SCENIC_HEADERS"),
			Usage:       "HTTP header for remote MCP servers (\"Name: value\")",
			Destination: &cfg.headers,
		},
		&cli.StringSliceFlag{
			Name:        "server-env",
			Usage:       "Environment variable for a stdio MCP server (KEY=VALUE)",
			Destination: &cfg.envVars,
		},
		&cli.StringFlag{
			Name:        "render-tool",
			Value:       scenic.DefaultRenderTool,
			Sources:     cli.EnvVars("SCENIC_RENDER_TOOL"),
			Usage:       "Tool that returns a rendered image of the scene",
			Destination: &cfg.renderTool,
		},
		&cli.StringFlag{
			Name:        "render-args",
			Sources:     cli.EnvVars("SCENIC_RENDER_ARGS"),
			Usage:       "Arguments of the render tool as a JSON object",
			Destination: &cfg.renderArgs,
		},
		&cli.StringFlag{
			Name:        "toggle-tool",
			Sources:     cli.EnvVars("SCENIC_TOGGLE_TOOL"),
			Usage:       "Tool that switches the editor into and out of play mode around each render",
			Destination: &cfg.toggleTool,
		},
		&cli.StringFlag{
			Name:        "toggle-args",
			Sources:     cli.EnvVars("SCENIC_TOGGLE_ARGS"),
			Usage:       "Arguments of the toggle tool as a JSON object",
			Destination: &cfg.toggleArgs,
		},
		&cli.DurationFlag{
			Name:        "settle-delay",
			Value:       mcp.DefaultSettleDelay,
			Sources:     cli.EnvVars("SCENIC_SETTLE_DELAY"),
			Usage:       "Wait after entering play mode before rendering",
			Destination: &cfg.settle,
		},
		&cli.IntFlag{
			Name:        "max-steps",
			Value:       scenic.DefaultMaxSteps,
			Sources:     cli.EnvVars("SCENIC_MAX_STEPS"),
			Usage:       "Step budget of a run",
			Destination: &cfg.maxSteps,
		},
		&cli.DurationFlag{
			Name:        "connect-timeout",
			Value:       scenic.DefaultConnectTimeout,
			Sources:     cli.EnvVars("SCENIC_CONNECT_TIMEOUT"),
			Destination: &cfg.connectTimeout,
		},
		&cli.DurationFlag{
			Name:        "reasoning-timeout",
			Value:       scenic.DefaultReasoningTimeout,
			Sources:     cli.EnvVars("SCENIC_REASONING_TIMEOUT"),
			Destination: &cfg.reasoningTimeout,
		},
		&cli.DurationFlag{
			Name:        "vision-timeout",
			Value:       scenic.DefaultVisionTimeout,
			Sources:     cli.EnvVars("SCENIC_VISION_TIMEOUT"),
			Destination: &cfg.visionTimeout,
		},
		&cli.DurationFlag{
			Name:        "tool-timeout",
			Value:       scenic.DefaultToolTimeout,
			Sources:     cli.EnvVars("SCENIC_TOOL_TIMEOUT"),
			Destination: &cfg.toolTimeout,
		},
		&cli.IntFlag{
			Name:        "memory-window",
			Value:       scenic.DefaultMemoryWindow,
			Sources:     cli.EnvVars("SCENIC_MEMORY_WINDOW"),
			Usage:       "Number of recent steps shown to the reasoner in full",
			Destination: &cfg.memoryWindow,
		},
		&cli.IntFlag{
			Name:        "token-budget",
			Sources:     cli.EnvVars("SCENIC_TOKEN_BUDGET"),
			Usage:       "Upper bound of the reasoning prompt in tokens (0 disables)",
			Destination: &cfg.tokenBudget,
		},
		&cli.StringFlag{
			Name:        "token-encoding",
			Value:       scenic.DefaultTokenEncoding,
			Sources:     cli.EnvVars("SCENIC_TOKEN_ENCODING"),
			Usage:       "tiktoken encoding used to count prompt tokens",
			Destination: &cfg.tokenEncoder,
		},
		&cli.StringSliceFlag{
			Name:        "attach",
			Usage:       "Image attached to the goal (path or path=description)",
			Destination: &cfg.attachments,
		},
		&cli.StringFlag{
			Name:        "report-dir",
			Sources:     cli.EnvVars("SCENIC_REPORT_DIR"),
			Usage:       "Directory to save run reports",
			Destination: &cfg.reportDir,
		},
		&cli.StringFlag{
			Name:        "report-uri",
			Sources:     cli.EnvVars("SCENIC_REPORT_URI"),
			Usage:       "Cloud Storage location to save run reports (gs://bucket/prefix)",
			Destination: &cfg.reportURI,
		},
		&cli.StringFlag{
			Name:        "storage-endpoint",
			Sources:     cli.EnvVars("SCENIC_STORAGE_ENDPOINT"),
			Usage:       "Cloud Storage API endpoint, e.g. an emulator (no authentication is used)",
			Destination: &cfg.storageURL,
		},
		&cli.StringFlag{
			Name:        "trace-dir",
			Sources:     cli.EnvVars("SCENIC_TRACE_DIR"),
			Usage:       "Directory to save execution traces",
			Destination: &cfg.traceDir,
		},
	}
}

func (x *agentConfig) newLLMClient(ctx context.Context) (scenic.LLMClient, error) {
	switch x.provider {
	case providerGemini:
		var options []gemini.Option
		if x.model != "" {
			options = append(options, gemini.WithModel(x.model))
		}
		options = append(options, gemini.WithTemperature(float32(x.temperature)))
		if x.geminiAPIKey != "" {
			return gemini.NewWithAPIKey(ctx, x.geminiAPIKey, options...)
		}
		return gemini.New(ctx, x.gcpProject, x.gcpLocation, options...)

	case providerOpenAI:
		var options []openai.Option
		if x.model != "" {
			options = append(options, openai.WithModel(x.model))
		}
		if x.openaiBaseURL != "" {
			options = append(options, openai.WithBaseURL(x.openaiBaseURL))
		}
		options = append(options, openai.WithTemperature(float32(x.temperature)))
		return openai.New(ctx, x.openaiAPIKey, options...)

	case providerClaude:
		var options []claude.Option
		if x.model != "" {
			options = append(options, claude.WithModel(x.model))
		}
		options = append(options, claude.WithTemperature(min(x.temperature, 1.0)))
		if x.claudeAPIKey != "" {
			return claude.New(ctx, x.claudeAPIKey, options...)
		}
		return claude.NewWithVertex(ctx, x.gcpLocation, x.gcpProject, options...)

	default:
		return nil, goerr.New("unknown provider", goerr.V("provider", x.provider))
	}
}

func (x *agentConfig) connector() (*mcp.Connector, error) {
	headers, err := parseHeaders(x.headers)
	if err != nil {
		return nil, err
	}

	options := []mcp.Option{
		mcp.WithRenderTool(x.renderTool),
		mcp.WithSettleDelay(x.settle),
	}
	if len(headers) > 0 {
		options = append(options, mcp.WithHeaders(headers))
	}
	if len(x.envVars) > 0 {
		options = append(options, mcp.WithEnvVars(x.envVars))
	}
	if x.toggleTool != "" {
		args, err := parseJSONObject(x.toggleArgs)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid --toggle-args")
		}
		options = append(options, mcp.WithActiveModeToggle(x.toggleTool, args))
	}
	return mcp.NewConnector(options...), nil
}

func (x *agentConfig) newReasoner(client scenic.LLMClient) *scenic.LLMReasoner {
	options := []scenic.ReasonerOption{scenic.WithMemoryWindow(x.memoryWindow)}
	if x.tokenBudget > 0 {
		options = append(options, scenic.WithTokenBudget(x.tokenBudget, scenic.NewTiktokenCounter(x.tokenEncoder)))
	}
	return scenic.NewReasoner(client, options...)
}

// newAgent builds the agent around connector. A nil connector uses the MCP connector
// configured by the flags.
func (x *agentConfig) newAgent(ctx context.Context, connector scenic.Connector) (*scenic.Agent, error) {
	if connector == nil {
		if x.endpoint == "" {
			return nil, goerr.New("--endpoint is required")
		}
		c, err := x.connector()
		if err != nil {
			return nil, err
		}
		connector = c
	}

	client, err := x.newLLMClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM client", goerr.V("provider", x.provider))
	}

	renderArgs, err := parseJSONObject(x.renderArgs)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid --render-args")
	}

	attachments, err := loadAttachments(x.attachments)
	if err != nil {
		return nil, err
	}

	options := []scenic.Option{
		scenic.WithEndpoint(x.endpoint),
		scenic.WithMaxSteps(x.maxSteps),
		scenic.WithRenderTool(x.renderTool, renderArgs),
		scenic.WithConnectTimeout(x.connectTimeout),
		scenic.WithReasoningTimeout(x.reasoningTimeout),
		scenic.WithVisionTimeout(x.visionTimeout),
		scenic.WithToolTimeout(x.toolTimeout),
		scenic.WithAttachments(attachments...),
		scenic.WithLogger(slog.Default()),
	}

	reports, err := newReportStore(ctx, x.reportDir, x.reportURI, x.storageURL)
	if err != nil {
		return nil, err
	}
	if reports != nil {
		options = append(options, scenic.WithReportRepository(reports))
	}

	return scenic.New(connector, x.newReasoner(client), scenic.NewVision(client), options...), nil
}

// runOptions returns the options of a single run. A trace recorder is created per run.
func (x *agentConfig) runOptions() []scenic.Option {
	if x.traceDir == "" {
		return nil
	}
	recorder := trace.New(
		trace.WithRepository(trace.NewFileRepository(x.traceDir)),
		trace.WithMetadata(trace.TraceMetadata{
			Model:    x.provider + "/" + x.model,
			Endpoint: x.endpoint,
		}),
	)
	return []scenic.Option{scenic.WithTrace(recorder)}
}

func parseHeaders(values []string) (map[string]string, error) {
	headers := make(map[string]string, len(values))
	for _, v := range values {
		name, value, ok := strings.Cut(v, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, goerr.New("header must be \"Name: value\"", goerr.V("header", v))
		}
		headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return headers, nil
}

func parseJSONObject(s string) (map[string]any, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, goerr.Wrap(err, "not a JSON object", goerr.V("value", s))
	}
	return obj, nil
}

func loadAttachments(specs []string) ([]scenic.Attachment, error) {
	var attachments []scenic.Attachment
	for _, spec := range specs {
		path, desc, _ := strings.Cut(spec, "=")
		if desc == "" {
			desc = filepath.Base(path)
		}

		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read attachment", goerr.V("path", path))
		}
		img, err := scenic.NewImage(data)
		if err != nil {
			return nil, goerr.Wrap(err, "attachment is not a supported image", goerr.V("path", path))
		}
		attachments = append(attachments, scenic.Attachment{Image: img, Description: desc})
	}
	return attachments, nil
}
