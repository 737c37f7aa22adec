package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scenic"
	"github.com/m-mizutani/scenic/internal/schema"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	// DefaultClientName is the default name for MCP client
	DefaultClientName = "scenic"
	// DefaultClientVersion is the default version for MCP client
	DefaultClientVersion = "0.1.0"

	// DefaultSettleDelay is the wait between entering active mode and capturing the scene.
	DefaultSettleDelay = time.Second

	exitTimeout = 10 * time.Second
)

// Client is a scenic.ToolChannel backed by an MCP session. The tool list is fetched once
// when the client is created.
type Client struct {
	client *client.Client
	cfg    config

	capabilities []scenic.Capability

	closeOnce sync.Once
	closeErr  error
}

type config struct {
	name    string
	version string

	envVars []string
	headers map[string]string

	renderTool string
	toggle     *toggle
	settle     time.Duration
}

type toggle struct {
	tool string
	args map[string]any
}

func defaultConfig() config {
	return config{
		name:       DefaultClientName,
		version:    DefaultClientVersion,
		headers:    map[string]string{},
		renderTool: scenic.DefaultRenderTool,
		settle:     DefaultSettleDelay,
	}
}

// Option configures a Client.
type Option func(*config)

// WithEnvVars sets the environment variables for a stdio server. It appends the environment variables to the existing ones.
func WithEnvVars(envVars []string) Option {
	return func(c *config) {
		c.envVars = append(c.envVars, envVars...)
	}
}

// WithHeaders sets the HTTP headers for SSE and streamable HTTP servers. It replaces the existing headers setting.
func WithHeaders(headers map[string]string) Option {
	return func(c *config) {
		c.headers = headers
	}
}

// WithClientInfo sets the client name and version advertised on initialize.
func WithClientInfo(name, version string) Option {
	return func(c *config) {
		c.name = name
		c.version = version
	}
}

// WithRenderTool sets the name of the tool that captures the scene. Default is scenic.DefaultRenderTool.
func WithRenderTool(name string) Option {
	return func(c *config) {
		c.renderTool = name
	}
}

// WithActiveModeToggle makes every render invocation run inside active mode: the toggle
// tool is called once to enter, the client waits for the settle delay, captures the scene
// and calls the toggle tool again to leave. Scene editors that only update their renderer
// while playing need this, e.g. execute_menu_item {"menu_path": "Edit/Play"}.
func WithActiveModeToggle(tool string, args map[string]any) Option {
	return func(c *config) {
		c.toggle = &toggle{tool: tool, args: args}
	}
}

// WithSettleDelay sets the wait after entering active mode. Default is DefaultSettleDelay.
func WithSettleDelay(d time.Duration) Option {
	return func(c *config) {
		c.settle = d
	}
}

func newConfig(options []Option) config {
	cfg := defaultConfig()
	for _, opt := range options {
		opt(&cfg)
	}
	return cfg
}

// NewStdio creates a new MCP client for local MCP executable server via stdio.
func NewStdio(ctx context.Context, path string, args []string, options ...Option) (*Client, error) {
	cfg := newConfig(options)
	tp := transport.NewStdio(path, cfg.envVars, args...)
	return start(ctx, client.NewClient(tp), cfg)
}

// NewSSE creates a new MCP client for remote MCP server via HTTP SSE.
func NewSSE(ctx context.Context, baseURL string, options ...Option) (*Client, error) {
	cfg := newConfig(options)
	tp, err := transport.NewSSE(baseURL, transport.WithHeaders(cfg.headers))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create SSE transport", goerr.V("url", baseURL))
	}
	return start(ctx, client.NewClient(tp), cfg)
}

// NewStreamableHTTP creates a new MCP client for remote MCP server via Streamable HTTP.
func NewStreamableHTTP(ctx context.Context, baseURL string, options ...Option) (*Client, error) {
	cfg := newConfig(options)
	tp, err := transport.NewStreamableHTTP(baseURL, transport.WithHTTPHeaders(cfg.headers))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create streamable HTTP transport", goerr.V("url", baseURL))
	}
	return start(ctx, client.NewClient(tp), cfg)
}

// NewInProcess connects to an MCP server running in the same process.
func NewInProcess(ctx context.Context, srv *server.MCPServer, options ...Option) (*Client, error) {
	cfg := newConfig(options)
	c, err := client.NewInProcessClient(srv)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create in-process client")
	}
	return start(ctx, c, cfg)
}

func start(ctx context.Context, c *client.Client, cfg config) (*Client, error) {
	logger := scenic.LoggerFromContext(ctx)

	// stdio binds the server process lifetime to the start context
	if err := c.Start(context.WithoutCancel(ctx)); err != nil {
		return nil, goerr.Wrap(scenic.ErrTransport, "failed to start MCP client", goerr.V("cause", err.Error()))
	}

	var initRequest mcp.InitializeRequest
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    cfg.name,
		Version: cfg.version,
	}

	initResult, err := c.Initialize(ctx, initRequest)
	if err != nil {
		_ = c.Close()
		return nil, wrapCallError(ctx, err, "failed to initialize MCP client")
	}

	resp, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		_ = c.Close()
		return nil, wrapCallError(ctx, err, "failed to list tools")
	}

	caps := make([]scenic.Capability, 0, len(resp.Tools))
	names := make([]string, 0, len(resp.Tools))
	for _, tool := range resp.Tools {
		capability, err := toolToCapability(tool)
		if err != nil {
			_ = c.Close()
			return nil, goerr.Wrap(err, "failed to convert tool", goerr.V("tool", tool.Name))
		}
		caps = append(caps, capability)
		names = append(names, tool.Name)
	}

	logger.Debug("MCP client initialized",
		"server", initResult.ServerInfo.Name,
		"server_version", initResult.ServerInfo.Version,
		"tools", names,
	)

	return &Client{
		client:       c,
		cfg:          cfg,
		capabilities: caps,
	}, nil
}

// Capabilities implements scenic.ToolChannel.
func (c *Client) Capabilities() []scenic.Capability {
	caps := make([]scenic.Capability, len(c.capabilities))
	copy(caps, c.capabilities)
	return caps
}

// Invoke implements scenic.ToolChannel.
func (c *Client) Invoke(ctx context.Context, inv *scenic.ToolInvocation) (*scenic.ToolResult, error) {
	if c.cfg.toggle != nil && inv.ToolName == c.cfg.renderTool {
		return c.invokeActive(ctx, inv)
	}
	return c.call(ctx, inv.ToolName, inv.Arguments)
}

func (c *Client) invokeActive(ctx context.Context, inv *scenic.ToolInvocation) (*scenic.ToolResult, error) {
	logger := scenic.LoggerFromContext(ctx)
	tg := c.cfg.toggle

	enter, err := c.call(ctx, tg.tool, tg.args)
	if err != nil {
		return nil, err
	}
	if !enter.Success {
		return &scenic.ToolResult{
			ToolName: inv.ToolName,
			Success:  false,
			Payload:  fmt.Sprintf("failed to enter active mode: %v", enter.Payload),
		}, nil
	}

	defer func() {
		exitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), exitTimeout)
		defer cancel()
		exit, err := c.call(exitCtx, tg.tool, tg.args)
		switch {
		case err != nil:
			logger.Warn("failed to leave active mode", "tool", tg.tool, "error", err)
		case !exit.Success:
			logger.Warn("failed to leave active mode", "tool", tg.tool, "payload", exit.Payload)
		}
	}()

	if c.cfg.settle > 0 {
		timer := time.NewTimer(c.cfg.settle)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, goerr.Wrap(ctx.Err(), "interrupted while waiting for the scene to settle", goerr.V("tool", inv.ToolName))
		}
	}

	return c.call(ctx, inv.ToolName, inv.Arguments)
}

func (c *Client) call(ctx context.Context, name string, args map[string]any) (*scenic.ToolResult, error) {
	logger := scenic.LoggerFromContext(ctx)
	logger.Debug("call MCP tool", "name", name, "args", args)

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	resp, err := c.client.CallTool(ctx, req)
	if err != nil {
		return nil, wrapCallError(ctx, err, "failed to call tool", goerr.V("tool", name))
	}
	if resp == nil {
		return nil, goerr.Wrap(scenic.ErrTransport, "empty tool response", goerr.V("tool", name))
	}

	result, err := convertResult(name, resp)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Close implements scenic.ToolChannel. It is safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		if err := c.client.Close(); err != nil {
			c.closeErr = goerr.Wrap(err, "failed to close MCP client")
		}
	})
	return c.closeErr
}

// wrapCallError keeps deadline and cancellation errors as they are, so that the caller can
// classify them as timeouts. Everything else is a transport failure.
func wrapCallError(ctx context.Context, err error, msg string, opts ...goerr.Option) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return goerr.Wrap(ctxErr, msg, append(opts, goerr.V("cause", err.Error()))...)
	}
	return goerr.Wrap(scenic.ErrTransport, msg, append(opts, goerr.V("cause", err.Error()))...)
}

// toolToCapability keeps the advertised input schema for validation and a cleaned copy for
// the parameter view shown to the LLM.
func toolToCapability(tool mcp.Tool) (scenic.Capability, error) {
	raw, err := inputSchema(tool)
	if err != nil {
		return scenic.Capability{}, err
	}

	params, required, err := schema.ToParameters(schema.Clean(raw))
	if err != nil {
		return scenic.Capability{}, err
	}

	return scenic.Capability{
		Name:        tool.Name,
		Description: tool.Description,
		Parameters:  params,
		Required:    required,
		Schema:      raw,
	}, nil
}

// inputSchema returns the tool input schema as a generic map, whether the server sent a
// structured or a raw schema.
func inputSchema(tool mcp.Tool) (map[string]any, error) {
	data, err := json.Marshal(tool)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal tool")
	}
	var v struct {
		InputSchema map[string]any `json:"inputSchema"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal input schema")
	}
	return v.InputSchema, nil
}

func convertResult(name string, resp *mcp.CallToolResult) (*scenic.ToolResult, error) {
	var texts []string
	var image *scenic.Image

	for _, content := range resp.Content {
		switch v := content.(type) {
		case mcp.TextContent:
			texts = append(texts, v.Text)
		case *mcp.TextContent:
			texts = append(texts, v.Text)
		case mcp.ImageContent:
			img, err := decodeImage(name, v)
			if err != nil {
				return nil, err
			}
			image = img
		case *mcp.ImageContent:
			img, err := decodeImage(name, *v)
			if err != nil {
				return nil, err
			}
			image = img
		}
	}

	result := &scenic.ToolResult{
		ToolName: name,
		Success:  !resp.IsError,
		Image:    image,
	}

	switch {
	case resp.IsError:
		result.Payload = joinTexts(texts)
	case len(texts) > 0:
		result.Payload = textsToPayload(texts)
	case resp.StructuredContent != nil:
		result.Payload = resp.StructuredContent
	}
	return result, nil
}

func decodeImage(name string, content mcp.ImageContent) (*scenic.Image, error) {
	data, err := base64.StdEncoding.DecodeString(content.Data)
	if err != nil {
		return nil, goerr.Wrap(scenic.ErrTransport, "malformed image content", goerr.V("tool", name), goerr.V("cause", err.Error()))
	}

	var opts []scenic.ImageOption
	if scenic.IsValidImageMimeType(scenic.ImageMimeType(content.MIMEType)) {
		opts = append(opts, scenic.WithMimeType(scenic.ImageMimeType(content.MIMEType)))
	}
	img, err := scenic.NewImage(data, opts...)
	if err != nil {
		return nil, goerr.Wrap(scenic.ErrTransport, "unsupported image content", goerr.V("tool", name), goerr.V("mime_type", content.MIMEType), goerr.V("cause", err.Error()))
	}
	return &img, nil
}

// textsToPayload decodes a single JSON object text into a map. Other single texts are
// returned under the "result" key, multiple texts as content_1, content_2 and so on.
func textsToPayload(texts []string) map[string]any {
	if len(texts) == 1 {
		var v map[string]any
		if err := json.Unmarshal([]byte(texts[0]), &v); err == nil && v != nil {
			return v
		}
		return map[string]any{"result": texts[0]}
	}

	result := make(map[string]any, len(texts))
	for i, text := range texts {
		result[fmt.Sprintf("content_%d", i+1)] = text
	}
	return result
}

func joinTexts(texts []string) string {
	switch len(texts) {
	case 0:
		return "tool reported an error"
	case 1:
		return texts[0]
	}
	out := texts[0]
	for _, t := range texts[1:] {
		out += "\n" + t
	}
	return out
}
