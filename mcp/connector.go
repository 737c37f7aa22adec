package mcp

import (
	"context"
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scenic"
	"mvdan.cc/sh/v3/shell"
)

// Connector implements scenic.Connector. The transport is chosen from the endpoint:
// an http(s) URL whose path ends with /sse uses SSE, any other http(s) URL uses streamable
// HTTP, and anything else is run as a stdio command line.
type Connector struct {
	options []Option
}

var _ scenic.Connector = (*Connector)(nil)

// NewConnector returns a Connector that applies options to every client it creates.
func NewConnector(options ...Option) *Connector {
	return &Connector{options: options}
}

// Connect implements scenic.Connector.
func (x *Connector) Connect(ctx context.Context, endpoint string) (scenic.ToolChannel, error) {
	kind, target, args, err := parseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	scenic.LoggerFromContext(ctx).Debug("connecting to MCP server", "transport", kind, "target", target)

	var c *Client
	switch kind {
	case transportSSE:
		c, err = NewSSE(ctx, target, x.options...)
	case transportHTTP:
		c, err = NewStreamableHTTP(ctx, target, x.options...)
	default:
		c, err = NewStdio(ctx, target, args, x.options...)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

const (
	transportStdio = "stdio"
	transportSSE   = "sse"
	transportHTTP  = "streamable_http"
)

func parseEndpoint(endpoint string) (kind, target string, args []string, err error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", "", nil, goerr.Wrap(scenic.ErrInvalidOption, "endpoint is empty")
	}

	if u, perr := url.Parse(endpoint); perr == nil && (u.Scheme == "http" || u.Scheme == "https") {
		if strings.HasSuffix(strings.TrimRight(u.Path, "/"), "/sse") {
			return transportSSE, endpoint, nil, nil
		}
		return transportHTTP, endpoint, nil, nil
	}

	words, err := splitCommandLine(endpoint)
	if err != nil {
		return "", "", nil, goerr.Wrap(err, "invalid command line", goerr.V("endpoint", endpoint))
	}
	return transportStdio, words[0], words[1:], nil
}

// splitCommandLine splits the endpoint with shell word rules. Variables are expanded from
// the process environment.
func splitCommandLine(s string) ([]string, error) {
	words, err := shell.Fields(s, nil)
	if err != nil {
		return nil, goerr.Wrap(scenic.ErrInvalidOption, err.Error())
	}
	if len(words) == 0 {
		return nil, goerr.Wrap(scenic.ErrInvalidOption, "no command")
	}
	return words, nil
}
