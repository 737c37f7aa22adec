package mcp

import (
	"github.com/m-mizutani/scenic"
	"github.com/mark3labs/mcp-go/mcp"
)

var (
	SplitCommandLine = splitCommandLine
	TextsToPayload   = textsToPayload
	ConvertResult    = convertResult
)

func ParseEndpoint(endpoint string) (string, string, []string, error) {
	return parseEndpoint(endpoint)
}

func ToolToCapability(tool mcp.Tool) (scenic.Capability, error) {
	return toolToCapability(tool)
}

const (
	TransportStdio = transportStdio
	TransportSSE   = transportSSE
	TransportHTTP  = transportHTTP
)
