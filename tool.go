package scenic

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
)

// Capability describes one tool offered by the remote environment. The capability list is
// fixed at connect time.
type Capability struct {
	// Name is the tool name used in an invocation. It is unique within a capability list.
	Name string

	Description string

	// Parameters is a simplified view of the input schema used to describe the tool to the LLM.
	Parameters map[string]*Parameter

	// Required is the list of required parameter names.
	Required []string

	// Schema is the raw JSON Schema of the tool input as advertised by the server.
	// Arguments are validated against it before dispatch. Nil disables validation.
	Schema map[string]any
}

// Validate validates the capability.
func (s *Capability) Validate() error {
	eb := goerr.NewBuilder(goerr.V("tool", s.Name))
	if s.Name == "" {
		return eb.Wrap(ErrInvalidTool, "name is required")
	}

	for name, param := range s.Parameters {
		if err := param.Validate(); err != nil {
			return eb.Wrap(err, "invalid parameter", goerr.V("parameter", name))
		}
	}
	for _, req := range s.Required {
		if _, ok := s.Parameters[req]; !ok {
			return eb.Wrap(ErrInvalidTool, "required parameter not defined", goerr.V("parameter", req))
		}
	}

	return nil
}

// ParameterType is the type of a parameter.
type ParameterType string

const (
	TypeString  ParameterType = "string"
	TypeNumber  ParameterType = "number"
	TypeInteger ParameterType = "integer"
	TypeBoolean ParameterType = "boolean"
	TypeArray   ParameterType = "array"
	TypeObject  ParameterType = "object"
)

// Parameter is a parameter of a tool.
type Parameter struct {
	Type        ParameterType
	Description string

	// Enum is the list of allowed values for the parameter.
	Enum []string

	// Properties and Required are used for object type parameters.
	Properties map[string]*Parameter
	Required   []string

	// Items is used for array type parameters.
	Items *Parameter
}

// Validate validates the parameter.
func (p *Parameter) Validate() error {
	switch p.Type {
	case TypeString, TypeNumber, TypeInteger, TypeBoolean:
	case TypeObject:
		for name, prop := range p.Properties {
			if err := prop.Validate(); err != nil {
				return goerr.Wrap(err, "invalid property", goerr.V("property", name))
			}
		}
	case TypeArray:
		if p.Items == nil {
			return goerr.Wrap(ErrInvalidParameter, "items is required for array type")
		}
		return p.Items.Validate()
	case "":
		// some servers omit the type of free-form values
	default:
		return goerr.Wrap(ErrInvalidParameter, "unknown type", goerr.V("type", p.Type))
	}
	return nil
}

// ToolInvocation is a request to run a tool in the remote environment.
type ToolInvocation struct {
	ToolName  string         `json:"tool_name"`
	Arguments map[string]any `json:"arguments,omitempty"`

	// Rejection is set by the agent when it refused to dispatch the invocation,
	// e.g. because the tool is not in the capability list.
	Rejection string `json:"rejection,omitempty"`
}

func (x *ToolInvocation) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("tool", x.ToolName),
		slog.Any("args", x.Arguments),
	}
	if x.Rejection != "" {
		attrs = append(attrs, slog.String("rejection", x.Rejection))
	}
	return slog.GroupValue(attrs...)
}

// ToolResult is the outcome of a tool invocation. A remote tool failure is a result with
// Success false and the error text as Payload, not a Go error.
type ToolResult struct {
	ToolName string `json:"tool_name"`
	Success  bool   `json:"success"`
	Payload  any    `json:"payload,omitempty"`

	// Image carries inline image content returned by the tool, e.g. by the render tool.
	// It is not serialized.
	Image *Image `json:"-"`
}

// String renders the result for prompts and logs.
func (x *ToolResult) String() string {
	status := "ok"
	if !x.Success {
		status = "error"
	}
	name := x.ToolName
	if name == "" {
		name = "-"
	}
	return fmt.Sprintf("%s [%s]: %v", name, status, x.Payload)
}

const noActionPayload = "no action taken"

func noActionResult() *ToolResult {
	return &ToolResult{Success: true, Payload: noActionPayload}
}

// ToolChannel is a session with a remote tool-execution server. It is exclusively owned by one run.
type ToolChannel interface {
	// Capabilities returns the capability list obtained at connect time.
	Capabilities() []Capability

	// Invoke runs the tool. The returned error is reserved for transport failures and must
	// wrap ErrTransport; tool-side failures are reported in ToolResult.
	Invoke(ctx context.Context, inv *ToolInvocation) (*ToolResult, error)

	// Close releases the session.
	Close() error
}

// Connector opens a ToolChannel to an endpoint.
type Connector interface {
	Connect(ctx context.Context, endpoint string) (ToolChannel, error)
}

// ConnectorFunc adapts a function to Connector.
type ConnectorFunc func(ctx context.Context, endpoint string) (ToolChannel, error)

func (f ConnectorFunc) Connect(ctx context.Context, endpoint string) (ToolChannel, error) {
	return f(ctx, endpoint)
}

func findCapability(caps []Capability, name string) (*Capability, bool) {
	for i := range caps {
		if caps[i].Name == name {
			return &caps[i], true
		}
	}
	return nil, false
}
