package trace

// RunData holds data specific to the root run span.
type RunData struct {
	Goal    string `json:"goal"`
	Verdict string `json:"verdict,omitempty"`
}

// StepData holds the outcome of one loop iteration.
type StepData struct {
	Index       int      `json:"index"`
	Verdict     string   `json:"verdict"`
	GoalVerdict string   `json:"goal_verdict"`
	ToolName    string   `json:"tool_name,omitempty"`
	Rejected    bool     `json:"rejected,omitempty"`
	Degraded    []string `json:"degraded,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// LLMCallData holds data specific to an LLM call span.
type LLMCallData struct {
	Purpose      string `json:"purpose"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`

	Request  *LLMRequest  `json:"request"`
	Response *LLMResponse `json:"response"`
}

// LLMRequest represents the request sent to an LLM.
type LLMRequest struct {
	SystemPrompt string   `json:"system_prompt,omitempty"`
	Texts        []string `json:"texts,omitempty"`
	Images       int      `json:"images,omitempty"`
}

// LLMResponse represents the response from an LLM.
type LLMResponse struct {
	Texts         []string        `json:"texts,omitempty"`
	FunctionCalls []*FunctionCall `json:"function_calls,omitempty"`
}

// FunctionCall represents a function call returned by the LLM.
type FunctionCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// ToolExecData holds data specific to a tool execution span.
type ToolExecData struct {
	ToolName string         `json:"tool_name"`
	Args     map[string]any `json:"args"`
	Result   map[string]any `json:"result,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// EventData holds data of an event span. Kind is a free-form string set by the emitter.
type EventData struct {
	Kind string `json:"kind"`
	Data any    `json:"data"`
}
