package scenic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Reasoner decides the next action from the goal, the run's history and the current scene.
type Reasoner interface {
	Plan(ctx context.Context, req *PlanRequest) (*Plan, error)
}

// PlanRequest is the input of one reasoning call. Capabilities never include the render tool.
type PlanRequest struct {
	Goal         string
	Memory       []Step
	Capabilities []Capability
	Observation  string
	Attachments  []Attachment
}

// Plan is a reasoning result. A nil Action means the reasoner proposes no tool call.
type Plan struct {
	Thought string
	Action  *ToolInvocation
	Raw     string
}

// LLMReasoner is a Reasoner backed by an LLMClient. Each Plan call opens a new session and
// the whole context is rebuilt from the request, so one LLMReasoner can serve many runs.
type LLMReasoner struct {
	client       LLMClient
	systemPrompt string
	window       int
	budget       int
	counter      TokenCounter
}

type ReasonerOption func(*LLMReasoner)

// WithMemoryWindow sets how many recent steps are shown in full. Older steps are compressed
// to one line each. Zero or negative shows every step in full.
func WithMemoryWindow(n int) ReasonerOption {
	return func(r *LLMReasoner) {
		r.window = n
	}
}

// WithTokenBudget bounds the reasoning prompt to budget tokens as counted by counter. The
// oldest history is dropped first.
func WithTokenBudget(budget int, counter TokenCounter) ReasonerOption {
	return func(r *LLMReasoner) {
		r.budget = budget
		r.counter = counter
	}
}

// WithReasonerSystemPrompt replaces the built-in system prompt.
func WithReasonerSystemPrompt(prompt string) ReasonerOption {
	return func(r *LLMReasoner) {
		r.systemPrompt = prompt
	}
}

func NewReasoner(client LLMClient, options ...ReasonerOption) *LLMReasoner {
	r := &LLMReasoner{
		client:       client,
		systemPrompt: reasonerSystemPrompt,
		window:       DefaultMemoryWindow,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *LLMReasoner) Plan(ctx context.Context, req *PlanRequest) (*Plan, error) {
	data := reasonerPromptData{
		Goal:        req.Goal,
		Tools:       newToolViews(req.Capabilities),
		Failed:      failedActions(req.Memory),
		Observation: req.Observation,
	}
	for _, a := range req.Attachments {
		data.Attachments = append(data.Attachments, a.Description)
	}

	var renderErr error
	render := func(view memoryView) string {
		data.Compressed = view.Compressed
		data.Recent = view.Recent
		prompt, err := renderTemplate(reasonerUserTmpl, data)
		if err != nil {
			renderErr = err
		}
		return prompt
	}

	view := fitMemoryView(newMemoryView(req.Memory, r.window), r.budget, r.counter, render)
	prompt := render(view)
	if renderErr != nil {
		return nil, renderErr
	}

	inputs := []Input{Text(prompt)}
	for _, a := range req.Attachments {
		inputs = append(inputs, a.Image)
	}

	opts := []SessionOption{
		WithSessionSystemPrompt(r.systemPrompt),
		WithSessionContentType(ContentTypeJSON),
	}
	_, resp, err := generate(ctx, r.client, "plan", opts, inputs...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to plan next action", goerr.V("steps", len(req.Memory)))
	}

	return ParsePlan(resp), nil
}

// ParsePlan reads a reasoning response. A function call takes precedence over text. Text is
// expected to be {"thought": ..., "action": {"tool_name": ..., "arguments": {...}} | null};
// text that does not follow the format becomes the thought and no action is proposed.
func ParsePlan(resp *Response) *Plan {
	if resp == nil {
		return &Plan{}
	}
	raw := strings.TrimSpace(strings.Join(resp.Texts, "\n"))
	plan := &Plan{Raw: raw, Thought: raw}

	if len(resp.FunctionCalls) > 0 {
		fc := resp.FunctionCalls[0]
		plan.Action = &ToolInvocation{ToolName: fc.Name, Arguments: fc.Arguments}
		return plan
	}

	obj, ok := extractJSONObject(raw)
	if !ok {
		return plan
	}

	var out struct {
		Thought string `json:"thought"`
		Action  *struct {
			ToolName  string         `json:"tool_name"`
			Name      string         `json:"name"`
			Arguments map[string]any `json:"arguments"`
		} `json:"action"`
	}
	if err := json.Unmarshal([]byte(obj), &out); err != nil {
		return plan
	}

	plan.Thought = out.Thought
	if out.Action != nil {
		name := out.Action.ToolName
		if name == "" {
			name = out.Action.Name
		}
		if name != "" {
			plan.Action = &ToolInvocation{ToolName: name, Arguments: out.Action.Arguments}
		}
	}
	return plan
}

// failedActions lists distinct failed or rejected invocations for the prompt.
func failedActions(steps []Step) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range steps {
		if !s.actionFailed() {
			continue
		}
		args, err := json.Marshal(s.Action.Arguments)
		if err != nil {
			args = []byte(fmt.Sprintf("%v", s.Action.Arguments))
		}
		line := s.Action.ToolName + " " + string(args)
		if !seen[line] {
			seen[line] = true
			out = append(out, line)
		}
	}
	return out
}
