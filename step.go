package scenic

import "time"

// StepVerdict is the outcome of a single loop iteration.
type StepVerdict string

const (
	StepContinuing StepVerdict = "continuing"
	StepPartial    StepVerdict = "partial"
	StepFailed     StepVerdict = "failed"
	StepSucceeded  StepVerdict = "succeeded"
)

// GoalVerdict is the classification of goal completion produced by the goal check.
type GoalVerdict string

const (
	GoalAchieved    GoalVerdict = "achieved"
	GoalNotAchieved GoalVerdict = "not_achieved"
	GoalPartial     GoalVerdict = "partial"
)

// RunVerdict is the final verdict of a run.
type RunVerdict string

const (
	RunAchieved    RunVerdict = "achieved"
	RunNotAchieved RunVerdict = "not_achieved"
	RunFailed      RunVerdict = "failed"
)

// Termination tells which exit path ended a run.
type Termination string

const (
	TerminationAchieved        Termination = "achieved"
	TerminationBudgetExhausted Termination = "budget_exhausted"
	TerminationFatalError      Termination = "fatal_error"
	TerminationCancelled       Termination = "cancelled"
)

// Step is the record of one loop iteration. Steps are values; once appended to Memory they
// are never modified.
type Step struct {
	Index       int             `json:"index"`
	Observation string          `json:"observation"`
	Thought     string          `json:"thought"`
	Action      *ToolInvocation `json:"action,omitempty"`
	Result      *ToolResult     `json:"result,omitempty"`
	Reflection  string          `json:"reflection"`
	Verdict     StepVerdict     `json:"verdict"`
	Goal        GoalVerdict     `json:"goal_verdict"`
	GoalReason  string          `json:"goal_reason,omitempty"`

	// GoalRaw is the unparsed judge response, kept when it could not be classified.
	GoalRaw string `json:"goal_raw,omitempty"`

	// Degraded lists notes about collaborators that could not deliver in this step
	// (render failures, reasoning or vision timeouts).
	Degraded  []string  `json:"degraded,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (x Step) clone() Step {
	if x.Action != nil {
		inv := *x.Action
		inv.Arguments = cloneMap(x.Action.Arguments)
		x.Action = &inv
	}
	if x.Result != nil {
		res := *x.Result
		x.Result = &res
	}
	if x.Degraded != nil {
		x.Degraded = append([]string(nil), x.Degraded...)
	}
	return x
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			out[k] = cloneMap(nested)
			continue
		}
		out[k] = v
	}
	return out
}

// actionFailed reports whether the step dispatched or attempted an action that did not succeed.
func (x Step) actionFailed() bool {
	if x.Action == nil {
		return false
	}
	if x.Action.Rejection != "" {
		return true
	}
	return x.Result != nil && !x.Result.Success
}

// Report is the result of a run returned to the caller.
type Report struct {
	RunID       string      `json:"run_id"`
	Goal        string      `json:"goal"`
	Verdict     RunVerdict  `json:"verdict"`
	Termination Termination `json:"termination"`

	// BestVerdict is the last goal verdict other than not_achieved seen during the run.
	BestVerdict GoalVerdict `json:"best_verdict,omitempty"`

	Steps     []Step    `json:"steps"`
	StepCount int       `json:"step_count"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

// Last returns the final step, or nil for an empty report.
func (x *Report) Last() *Step {
	if len(x.Steps) == 0 {
		return nil
	}
	return &x.Steps[len(x.Steps)-1]
}
