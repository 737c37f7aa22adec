package scenic

import (
	"fmt"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
)

// Memory is the append-only, chronologically ordered log of a run's steps. It is both the
// audit trail returned in the Report and the context handed to the Reasoner.
type Memory struct {
	mu    sync.RWMutex
	steps []Step
}

func NewMemory() *Memory {
	return &Memory{}
}

// Append adds a completed step. The step index must be exactly Len()+1.
func (m *Memory) Append(step Step) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if step.Index != len(m.steps)+1 {
		return goerr.New("step index out of order",
			goerr.V("index", step.Index),
			goerr.V("expected", len(m.steps)+1))
	}
	m.steps = append(m.steps, step.clone())
	return nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.steps)
}

// Steps returns a copy of all steps in insertion order.
func (m *Memory) Steps() []Step {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Step, len(m.steps))
	for i, s := range m.steps {
		out[i] = s.clone()
	}
	return out
}

// Last returns the most recent step.
func (m *Memory) Last() (Step, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.steps) == 0 {
		return Step{}, false
	}
	return m.steps[len(m.steps)-1].clone(), true
}

// Summary renders a compact one-line-per-step history. It is used as history context for the
// goal judgment.
func (m *Memory) Summary() string {
	steps := m.Steps()
	lines := make([]string, len(steps))
	for i, s := range steps {
		lines[i] = summarizeStep(s)
	}
	return strings.Join(lines, "\n")
}

func summarizeStep(s Step) string {
	action := "no action"
	if s.Action != nil {
		action = s.Action.ToolName
		if s.Action.Rejection != "" {
			action += " (rejected)"
		}
	}
	outcome := "-"
	if s.Result != nil {
		outcome = "ok"
		if !s.Result.Success {
			outcome = "failed"
		}
	}
	return fmt.Sprintf("step %d: %s -> %s, goal %s", s.Index, action, outcome, s.Goal)
}

// DefaultMemoryWindow is the number of most recent steps handed to the Reasoner in full.
const DefaultMemoryWindow = 8

// memoryView is the bounded representation of memory used to build the reasoning prompt:
// older steps are compressed to one line each and the tail is kept in full.
type memoryView struct {
	Compressed []string
	Recent     []Step
}

func newMemoryView(steps []Step, window int) memoryView {
	if window <= 0 || len(steps) <= window {
		return memoryView{Recent: steps}
	}

	cut := len(steps) - window
	view := memoryView{
		Compressed: make([]string, 0, cut),
		Recent:     steps[cut:],
	}
	for _, s := range steps[:cut] {
		view.Compressed = append(view.Compressed, summarizeStep(s))
	}
	return view
}
