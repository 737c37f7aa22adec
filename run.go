package scenic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scenic/trace"
)

const compareQuestion = "Did the last action change the scene as intended?"

// run is the state of one Agent.Run: the connected channel, its capability list and the memory.
type run struct {
	goal     string
	cfg      *config
	reasoner Reasoner
	vision   VisionEvaluator

	channel      ToolChannel
	capabilities []Capability
	validator    *argumentValidator
	camera       *camera
	memory       *Memory

	// last is the snapshot taken after the previous action; it is the next step's "before".
	last *Snapshot
}

func newRun(a *Agent, cfg *config, goal string, ch ToolChannel) *run {
	ch = &tracedChannel{ToolChannel: ch}

	var caps []Capability
	for _, c := range ch.Capabilities() {
		if c.Name == cfg.renderTool {
			continue
		}
		caps = append(caps, c)
	}

	return &run{
		goal:         goal,
		cfg:          cfg,
		reasoner:     a.reasoner,
		vision:       a.vision,
		channel:      ch,
		capabilities: caps,
		validator:    newArgumentValidator(caps),
		camera:       newCamera(ch, cfg.renderTool, cfg.renderArgs, cfg.toolTimeout),
		memory:       NewMemory(),
	}
}

// step runs one OBSERVE, REASON, ACT, REFLECT, CHECK_GOAL iteration. The returned error is set
// only for a transport failure; the step then carries the diagnostic and the run must stop.
func (r *run) step(ctx context.Context, index int) (Step, error) {
	logger := LoggerFromContext(ctx).With("step", index)
	ctx = ctxWithLogger(ctx, logger)

	step := Step{Index: index, Timestamp: time.Now()}

	if h := trace.HandlerFrom(ctx); h != nil {
		ctx = h.StartStep(ctx, index)
		defer func() { h.EndStep(ctx, newStepData(&step)) }()
	}

	// OBSERVE
	before, err := r.observe(ctx)
	if err != nil {
		return step.fail(err)
	}
	if !before.Available() {
		step.degrade("observe: %s", snapshotFailure(before))
	}
	step.Observation = r.describe(ctx, &step, before)

	// REASON
	plan, err := r.plan(ctx, before, step.Observation)
	if err != nil {
		logger.Warn("reasoning unavailable", "error", err)
		step.Thought = "[reasoning unavailable: " + err.Error() + "]"
		step.degrade("reason: %s", err.Error())
	} else {
		step.Thought = plan.Thought
		if plan.Action != nil {
			step.Action = &ToolInvocation{
				ToolName:  plan.Action.ToolName,
				Arguments: cloneMap(plan.Action.Arguments),
			}
		}
	}

	// ACT
	if err := r.act(ctx, &step); err != nil {
		return step.fail(err)
	}

	// REFLECT
	after, err := r.camera.Capture(ctx, SnapshotModified)
	if err != nil {
		return step.fail(err)
	}
	if !after.Available() {
		step.degrade("reflect: %s", snapshotFailure(after))
	}
	step.Reflection = r.reflect(ctx, &step, before, after)
	r.last = after

	// CHECK_GOAL
	r.checkGoal(ctx, &step, before, after)
	step.Verdict = stepVerdict(step)

	logger.Info("step completed",
		"verdict", step.Verdict,
		"goal_verdict", step.Goal,
		"action", step.Action,
		"degraded", len(step.Degraded),
	)
	return step, nil
}

func (r *run) observe(ctx context.Context) (*Snapshot, error) {
	if r.last.Available() {
		snap := *r.last
		snap.Label = SnapshotOriginal
		return &snap, nil
	}
	return r.camera.Capture(ctx, SnapshotOriginal)
}

func (r *run) describe(ctx context.Context, step *Step, snap *Snapshot) string {
	callCtx, cancel := withOptionalTimeout(ctx, r.cfg.visionTimeout)
	defer cancel()

	desc, err := r.vision.Describe(callCtx, snap)
	if err != nil {
		LoggerFromContext(ctx).Warn("vision describe failed", "label", snap.Label, "error", err)
		step.degrade("describe %s: %s", snap.Label, err.Error())
		return PlaceholderDescription(err.Error())
	}
	return desc
}

func (r *run) plan(ctx context.Context, before *Snapshot, observation string) (*Plan, error) {
	callCtx, cancel := withOptionalTimeout(ctx, r.cfg.reasoningTimeout)
	defer cancel()

	plan, err := r.reasoner.Plan(callCtx, &PlanRequest{
		Goal:         r.goal,
		Memory:       r.memory.Steps(),
		Capabilities: r.capabilities,
		Observation:  observation,
		Attachments:  r.cfg.attachments,
	})
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, goerr.New("reasoner returned no plan")
	}
	return plan, nil
}

// act dispatches the proposed action, or records why it was not dispatched.
func (r *run) act(ctx context.Context, step *Step) error {
	logger := LoggerFromContext(ctx)

	if step.Action == nil {
		step.Result = noActionResult()
		return nil
	}

	if err := r.admit(step.Action); err != nil {
		logger.Info("action rejected", "action", step.Action, "reason", err)
		step.Action.Rejection = err.Error()
		step.Result = &ToolResult{
			ToolName: step.Action.ToolName,
			Success:  false,
			Payload:  err.Error(),
		}
		if h := trace.HandlerFrom(ctx); h != nil {
			h.AddEvent(ctx, "action_rejected", map[string]any{
				"tool":   step.Action.ToolName,
				"reason": err.Error(),
			})
		}
		return nil
	}

	callCtx, cancel := withOptionalTimeout(ctx, r.cfg.toolTimeout)
	defer cancel()

	inv := &ToolInvocation{ToolName: step.Action.ToolName, Arguments: cloneMap(step.Action.Arguments)}
	result, err := r.channel.Invoke(callCtx, inv)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			logger.Warn("tool invocation timed out", "action", step.Action, "timeout", r.cfg.toolTimeout)
			step.Result = &ToolResult{
				ToolName: inv.ToolName,
				Success:  false,
				Payload:  fmt.Sprintf("tool timed out after %s", r.cfg.toolTimeout),
			}
			return nil
		}

		step.Result = &ToolResult{ToolName: inv.ToolName, Success: false, Payload: err.Error()}
		if !errors.Is(err, ErrTransport) {
			err = goerr.Wrap(ErrTransport, err.Error(), goerr.V("tool", inv.ToolName))
		}
		return err
	}
	if result == nil {
		step.Result = &ToolResult{ToolName: inv.ToolName, Success: false, Payload: "tool channel returned no result"}
		return goerr.Wrap(ErrTransport, "tool channel returned no result", goerr.V("tool", inv.ToolName))
	}

	if result.ToolName == "" {
		result.ToolName = inv.ToolName
	}
	step.Result = result
	return nil
}

// admit checks the capability list, the argument schema and the failed-action history.
func (r *run) admit(inv *ToolInvocation) error {
	if _, ok := findCapability(r.capabilities, inv.ToolName); !ok {
		return goerr.Wrap(ErrUnknownTool, fmt.Sprintf("tool %q is not available", inv.ToolName))
	}

	if err := r.validator.Validate(inv.ToolName, inv.Arguments); err != nil {
		return err
	}

	sig := invocationSignature(inv.ToolName, inv.Arguments)
	if prev, ok := failedSignatures(r.memory.Steps())[sig]; ok {
		return goerr.Wrap(ErrRepeatedAction, fmt.Sprintf("identical invocation failed at step %d", prev))
	}
	return nil
}

func (r *run) reflect(ctx context.Context, step *Step, before, after *Snapshot) string {
	if !before.Available() || !after.Available() {
		return r.describe(ctx, step, after)
	}

	callCtx, cancel := withOptionalTimeout(ctx, r.cfg.visionTimeout)
	defer cancel()

	desc, err := r.vision.Compare(callCtx, before, after, compareQuestion)
	if err != nil {
		LoggerFromContext(ctx).Warn("vision compare failed", "error", err)
		step.degrade("compare: %s", err.Error())
		return PlaceholderDescription(err.Error())
	}
	return desc
}

func (r *run) checkGoal(ctx context.Context, step *Step, before, after *Snapshot) {
	callCtx, cancel := withOptionalTimeout(ctx, r.cfg.visionTimeout)
	defer cancel()

	judgment, err := r.vision.JudgeGoal(callCtx, &JudgeRequest{
		Goal:        r.goal,
		Snapshots:   []*Snapshot{before, after},
		History:     historySummary(r.memory.Summary(), *step),
		Attachments: r.cfg.attachments,
	})
	if err != nil || judgment == nil {
		if err == nil {
			err = goerr.New("vision returned no judgment")
		}
		LoggerFromContext(ctx).Warn("goal judgment failed", "error", err)
		step.degrade("judge: %s", err.Error())
		step.Goal = GoalNotAchieved
		return
	}

	step.Goal = judgment.Verdict
	step.GoalReason = judgment.Reason
	if !judgment.Recognized {
		step.GoalRaw = judgment.Raw
	}
}

// historySummary appends the current, not yet judged step to the memory summary.
func historySummary(memory string, current Step) string {
	line := summarizeStep(current)
	if i := strings.LastIndex(line, ", goal"); i >= 0 {
		line = line[:i]
	}
	line += " (current)"
	if memory == "" {
		return line
	}
	return memory + "\n" + line
}

func stepVerdict(s Step) StepVerdict {
	switch {
	case s.Goal == GoalAchieved:
		return StepSucceeded
	case s.Goal == GoalPartial:
		return StepPartial
	case s.actionFailed() || s.Error != "":
		return StepFailed
	default:
		return StepContinuing
	}
}

// fail marks the step as ended by a transport failure and hands the error back to the loop.
func (x *Step) fail(err error) (Step, error) {
	x.Error = err.Error()
	x.Goal = GoalNotAchieved
	x.Verdict = StepFailed
	return *x, err
}

func (x *Step) degrade(format string, args ...any) {
	x.Degraded = append(x.Degraded, fmt.Sprintf(format, args...))
}

func newStepData(s *Step) *trace.StepData {
	data := &trace.StepData{
		Index:       s.Index,
		Verdict:     string(s.Verdict),
		GoalVerdict: string(s.Goal),
		Degraded:    s.Degraded,
		Error:       s.Error,
	}
	if s.Action != nil {
		data.ToolName = s.Action.ToolName
		data.Rejected = s.Action.Rejection != ""
	}
	return data
}

// tracedChannel records every invocation, render requests included, as a tool execution span.
type tracedChannel struct {
	ToolChannel
}

func (c *tracedChannel) Invoke(ctx context.Context, inv *ToolInvocation) (*ToolResult, error) {
	h := trace.HandlerFrom(ctx)
	if h == nil {
		return c.ToolChannel.Invoke(ctx, inv)
	}

	ctx = h.StartToolExec(ctx, inv.ToolName, inv.Arguments)
	result, err := c.ToolChannel.Invoke(ctx, inv)

	var data map[string]any
	if result != nil {
		data = map[string]any{"success": result.Success}
		if result.Image != nil {
			data["image"] = result.Image.MimeType()
		} else {
			data["payload"] = result.Payload
		}
	}
	h.EndToolExec(ctx, data, err)
	return result, err
}
