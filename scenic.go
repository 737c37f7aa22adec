package scenic

//go:generate go tool moq -out mock/mock.go -pkg mock -skip-ensure . LLMClient Session ToolChannel Connector Reasoner VisionEvaluator

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scenic/trace"
)

// Agent drives a scene editor toward a goal through a tool channel. It observes the scene,
// asks the Reasoner for the next action, dispatches it, reflects on the visible change and
// judges goal completion, step after step, until the goal is achieved or the budget is spent.
//
// An Agent holds no per-run state; Run can be called concurrently. Each run owns its own
// tool channel and memory.
type Agent struct {
	connector Connector
	reasoner  Reasoner
	vision    VisionEvaluator

	config
}

const (
	DefaultMaxSteps         = 20
	DefaultConnectTimeout   = 30 * time.Second
	DefaultReasoningTimeout = 60 * time.Second
	DefaultVisionTimeout    = 60 * time.Second
	DefaultToolTimeout      = 60 * time.Second
)

type config struct {
	endpoint   string
	maxSteps   int
	renderTool string
	renderArgs map[string]any

	connectTimeout   time.Duration
	reasoningTimeout time.Duration
	visionTimeout    time.Duration
	toolTimeout      time.Duration

	attachments  []Attachment
	stepHook     StepHook
	traceHandler trace.Handler
	reports      ReportRepository
	logger       *slog.Logger
}

func (c *config) Clone() *config {
	return &config{
		endpoint:   c.endpoint,
		maxSteps:   c.maxSteps,
		renderTool: c.renderTool,
		renderArgs: cloneMap(c.renderArgs),

		connectTimeout:   c.connectTimeout,
		reasoningTimeout: c.reasoningTimeout,
		visionTimeout:    c.visionTimeout,
		toolTimeout:      c.toolTimeout,

		attachments:  c.attachments[:len(c.attachments):len(c.attachments)],
		stepHook:     c.stepHook,
		traceHandler: c.traceHandler,
		reports:      c.reports,
		logger:       c.logger,
	}
}

// New creates an agent. Options given here are defaults for every Run and can be overridden
// per Run.
func New(connector Connector, reasoner Reasoner, vision VisionEvaluator, options ...Option) *Agent {
	a := &Agent{
		connector: connector,
		reasoner:  reasoner,
		vision:    vision,
		config: config{
			maxSteps:   DefaultMaxSteps,
			renderTool: DefaultRenderTool,

			connectTimeout:   DefaultConnectTimeout,
			reasoningTimeout: DefaultReasoningTimeout,
			visionTimeout:    DefaultVisionTimeout,
			toolTimeout:      DefaultToolTimeout,

			stepHook: defaultStepHook,
			logger:   slog.New(slog.DiscardHandler),
		},
	}

	for _, opt := range options {
		opt(&a.config)
	}

	a.logger.Info("scenic agent created",
		"endpoint", a.config.endpoint,
		"max_steps", a.config.maxSteps,
		"render_tool", a.config.renderTool,
		"attachments", len(a.config.attachments),
		"has_trace", a.config.traceHandler != nil,
	)

	return a
}

// Option is the type for the options of the scenic agent.
type Option func(*config)

// WithEndpoint sets the tool channel target passed to the Connector, e.g. a command line or URL.
func WithEndpoint(endpoint string) Option {
	return func(c *config) {
		c.endpoint = endpoint
	}
}

// WithMaxSteps sets the step budget. Default is DefaultMaxSteps. Zero ends the run immediately
// without connecting; a negative value makes Run fail with ErrInvalidOption.
func WithMaxSteps(n int) Option {
	return func(c *config) {
		c.maxSteps = n
	}
}

// WithRenderTool sets the reserved tool used to capture the scene and the arguments passed
// to it. Default is DefaultRenderTool without arguments. The render tool is never offered
// to the Reasoner.
func WithRenderTool(name string, args map[string]any) Option {
	return func(c *config) {
		c.renderTool = name
		c.renderArgs = args
	}
}

// WithConnectTimeout bounds opening the tool channel (default 30s). A connect timeout fails
// the run with a fatal error.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *config) {
		c.connectTimeout = d
	}
}

// WithReasoningTimeout bounds each Reasoner call (default 60s). On timeout the step records
// the reasoning as unavailable and takes no action.
func WithReasoningTimeout(d time.Duration) Option {
	return func(c *config) {
		c.reasoningTimeout = d
	}
}

// WithVisionTimeout bounds each vision call (default 60s). A timed out description becomes a
// placeholder and a timed out judgment counts as not achieved; the run continues.
func WithVisionTimeout(d time.Duration) Option {
	return func(c *config) {
		c.visionTimeout = d
	}
}

// WithToolTimeout bounds each tool invocation, including render requests. A timed out
// invocation is recorded as a failed result and the run continues.
func WithToolTimeout(d time.Duration) Option {
	return func(c *config) {
		c.toolTimeout = d
	}
}

// WithAttachments adds reference images supplied together with the goal. They are given to
// both the Reasoner and the goal judgment.
func WithAttachments(attachments ...Attachment) Option {
	return func(c *config) {
		c.attachments = append(c.attachments, attachments...)
	}
}

// WithStepHook sets a callback invoked after every completed step.
// Usage:
//
//	scenic.WithStepHook(func(ctx context.Context, step scenic.Step) error {
//		fmt.Printf("step %d: %s\n", step.Index, step.Verdict)
//		return nil
//	})
func WithStepHook(hook StepHook) Option {
	return func(c *config) {
		c.stepHook = hook
	}
}

// WithTrace sets a trace handler that receives run, step, LLM call and tool execution events.
func WithTrace(h trace.Handler) Option {
	return func(c *config) {
		c.traceHandler = h
	}
}

// WithReportRepository saves the report of every run. A failed save is logged and does not
// change the outcome.
func WithReportRepository(repo ReportRepository) Option {
	return func(c *config) {
		c.reports = repo
	}
}

// WithLogger sets the logger for the scenic agent. Default is discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// Run pursues goal until it is judged achieved, the step budget is spent, a fatal error occurs
// or ctx is cancelled. The outcome is always described by the returned Report; an error is
// returned only for invalid input (ErrEmptyGoal, ErrInvalidOption).
//
// Cancellation is observed between steps. A step that has started completes, with each of
// its calls bounded by its own timeout.
func (a *Agent) Run(ctx context.Context, goal string, options ...Option) (*Report, error) {
	cfg := a.config.Clone()
	for _, opt := range options {
		opt(cfg)
	}

	if strings.TrimSpace(goal) == "" {
		return nil, goerr.Wrap(ErrEmptyGoal, "goal is required")
	}
	if cfg.maxSteps < 0 {
		return nil, goerr.Wrap(ErrInvalidOption, "max steps must not be negative", goerr.V("max_steps", cfg.maxSteps))
	}
	if cfg.stepHook == nil {
		cfg.stepHook = defaultStepHook
	}

	runID := uuid.Must(uuid.NewV7()).String()
	logger := cfg.logger.With("scenic.run_id", runID)
	ctx = ctxWithLogger(ctx, logger)
	ctx = ctxlog.With(ctx, logger)

	logger.Info("starting scenic run",
		"goal", goal,
		"endpoint", cfg.endpoint,
		"max_steps", cfg.maxSteps,
	)

	report := &Report{
		RunID:     runID,
		Goal:      goal,
		Steps:     []Step{},
		StartedAt: time.Now(),
	}

	if cfg.traceHandler != nil {
		ctx = trace.WithHandler(ctx, cfg.traceHandler)
		ctx = cfg.traceHandler.StartRun(ctx, goal)
		defer func() {
			var err error
			if report.Error != "" {
				err = goerr.New(report.Error)
			}
			cfg.traceHandler.EndRun(ctx, string(report.Verdict), err)
			if err := cfg.traceHandler.Finish(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("failed to finish trace", "error", err)
			}
		}()
	}

	a.execute(ctx, cfg, report)

	report.StepCount = len(report.Steps)
	report.EndedAt = time.Now()

	logger.Info("scenic run finished",
		"verdict", report.Verdict,
		"termination", report.Termination,
		"steps", report.StepCount,
		"best_verdict", report.BestVerdict,
	)

	if cfg.reports != nil {
		if err := cfg.reports.Save(context.WithoutCancel(ctx), report); err != nil {
			logger.Warn("failed to save report", "error", err)
		}
	}
	return report, nil
}

func (a *Agent) execute(ctx context.Context, cfg *config, report *Report) {
	logger := LoggerFromContext(ctx)

	if cfg.maxSteps == 0 {
		report.finish(RunNotAchieved, TerminationBudgetExhausted)
		return
	}
	if err := ctx.Err(); err != nil {
		report.finish(RunNotAchieved, TerminationCancelled)
		return
	}

	connectCtx, cancel := withOptionalTimeout(ctx, cfg.connectTimeout)
	ch, err := a.connector.Connect(connectCtx, cfg.endpoint)
	cancel()
	if err != nil {
		logger.Error("failed to connect tool channel", "endpoint", cfg.endpoint, "error", err)
		report.Error = goerr.Wrap(err, "failed to connect tool channel", goerr.V("endpoint", cfg.endpoint)).Error()
		report.finish(RunFailed, TerminationFatalError)
		return
	}
	defer func() {
		if err := ch.Close(); err != nil {
			logger.Warn("failed to close tool channel", "error", err)
		}
	}()

	r := newRun(a, cfg, report.Goal, ch)
	logger.Debug("tool channel connected",
		"capabilities", len(r.capabilities),
		"render_offered", r.camera.offered,
	)

	for index := 1; index <= cfg.maxSteps; index++ {
		if err := ctx.Err(); err != nil {
			logger.Info("run cancelled", "completed_steps", r.memory.Len(), "error", err)
			report.Steps = r.memory.Steps()
			report.finish(RunNotAchieved, TerminationCancelled)
			return
		}

		step, fatal := r.step(context.WithoutCancel(ctx), index)

		if err := r.memory.Append(step); err != nil {
			report.Steps = r.memory.Steps()
			report.Error = err.Error()
			report.finish(RunFailed, TerminationFatalError)
			return
		}

		if err := callStepHook(ctx, cfg.stepHook, step); err != nil {
			logger.Warn("step hook failed", "index", step.Index, "error", err)
		}

		if step.Goal != GoalNotAchieved {
			report.BestVerdict = step.Goal
		}

		switch {
		case fatal != nil:
			logger.Error("tool channel failure", "index", step.Index, "error", fatal)
			report.Steps = r.memory.Steps()
			report.Error = fatal.Error()
			report.finish(RunFailed, TerminationFatalError)
			return

		case step.Goal == GoalAchieved:
			report.Steps = r.memory.Steps()
			report.finish(RunAchieved, TerminationAchieved)
			return
		}
	}

	report.Steps = r.memory.Steps()
	report.finish(RunNotAchieved, TerminationBudgetExhausted)
}

func (x *Report) finish(verdict RunVerdict, termination Termination) {
	x.Verdict = verdict
	x.Termination = termination
}
