package scenic

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// VisionEvaluator turns scene images into text and judges goal completion.
type VisionEvaluator interface {
	// Describe returns a free-form description of a snapshot.
	Describe(ctx context.Context, snap *Snapshot) (string, error)

	// Compare describes the difference between two snapshots with respect to question.
	Compare(ctx context.Context, before, after *Snapshot, question string) (string, error)

	// JudgeGoal classifies whether the goal is reached.
	JudgeGoal(ctx context.Context, req *JudgeRequest) (*Judgment, error)
}

// JudgeRequest is the input of a goal judgment. The last snapshot is the current state.
type JudgeRequest struct {
	Goal        string
	Snapshots   []*Snapshot
	History     string
	Attachments []Attachment
}

// Judgment is the parsed outcome of a goal judgment.
type Judgment struct {
	Verdict GoalVerdict `json:"verdict"`
	Reason  string      `json:"reason,omitempty"`

	// Raw is the unparsed judge output.
	Raw string `json:"raw,omitempty"`

	// Recognized is false when the output matched neither the JSON contract nor a marker.
	Recognized bool `json:"recognized"`
}

// Vision is a VisionEvaluator backed by a multimodal LLMClient. It holds no per-run state
// and is safe for concurrent use.
type Vision struct {
	client       LLMClient
	systemPrompt string
}

type VisionOption func(*Vision)

// WithVisionSystemPrompt replaces the built-in system prompt.
func WithVisionSystemPrompt(prompt string) VisionOption {
	return func(v *Vision) {
		v.systemPrompt = prompt
	}
}

func NewVision(client LLMClient, options ...VisionOption) *Vision {
	v := &Vision{
		client:       client,
		systemPrompt: visionSystemPrompt,
	}
	for _, opt := range options {
		opt(v)
	}
	return v
}

func (v *Vision) Describe(ctx context.Context, snap *Snapshot) (string, error) {
	if !snap.Available() {
		return PlaceholderDescription(snapshotFailure(snap)), nil
	}

	prompt, err := renderTemplate(visionDescribeTmpl, map[string]any{"Label": snap.Label})
	if err != nil {
		return "", err
	}

	text, _, err := generate(ctx, v.client, "describe", v.sessionOptions(ContentTypeText), Text(prompt), *snap.Image)
	if err != nil {
		return "", goerr.Wrap(err, "failed to describe scene", goerr.V("label", snap.Label))
	}
	return text, nil
}

// Compare falls back to Describe when only one of the snapshots carries an image.
func (v *Vision) Compare(ctx context.Context, before, after *Snapshot, question string) (string, error) {
	switch {
	case !before.Available() && !after.Available():
		return PlaceholderDescription(snapshotFailure(after)), nil
	case !before.Available():
		return v.Describe(ctx, after)
	case !after.Available():
		return v.Describe(ctx, before)
	}

	prompt, err := renderTemplate(visionCompareTmpl, map[string]any{
		"Before":   before.Label,
		"After":    after.Label,
		"Question": question,
	})
	if err != nil {
		return "", err
	}

	text, _, err := generate(ctx, v.client, "compare", v.sessionOptions(ContentTypeText),
		Text(prompt), *before.Image, *after.Image)
	if err != nil {
		return "", goerr.Wrap(err, "failed to compare scenes",
			goerr.V("before", before.Label),
			goerr.V("after", after.Label))
	}
	return text, nil
}

// JudgeGoal returns not_achieved without calling the LLM when no snapshot has an image.
func (v *Vision) JudgeGoal(ctx context.Context, req *JudgeRequest) (*Judgment, error) {
	var images []Input
	for _, a := range req.Attachments {
		images = append(images, a.Image)
	}
	var scenes int
	for _, s := range req.Snapshots {
		if s.Available() {
			images = append(images, *s.Image)
			scenes++
		}
	}
	if scenes == 0 {
		return &Judgment{
			Verdict: GoalNotAchieved,
			Reason:  "no scene image available to judge",
		}, nil
	}

	descriptions := make([]string, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		descriptions = append(descriptions, a.Description)
	}

	prompt, err := renderTemplate(visionJudgeTmpl, map[string]any{
		"Goal":        req.Goal,
		"History":     req.History,
		"Images":      scenes,
		"Attachments": descriptions,
	})
	if err != nil {
		return nil, err
	}

	inputs := append([]Input{Text(prompt)}, images...)
	text, _, err := generate(ctx, v.client, "judge_goal", v.sessionOptions(ContentTypeJSON), inputs...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to judge goal")
	}

	judgment := ParseJudgment(text)
	if !judgment.Recognized {
		LoggerFromContext(ctx).Warn("unrecognized goal judgment", "raw", truncateText(text, 500))
	}
	return judgment, nil
}

func (v *Vision) sessionOptions(contentType ContentType) []SessionOption {
	return []SessionOption{
		WithSessionSystemPrompt(v.systemPrompt),
		WithSessionContentType(contentType),
	}
}

func snapshotFailure(snap *Snapshot) string {
	if snap == nil || snap.Failure == "" {
		return "no image"
	}
	return snap.Failure
}

const (
	markerAchieved    = "GOAL_ACHIEVED"
	markerPartial     = "GOAL_PARTIAL"
	markerNotAchieved = "GOAL_NOT_ACHIEVED"
)

// ParseJudgment classifies judge output deterministically. It accepts the JSON object
// {"verdict": ..., "reason": ...}, also inside a code block or surrounded by prose, and falls
// back to the GOAL_ACHIEVED, GOAL_PARTIAL and GOAL_NOT_ACHIEVED markers. Anything else, including
// output carrying conflicting markers, is not_achieved.
func ParseJudgment(text string) *Judgment {
	j := &Judgment{Verdict: GoalNotAchieved, Raw: text}

	if obj, ok := extractJSONObject(text); ok {
		var out struct {
			Verdict string `json:"verdict"`
			Reason  string `json:"reason"`
		}
		if err := json.Unmarshal([]byte(obj), &out); err == nil {
			if verdict, ok := normalizeVerdict(out.Verdict); ok {
				j.Verdict = verdict
				j.Reason = out.Reason
				j.Recognized = true
				return j
			}
		}
	}

	found := map[GoalVerdict]bool{}
	if strings.Contains(text, markerNotAchieved) {
		found[GoalNotAchieved] = true
	}
	if strings.Contains(text, markerPartial) {
		found[GoalPartial] = true
	}
	if strings.Contains(text, markerAchieved) {
		found[GoalAchieved] = true
	}

	switch len(found) {
	case 0:
		j.Reason = "unrecognized judgment"
	case 1:
		for verdict := range found {
			j.Verdict = verdict
		}
		j.Reason = strings.TrimSpace(text)
		j.Recognized = true
	default:
		j.Reason = "conflicting verdict markers"
	}
	return j
}

func normalizeVerdict(s string) (GoalVerdict, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	s = strings.TrimPrefix(s, "goal_")

	switch GoalVerdict(s) {
	case GoalAchieved, GoalPartial, GoalNotAchieved:
		return GoalVerdict(s), true
	}
	return "", false
}
