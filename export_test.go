package scenic

import (
	"context"
	"time"
)

var (
	CtxWithLogger       = ctxWithLogger
	InvocationSignature = invocationSignature
	FailedSignatures    = failedSignatures
	TruncateText        = truncateText
	ExtractJSONObject   = extractJSONObject
	HistorySummary      = historySummary
	StepVerdictOf       = stepVerdict
	ApproxTokens        = approxTokens
)

const NoActionPayload = noActionPayload

// NewMemoryViewForTest returns the compressed and the full parts of the view.
func NewMemoryViewForTest(steps []Step, window int) ([]string, []Step) {
	v := newMemoryView(steps, window)
	return v.Compressed, v.Recent
}

func FitMemoryViewForTest(steps []Step, window, budget int, counter TokenCounter, render func(compressed []string, recent []Step) string) ([]string, []Step) {
	v := fitMemoryView(newMemoryView(steps, window), budget, counter, func(v memoryView) string {
		return render(v.Compressed, v.Recent)
	})
	return v.Compressed, v.Recent
}

func ValidateArguments(caps []Capability, name string, args map[string]any) error {
	return newArgumentValidator(caps).Validate(name, args)
}

func Capture(ctx context.Context, ch ToolChannel, tool string, args map[string]any, timeout time.Duration, label string) (*Snapshot, error) {
	return newCamera(ch, tool, args, timeout).Capture(ctx, label)
}
