package scenic

import "errors"

var (
	// ErrEmptyGoal is returned by Run when the goal is blank.
	ErrEmptyGoal = errors.New("goal is empty")

	// ErrInvalidOption is returned when an option has an unusable value, e.g. negative max steps.
	ErrInvalidOption = errors.New("invalid option")

	// ErrTransport marks failures of the tool channel itself (connection lost, malformed response).
	// Tool channel implementations must wrap transport failures with it so that the loop can
	// tell them apart from ordinary tool errors.
	ErrTransport = errors.New("tool channel transport failure")

	ErrUnknownTool      = errors.New("tool is not in capability list")
	ErrInvalidArguments = errors.New("arguments do not satisfy tool schema")
	ErrRepeatedAction   = errors.New("action repeats a previously failed invocation")

	// ErrRenderFailed is returned when the render tool did not produce a readable image.
	ErrRenderFailed = errors.New("render failed")

	// ErrReportNotFound is returned by a ReportStore that holds no report with the given ID.
	ErrReportNotFound = errors.New("report not found")

	ErrInvalidTool      = errors.New("invalid tool specification")
	ErrInvalidParameter = errors.New("invalid parameter")
)
