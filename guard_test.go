package scenic_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/scenic"
)

func TestInvocationSignature(t *testing.T) {
	a := scenic.InvocationSignature("create_object", map[string]any{"name": "cube", "size": 1})
	b := scenic.InvocationSignature("create_object", map[string]any{"size": 1, "name": "cube"})
	gt.Equal(t, a, b)

	gt.NotEqual(t, a, scenic.InvocationSignature("create_object", map[string]any{"name": "cube", "size": 2}))
	gt.NotEqual(t, a, scenic.InvocationSignature("delete_object", map[string]any{"name": "cube", "size": 1}))
	gt.S(t, a).Contains("create_object:")

	gt.Equal(t,
		scenic.InvocationSignature("list_objects", nil),
		scenic.InvocationSignature("list_objects", map[string]any{}),
	)
}

func TestFailedSignatures(t *testing.T) {
	inv := func(name string) *scenic.ToolInvocation {
		return &scenic.ToolInvocation{ToolName: "create_object", Arguments: map[string]any{"name": name}}
	}
	steps := []scenic.Step{
		{Index: 1, Action: inv("a"), Result: &scenic.ToolResult{Success: false}},
		{Index: 2, Action: inv("b"), Result: &scenic.ToolResult{Success: true}},
		{Index: 3, Result: &scenic.ToolResult{Success: true}},
		{Index: 4, Action: &scenic.ToolInvocation{ToolName: "fly", Rejection: "unknown"}, Result: &scenic.ToolResult{}},
		{Index: 5, Action: inv("a"), Result: &scenic.ToolResult{Success: false}},
	}

	sigs := scenic.FailedSignatures(steps)
	gt.Equal(t, len(sigs), 1)
	gt.Equal(t, sigs[scenic.InvocationSignature("create_object", map[string]any{"name": "a"})], 5)
}

func TestTruncateText(t *testing.T) {
	gt.Equal(t, scenic.TruncateText("short", 100), "short")
	gt.Equal(t, scenic.TruncateText("anything", 0), "anything")

	long := strings.Repeat("a", 50) + strings.Repeat("b", 50)
	out := scenic.TruncateText(long, 20)
	gt.True(t, strings.HasPrefix(out, strings.Repeat("a", 10)))
	gt.True(t, strings.HasSuffix(out, strings.Repeat("b", 10)))
	gt.S(t, out).Contains("80 characters truncated")

	multi := strings.Repeat("あ", 40)
	gt.True(t, utf8.ValidString(scenic.TruncateText(multi, 25)))
}
