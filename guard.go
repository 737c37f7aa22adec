package scenic

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// invocationSignature is a deterministic signature of a tool call: the tool name plus a hash
// of its arguments. encoding/json sorts map keys, so equal argument maps give equal signatures.
// Missing and empty arguments are the same call.
func invocationSignature(name string, args map[string]any) string {
	if args == nil {
		args = map[string]any{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		raw = []byte(fmt.Sprintf("%v", args))
	}
	h := sha256.Sum256(raw)
	return fmt.Sprintf("%s:%x", name, h[:8])
}

// failedSignatures collects signatures of actions that were dispatched and failed.
func failedSignatures(steps []Step) map[string]int {
	sigs := make(map[string]int)
	for _, s := range steps {
		if s.Action == nil || s.Action.Rejection != "" || s.Result == nil || s.Result.Success {
			continue
		}
		sigs[invocationSignature(s.Action.ToolName, s.Action.Arguments)] = s.Index
	}
	return sigs
}

// truncateText keeps the head and tail of s within maxChars, marking the removed middle.
func truncateText(s string, maxChars int) string {
	if maxChars <= 0 || len(s) <= maxChars {
		return s
	}
	half := maxChars / 2
	head := s[:half]
	tail := s[len(s)-half:]
	// avoid splitting a multi-byte rune at either cut
	for len(head) > 0 && !utf8.ValidString(head) {
		head = head[:len(head)-1]
	}
	for len(tail) > 0 && !utf8.ValidString(tail) {
		tail = tail[1:]
	}
	return head + fmt.Sprintf("\n[... %d characters truncated ...]\n", len(s)-len(head)-len(tail)) + tail
}
