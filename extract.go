package scenic

import (
	"encoding/json"
	"regexp"
	"strings"
)

var codeBlockRegex = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*\\n?(.*?)```")

// extractJSONObject finds a JSON object in LLM output. Models often wrap the object in a
// markdown code block or surround it with prose even when JSON output was requested.
// The returned string is valid JSON; ok is false when no object was found.
func extractJSONObject(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if isJSONObject(text) {
		return text, true
	}

	for _, m := range codeBlockRegex.FindAllStringSubmatch(text, -1) {
		if candidate := strings.TrimSpace(m[1]); isJSONObject(candidate) {
			return candidate, true
		}
	}

	// scan every '{' and return the first balanced object that decodes
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end := matchBrace(text, start); end > 0 {
			if candidate := text[start : end+1]; isJSONObject(candidate) {
				return candidate, true
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchBrace returns the index of the '}' closing the object opened at start, or -1.
func matchBrace(text string, start int) int {
	depth := 0
	inString := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func isJSONObject(text string) bool {
	if len(text) < 2 || text[0] != '{' || text[len(text)-1] != '}' {
		return false
	}
	var v map[string]any
	return json.Unmarshal([]byte(text), &v) == nil
}
