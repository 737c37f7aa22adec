package scenic_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/scenic"
)

func TestExtractJSONObject(t *testing.T) {
	testCases := map[string]struct {
		input string
		want  string
		ok    bool
	}{
		"plain": {
			input: `{"a":1}`,
			want:  `{"a":1}`,
			ok:    true,
		},
		"code block": {
			input: "```json\n{\"a\": 1}\n```",
			want:  `{"a": 1}`,
			ok:    true,
		},
		"prose around": {
			input: `Sure! {"a": {"b": "}"}} Hope it helps.`,
			want:  `{"a": {"b": "}"}}`,
			ok:    true,
		},
		"skips invalid candidate": {
			input: `use {braces} like {"a": 2}`,
			want:  `{"a": 2}`,
			ok:    true,
		},
		"escaped quote": {
			input: `x {"a": "say \"hi\""} y`,
			want:  `{"a": "say \"hi\""}`,
			ok:    true,
		},
		"none": {
			input: "no json here",
			ok:    false,
		},
		"unbalanced": {
			input: `{"a": 1`,
			ok:    false,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got, ok := scenic.ExtractJSONObject(tc.input)
			gt.Equal(t, ok, tc.ok)
			gt.Equal(t, got, tc.want)
		})
	}
}
