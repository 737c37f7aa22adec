package schema_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/scenic"
	"github.com/m-mizutani/scenic/internal/schema"
)

func TestClean(t *testing.T) {
	raw := map[string]any{
		"type":                 "object",
		"title":                "CreateArgs",
		"additionalProperties": false,
		"properties": map[string]any{
			"title": map[string]any{"type": "string", "title": "Title", "default": "untitled"},
			"position": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "number", "default": 0},
			},
		},
		"required": []any{"title"},
	}

	cleaned := schema.Clean(raw)
	gt.Equal(t, cleaned, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
			"position": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "number"},
			},
		},
		"required": []any{"title"},
	})

	// the input is not modified
	gt.Equal[any](t, raw["title"], "CreateArgs")
	gt.Nil(t, schema.Clean(nil))
}

func TestToParameters(t *testing.T) {
	params, required, err := schema.ToParameters(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":   map[string]any{"type": "string", "description": "object name"},
			"scale":  map[string]any{"type": []any{"number", "null"}},
			"kind":   map[string]any{"type": "string", "enum": []any{"cube", "sphere"}},
			"tags":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"points": map[string]any{"type": "array"},
			"transform": map[string]any{
				"type":       "object",
				"properties": map[string]any{"x": map[string]any{"type": "number"}},
				"required":   []any{"x"},
			},
		},
		"required": []any{"name"},
	})
	gt.NoError(t, err).Required()

	gt.Equal(t, required, []string{"name"})
	gt.Equal(t, params["name"].Description, "object name")
	gt.Equal(t, params["scale"].Type, scenic.TypeNumber)
	gt.Equal(t, params["kind"].Enum, []string{"cube", "sphere"})
	gt.Equal(t, params["tags"].Items.Type, scenic.TypeString)
	gt.NotNil(t, params["points"].Items)
	gt.Equal(t, params["transform"].Properties["x"].Type, scenic.TypeNumber)
	gt.Equal(t, params["transform"].Required, []string{"x"})

	for _, p := range params {
		gt.NoError(t, p.Validate())
	}
}

func TestToParametersInvalidProperty(t *testing.T) {
	_, _, err := schema.ToParameters(map[string]any{
		"properties": map[string]any{"name": "string"},
	})
	gt.Error(t, err)
}
