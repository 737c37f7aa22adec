package scenic_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/scenic"
)

func TestValidateArguments(t *testing.T) {
	caps := []scenic.Capability{
		createCapability,
		{Name: "free_form"},
		{Name: "broken", Schema: map[string]any{"type": 12}},
	}

	t.Run("valid", func(t *testing.T) {
		gt.NoError(t, scenic.ValidateArguments(caps, "create_object", map[string]any{"name": "cube"}))
	})

	t.Run("missing required", func(t *testing.T) {
		err := scenic.ValidateArguments(caps, "create_object", nil)
		gt.True(t, errors.Is(err, scenic.ErrInvalidArguments))
	})

	t.Run("wrong type", func(t *testing.T) {
		err := scenic.ValidateArguments(caps, "create_object", map[string]any{"name": 3})
		gt.True(t, errors.Is(err, scenic.ErrInvalidArguments))
	})

	t.Run("unknown tool", func(t *testing.T) {
		err := scenic.ValidateArguments(caps, "fly", map[string]any{})
		gt.True(t, errors.Is(err, scenic.ErrUnknownTool))
	})

	t.Run("no schema", func(t *testing.T) {
		gt.NoError(t, scenic.ValidateArguments(caps, "free_form", map[string]any{"anything": true}))
	})

	t.Run("unusable schema", func(t *testing.T) {
		gt.NoError(t, scenic.ValidateArguments(caps, "broken", map[string]any{"x": 1}))
	})
}

func TestCapabilityValidate(t *testing.T) {
	gt.NoError(t, createCapability.Validate())

	noName := scenic.Capability{}
	gt.True(t, errors.Is(noName.Validate(), scenic.ErrInvalidTool))

	undefined := scenic.Capability{Name: "x", Required: []string{"missing"}}
	gt.True(t, errors.Is(undefined.Validate(), scenic.ErrInvalidTool))

	badParam := scenic.Capability{
		Name:       "x",
		Parameters: map[string]*scenic.Parameter{"list": {Type: scenic.TypeArray}},
	}
	gt.True(t, errors.Is(badParam.Validate(), scenic.ErrInvalidParameter))
}

func TestParameterValidation(t *testing.T) {
	t.Run("nested object", func(t *testing.T) {
		p := &scenic.Parameter{
			Type: scenic.TypeObject,
			Properties: map[string]*scenic.Parameter{
				"position": {
					Type:  scenic.TypeArray,
					Items: &scenic.Parameter{Type: scenic.TypeNumber},
				},
			},
		}
		gt.NoError(t, p.Validate())
	})

	t.Run("array without items", func(t *testing.T) {
		p := &scenic.Parameter{Type: scenic.TypeArray}
		gt.Error(t, p.Validate())
	})

	t.Run("unknown type", func(t *testing.T) {
		p := &scenic.Parameter{Type: "vector"}
		gt.Error(t, p.Validate())
	})

	t.Run("untyped", func(t *testing.T) {
		p := &scenic.Parameter{}
		gt.NoError(t, p.Validate())
	})
}
