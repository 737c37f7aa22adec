package schema

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scenic"
)

// presentationKeys are dropped from schemas shown to the LLM. They add tokens but do not
// change which arguments are accepted.
var presentationKeys = []string{"title", "default", "additionalProperties"}

// Clean returns a deep copy of schema without presentation keys.
func Clean(schema map[string]any) map[string]any {
	if schema == nil {
		return nil
	}
	return cleanValue(schema).(map[string]any)
}

func cleanValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, v := range x {
			if isPresentationKey(k) {
				continue
			}
			out[k] = cleanValue(v)
		}
		// a property literally named "title" is kept
		if props, ok := x["properties"].(map[string]any); ok {
			cleaned := make(map[string]any, len(props))
			for name, prop := range props {
				cleaned[name] = cleanValue(prop)
			}
			out["properties"] = cleaned
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, v := range x {
			out[i] = cleanValue(v)
		}
		return out
	default:
		return v
	}
}

func isPresentationKey(k string) bool {
	for _, key := range presentationKeys {
		if k == key {
			return true
		}
	}
	return false
}

// ToParameters converts an object schema into the parameter view of a capability.
func ToParameters(schema map[string]any) (map[string]*scenic.Parameter, []string, error) {
	params := map[string]*scenic.Parameter{}
	if schema == nil {
		return params, nil, nil
	}

	props, _ := schema["properties"].(map[string]any)
	for name, raw := range props {
		prop, ok := raw.(map[string]any)
		if !ok {
			return nil, nil, goerr.Wrap(scenic.ErrInvalidParameter, "property is not an object", goerr.V("property", name))
		}
		p, err := toParameter(prop)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to convert property", goerr.V("property", name))
		}
		params[name] = p
	}

	return params, stringList(schema["required"]), nil
}

func toParameter(prop map[string]any) (*scenic.Parameter, error) {
	p := &scenic.Parameter{
		Type:        scenic.ParameterType(valueOrEmpty[string](prop["type"])),
		Description: valueOrEmpty[string](prop["description"]),
	}

	// nullable unions such as ["string", "null"]
	if types, ok := prop["type"].([]any); ok {
		for _, t := range types {
			if s, ok := t.(string); ok && s != "null" {
				p.Type = scenic.ParameterType(s)
				break
			}
		}
	}

	if enum, ok := prop["enum"].([]any); ok {
		for _, e := range enum {
			p.Enum = append(p.Enum, fmt.Sprintf("%v", e))
		}
	}

	switch p.Type {
	case scenic.TypeObject:
		nested, _, err := ToParameters(prop)
		if err != nil {
			return nil, err
		}
		p.Properties = nested
		p.Required = stringList(prop["required"])

	case scenic.TypeArray:
		items, ok := prop["items"].(map[string]any)
		if !ok {
			// items of unknown shape
			p.Items = &scenic.Parameter{}
			break
		}
		item, err := toParameter(items)
		if err != nil {
			return nil, err
		}
		p.Items = item
	}

	return p, nil
}

func stringList(v any) []string {
	switch x := v.(type) {
	case []string:
		return x
	case []any:
		var out []string
		for _, e := range x {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func valueOrEmpty[T any](v any) T {
	var empty T
	if v == nil {
		return empty
	}
	if v, ok := v.(T); ok {
		return v
	}
	return empty
}
