package scenic

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// argumentValidator checks invocation arguments against the JSON Schema advertised for each
// capability. Compiled schemas are cached per tool for the lifetime of a run.
type argumentValidator struct {
	caps     []Capability
	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

func newArgumentValidator(caps []Capability) *argumentValidator {
	return &argumentValidator{
		caps:     caps,
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Validate returns nil when the tool has no schema or the arguments satisfy it.
func (v *argumentValidator) Validate(name string, args map[string]any) error {
	schema, err := v.schema(name)
	if err != nil {
		return err
	}
	if schema == nil {
		return nil
	}

	if args == nil {
		args = map[string]any{}
	}
	instance, err := toJSONValue(args)
	if err != nil {
		return goerr.Wrap(err, "failed to encode arguments", goerr.V("tool", name))
	}

	if err := schema.Validate(instance); err != nil {
		return goerr.Wrap(ErrInvalidArguments, err.Error(), goerr.V("tool", name))
	}
	return nil
}

func (v *argumentValidator) schema(name string) (*jsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if s, ok := v.compiled[name]; ok {
		return s, nil
	}

	capability, ok := findCapability(v.caps, name)
	if !ok {
		return nil, goerr.Wrap(ErrUnknownTool, "no capability", goerr.V("tool", name))
	}
	if len(capability.Schema) == 0 {
		v.compiled[name] = nil
		return nil, nil
	}

	doc, err := toJSONValue(capability.Schema)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode schema", goerr.V("tool", name))
	}

	url := "scenic://tools/" + name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to add schema", goerr.V("tool", name))
	}
	compiled, err := c.Compile(url)
	if err != nil {
		// unusable schema, skip validation for this tool
		v.compiled[name] = nil
		return nil, nil
	}

	v.compiled[name] = compiled
	return compiled, nil
}

func toJSONValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(raw))
}
