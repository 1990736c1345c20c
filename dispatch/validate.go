package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/alexschlessinger/dispatch/tools"
)

// parseArguments decodes a call's raw JSON arguments. An empty argument
// string means "no arguments", not an error.
func parseArguments(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// Validator checks call arguments against the target tool's schema before
// the call executes. Compiled schemas are cached per tool name. A failed
// validation is an ordinary per-call error; it never aborts the batch.
type Validator struct {
	registry *tools.ToolRegistry

	mu    sync.Mutex
	cache map[string]*gojsonschema.Schema
}

// NewValidator creates a validator over the given registry
func NewValidator(registry *tools.ToolRegistry) *Validator {
	return &Validator{
		registry: registry,
		cache:    make(map[string]*gojsonschema.Schema),
	}
}

// Wrap returns a Func that validates arguments before delegating to fn.
// Tools missing from the registry pass through unvalidated; fn reports
// those itself.
func (v *Validator) Wrap(fn Func) Func {
	return func(ctx context.Context, call Call) (string, error) {
		if err := v.validate(call); err != nil {
			return "", err
		}
		return fn(ctx, call)
	}
}

func (v *Validator) validate(call Call) error {
	schema, err := v.schemaFor(call.Name)
	if err != nil {
		return err
	}
	if schema == nil {
		return nil
	}

	doc := call.Arguments
	if strings.TrimSpace(doc) == "" {
		doc = "{}"
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return fmt.Errorf("invalid arguments for %s: %v", call.Name, err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return fmt.Errorf("invalid arguments for %s: %s", call.Name, strings.Join(problems, "; "))
	}
	return nil
}

func (v *Validator) schemaFor(name string) (*gojsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if schema, ok := v.cache[name]; ok {
		return schema, nil
	}

	tool, ok := v.registry.Get(name)
	if !ok {
		return nil, nil
	}
	toolSchema := tool.GetSchema()
	if toolSchema == nil {
		return nil, nil
	}

	raw, err := json.Marshal(toolSchema)
	if err != nil {
		return nil, fmt.Errorf("cannot marshal schema for %s: %v", name, err)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("cannot compile schema for %s: %v", name, err)
	}

	v.cache[name] = schema
	return schema, nil
}
