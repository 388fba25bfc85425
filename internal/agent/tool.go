package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/mohammad-safakhou/neurohub/internal/llm"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// Tool is a named function an agent may call.
type Tool interface {
	Name() string
	Description() string
	Schema() map[string]any
	Call(ctx context.Context, args map[string]any) (any, error)
}

// FunctionTool validates arguments against its JSON schema before calling fn.
type FunctionTool struct {
	name        string
	description string
	schema      map[string]any
	compiled    *jsonschema.Schema
	fn          func(ctx context.Context, args map[string]any) (any, error)
}

func NewFunctionTool(name, description string, schema map[string]any, fn func(ctx context.Context, args map[string]any) (any, error)) (*FunctionTool, error) {
	if schema == nil {
		schema = map[string]any{"type": "object"}
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("tool %s: marshal schema: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	res := name + ".json"
	if err := compiler.AddResource(res, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("tool %s: add schema resource: %w", name, err)
	}
	compiled, err := compiler.Compile(res)
	if err != nil {
		return nil, fmt.Errorf("tool %s: compile schema: %w", name, err)
	}
	return &FunctionTool{name: name, description: description, schema: schema, compiled: compiled, fn: fn}, nil
}

func (t *FunctionTool) Name() string           { return t.name }
func (t *FunctionTool) Description() string    { return t.description }
func (t *FunctionTool) Schema() map[string]any { return t.schema }

func (t *FunctionTool) Call(ctx context.Context, args map[string]any) (any, error) {
	if args == nil {
		args = map[string]any{}
	}
	// the validator expects plain JSON values
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("invalid arguments for %s: %w", t.name, err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid arguments for %s: %w", t.name, err)
	}
	if err := t.compiled.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid arguments for %s: %w", t.name, err)
	}
	return t.fn(ctx, args)
}

// Toolset is an ordered collection of tools looked up by name.
type Toolset struct {
	order []string
	tools map[string]Tool
}

func NewToolset(tools ...Tool) Toolset {
	ts := Toolset{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		ts = ts.add(t)
	}
	return ts
}

func (s Toolset) add(t Tool) Toolset {
	if s.tools == nil {
		s.tools = map[string]Tool{}
	}
	if _, ok := s.tools[t.Name()]; !ok {
		s.order = append(s.order, t.Name())
	}
	s.tools[t.Name()] = t
	return s
}

// Merge returns the union of s and others; later tools win on name clashes.
func (s Toolset) Merge(others ...Toolset) Toolset {
	out := NewToolset(s.List()...)
	for _, o := range others {
		for _, t := range o.List() {
			out = out.add(t)
		}
	}
	return out
}

func (s Toolset) Lookup(name string) (Tool, bool) {
	t, ok := s.tools[name]
	return t, ok
}

// Subset keeps only the named tools, failing on unknown names.
func (s Toolset) Subset(names []string) (Toolset, error) {
	picked := make([]Tool, 0, len(names))
	for _, n := range names {
		t, ok := s.tools[n]
		if !ok {
			return Toolset{}, fmt.Errorf("unknown tool %q", n)
		}
		picked = append(picked, t)
	}
	return NewToolset(picked...), nil
}

func (s Toolset) List() []Tool {
	out := make([]Tool, 0, len(s.order))
	for _, n := range s.order {
		out = append(out, s.tools[n])
	}
	return out
}

func (s Toolset) Len() int { return len(s.order) }

// Specs describes the tools to a model.
func (s Toolset) Specs() []llm.ToolSpec {
	out := make([]llm.ToolSpec, 0, len(s.order))
	for _, t := range s.List() {
		out = append(out, llm.ToolSpec{Name: t.Name(), Description: t.Description(), Parameters: t.Schema()})
	}
	return out
}
