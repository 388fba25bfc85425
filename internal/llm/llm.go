// Package llm is the chat-model boundary used by the agents. Two providers are
// supported: OpenAI-compatible chat completions and Anthropic messages.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/neurohub/config"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one turn of a conversation. Assistant turns may carry tool calls;
// tool turns answer exactly one call through ToolCallID.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a function invocation requested by the model. Arguments is the
// raw JSON object the model produced.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolSpec advertises a callable function and its JSON schema.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

type Request struct {
	System   string
	Messages []Message
	Tools    []ToolSpec
}

type Response struct {
	Text      string
	ToolCalls []ToolCall
}

// Model generates the next assistant turn.
type Model interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// ModelFunc adapts a function to the Model interface.
type ModelFunc func(ctx context.Context, req Request) (Response, error)

func (f ModelFunc) Generate(ctx context.Context, req Request) (Response, error) { return f(ctx, req) }

// NewModel creates the model of the default provider. The model name may be
// overridden per agent with WithName.
func NewModel(cfg config.LLMConfig) (Model, error) {
	cfg = cfg.Normalize()
	if len(cfg.Providers) == 0 {
		return nil, fmt.Errorf("no LLM providers configured")
	}
	p := cfg.Provider()
	opts := Options{
		Name:        cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   int64(cfg.MaxTokens),
		APIKey:      p.APIKey,
		BaseURL:     p.BaseURL,
		Timeout:     p.Timeout,
	}
	switch strings.ToLower(p.Type) {
	case "openai":
		return NewOpenAI(opts), nil
	case "anthropic":
		return NewAnthropic(opts), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider type: %s", p.Type)
	}
}

// Named is implemented by models whose model identifier can be swapped.
type Named interface {
	WithName(name string) Model
}

// WithName returns m bound to another model identifier when the provider
// supports it, otherwise m unchanged.
func WithName(m Model, name string) Model {
	if n, ok := m.(Named); ok && strings.TrimSpace(name) != "" {
		return n.WithName(name)
	}
	return m
}

func decodeArguments(raw json.RawMessage) map[string]any {
	out := map[string]any{}
	if len(raw) == 0 {
		return out
	}
	_ = json.Unmarshal(raw, &out)
	return out
}
