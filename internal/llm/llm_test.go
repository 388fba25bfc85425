package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mohammad-safakhou/neurohub/config"
)

func TestNewModelSelectsProvider(t *testing.T) {
	m, err := NewModel(config.LLMConfig{
		DefaultProvider: "claude",
		Providers:       map[string]config.LLMProvider{"claude": {Type: "anthropic", APIKey: "k"}},
	})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if _, ok := m.(*Anthropic); !ok {
		t.Fatalf("expected *Anthropic, got %T", m)
	}

	if _, err := NewModel(config.LLMConfig{
		DefaultProvider: "x",
		Providers:       map[string]config.LLMProvider{"x": {Type: "cohere"}},
	}); err == nil {
		t.Fatalf("expected unsupported provider error")
	}
	if _, err := NewModel(config.LLMConfig{}); err == nil {
		t.Fatalf("expected error without providers")
	}
}

func TestWithNameCopies(t *testing.T) {
	base := NewOpenAI(Options{Name: "gpt-4o-mini"})
	named := WithName(base, "gpt-4o").(*OpenAI)
	if named.opts.Name != "gpt-4o" || base.opts.Name != "gpt-4o-mini" {
		t.Fatalf("names: %q %q", named.opts.Name, base.opts.Name)
	}
	f := ModelFunc(func(context.Context, Request) (Response, error) { return Response{}, nil })
	if _, ok := WithName(f, "other").(ModelFunc); !ok {
		t.Fatalf("unnamed model should be returned unchanged")
	}
}

func TestOpenAIGenerateParsesToolCalls(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c","object":"chat.completion","created":1,"model":"m",
"choices":[{"index":0,"finish_reason":"tool_calls","message":{"role":"assistant","content":"",
"tool_calls":[{"id":"call_1","type":"function","function":{"name":"register_device","arguments":"{\"device_name\":\"Cap\"}"}}]}}]}`)
	}))
	defer srv.Close()

	m := NewOpenAI(Options{Name: "m", APIKey: "k", BaseURL: srv.URL + "/"})
	resp, err := m.Generate(context.Background(), Request{
		System:   "be brief",
		Messages: []Message{{Role: RoleUser, Content: "add a device"}},
		Tools:    []ToolSpec{{Name: "register_device", Description: "d", Parameters: map[string]any{"type": "object"}}},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].Name != "register_device" || resp.ToolCalls[0].ID != "call_1" {
		t.Fatalf("tool calls: %+v", resp.ToolCalls)
	}
	if decodeArguments(resp.ToolCalls[0].Arguments)["device_name"] != "Cap" {
		t.Fatalf("arguments: %s", resp.ToolCalls[0].Arguments)
	}
	msgs, _ := got["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system + user messages, got %v", got["messages"])
	}
	if tools, _ := got["tools"].([]any); len(tools) != 1 {
		t.Fatalf("tools not sent: %v", got["tools"])
	}
}

func TestAnthropicGenerateJoinsTextAndToolUse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg","type":"message","role":"assistant","model":"claude",
"content":[{"type":"text","text":"Looking it up."},{"type":"tool_use","id":"tu_1","name":"export_findings","input":{"experiment_id":"exp-1"}}],
"stop_reason":"tool_use","usage":{"input_tokens":3,"output_tokens":4}}`)
	}))
	defer srv.Close()

	m := NewAnthropic(Options{Name: "claude", APIKey: "k", BaseURL: srv.URL})
	resp, err := m.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "export"}}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Text != "Looking it up." {
		t.Fatalf("text: %q", resp.Text)
	}
	if len(resp.ToolCalls) != 1 || decodeArguments(resp.ToolCalls[0].Arguments)["experiment_id"] != "exp-1" {
		t.Fatalf("tool calls: %+v", resp.ToolCalls)
	}
}

func TestAnthropicMessagesGroupToolResults(t *testing.T) {
	msgs := anthropicMessages([]Message{
		{Role: RoleUser, Content: "q"},
		{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "a", Name: "f"}, {ID: "b", Name: "g"}}},
		{Role: RoleTool, ToolCallID: "a", Content: "1"},
		{Role: RoleTool, ToolCallID: "b", Content: "2"},
		{Role: RoleAssistant, Content: "done"},
	})
	if len(msgs) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(msgs))
	}
	if len(msgs[2].Content) != 2 {
		t.Fatalf("tool results should share one turn, got %d blocks", len(msgs[2].Content))
	}
}
