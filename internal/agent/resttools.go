package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mohammad-safakhou/neurohub/internal/mcpserver"
)

// RESTTools exposes the tool server's catalog to in-process agents. Calls go
// through the same handlers a protocol client reaches.
func RESTTools(srv *mcpserver.Server) (Toolset, error) {
	var out []Tool
	for _, def := range srv.Catalog() {
		schema, err := inputSchema(def)
		if err != nil {
			return Toolset{}, err
		}
		name := def.Name
		t, err := NewFunctionTool(name, def.Description, schema, func(ctx context.Context, args map[string]any) (any, error) {
			res, err := srv.Call(ctx, name, args)
			if err != nil {
				return nil, err
			}
			return json.RawMessage(resultText(res)), nil
		})
		if err != nil {
			return Toolset{}, err
		}
		out = append(out, t)
	}
	return NewToolset(out...), nil
}

func inputSchema(t mcp.Tool) (map[string]any, error) {
	raw, err := json.Marshal(t.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", t.Name, err)
	}
	var schema map[string]any
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("tool %s: %w", t.Name, err)
	}
	return schema, nil
}

// resultText joins the text content of a tool result. Tool results are JSON
// documents; anything else is quoted.
func resultText(res *mcp.CallToolResult) string {
	if res == nil {
		return "null"
	}
	var parts []string
	for _, c := range res.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	text := strings.Join(parts, "\n")
	if json.Valid([]byte(text)) {
		return text
	}
	b, _ := json.Marshal(text)
	return string(b)
}
