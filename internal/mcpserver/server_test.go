package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mohammad-safakhou/neurohub/internal/tools"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultJSON(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func newAPI(t *testing.T, status int, reply map[string]any, seen *map[string]any) *Server {
	t.Helper()
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(api.Close)
	return New(tools.NewClient(api.URL, time.Second), zerolog.Nop())
}

func TestCatalogListsFiveTools(t *testing.T) {
	s := New(tools.NewClient("http://localhost:0", time.Second), zerolog.Nop())
	var names []string
	for _, tool := range s.Catalog() {
		names = append(names, tool.Name)
		assert.Equal(t, "object", tool.InputSchema.Type)
	}
	assert.Equal(t, []string{"create_analysis_report", "create_experiment", "create_session_log", "export_findings", "register_device"}, names)

	for _, tool := range s.Catalog() {
		if tool.Name == "create_experiment" {
			assert.ElementsMatch(t, []string{"experiment_name", "description", "protocol", "hypothesis", "principal_investigator_name", "start_date"}, tool.InputSchema.Required)
		}
	}
}

func TestCreateAnalysisReportSuccess(t *testing.T) {
	var seen map[string]any
	s := newAPI(t, http.StatusCreated, map[string]any{"message": "Analysis report created successfully", "analysis_id": "a-1"}, &seen)

	res, err := s.Call(context.Background(), "create_analysis_report", map[string]any{
		"signal_id": "s-1", "researcher_name": "Dr. Sarah Chen", "analysis_type": "spectral",
		"parameters": map[string]any{"window": "2s"}, "results": map[string]any{"alpha": 0.4},
		"findings": "Elevated alpha", "confidence_score": 0.8,
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	out := resultJSON(t, res)
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, "a-1", out["analysis_id"])
	assert.Equal(t, `{"window":"2s"}`, seen["parameters"])
}

func TestMissingArgumentsBecomeErrorResult(t *testing.T) {
	s := New(tools.NewClient("http://localhost:0", time.Second), zerolog.Nop())

	res, err := s.Call(context.Background(), "register_device", map[string]any{"device_name": "Trigno"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	out := resultJSON(t, res)
	assert.Equal(t, "error", out["status"])
	assert.Contains(t, out["error_message"], "device_type")
}

func TestAPIErrorBecomesErrorResult(t *testing.T) {
	s := newAPI(t, http.StatusNotFound, map[string]any{"error": "Principal investigator not found: Nobody"}, nil)

	res, err := s.Call(context.Background(), "create_experiment", map[string]any{
		"experiment_name": "X", "description": "d", "protocol": "p", "hypothesis": "h",
		"principal_investigator_name": "Nobody", "start_date": "2025-01-01",
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultJSON(t, res)["error_message"], "Principal investigator not found")
}

func TestExportFindingsRejectsUnknownFormat(t *testing.T) {
	s := New(tools.NewClient("http://localhost:0", time.Second), zerolog.Nop())
	res, err := s.Call(context.Background(), "export_findings", map[string]any{"experiment_id": "e-1", "format": "docx"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestCallUnknownTool(t *testing.T) {
	s := New(tools.NewClient("http://localhost:0", time.Second), zerolog.Nop())
	_, err := s.Call(context.Background(), "drop_tables", nil)
	assert.Error(t, err)
}

func TestNonObjectArgumentsAreRejected(t *testing.T) {
	calls := 0
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))
	defer api.Close()
	s := New(tools.NewClient(api.URL, time.Second), zerolog.Nop())

	res, err := s.Call(context.Background(), "create_analysis_report", map[string]any{
		"signal_id": "s-1", "researcher_name": "Dr. Sarah Chen", "analysis_type": "spectral",
		"parameters": `{"window":"2s"}`, "results": map[string]any{"alpha": 0.4},
		"findings": "Elevated alpha", "confidence_score": 0.8,
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultJSON(t, res)["error_message"], "parameters must be a JSON object")

	res, err = s.Call(context.Background(), "register_device", map[string]any{
		"device_name": "Trigno", "device_type": "EMG", "specifications": "wireless",
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultJSON(t, res)["error_message"], "specifications must be a JSON object")
	assert.Zero(t, calls)
}
