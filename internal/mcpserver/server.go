// Package mcpserver exposes the NeuroHub tool functions over the Model
// Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mohammad-safakhou/neurohub/internal/metrics"
	"github.com/mohammad-safakhou/neurohub/internal/tools"
	"github.com/rs/zerolog"
)

const (
	Name    = "NeuroHub MCP Server"
	Version = "1.0.0"
)

// Transports accepted by Serve.
const (
	TransportSSE   = "sse"
	TransportStdio = "stdio"
)

type entry struct {
	tool    mcp.Tool
	handler server.ToolHandlerFunc
}

type Server struct {
	client *tools.Client
	log    zerolog.Logger
	mcp    *server.MCPServer
	tools  map[string]entry
}

// New registers the five NeuroHub tools against client.
func New(client *tools.Client, log zerolog.Logger) *Server {
	s := &Server{
		client: client,
		log:    log,
		mcp:    server.NewMCPServer(Name, Version, server.WithToolCapabilities(false), server.WithRecovery()),
		tools:  make(map[string]entry),
	}
	s.add(createExperimentTool(), s.createExperiment)
	s.add(createAnalysisReportTool(), s.createAnalysisReport)
	s.add(createSessionLogTool(), s.createSessionLog)
	s.add(exportFindingsTool(), s.exportFindings)
	s.add(registerDeviceTool(), s.registerDevice)
	return s
}

func (s *Server) add(tool mcp.Tool, h server.ToolHandlerFunc) {
	wrapped := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := h(ctx, req)
		outcome := metrics.OutcomeOK
		if err != nil || (res != nil && res.IsError) {
			outcome = metrics.OutcomeError
		}
		metrics.ToolCallsTotal.WithLabelValues(tool.Name, outcome).Inc()
		return res, err
	}
	s.tools[tool.Name] = entry{tool: tool, handler: wrapped}
	s.mcp.AddTool(tool, wrapped)
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// Catalog returns the tool descriptors sorted by name.
func (s *Server) Catalog() []mcp.Tool {
	out := make([]mcp.Tool, 0, len(s.tools))
	for _, e := range s.tools {
		out = append(out, e.tool)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Call invokes a tool in-process, as a protocol client would.
func (s *Server) Call(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	e, ok := s.tools[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", name)
	}
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return e.handler(ctx, req)
}

// Serve blocks until ctx is cancelled or the transport fails.
func (s *Server) Serve(ctx context.Context, transport, addr string) error {
	switch transport {
	case TransportStdio:
		s.log.Info().Msg("serving tools over stdio")
		return server.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
	case TransportSSE, "":
		sse := server.NewSSEServer(s.mcp, server.WithBaseURL("http://"+addr))
		errCh := make(chan error, 1)
		go func() {
			s.log.Info().Str("addr", addr).Msg("serving tools over sse")
			errCh <- sse.Start(addr)
		}()
		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			return sse.Shutdown(context.Background())
		}
	default:
		return fmt.Errorf("unknown transport %q", transport)
	}
}

// success merges the API response under status "success".
func success(resp map[string]any) (*mcp.CallToolResult, error) {
	out := map[string]any{"status": "success"}
	for k, v := range resp {
		if k == "status" {
			out["api_status"] = v
			continue
		}
		out[k] = v
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}

func failure(err error) (*mcp.CallToolResult, error) {
	b, _ := json.Marshal(map[string]any{"status": "error", "error_message": err.Error()})
	return mcp.NewToolResultError(string(b)), nil
}
