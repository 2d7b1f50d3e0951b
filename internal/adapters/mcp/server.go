// Package mcpadapter exposes the guardian evaluation as an MCP tool so
// agent hosts can screen text against the policy collection.
package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/guardianai/guardianai/internal/core/domain"
	"github.com/guardianai/guardianai/internal/core/ports"
)

const serverVersion = "0.1.0"

type Server struct {
	backend ports.EvaluationBackend
	mcp     *server.MCPServer
}

func NewServer(backend ports.EvaluationBackend) *Server {
	s := &Server{
		backend: backend,
		mcp: server.NewMCPServer(
			"guardianai",
			serverVersion,
			server.WithToolCapabilities(false),
		),
	}

	tool := mcp.NewTool("evaluate_text",
		mcp.WithDescription("Evaluate a text against the indexed safety policies and return a structured verdict."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The text to evaluate for policy compliance."),
		),
	)
	s.mcp.AddTool(tool, s.handleEvaluate)

	return s
}

func (s *Server) handleEvaluate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	report, evalErr := s.backend.Evaluate(ctx, text)
	report = domain.FailSafeReport(report, evalErr)

	payload, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal evaluation report: %w", err)
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// ServeStdio blocks serving the MCP protocol on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}
