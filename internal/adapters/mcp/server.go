// Package mcpadapter exposes question answering as an MCP tool so agent
// runtimes can query the admissions knowledge base over stdio.
package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/askcampus/askcampus/internal/core/ports"
)

const toolName = "ask_campus"

type Server struct {
	query ports.QueryService
	mcp   *server.MCPServer
}

func NewServer(query ports.QueryService, version string) *Server {
	s := &Server{
		query: query,
		mcp: server.NewMCPServer(
			"askcampus",
			version,
			server.WithToolCapabilities(false),
		),
	}

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Answer an admissions question from the institution's uploaded documents. "+
			"Returns the answer text, a speech-friendly variant, and source citations."),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The admissions question to answer."),
		),
		mcp.WithNumber("top_k",
			mcp.Description("How many document chunks to retrieve (default 5)."),
		),
	)
	s.mcp.AddTool(tool, s.handleAsk)
	return s
}

func (s *Server) handleAsk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := req.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	topK := req.GetInt("top_k", 0)

	answer, err := s.query.Answer(ctx, question, topK)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("question answering failed: %v", err)), nil
	}

	payload, err := json.Marshal(answer)
	if err != nil {
		return nil, fmt.Errorf("marshal answer: %w", err)
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// ServeStdio blocks, serving the MCP protocol on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}
