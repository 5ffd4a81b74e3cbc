package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
	"github.com/kirillkom/legal-assistant/internal/core/ports"
)

const (
	ServerName    = "legal-assistant"
	ServerVersion = "0.1.0"

	ToolLegalQuery = "legal_query"
	ToolRouteQuery = "route_query"
)

// NewServer exposes the query service as MCP tools.
func NewServer(query ports.LegalQueryService) *server.MCPServer {
	s := server.NewMCPServer(ServerName, ServerVersion, server.WithToolCapabilities(false))
	h := handlers{query: query}

	s.AddTool(mcp.NewTool(ToolLegalQuery,
		mcp.WithDescription("Answer a question about Indian law (BNS, BNSS, BSA, Constitution, judgments) from indexed sources. Returns JSON with answer and citations."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The legal question")),
	), h.legalQuery)

	s.AddTool(mcp.NewTool(ToolRouteQuery,
		mcp.WithDescription("Show how a question would be routed: corpus filter and retrieval boosts."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The legal question")),
	), h.routeQuery)

	return s
}

type handlers struct {
	query ports.LegalQueryService
}

func (h handlers) legalQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	answer, err := h.query.Answer(ctx, question)
	if err != nil {
		msg := err.Error()
		if raw, ok := domain.RawModelText(err); ok {
			msg = fmt.Sprintf("%s\nraw_response: %s", msg, raw)
		}
		return mcp.NewToolResultError(msg), nil
	}
	return jsonResult(answer)
}

func (h handlers) routeQuery(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(h.query.Route(question))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
