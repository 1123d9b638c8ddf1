package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/albadia/villachat/internal/lead"
	"github.com/albadia/villachat/internal/retrieval"
	"github.com/albadia/villachat/internal/session"
)

// MCPRetriever abstracts floorplan retrieval for the MCP layer.
type MCPRetriever interface {
	RetrieveContext(ctx context.Context, query string) ([]retrieval.TextHit, []retrieval.ImageHit, error)
}

// MCPSessionReader exposes the session state MCP tools need.
type MCPSessionReader interface {
	GetOrCreate(id string) session.Session
}

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Retriever  MCPRetriever
	Sessions   MCPSessionReader
	Thresholds lead.Thresholds
}

// NewMCPServer creates an MCP server exposing floorplan search and lead
// inspection tools, so agent frontends can reuse the same evidence and
// scoring the chat endpoint runs on.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"villachat",
		apiVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions("villachat — grounded floorplan knowledge and lead scoring for Al Badia Villas."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("search_floorplans",
			mcp.WithDescription("Semantically search the floorplans document and return relevant passages with page provenance."),
			mcp.WithString("query", mcp.Description("Search query"), mcp.Required()),
		),
		mcpSearchFloorplans(deps),
	)

	s.AddTool(
		mcp.NewTool("lead_snapshot",
			mcp.WithDescription("Return the current lead snapshot (intent tier, score, signals, recommended action) for a session."),
			mcp.WithString("session_id", mcp.Description("Session identifier"), mcp.Required()),
		),
		mcpLeadSnapshot(deps),
	)

	return s
}

func mcpSearchFloorplans(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		textHits, _, err := deps.Retriever.RetrieveContext(ctx, query)
		if err != nil {
			return mcpError(fmt.Sprintf("search failed: %v", err)), nil
		}

		if len(textHits) == 0 {
			return mcpText("[]"), nil
		}

		type hitResult struct {
			ID       string  `json:"id"`
			Page     int     `json:"page"`
			Content  string  `json:"content"`
			Distance float64 `json:"distance"`
		}

		results := make([]hitResult, len(textHits))
		for i, h := range textHits {
			results[i] = hitResult{
				ID:       h.ID,
				Page:     h.Page,
				Content:  h.Content,
				Distance: h.Distance,
			}
		}

		b, err := json.Marshal(results)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpLeadSnapshot(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := req.RequireString("session_id")
		if err != nil {
			return mcpError("session_id is required"), nil
		}

		sess := deps.Sessions.GetOrCreate(sessionID)
		snapshot := lead.Snapshot(sess.BuyingSignals, len(sess.Messages), deps.Thresholds)

		out := struct {
			lead.Signals
			LeadInfo         map[string]string `json:"lead_info"`
			LeadStatus       string            `json:"lead_status"`
			PropertiesViewed []string          `json:"properties_viewed"`
		}{
			Signals:          snapshot,
			LeadInfo:         sess.LeadInfo,
			LeadStatus:       sess.LeadStatus,
			PropertiesViewed: sess.PropertiesViewed,
		}

		b, err := json.Marshal(out)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal snapshot: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
