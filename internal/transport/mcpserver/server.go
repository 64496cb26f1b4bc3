package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	appsvc "path2prevention/internal/app"
	"path2prevention/internal/search"
)

const serverName = "path2prevention"

// Deps are the services the MCP tools call.
type Deps struct {
	Programs *appsvc.ProgramService
	Semantic *appsvc.SemanticService
}

// NewServer exposes program search to MCP clients over the same services
// the HTTP API uses.
func NewServer(deps Deps, version string) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("search_programs",
			mcp.WithDescription("Find diabetes prevention programs by location or delivery mode. Give a delivery mode, or at least one of state, city and zip code."),
			mcp.WithString("state", mcp.Description("Two-letter state code, e.g. GA")),
			mcp.WithString("city", mcp.Description("City name")),
			mcp.WithString("zip_code", mcp.Description("ZIP code")),
			mcp.WithString("delivery_mode", mcp.Description("in-person, virtual, virtual-live, virtual-self-paced or hybrid")),
		),
		toolSearchPrograms(deps),
	)

	s.AddTool(
		mcp.NewTool("semantic_search",
			mcp.WithDescription("Rank programs against a free-text description of what the user is looking for."),
			mcp.WithString("query", mcp.Description("What the user wants, in their own words"), mcp.Required()),
			mcp.WithNumber("limit", mcp.Description("Maximum results (default 5)")),
		),
		toolSemanticSearch(deps),
	)

	s.AddTool(
		mcp.NewTool("get_program",
			mcp.WithDescription("Fetch one program by id."),
			mcp.WithNumber("id", mcp.Description("Program id"), mcp.Required()),
		),
		toolGetProgram(deps),
	)

	return s
}

// ServeStdio blocks serving s over stdin/stdout.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

type programsResult struct {
	Count    int         `json:"count"`
	Fallback bool        `json:"fallback"`
	Programs interface{} `json:"programs"`
}

func toolSearchPrograms(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		f := search.Filter{
			State:        req.GetString("state", ""),
			City:         req.GetString("city", ""),
			ZipCode:      req.GetString("zip_code", ""),
			DeliveryMode: req.GetString("delivery_mode", ""),
		}
		list, err := deps.Programs.Search(ctx, f)
		if errors.Is(err, appsvc.ErrFilterRequired) {
			return toolError("give a delivery_mode or at least one of state, city, zip_code"), nil
		}
		if err != nil {
			return toolError(fmt.Sprintf("search failed: %v", err)), nil
		}
		return toolJSON(programsResult{Count: len(list.Programs), Fallback: list.Fallback, Programs: list.Programs})
	}
}

func toolSemanticSearch(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return toolError("query is required"), nil
		}
		res, err := deps.Semantic.Search(ctx, appsvc.SemanticInput{Query: query, Limit: req.GetInt("limit", 0)})
		if errors.Is(err, appsvc.ErrQueryRequired) {
			return toolError("query is required"), nil
		}
		if err != nil {
			return toolError(fmt.Sprintf("semantic search failed: %v", err)), nil
		}
		return toolJSON(struct {
			programsResult
			Intent search.IntentAnalysis `json:"intent_analysis"`
		}{
			programsResult: programsResult{Count: len(res.Results), Fallback: res.Fallback, Programs: res.Results},
			Intent:         res.Intent,
		})
	}
}

func toolGetProgram(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := req.GetInt("id", 0)
		if id <= 0 {
			return toolError("id must be a positive integer"), nil
		}
		res, err := deps.Programs.ByID(ctx, uint(id))
		if errors.Is(err, appsvc.ErrProgramNotFound) {
			return toolError(fmt.Sprintf("program %d not found", id)), nil
		}
		if err != nil {
			return toolError(fmt.Sprintf("get program failed: %v", err)), nil
		}
		return toolJSON(struct {
			Program  interface{} `json:"program"`
			Fallback bool        `json:"fallback"`
		}{res.Program, res.Fallback})
	}
}

func toolJSON(v interface{}) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return toolError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return toolText(string(b)), nil
}

func toolText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
	}
}

func toolError(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
		IsError: true,
	}
}
