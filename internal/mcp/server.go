package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/docsmith-ai/docsmith/internal/api"
	"github.com/docsmith-ai/docsmith/internal/intake"
	"github.com/docsmith-ai/docsmith/internal/models"
	"github.com/docsmith-ai/docsmith/internal/store"
	"github.com/docsmith-ai/docsmith/internal/uploader"
)

// StatusClient is the slice of the API client the status tool needs.
type StatusClient interface {
	AIStatus(ctx context.Context) (*api.AIStatusResponse, error)
	Stats(ctx context.Context) (*api.StatsResponse, error)
	Authenticated() bool
}

// Server wraps the docsmith data layer and exposes it as MCP tools.
type Server struct {
	store    store.Store
	client   StatusClient
	uploader *uploader.Uploader
}

// NewServer creates the MCP server wrapper with all required dependencies.
func NewServer(s store.Store, client StatusClient, up *uploader.Uploader) *Server {
	return &Server{
		store:    s,
		client:   client,
		uploader: up,
	}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("docsmith", "1.0.0", server.WithToolCapabilities(true))

	// Register all tools
	srv.AddTool(s.generateTool())
	srv.AddTool(s.historyTool())
	srv.AddTool(s.getDocumentationTool())
	srv.AddTool(s.statusTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// docsmith_generate
func (s *Server) generateTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("docsmith_generate",
		mcp.WithDescription("Generate documentation for a file, a directory (scanned recursively), or a project archive. Uploads the code to the docsmith service and returns the generated markdown plus the run status as JSON."),
		mcp.WithString("path", mcp.Required(), mcp.Description("File or directory to document")),
	)
	return tool, s.handleGenerate
}

func (s *Server) handleGenerate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: path"), nil
	}

	sel, err := intake.CollectPaths([]string{path})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot collect %s: %v", path, err)), nil
	}

	outcome, err := s.uploader.Upload(ctx, sel, nil)
	if err != nil {
		return mcp.NewToolResultError(api.Humanize(err)), nil
	}

	gen := &models.Generation{
		Title:          path,
		Mode:           sel.Mode(),
		Status:         outcome.Status,
		GeneratorLabel: outcome.GeneratorLabel,
		FileCount:      outcome.TotalCount,
		ProcessedCount: outcome.ProcessedCount,
		Documentation:  outcome.Documentation,
	}
	// History is a cache; a save failure must not eat the result.
	historyID := ""
	if err := s.store.SaveGeneration(ctx, gen); err == nil {
		historyID = gen.ID
	}

	result := map[string]any{
		"status":        string(outcome.Status),
		"generator":     outcome.GeneratorLabel,
		"processed":     outcome.ProcessedCount,
		"total":         outcome.TotalCount,
		"documentation": outcome.Documentation,
		"history_id":    historyID,
	}
	if outcome.ErrorMessage != "" {
		result["error"] = outcome.ErrorMessage
	}

	data, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// docsmith_history
func (s *Server) historyTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("docsmith_history",
		mcp.WithDescription("List locally cached documentation runs, newest first. Returns a JSON array with id, title, mode, status, file counts, and created_at."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of entries to return (default 20)")),
	)
	return tool, s.handleHistory
}

func (s *Server) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 20)

	generations, err := s.store.ListGenerations(ctx, store.GenerationFilter{Limit: limit})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list history: %v", err)), nil
	}

	type generationOut struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Mode      string `json:"mode"`
		Status    string `json:"status"`
		Generator string `json:"generator"`
		Files     int    `json:"files"`
		Processed int    `json:"processed"`
		CreatedAt string `json:"created_at"`
	}

	out := make([]generationOut, len(generations))
	for i, g := range generations {
		out[i] = generationOut{
			ID:        g.ID,
			Title:     g.Title,
			Mode:      string(g.Mode),
			Status:    string(g.Status),
			Generator: g.GeneratorLabel,
			Files:     g.FileCount,
			Processed: g.ProcessedCount,
			CreatedAt: g.CreatedAt.Format(time.RFC3339),
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal history: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// docsmith_get_documentation
func (s *Server) getDocumentationTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("docsmith_get_documentation",
		mcp.WithDescription("Fetch the full markdown of a cached documentation run by id. A unique id prefix is accepted."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Generation id or unique prefix")),
	)
	return tool, s.handleGetDocumentation
}

func (s *Server) handleGetDocumentation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}

	g, err := s.resolveGeneration(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := map[string]any{
		"id":            g.ID,
		"title":         g.Title,
		"status":        string(g.Status),
		"documentation": g.Documentation,
		"created_at":    g.CreatedAt.Format(time.RFC3339),
	}
	data, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal documentation: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// docsmith_status
func (s *Server) statusTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("docsmith_status",
		mcp.WithDescription("Report docsmith service reachability, AI backend availability, and account statistics as JSON."),
	)
	return tool, s.handleStatus
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result := map[string]any{
		"authenticated": s.client.Authenticated(),
	}

	if health, err := s.client.AIStatus(ctx); err != nil {
		result["service_online"] = false
	} else {
		result["service_online"] = true
		result["ai_available"] = health.AIAvailable
		if health.Model != "" {
			result["model"] = health.Model
		}
	}

	// Stats need a session; skip silently when unavailable.
	if stats, err := s.client.Stats(ctx); err == nil {
		result["total_files"] = stats.TotalFiles
		result["total_documentations"] = stats.TotalGenerations
		result["total_exports"] = stats.TotalExports
	}

	data, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal status: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// resolveGeneration finds a cached generation by full id first, then by
// unique prefix.
func (s *Server) resolveGeneration(ctx context.Context, id string) (*models.Generation, error) {
	if g, err := s.store.GetGeneration(ctx, id); err == nil {
		return g, nil
	}

	upper := strings.ToUpper(id)
	generations, err := s.store.ListGenerations(ctx, store.GenerationFilter{})
	if err != nil {
		return nil, err
	}

	var matches []*models.Generation
	for _, g := range generations {
		if strings.HasPrefix(g.ID, upper) {
			matches = append(matches, g)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("generation not found: %s", id)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("ambiguous generation id %s: matches %d entries", id, len(matches))
	}
}
