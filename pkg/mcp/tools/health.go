package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type healthResult struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Driver        string `json:"driver"`
	Database      string `json:"database"`
	LLMConfigured bool   `json:"llm_configured"`
}

// RegisterHealthTool adds a health check tool reporting the version and the
// connection the other tools use.
func RegisterHealthTool(s *server.MCPServer, deps *Deps, version string) {
	tool := mcp.NewTool(
		"health",
		mcp.WithDescription("Returns server health status, version, and the configured database"),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(healthResult{
			Status:        "ok",
			Version:       version,
			Driver:        deps.Connection.DriverOrDefault(),
			Database:      deps.Connection.Database,
			LLMConfigured: deps.APIKey != "",
		})
	})
}
