package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/logging"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/services"
)

type schemaResult struct {
	TableCount int                  `json:"table_count"`
	Tables     []models.SchemaTable `json:"tables"`
}

// loadSchema runs the introspection query. A non-nil result is an error
// result to hand back to the caller.
func loadSchema(ctx context.Context, deps *Deps) (services.SchemaLoad, *mcp.CallToolResult) {
	load, err := deps.Schemas.Load(ctx, deps.Connection)
	if err != nil {
		return load, NewErrorResult("schema_error", logging.SanitizeError(err))
	}
	if !load.Execution.OK() {
		return load, NewErrorResult("query_failed", load.Execution.Message)
	}
	return load, nil
}

// RegisterSchemaTool adds the show_schema tool.
func RegisterSchemaTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"show_schema",
		mcp.WithDescription("List the database tables with their columns and data types, in introspection order."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		load, errResult := loadSchema(ctx, deps)
		if errResult != nil {
			return errResult, nil
		}

		tables := load.Schema.Entries()
		if tables == nil {
			tables = []models.SchemaTable{}
		}
		return jsonResult(schemaResult{TableCount: load.Schema.Len(), Tables: tables})
	})
}
