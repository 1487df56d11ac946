// Package tools implements the MCP tools over the dashboard services.
package tools

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/services"
)

// Deps are the services the tools call and the connection they run against.
// MCP clients have no dashboard session, so every call uses Connection and
// APIKey from configuration.
type Deps struct {
	Queries    services.QueryService
	Schemas    services.SchemaService
	SQLGen     services.SQLGenService
	Connection models.ConnectionParams
	APIKey     string
	Logger     *zap.Logger
}

// RegisterAll adds every dashboard tool to s.
func RegisterAll(s *server.MCPServer, deps *Deps, version string) {
	RegisterHealthTool(s, deps, version)
	RegisterQueryTool(s, deps)
	RegisterSchemaTool(s, deps)
	RegisterGenerateTool(s, deps)
}
