package mcp

import (
	"context"
	"sync"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/logging"
)

// AuditLogger logs one structured line per MCP tool call.
type AuditLogger struct {
	logger *zap.Logger

	// startTimes tracks when tool calls begin, keyed by request ID.
	startTimes sync.Map
}

// NewAuditLogger creates an AuditLogger.
func NewAuditLogger(logger *zap.Logger) *AuditLogger {
	return &AuditLogger{logger: logger.Named("mcp-audit")}
}

// Hooks returns mcp-go Hooks configured to capture tool call events.
func (a *AuditLogger) Hooks() *server.Hooks {
	hooks := &server.Hooks{}
	hooks.AddBeforeCallTool(a.beforeCallTool)
	hooks.AddAfterCallTool(a.afterCallTool)
	hooks.AddOnError(a.onError)
	return hooks
}

func (a *AuditLogger) beforeCallTool(_ context.Context, id any, _ *mcplib.CallToolRequest) {
	a.startTimes.Store(id, time.Now())
}

func (a *AuditLogger) afterCallTool(_ context.Context, id any, req *mcplib.CallToolRequest, result *mcplib.CallToolResult) {
	fields := append(a.baseFields(id, req), zap.Bool("successful", result == nil || !result.IsError))
	if result != nil && result.IsError {
		fields = append(fields, zap.String("result", summarizeResult(result)))
	}
	a.logger.Info("MCP tool call", fields...)
}

func (a *AuditLogger) onError(_ context.Context, id any, method mcplib.MCPMethod, message any, err error) {
	if method != mcplib.MethodToolsCall {
		return
	}
	req, ok := message.(*mcplib.CallToolRequest)
	if !ok {
		return
	}

	fields := append(a.baseFields(id, req),
		zap.Bool("successful", false),
		zap.String("error", logging.SanitizeError(err)))
	a.logger.Warn("MCP tool call failed", fields...)
}

func (a *AuditLogger) baseFields(id any, req *mcplib.CallToolRequest) []zap.Field {
	start := time.Now()
	if v, ok := a.startTimes.LoadAndDelete(id); ok {
		start = v.(time.Time)
	}

	fields := []zap.Field{
		zap.String("tool", req.Params.Name),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	}
	if args, ok := req.Params.Arguments.(map[string]any); ok {
		if sqlText, ok := args["sql"].(string); ok {
			fields = append(fields, zap.String("sql", logging.SanitizeQuery(sqlText)))
		}
		if instruction, ok := args["instruction"].(string); ok {
			fields = append(fields, zap.String("instruction", logging.TruncateString(instruction, logging.MaxQueryLogLength)))
		}
	}
	return fields
}

// summarizeResult returns the first text block of a result, truncated.
func summarizeResult(result *mcplib.CallToolResult) string {
	for _, c := range result.Content {
		if text, ok := c.(mcplib.TextContent); ok {
			return logging.TruncateString(text.Text, logging.MaxQueryLogLength)
		}
	}
	return ""
}
