package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/audit"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
)

const (
	defaultRowLimit = 100
	maxRowLimit     = 1000
)

type queryResult struct {
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
	RowCount  int      `json:"row_count"`
	Truncated bool     `json:"truncated"`
}

func newQueryResult(table *models.ResultTable, limit int) queryResult {
	head := table.Head(limit)
	rows := make([][]any, len(head.Rows))
	for i, row := range head.Rows {
		out := make([]any, len(row))
		for j, v := range row {
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			out[j] = v
		}
		rows[i] = out
	}

	columns := table.Columns
	if columns == nil {
		columns = []string{}
	}
	return queryResult{
		Columns:   columns,
		Rows:      rows,
		RowCount:  table.RowCount(),
		Truncated: table.RowCount() > len(rows),
	}
}

func rowLimit(req mcp.CallToolRequest) int {
	limit := defaultRowLimit
	if v, ok := getOptionalFloat(req, "limit"); ok && v >= 1 {
		limit = int(v)
	}
	if limit > maxRowLimit {
		limit = maxRowLimit
	}
	return limit
}

// RegisterQueryTool adds the run_query tool.
func RegisterQueryTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"run_query",
		mcp.WithDescription("Execute one SQL statement against the configured database and return its rows."),
		mcp.WithString(
			"sql",
			mcp.Required(),
			mcp.Description("The SQL statement to execute"),
		),
		mcp.WithNumber(
			"limit",
			mcp.Description("Max rows to return (default: 100, max: 1000)"),
		),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sqlText, err := req.RequireString("sql")
		if err != nil {
			return nil, err
		}
		sqlText = trimString(sqlText)
		if sqlText == "" {
			return NewErrorResult("invalid_parameters", "sql must not be empty"), nil
		}

		exec := deps.Queries.Run(ctx, deps.Connection, sqlText, audit.SourceMCP)
		if !exec.OK() {
			return NewErrorResult("query_failed", exec.Message), nil
		}

		deps.Logger.Debug("run_query executed", zap.Int("rows", exec.Table.RowCount()))
		return jsonResult(newQueryResult(exec.Table, rowLimit(req)))
	})
}
