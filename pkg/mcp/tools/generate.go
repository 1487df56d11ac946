package tools

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/llm"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/logging"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/services"
)

type generateResult struct {
	SQL      string       `json:"sql"`
	Found    bool         `json:"found"`
	Executed bool         `json:"executed"`
	Result   *queryResult `json:"result,omitempty"`
}

// RegisterGenerateTool adds the generate_sql tool.
func RegisterGenerateTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"generate_sql",
		mcp.WithDescription("Generate SQL for a natural-language requirement using the database schema, optionally executing it."),
		mcp.WithString(
			"instruction",
			mcp.Required(),
			mcp.Description("What the query should return, in plain language"),
		),
		mcp.WithBoolean(
			"execute",
			mcp.Description("Run the generated SQL and return its rows (default: false)"),
		),
		mcp.WithNumber(
			"limit",
			mcp.Description("Max rows to return when executing (default: 100, max: 1000)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		instruction, err := req.RequireString("instruction")
		if err != nil {
			return nil, err
		}
		instruction = trimString(instruction)
		if instruction == "" {
			return NewErrorResult("invalid_parameters", services.MsgSchemaAndPrompt), nil
		}
		if deps.APIKey == "" {
			return NewErrorResult("missing_api_key", services.MsgMissingAPIKey), nil
		}

		load, errResult := loadSchema(ctx, deps)
		if errResult != nil {
			return errResult, nil
		}

		if !getOptionalBool(req, "execute", false) {
			raw, err := deps.SQLGen.Generate(ctx, deps.APIKey, load.Text, instruction)
			if err != nil {
				return generationError(err), nil
			}
			sqlText, found := llm.ExtractSQL(raw)
			return jsonResult(generateResult{SQL: sqlText, Found: found})
		}

		run, err := deps.SQLGen.RunGenerated(ctx, deps.Connection, deps.APIKey, load.Text, instruction)
		if err != nil {
			return generationError(err), nil
		}
		if !run.Execution.OK() {
			return NewErrorResultWithDetails("query_failed", run.Execution.Message, map[string]any{
				"sql":   run.SQL,
				"found": run.Found,
			}), nil
		}

		result := newQueryResult(run.Execution.Table, rowLimit(req))
		return jsonResult(generateResult{SQL: run.SQL, Found: run.Found, Executed: true, Result: &result})
	})
}

func generationError(err error) *mcp.CallToolResult {
	if errors.Is(err, apperrors.ErrMissingAPIKey) {
		return NewErrorResult("missing_api_key", services.MsgMissingAPIKey)
	}
	return NewErrorResultWithDetails("generation_failed", logging.SanitizeError(err), map[string]any{
		"error_type": string(llm.GetErrorType(err)),
	})
}
