package tools

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/llm"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/services"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/staging"
)

// scriptedExecutors answers schema introspection with schema, fails any
// statement mentioning missing_table and returns result for the rest.
type scriptedExecutors struct {
	mu         sync.Mutex
	schema     *models.ResultTable
	result     *models.ResultTable
	statements []string
}

func (e *scriptedExecutors) NewExecutor(params models.ConnectionParams) (datasource.StatementExecutor, error) {
	return datasource.ExecutorFunc(func(ctx context.Context, sqlText string) (*models.ResultTable, error) {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.statements = append(e.statements, sqlText)
		switch {
		case strings.Contains(sqlText, "information_schema"):
			return e.schema, nil
		case strings.Contains(sqlText, "missing_table"):
			return nil, errors.New(`relation "missing_table" does not exist`)
		default:
			return e.result, nil
		}
	}), nil
}

func (e *scriptedExecutors) ListTypes() []datasource.DatasourceAdapterInfo { return nil }

func (e *scriptedExecutors) Statements() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.statements...)
}

type toolFixture struct {
	t         *testing.T
	mcpServer *server.MCPServer
	execs     *scriptedExecutors
	client    *llm.MockLLMClient
	deps      *Deps
}

func newToolFixture(t *testing.T) *toolFixture {
	t.Helper()
	logger := zap.NewNop()

	execs := &scriptedExecutors{
		schema: &models.ResultTable{
			Columns: []string{"table_name", "column_name", "data_type"},
			Rows: [][]any{
				{"trips", "id", "integer"},
				{"trips", "duration", "integer"},
				{"stations", "name", "text"},
			},
		},
		result: &models.ResultTable{
			Columns: []string{"station", "rides"},
			Rows: [][]any{
				{"Central", int64(12)},
				{[]byte("Harbor"), int64(7)},
				{"Museum", int64(3)},
			},
		},
	}

	dir := t.TempDir()
	area := staging.NewArea(
		filepath.Join(dir, "sql_query_schema.txt"),
		filepath.Join(dir, "sql_query_request.txt"),
		logger,
	)
	queries := services.NewQueryService(execs, area, nil, nil, logger)
	client := llm.NewMockLLMClient()
	sqlgen := services.NewSQLGenService(&llm.MockClientFactory{Client: client}, queries, llm.ProviderOpenAI, 0.2, nil, logger)

	deps := &Deps{
		Queries:    queries,
		Schemas:    services.NewSchemaService(queries, area, logger),
		SQLGen:     sqlgen,
		Connection: models.ConnectionParams{Driver: "postgres", Database: "bikes", Host: "localhost", Port: "5432"},
		APIKey:     "sk-test",
		Logger:     logger,
	}

	mcpServer := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
	RegisterAll(mcpServer, deps, "1.2.3")

	return &toolFixture{t: t, mcpServer: mcpServer, execs: execs, client: client, deps: deps}
}

func (f *toolFixture) reply(content string) {
	f.client.GenerateResponseFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64) (*llm.GenerateResponseResult, error) {
		return &llm.GenerateResponseResult{Content: content}, nil
	}
}

// callTool executes an MCP tool via the server's HandleMessage method.
func (f *toolFixture) callTool(name string, arguments map[string]any) *mcp.CallToolResult {
	f.t.Helper()

	reqBytes, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"method":  "tools/call",
		"id":      1,
		"params": map[string]any{
			"name":      name,
			"arguments": arguments,
		},
	})
	require.NoError(f.t, err)

	resultBytes, err := json.Marshal(f.mcpServer.HandleMessage(context.Background(), reqBytes))
	require.NoError(f.t, err)

	var response struct {
		Result *mcp.CallToolResult `json:"result,omitempty"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error,omitempty"`
	}
	require.NoError(f.t, json.Unmarshal(resultBytes, &response))
	require.Nil(f.t, response.Error, "unexpected protocol error")
	require.NotNil(f.t, response.Result)
	return response.Result
}

func decodeText[T any](t *testing.T, result *mcp.CallToolResult) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(getTextContent(result)), &v))
	return v
}
