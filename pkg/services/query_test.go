package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/adapters/datasource"
	_ "github.com/ekaya-inc/ekaya-vizboard/pkg/adapters/datasource/sqlite"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/audit"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/metrics"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
)

func TestQueryService_RunStagesThenExecutes(t *testing.T) {
	execs := &fakeExecutors{
		run: func(_ models.ConnectionParams, sqlText string) (*models.ResultTable, error) {
			return &models.ResultTable{Columns: []string{"a"}, Rows: [][]any{{int64(1)}}}, nil
		},
	}
	svc, area := newTestQueryService(t, execs)

	exec := svc.Run(context.Background(), models.ConnectionParams{}, "SELECT 1 AS a;", audit.SourceUI)

	require.True(t, exec.OK())
	assert.Empty(t, exec.Message)
	assert.Equal(t, []string{"a"}, exec.Table.Columns)
	assert.Equal(t, []string{"SELECT 1 AS a;"}, execs.Statements())

	staged, err := os.ReadFile(area.RequestPath())
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 AS a;", string(staged))
}

func TestQueryService_DriverErrorBecomesMessage(t *testing.T) {
	execs := &fakeExecutors{
		run: func(models.ConnectionParams, string) (*models.ResultTable, error) {
			return nil, errors.New(`relation "nope" does not exist`)
		},
	}
	svc, _ := newTestQueryService(t, execs)

	exec := svc.Run(context.Background(), models.ConnectionParams{}, "SELECT * FROM nope", audit.SourceUI)

	assert.False(t, exec.OK())
	assert.Nil(t, exec.Table)
	assert.Equal(t, `Database error: relation "nope" does not exist`, exec.Message)
}

func TestQueryService_ConnectErrorIsSanitized(t *testing.T) {
	execs := &fakeExecutors{newErr: errors.New("dial postgres://vivek:hunter2@db:5432/bikes failed")}
	svc, _ := newTestQueryService(t, execs)

	exec := svc.Run(context.Background(), models.ConnectionParams{}, "SELECT 1", audit.SourceUI)

	assert.False(t, exec.OK())
	assert.NotContains(t, exec.Message, "hunter2")
	assert.Contains(t, exec.Message, "Database error: ")
}

func TestQueryService_UnreadableFile(t *testing.T) {
	svc, _ := newTestQueryService(t, &fakeExecutors{})

	exec := svc.Execute(context.Background(), models.ConnectionParams{}, filepath.Join(t.TempDir(), "missing.sql"), audit.SourceUI)

	assert.False(t, exec.OK())
	assert.Contains(t, exec.Message, "Database error: ")
}

func TestQueryService_NilTableIsEmptyResult(t *testing.T) {
	execs := &fakeExecutors{
		run: func(models.ConnectionParams, string) (*models.ResultTable, error) { return nil, nil },
	}
	svc, _ := newTestQueryService(t, execs)

	exec := svc.Run(context.Background(), models.ConnectionParams{}, "UPDATE t SET a = 1", audit.SourceUI)
	require.True(t, exec.OK())
	assert.Equal(t, 0, exec.Table.RowCount())
}

func TestQueryService_UnknownDriver(t *testing.T) {
	svc, _ := newTestQueryService(t, datasource.NewExecutorFactory())

	exec := svc.Run(context.Background(), models.ConnectionParams{Driver: "oracle"}, "SELECT 1", audit.SourceUI)

	assert.False(t, exec.OK())
	assert.Contains(t, exec.Message, "unsupported database driver")
}

func TestQueryService_SQLiteEndToEnd(t *testing.T) {
	svc, _ := newTestQueryService(t, datasource.NewExecutorFactory())
	params := models.ConnectionParams{Driver: "sqlite", Database: filepath.Join(t.TempDir(), "e2e.db")}

	exec := svc.Run(context.Background(), params, "SELECT 1 AS a, 2 AS b;", audit.SourceUI)

	require.True(t, exec.OK(), exec.Message)
	assert.Equal(t, []string{"a", "b"}, exec.Table.Columns)
	assert.Equal(t, [][]any{{int64(1), int64(2)}}, exec.Table.Rows)

	bad := svc.Run(context.Background(), params, "SELECT * FROM no_such_table", audit.SourceUI)
	assert.False(t, bad.OK())
	assert.Contains(t, bad.Message, "no_such_table")
}

func TestQueryService_AuditsStatements(t *testing.T) {
	area := newTestArea(t)
	auditor := audit.NewSecurityAuditor(zap.NewNop())
	svc := NewQueryService(&fakeExecutors{}, area, auditor, nil, zap.NewNop())

	exec := svc.Run(context.Background(), models.ConnectionParams{}, "1' OR '1'='1", audit.SourceUI)
	assert.True(t, exec.OK(), "audit findings never block execution")
}

func TestQueryService_MetricsUseRegisteredDriverType(t *testing.T) {
	collector := metrics.NewCollector()
	execs := &fakeExecutors{}
	svc := NewQueryService(execs, newTestArea(t), nil, collector, zap.NewNop())
	ctx := context.Background()

	svc.Run(ctx, models.ConnectionParams{Driver: "SQLite3"}, "SELECT 1", audit.SourceUI)
	svc.Run(ctx, models.ConnectionParams{Driver: "made-up-driver-1"}, "SELECT 1", audit.SourceUI)
	svc.Run(ctx, models.ConnectionParams{Driver: "made-up-driver-2"}, "SELECT 1", audit.SourceUI)

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	assert.Contains(t, body, `vizboard_query_executions_total{driver="sqlite",outcome="success",source="ui"} 1`)
	assert.Contains(t, body, `vizboard_query_executions_total{driver="unknown",outcome="success",source="ui"} 2`)
	assert.NotContains(t, body, "made-up-driver")
}
