package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/staging"
)

// fakeExecutors records every statement it is asked to run.
type fakeExecutors struct {
	mu         sync.Mutex
	run        func(params models.ConnectionParams, sqlText string) (*models.ResultTable, error)
	newErr     error
	statements []string
}

func (f *fakeExecutors) NewExecutor(params models.ConnectionParams) (datasource.StatementExecutor, error) {
	if f.newErr != nil {
		return nil, f.newErr
	}
	return datasource.ExecutorFunc(func(ctx context.Context, sqlText string) (*models.ResultTable, error) {
		f.mu.Lock()
		f.statements = append(f.statements, sqlText)
		f.mu.Unlock()
		if f.run == nil {
			return &models.ResultTable{}, nil
		}
		return f.run(params, sqlText)
	}), nil
}

func (f *fakeExecutors) ListTypes() []datasource.DatasourceAdapterInfo { return nil }

func (f *fakeExecutors) Statements() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.statements...)
}

var _ datasource.ExecutorFactory = (*fakeExecutors)(nil)

func newTestArea(t *testing.T) *staging.Area {
	t.Helper()
	dir := t.TempDir()
	return staging.NewArea(
		filepath.Join(dir, "sql_query", "sql_query_schema.txt"),
		filepath.Join(dir, "sql_query", "sql_query_request.txt"),
		zap.NewNop(),
	)
}

func newTestQueryService(t *testing.T, execs datasource.ExecutorFactory) (QueryService, *staging.Area) {
	t.Helper()
	area := newTestArea(t)
	return NewQueryService(execs, area, nil, nil, zap.NewNop()), area
}

func schemaRows(rows ...[3]string) *models.ResultTable {
	t := &models.ResultTable{Columns: []string{"table_name", "column_name", "data_type"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r[0], r[1], r[2]})
	}
	return t
}
