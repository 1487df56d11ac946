package datasource

import (
	"context"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
)

// StatementExecutor runs one SQL statement against a datasource.
// Each Run opens its own connection and closes it before returning, on success
// and on failure. Nothing is pooled or reused between calls.
type StatementExecutor interface {
	// Run executes sqlText as-is (no parameter binding, no row limit) and
	// returns every row with columns in the driver's reported order.
	Run(ctx context.Context, sqlText string) (*models.ResultTable, error)
}

// ExecutorFunc adapts a function to StatementExecutor.
type ExecutorFunc func(ctx context.Context, sqlText string) (*models.ResultTable, error)

// Run implements StatementExecutor.
func (f ExecutorFunc) Run(ctx context.Context, sqlText string) (*models.ResultTable, error) {
	return f(ctx, sqlText)
}
