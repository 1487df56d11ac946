// Package sqlite registers a SQLite executor backed by the pure-Go modernc driver.
// The connection's Database field is the database file path.
package sqlite

import (
	"context"
	"fmt"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/ekaya-inc/ekaya-vizboard/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
)

// Executor runs statements against a SQLite file.
type Executor struct {
	path string
}

var _ datasource.StatementExecutor = (*Executor)(nil)

// NewExecutor creates an executor for the database file at path.
func NewExecutor(path string) (*Executor, error) {
	if path == "" {
		return nil, fmt.Errorf("database file path is required")
	}
	return &Executor{path: path}, nil
}

// Run executes sqlText and returns every row.
func (e *Executor) Run(ctx context.Context, sqlText string) (*models.ResultTable, error) {
	return datasource.RunOnce(ctx, "sqlite", e.path, sqlText)
}

func init() {
	datasource.Register(datasource.DatasourceAdapterRegistration{
		Info: datasource.DatasourceAdapterInfo{
			Type:        "sqlite",
			DisplayName: "SQLite",
			Description: "Open a local SQLite database file (database name is the file path)",
		},
		Aliases: []string{"sqlite3"},
		Factory: func(params models.ConnectionParams) (datasource.StatementExecutor, error) {
			return NewExecutor(params.Database)
		},
	})
}
