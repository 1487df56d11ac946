package postgres

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/config"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
)

// Executor runs statements on a fresh pgx connection per call.
type Executor struct {
	config *Config
}

var _ datasource.StatementExecutor = (*Executor)(nil)

// NewExecutor creates a PostgreSQL executor. No connection is opened until Run.
func NewExecutor(cfg *Config) *Executor {
	return &Executor{config: cfg}
}

// buildConnectionString builds a PostgreSQL URL with proper escaping.
// User-provided fields are URL-escaped so passwords containing @, /, # or ?
// survive URL parsing. When running in Docker, localhost is resolved to
// host.docker.internal to reach databases on the host machine.
func buildConnectionString(cfg *Config) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = DefaultSSLMode()
	}

	host := config.ResolveHostForDocker(cfg.Host)

	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		host,
		cfg.Port,
		url.PathEscape(cfg.Database),
		sslMode,
	)
}

// Run connects, executes sqlText with the simple protocol, reads every row and
// closes the connection.
func (e *Executor) Run(ctx context.Context, sqlText string) (*models.ResultTable, error) {
	conn, err := pgx.Connect(ctx, buildConnectionString(e.config))
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	defer conn.Close(context.WithoutCancel(ctx))

	return runQuery(ctx, conn, sqlText)
}
