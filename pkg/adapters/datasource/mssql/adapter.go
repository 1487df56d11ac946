package mssql

import (
	"context"
	"fmt"
	"net/url"

	_ "github.com/microsoft/go-mssqldb" // SQL Server driver

	"github.com/ekaya-inc/ekaya-vizboard/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/config"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
)

// Executor runs statements against SQL Server, one connection per call.
type Executor struct {
	config *Config
}

var _ datasource.StatementExecutor = (*Executor)(nil)

// NewExecutor creates a SQL Server executor.
func NewExecutor(cfg *Config) *Executor {
	return &Executor{config: cfg}
}

// buildConnectionString builds a sqlserver:// URL for SQL authentication.
func buildConnectionString(cfg *Config) string {
	query := url.Values{}
	if cfg.Database != "" {
		query.Add("database", cfg.Database)
	}

	if cfg.Encrypt {
		query.Add("encrypt", "true")
	} else {
		query.Add("encrypt", "disable")
	}

	if cfg.TrustServerCertificate {
		query.Add("TrustServerCertificate", "true")
	}

	if cfg.ConnectionTimeout > 0 {
		query.Add("connection timeout", fmt.Sprintf("%d", cfg.ConnectionTimeout))
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", config.ResolveHostForDocker(cfg.Host), cfg.Port),
		RawQuery: query.Encode(),
	}
	return u.String()
}

// Run executes sqlText and returns every row.
func (e *Executor) Run(ctx context.Context, sqlText string) (*models.ResultTable, error) {
	return datasource.RunOnce(ctx, "sqlserver", buildConnectionString(e.config), sqlText)
}
