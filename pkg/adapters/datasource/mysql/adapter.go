// Package mysql registers a MySQL / MariaDB executor.
package mysql

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/config"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
)

// DefaultPort is the standard MySQL port.
const DefaultPort = 3306

// Executor runs statements against MySQL, one connection per call.
type Executor struct {
	cfg *mysql.Config
}

var _ datasource.StatementExecutor = (*Executor)(nil)

// FromParams builds a driver config from dashboard connection parameters.
func FromParams(params models.ConnectionParams) (*mysql.Config, error) {
	port := DefaultPort
	if p := strings.TrimSpace(params.Port); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid port %q: %w", params.Port, err)
		}
		port = n
	}

	host := params.Host
	if host == "" {
		host = "localhost"
	}

	cfg := mysql.NewConfig()
	cfg.User = params.User
	cfg.Passwd = params.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", config.ResolveHostForDocker(host), port)
	cfg.DBName = params.Database
	cfg.ParseTime = true
	cfg.Timeout = 30 * time.Second
	return cfg, nil
}

// NewExecutor creates a MySQL executor.
func NewExecutor(cfg *mysql.Config) *Executor {
	return &Executor{cfg: cfg}
}

// Run executes sqlText and returns every row.
func (e *Executor) Run(ctx context.Context, sqlText string) (*models.ResultTable, error) {
	return datasource.RunOnce(ctx, "mysql", e.cfg.FormatDSN(), sqlText)
}

func init() {
	datasource.Register(datasource.DatasourceAdapterRegistration{
		Info: datasource.DatasourceAdapterInfo{
			Type:        "mysql",
			DisplayName: "MySQL",
			Description: "Connect to MySQL 5.7+ and MariaDB",
			DefaultPort: strconv.Itoa(DefaultPort),
		},
		Aliases: []string{"mariadb"},
		Factory: func(params models.ConnectionParams) (datasource.StatementExecutor, error) {
			cfg, err := FromParams(params)
			if err != nil {
				return nil, err
			}
			return NewExecutor(cfg), nil
		},
	})
}
