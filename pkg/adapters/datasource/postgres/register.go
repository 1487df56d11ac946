package postgres

import (
	"github.com/ekaya-inc/ekaya-vizboard/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
)

func init() {
	datasource.Register(datasource.DatasourceAdapterRegistration{
		Info: datasource.DatasourceAdapterInfo{
			Type:        "postgres",
			DisplayName: "PostgreSQL",
			Description: "Connect to PostgreSQL 12+, Aurora PostgreSQL, Supabase",
			DefaultPort: "5432",
		},
		Aliases: []string{"postgresql", "pg"},
		Factory: func(params models.ConnectionParams) (datasource.StatementExecutor, error) {
			cfg, err := FromParams(params)
			if err != nil {
				return nil, err
			}
			return NewExecutor(cfg), nil
		},
	})
}
