package mssql

import (
	"github.com/ekaya-inc/ekaya-vizboard/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
)

func init() {
	datasource.Register(datasource.DatasourceAdapterRegistration{
		Info: datasource.DatasourceAdapterInfo{
			Type:        "sqlserver",
			DisplayName: "Microsoft SQL Server",
			Description: "Connect to SQL Server 2016+ and Azure SQL with SQL authentication",
			DefaultPort: "1433",
		},
		Aliases: []string{"mssql"},
		Factory: func(params models.ConnectionParams) (datasource.StatementExecutor, error) {
			cfg, err := FromParams(params)
			if err != nil {
				return nil, err
			}
			return NewExecutor(cfg), nil
		},
	})
}
