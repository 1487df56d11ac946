package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
)

// RunOnce opens a single database/sql connection, runs sqlText and closes the
// connection before returning.
func RunOnce(ctx context.Context, driverName, dsn, sqlText string) (*models.ResultTable, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s connection: %w", driverName, err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(0)

	rows, err := db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	return ScanSQLRows(rows)
}

// ScanSQLRows drains a database/sql result into a ResultTable.
// Raw byte values are converted to strings so they render and chart like text.
// Used by the database/sql based adapters (sqlserver, mysql, sqlite).
func ScanSQLRows(rows *sql.Rows) (*models.ResultTable, error) {
	columnNames, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	table := &models.ResultTable{
		Columns: columnNames,
		Rows:    make([][]any, 0),
	}

	for rows.Next() {
		values := make([]any, len(columnNames))
		valuePtrs := make([]any, len(columnNames))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		for i, val := range values {
			values[i] = NormalizeValue(val)
		}
		table.Rows = append(table.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return table, nil
}

// NormalizeValue converts driver-specific scalar types into plain Go values.
func NormalizeValue(val any) any {
	switch v := val.(type) {
	case []byte:
		return string(v)
	case int32:
		return int64(v)
	case int16:
		return int64(v)
	case int8:
		return int64(v)
	case uint8:
		return int64(v)
	case float32:
		f, err := strconv.ParseFloat(strconv.FormatFloat(float64(v), 'g', -1, 32), 64)
		if err != nil {
			return float64(v)
		}
		return f
	default:
		return val
	}
}
