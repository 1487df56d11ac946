package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
)

// runQuery executes one statement and collects its rows.
// The simple protocol lets the staged text carry a trailing semicolon or a
// leading SET without a prepare step.
func runQuery(ctx context.Context, conn *pgx.Conn, sqlText string) (*models.ResultTable, error) {
	rows, err := conn.Query(ctx, sqlText, pgx.QueryExecModeSimpleProtocol)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	table := &models.ResultTable{
		Columns: make([]string, len(fieldDescs)),
		Rows:    make([][]any, 0),
	}
	for i, fd := range fieldDescs {
		table.Columns[i] = fd.Name
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row values: %w", err)
		}
		for i, v := range values {
			values[i] = normalizePgValue(v)
		}
		table.Rows = append(table.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return table, nil
}

// normalizePgValue turns pgx wire types into values that render and chart.
func normalizePgValue(v any) any {
	switch val := v.(type) {
	case pgtype.Numeric:
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return uuid.UUID(val).String()
	default:
		return datasource.NormalizeValue(v)
	}
}
