package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/audit"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/staging"
)

// Introspection result columns.
const (
	ColumnTableName  = "table_name"
	ColumnColumnName = "column_name"
	ColumnDataType   = "data_type"
)

var requiredSchemaColumns = []string{ColumnTableName, ColumnColumnName, ColumnDataType}

// ExtractSchema groups introspection rows into a SchemaMap. Rows are taken in
// order and nothing is de-duplicated. It fails with apperrors.ErrMissingColumns
// when any required column is absent.
func ExtractSchema(table *models.ResultTable) (*models.SchemaMap, error) {
	var missing []string
	for _, c := range requiredSchemaColumns {
		if !table.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %s", apperrors.ErrMissingColumns, strings.Join(missing, ", "))
	}

	ti := table.ColumnIndex(ColumnTableName)
	ci := table.ColumnIndex(ColumnColumnName)
	di := table.ColumnIndex(ColumnDataType)

	schema := models.NewSchemaMap()
	for _, row := range table.Rows {
		schema.Append(cellText(row, ti), models.SchemaColumn{
			Name:     cellText(row, ci),
			DataType: cellText(row, di),
		})
	}
	return schema, nil
}

func cellText(row []any, idx int) string {
	if idx >= len(row) {
		return ""
	}
	switch v := row[idx].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// FormatSchemaText renders a schema as the plain-text block used in prompts.
func FormatSchemaText(schema *models.SchemaMap) string {
	var b strings.Builder
	for _, t := range schema.Entries() {
		fmt.Fprintf(&b, "Table: %s\nColumns:\n", t.Name)
		for _, c := range t.Columns {
			fmt.Fprintf(&b, "- %s (%s)\n", c.Name, c.DataType)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// SchemaLoad is the outcome of loading a schema. When Execution failed, Schema
// is nil and Execution.Message explains why.
type SchemaLoad struct {
	Schema    *models.SchemaMap
	Text      string
	Execution Execution
}

// SchemaService loads the database schema through the introspection query file.
type SchemaService interface {
	// Load runs the schema query. Driver errors are reported in the returned
	// SchemaLoad; a result missing the required columns is returned as an error.
	Load(ctx context.Context, params models.ConnectionParams) (SchemaLoad, error)
}

type schemaService struct {
	queries QueryService
	area    *staging.Area
	logger  *zap.Logger
}

// NewSchemaService creates a schema service.
func NewSchemaService(queries QueryService, area *staging.Area, logger *zap.Logger) SchemaService {
	return &schemaService{
		queries: queries,
		area:    area,
		logger:  logger.Named("schema"),
	}
}

var _ SchemaService = (*schemaService)(nil)

func (s *schemaService) Load(ctx context.Context, params models.ConnectionParams) (SchemaLoad, error) {
	if err := s.area.EnsureSchemaQuery(); err != nil {
		return SchemaLoad{}, err
	}

	exec := s.queries.Execute(ctx, params, s.area.SchemaPath(), audit.SourceUI)
	if !exec.OK() {
		return SchemaLoad{Execution: exec}, nil
	}

	schema, err := ExtractSchema(exec.Table)
	if err != nil {
		s.logger.Error("Schema query returned unexpected columns",
			zap.Strings("columns", exec.Table.Columns),
			zap.Error(err))
		return SchemaLoad{Execution: exec}, err
	}

	s.logger.Info("Schema loaded", zap.Int("tables", schema.Len()))
	return SchemaLoad{
		Schema:    schema,
		Text:      FormatSchemaText(schema),
		Execution: exec,
	}, nil
}
