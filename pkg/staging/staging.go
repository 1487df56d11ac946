// Package staging manages the on-disk SQL files the dashboard executes from.
// Every statement, typed or generated, is written to the request file and read
// back before execution; the schema introspection query lives in its own file.
package staging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// DefaultSchemaQuery is written to the schema query file when it does not exist.
// It produces the table_name, column_name and data_type columns schema extraction needs.
const DefaultSchemaQuery = `SELECT table_name, column_name, data_type
FROM information_schema.columns
WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
ORDER BY table_name, ordinal_position;
`

// Area owns the schema query file and the request file.
// The request file is a single shared path; concurrent writers race on it.
type Area struct {
	schemaPath  string
	requestPath string
	logger      *zap.Logger
}

// NewArea returns an Area for the given paths.
func NewArea(schemaPath, requestPath string, logger *zap.Logger) *Area {
	return &Area{
		schemaPath:  schemaPath,
		requestPath: requestPath,
		logger:      logger.Named("staging"),
	}
}

// SchemaPath returns the location of the introspection query.
func (a *Area) SchemaPath() string { return a.schemaPath }

// RequestPath returns the location of the most recently staged statement.
func (a *Area) RequestPath() string { return a.requestPath }

// EnsureSchemaQuery creates the schema query file with DefaultSchemaQuery if it is missing.
// An existing file is left untouched.
func (a *Area) EnsureSchemaQuery() error {
	if _, err := os.Stat(a.schemaPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat schema query file: %w", err)
	}

	if err := writeFile(a.schemaPath, DefaultSchemaQuery); err != nil {
		return err
	}
	a.logger.Info("Created default schema query file", zap.String("path", a.schemaPath))
	return nil
}

// Stage overwrites the request file with sqlText and returns its path.
func (a *Area) Stage(sqlText string) (string, error) {
	if err := writeFile(a.requestPath, sqlText); err != nil {
		return "", err
	}
	a.logger.Debug("Staged SQL", zap.String("path", a.requestPath), zap.Int("bytes", len(sqlText)))
	return a.requestPath, nil
}

// Read returns the contents of a staged SQL file.
func Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read staged SQL %s: %w", path, err)
	}
	return string(data), nil
}

func writeFile(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create staging directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write staged SQL %s: %w", path, err)
	}
	return nil
}
