package models

import "encoding/json"

// SchemaColumn is one (column name, data type) pair of a table.
type SchemaColumn struct {
	Name     string `json:"column_name" yaml:"column_name"`
	DataType string `json:"data_type" yaml:"data_type"`
}

// SchemaTable is a table and its columns in introspection order.
type SchemaTable struct {
	Name    string         `json:"table_name" yaml:"table_name"`
	Columns []SchemaColumn `json:"columns" yaml:"columns"`
}

// SchemaMap maps table name to its ordered columns.
// Tables keep the order in which they were first seen.
type SchemaMap struct {
	tables []SchemaTable
	index  map[string]int
}

// NewSchemaMap returns an empty SchemaMap.
func NewSchemaMap() *SchemaMap {
	return &SchemaMap{index: make(map[string]int)}
}

// Append adds a column to table, creating the table entry on first use.
// Repeated pairs are kept.
func (m *SchemaMap) Append(table string, col SchemaColumn) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	i, ok := m.index[table]
	if !ok {
		i = len(m.tables)
		m.index[table] = i
		m.tables = append(m.tables, SchemaTable{Name: table})
	}
	m.tables[i].Columns = append(m.tables[i].Columns, col)
}

// Tables returns table names in first-seen order.
func (m *SchemaMap) Tables() []string {
	if m == nil {
		return nil
	}
	names := make([]string, len(m.tables))
	for i, t := range m.tables {
		names[i] = t.Name
	}
	return names
}

// Columns returns the columns recorded for table.
func (m *SchemaMap) Columns(table string) ([]SchemaColumn, bool) {
	if m == nil {
		return nil, false
	}
	i, ok := m.index[table]
	if !ok {
		return nil, false
	}
	return m.tables[i].Columns, true
}

// Entries returns every table with its columns, in order.
func (m *SchemaMap) Entries() []SchemaTable {
	if m == nil {
		return nil
	}
	return m.tables
}

// Len returns the number of tables.
func (m *SchemaMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.tables)
}

// MarshalJSON encodes the map as an ordered list of tables.
func (m *SchemaMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Entries())
}

// MarshalYAML encodes the map as an ordered list of tables.
func (m *SchemaMap) MarshalYAML() (any, error) {
	return m.Entries(), nil
}
