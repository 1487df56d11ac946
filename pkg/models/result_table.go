package models

import "fmt"

// ResultTable is the ordered, row-major output of one statement.
// Columns follow the driver's reported order and Rows are aligned to them.
type ResultTable struct {
	Columns []string `json:"columns" yaml:"columns"`
	Rows    [][]any  `json:"rows" yaml:"rows"`
}

// Empty reports whether the table has no rows.
func (t *ResultTable) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// RowCount returns the number of rows, zero for a nil table.
func (t *ResultTable) RowCount() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the position of name in Columns, or -1.
func (t *ResultTable) ColumnIndex(name string) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether name is one of the table's columns.
func (t *ResultTable) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Column returns the values of one column in row order.
func (t *ResultTable) Column(name string) ([]any, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found", name)
	}
	values := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			values[i] = row[idx]
		}
	}
	return values, nil
}

// Head returns a table holding at most the first n rows.
func (t *ResultTable) Head(n int) *ResultTable {
	if t == nil {
		return nil
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return &ResultTable{Columns: t.Columns, Rows: t.Rows[:n]}
}
