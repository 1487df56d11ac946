package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCountNoun(t *testing.T) {
	tests := []struct {
		n    int
		noun string
		want string
	}{
		{0, "row", "0 rows"},
		{1, "row", "1 row"},
		{2, "table", "2 tables"},
		{5, "column", "5 columns"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, countNoun(tt.n, tt.noun))
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "None"},
		{"bytes", []byte("abc"), "abc"},
		{"float", 2.50, "2.5"},
		{"int", int64(42), "42"},
		{"date", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "2024-03-01"},
		{"timestamp", time.Date(2024, 3, 1, 14, 5, 0, 0, time.UTC), "2024-03-01 14:05:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatCell(tt.in))
		})
	}
}

func TestColumnOptions_Fallback(t *testing.T) {
	cols := []string{"a", "b", "c"}

	opts := columnOptions(cols, "c", 0)
	assert.False(t, opts[0].Selected)
	assert.True(t, opts[2].Selected)

	opts = columnOptions(cols, "gone", 1)
	assert.True(t, opts[1].Selected)

	opts = columnOptions(cols, "", -1)
	for _, o := range opts {
		assert.False(t, o.Selected)
	}
}
