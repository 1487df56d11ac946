package charts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
)

func TestToFloat(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{int64(3), 3, true},
		{int32(-2), -2, true},
		{float32(1.5), 1.5, true},
		{2.25, 2.25, true},
		{"4.5", 4.5, true},
		{[]byte(" 7 "), 7, true},
		{"abc", 0, false},
		{nil, 0, false},
		{true, 0, false},
		{time.Now(), 0, false},
	}
	for _, tt := range tests {
		got, ok := toFloat(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-9)
		}
	}
}

func TestLabel(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	got, ok := label(day)
	assert.True(t, ok)
	assert.Equal(t, "2024-03-01", got)

	got, ok = label(int64(12))
	assert.True(t, ok)
	assert.Equal(t, "12", got)

	_, ok = label(nil)
	assert.False(t, ok)
}

func TestValueCounts_OrderByCountThenAppearance(t *testing.T) {
	table := &models.ResultTable{
		Columns: []string{"city", "n"},
		Rows: [][]any{
			{"Austin", 1}, {"Boston", 2}, {"Chicago", 3},
			{"Boston", 4}, {"Chicago", 5}, {nil, 6}, {"Denver", 7},
		},
	}
	names, counts := valueCounts(frame{table: table, x: 0, y: 1, hue: -1})
	assert.Equal(t, []string{"Boston", "Chicago", "Austin", "Denver"}, names)
	assert.Equal(t, []float64{2, 2, 1, 1}, counts)
}

func TestGroupY_FirstAppearanceAndSkips(t *testing.T) {
	table := &models.ResultTable{
		Columns: []string{"store", "sales"},
		Rows: [][]any{
			{"b", int64(1)}, {"a", int64(2)}, {"b", "3"}, {"a", nil}, {nil, int64(9)},
		},
	}
	cats, groups := groupY(frame{table: table, x: 0, y: 1, hue: -1})
	assert.Equal(t, []string{"b", "a"}, cats.names)
	assert.Equal(t, [][]float64{{1, 3}, {2}}, groups)
}

func TestNumericColumn(t *testing.T) {
	table := &models.ResultTable{
		Columns: []string{"a", "b", "c"},
		Rows:    [][]any{{int64(1), "x", nil}, {nil, "2", nil}},
	}
	assert.True(t, numericColumn(table, 0))
	assert.False(t, numericColumn(table, 1))
	assert.False(t, numericColumn(table, 2), "all-null column is not numeric")
}
