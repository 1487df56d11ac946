package charts

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
)

var errNoData = errors.New("no plottable values")

// frame is a table with the selected columns resolved to indices.
// hue is -1 when no hue column was chosen.
type frame struct {
	table *models.ResultTable
	spec  Spec
	x, y  int
	hue   int
}

func (f frame) cell(row []any, idx int) any {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}

// toFloat converts driver values to float64. Text is parsed because some
// drivers return numerics as strings.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x)
	case float32:
		return float64(x), !math.IsNaN(float64(x))
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int16:
		return float64(x), true
	case int8:
		return float64(x), true
	case uint64:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint8:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil && !math.IsNaN(f)
	case []byte:
		return toFloat(string(x))
	}
	return 0, false
}

func toTime(v any) (time.Time, bool) {
	t, ok := v.(time.Time)
	return t, ok
}

// label renders a cell as a category name. nil cells have no category.
func label(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case []byte:
		return string(x), true
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly), true
		}
		return x.Format(time.DateTime), true
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), true
	}
	return fmt.Sprint(v), true
}

// numericColumn reports whether every non-nil value in column idx is numeric
// and at least one value exists.
func numericColumn(t *models.ResultTable, idx int) bool {
	seen := false
	for _, row := range t.Rows {
		if idx >= len(row) || row[idx] == nil {
			continue
		}
		if _, ok := toFloat(row[idx]); !ok {
			return false
		}
		seen = true
	}
	return seen
}

func timeColumn(t *models.ResultTable, idx int) bool {
	seen := false
	for _, row := range t.Rows {
		if idx >= len(row) || row[idx] == nil {
			continue
		}
		if _, ok := toTime(row[idx]); !ok {
			return false
		}
		seen = true
	}
	return seen
}

// numbers returns the numeric values of column idx, skipping the rest.
func numbers(t *models.ResultTable, idx int) []float64 {
	out := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx >= len(row) {
			continue
		}
		if v, ok := toFloat(row[idx]); ok {
			out = append(out, v)
		}
	}
	return out
}

// categories keeps category names in first-appearance order.
type categories struct {
	names []string
	index map[string]int
}

func newCategories() *categories {
	return &categories{index: make(map[string]int)}
}

func (c *categories) add(name string) int {
	if i, ok := c.index[name]; ok {
		return i
	}
	c.index[name] = len(c.names)
	c.names = append(c.names, name)
	return len(c.names) - 1
}

// groupY collects numeric y values per x category, in first-appearance order.
// Rows with a nil x or a non-numeric y are skipped.
func groupY(f frame) (*categories, [][]float64) {
	cats := newCategories()
	var groups [][]float64
	for _, row := range f.table.Rows {
		name, ok := label(f.cell(row, f.x))
		if !ok {
			continue
		}
		y, ok := toFloat(f.cell(row, f.y))
		if !ok {
			continue
		}
		i := cats.add(name)
		if i == len(groups) {
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], y)
	}
	return cats, groups
}

// hueGroups partitions row indices by hue value. Without a hue column every
// row lands in one unnamed group.
func hueGroups(f frame) (*categories, [][]int) {
	cats := newCategories()
	var groups [][]int
	for r, row := range f.table.Rows {
		name := ""
		if f.hue >= 0 {
			var ok bool
			if name, ok = label(f.cell(row, f.hue)); !ok {
				continue
			}
		}
		i := cats.add(name)
		if i == len(groups) {
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], r)
	}
	return cats, groups
}

// valueCounts counts occurrences of each x category, ordered by descending
// count with ties kept in first-appearance order.
func valueCounts(f frame) ([]string, []float64) {
	cats := newCategories()
	var counts []float64
	for _, row := range f.table.Rows {
		name, ok := label(f.cell(row, f.x))
		if !ok {
			continue
		}
		i := cats.add(name)
		if i == len(counts) {
			counts = append(counts, 0)
		}
		counts[i]++
	}

	order := make([]int, len(counts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return counts[order[a]] > counts[order[b]] })

	names := make([]string, len(order))
	sorted := make([]float64, len(order))
	for i, o := range order {
		names[i] = cats.names[o]
		sorted[i] = counts[o]
	}
	return names, sorted
}
