// Package table provides the immutable in-memory table that every loader produces and every
// plotting pipeline consumes.
package table

import (
	"fmt"
	"iter"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Table is an ordered set of named columns over rows of cells. A nil cell is a missing value.
// Tables are never mutated after construction; transformations return new tables.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]any
}

// New builds a table from column names and row cells. Short rows are padded with nil and long
// rows are rejected.
func New(columns []string, rows [][]any) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; dup {
			return nil, eris.Errorf("table: duplicate column %q", c)
		}
		index[c] = i
	}

	out := make([][]any, len(rows))
	for i, r := range rows {
		if len(r) > len(columns) {
			return nil, eris.Errorf("table: row %d has %d cells, want at most %d", i, len(r), len(columns))
		}
		cells := make([]any, len(columns))
		copy(cells, r)
		out[i] = cells
	}

	return &Table{columns: slices.Clone(columns), index: index, rows: out}, nil
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string { return slices.Clone(t.columns) }

// Has reports whether the table carries the named column.
func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Row returns the i-th row.
func (t *Table) Row(i int) Row { return Row{t: t, i: i} }

// Rows iterates rows in order. The sequence can be ranged over any number of times.
func (t *Table) Rows() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for i := range t.rows {
			if !yield(Row{t: t, i: i}) {
				return
			}
		}
	}
}

// Filter returns the rows for which keep reports true.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := &Table{columns: t.columns, index: t.index}
	for r := range t.Rows() {
		if keep(r) {
			out.rows = append(out.rows, t.rows[r.i])
		}
	}
	return out
}

// DropNull removes rows where any of the named columns is missing. Columns the table does not
// carry count as missing.
func (t *Table) DropNull(cols ...string) *Table {
	return t.Filter(func(r Row) bool {
		for _, c := range cols {
			if r.IsNull(c) {
				return false
			}
		}
		return true
	})
}

// WithColumn returns a table with the named column set to derive(row) for every row. An existing
// column of that name is replaced in place; otherwise the column is appended. Source rows are
// never modified.
func (t *Table) WithColumn(name string, derive func(Row) any) *Table {
	columns := t.columns
	index := t.index
	pos, exists := t.index[name]
	if !exists {
		columns = append(slices.Clone(t.columns), name)
		index = make(map[string]int, len(columns))
		for i, c := range columns {
			index[c] = i
		}
		pos = len(columns) - 1
	}

	rows := make([][]any, len(t.rows))
	for i, src := range t.rows {
		cells := make([]any, len(columns))
		copy(cells, src)
		cells[pos] = derive(Row{t: t, i: i})
		rows[i] = cells
	}
	return &Table{columns: columns, index: index, rows: rows}
}

// Row is a read-only view of one table row.
type Row struct {
	t *Table
	i int
}

// Index returns the row's position in its table.
func (r Row) Index() int { return r.i }

// Value returns the raw cell and whether the column exists.
func (r Row) Value(col string) (any, bool) {
	j, ok := r.t.index[col]
	if !ok {
		return nil, false
	}
	return r.t.rows[r.i][j], true
}

// IsNull reports whether the cell is absent, nil, an empty string or a NaN float.
func (r Row) IsNull(col string) bool {
	v, ok := r.Value(col)
	if !ok || v == nil {
		return true
	}
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x) == ""
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// String formats the cell as text. Missing cells yield "".
func (r Row) String(col string) string {
	if r.IsNull(col) {
		return ""
	}
	v, _ := r.Value(col)
	return FormatValue(v)
}

// StringOr returns the cell as text, or def when it is missing.
func (r Row) StringOr(col, def string) string {
	if r.IsNull(col) {
		return def
	}
	return r.String(col)
}

// Float returns the cell as a float64. ok is false for missing, non-numeric and non-finite
// cells.
func (r Row) Float(col string) (float64, bool) {
	if r.IsNull(col) {
		return 0, false
	}
	v, _ := r.Value(col)
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}

// Bool reports whether the cell holds a true flag (see IsTrue). Missing cells are false.
func (r Row) Bool(col string) bool {
	if r.IsNull(col) {
		return false
	}
	v, _ := r.Value(col)
	return IsTrue(v)
}

// IsTrue reports whether v is a true flag: boolean true, a string strconv.ParseBool reads as
// true, or a number equal to 1. Spreadsheet and database loaders often store flags as 1/0.
func IsTrue(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		return err == nil && b
	case float64, float32, int, int32, int64:
		f, _ := toFloat(x)
		return f == 1
	}
	return false
}

// FormatValue renders a cell the way popups and summaries display it.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case bool:
		if x {
			return "True"
		}
		return "False"
	case []byte:
		return string(x)
	}
	return fmt.Sprint(v)
}
