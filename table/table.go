// Package table holds immutable typed tabular data loaded from delimited text
// files. Every operation returns a new table, row storage is shared between
// derived tables and never modified.
package table

import (
	"errors"
	"fmt"
	"slices"
)

var ErrNoColumn = errors.New("no such column")

// Table is an ordered set of rows with named columns.
type Table struct {
	columns []string
	rows    [][]Value
}

// New creates table from columns and rows, every row must have exactly one
// value per column.
func New(columns []string, rows [][]Value) (*Table, error) {
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d cells, expected %d", i, len(row), len(columns))
		}
	}
	return &Table{columns: slices.Clone(columns), rows: rows}, nil
}

// Columns returns a copy of column names in order.
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// Len returns number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// ColumnIndex returns position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i := slices.Index(t.columns, name)
	return i, i >= 0
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.ColumnIndex(name)
	return ok
}

// Row returns a copy of the row at position i.
func (t *Table) Row(i int) []Value {
	return slices.Clone(t.rows[i])
}

// Cell returns value at row i, column col.
func (t *Table) Cell(i, col int) Value {
	return t.rows[i][col]
}

// Get returns value at row i in the named column.
func (t *Table) Get(i int, column string) (Value, error) {
	col, ok := t.ColumnIndex(column)
	if !ok {
		return Value{}, fmt.Errorf("%w: %q", ErrNoColumn, column)
	}
	return t.rows[i][col], nil
}

// Filter returns table with rows for which keep returned true, source order
// is preserved.
func (t *Table) Filter(keep func(row []Value) bool) *Table {
	rows := make([][]Value, 0, len(t.rows))
	for _, row := range t.rows {
		if keep(row) {
			rows = append(rows, row)
		}
	}
	return &Table{columns: t.columns, rows: rows}
}

// WhereInt returns rows where the named column holds integer id.
func (t *Table) WhereInt(column string, id int64) (*Table, error) {
	col, ok := t.ColumnIndex(column)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoColumn, column)
	}
	return t.Filter(func(row []Value) bool {
		v, ok := row[col].Int()
		return ok && v == id
	}), nil
}

// AllNull reports whether every cell of the named column is null. It is true
// for a table without rows.
func (t *Table) AllNull(column string) (bool, error) {
	col, ok := t.ColumnIndex(column)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrNoColumn, column)
	}
	for _, row := range t.rows {
		if !row[col].IsNull() {
			return false, nil
		}
	}
	return true, nil
}

// Drop returns table without the named columns. All columns must exist.
func (t *Table) Drop(columns ...string) (*Table, error) {
	drop := make([]bool, len(t.columns))
	for _, name := range columns {
		col, ok := t.ColumnIndex(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNoColumn, name)
		}
		drop[col] = true
	}

	names := make([]string, 0, len(t.columns))
	for i, name := range t.columns {
		if !drop[i] {
			names = append(names, name)
		}
	}
	rows := make([][]Value, len(t.rows))
	for r, row := range t.rows {
		kept := make([]Value, 0, len(names))
		for i, v := range row {
			if !drop[i] {
				kept = append(kept, v)
			}
		}
		rows[r] = kept
	}
	return &Table{columns: names, rows: rows}, nil
}

// Slice returns rows in positional range [lo, hi). Bounds are clamped to the
// table, so ranges past the end produce an empty table.
func (t *Table) Slice(lo, hi int) *Table {
	lo = min(max(lo, 0), len(t.rows))
	hi = min(max(hi, lo), len(t.rows))
	return &Table{columns: t.columns, rows: t.rows[lo:hi:hi]}
}
