// pkg/model/table.go
package model

import (
	"fmt"
	"time"
)

// Column is a named sequence of cell values. A nil value marks an absent cell.
// Non-nil values are one of string, int64, float64 or time.Time.
type Column struct {
	Name   string
	Values []any
}

// Table is an ordered collection of columns with rows aligned by position
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// NewTable creates an empty table with the given column names
func NewTable(names ...string) *Table {
	t := &Table{index: make(map[string]int, len(names))}
	for _, name := range names {
		if _, exists := t.index[name]; exists {
			continue
		}
		t.index[name] = len(t.columns)
		t.columns = append(t.columns, &Column{Name: name})
	}
	return t
}

// NewTableFromRows builds a table from a header and row-major values.
// Every row must have exactly len(header) cells.
func NewTableFromRows(header []string, rows [][]any) (*Table, error) {
	seen := make(map[string]bool, len(header))
	for _, name := range header {
		if seen[name] {
			return nil, fmt.Errorf("duplicate column name %q", name)
		}
		seen[name] = true
	}

	t := NewTable(header...)
	for i, row := range rows {
		if err := t.AppendRow(row); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return t, nil
}

// AppendRow adds a row to the end of the table
func (t *Table) AppendRow(row []any) error {
	if len(row) != len(t.columns) {
		return fmt.Errorf("row has %d cells, expected %d", len(row), len(t.columns))
	}
	for i, col := range t.columns {
		col.Values = append(col.Values, row[i])
	}
	t.rows++
	return nil
}

// Len returns the number of rows
func (t *Table) Len() int {
	return t.rows
}

// Width returns the number of columns
func (t *Table) Width() int {
	return len(t.columns)
}

// ColumnNames returns the column names in order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

// HasColumn reports whether a column with the given name exists
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// ColumnAt returns the column at position i
func (t *Table) ColumnAt(i int) *Column {
	return t.columns[i]
}

// Row returns a copy of the values in row i, in column order
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.columns))
	for j, col := range t.columns {
		row[j] = col.Values[i]
	}
	return row
}

// Cell returns the value at the given row of the named column
func (t *Table) Cell(row int, name string) (any, bool) {
	col, ok := t.Column(name)
	if !ok || row < 0 || row >= t.rows {
		return nil, false
	}
	return col.Values[row], true
}

// SetCell replaces the value at the given row and column position
func (t *Table) SetCell(row, col int, value any) error {
	if col < 0 || col >= len(t.columns) {
		return fmt.Errorf("column index %d out of range [0,%d)", col, len(t.columns))
	}
	if row < 0 || row >= t.rows {
		return fmt.Errorf("row index %d out of range [0,%d)", row, t.rows)
	}
	if !isCellValue(value) {
		return fmt.Errorf("unsupported cell type %T", value)
	}
	t.columns[col].Values[row] = value
	return nil
}

// AddColumn appends a new column. The value count must match the row count.
func (t *Table) AddColumn(name string, values []any) error {
	if t.HasColumn(name) {
		return fmt.Errorf("column %q already exists", name)
	}
	if len(values) != t.rows {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), t.rows)
	}
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, &Column{Name: name, Values: values})
	return nil
}

// RenameColumns renames columns in place according to mapping (old -> new).
// Either every rename is applied or none is.
func (t *Table) RenameColumns(mapping map[string]string) error {
	targets := make(map[string]bool, len(mapping))
	for from, to := range mapping {
		if !t.HasColumn(from) {
			return fmt.Errorf("cannot rename missing column %q", from)
		}
		if _, renamed := mapping[to]; t.HasColumn(to) && !renamed {
			return fmt.Errorf("cannot rename %q to existing column %q", from, to)
		}
		if targets[to] {
			return fmt.Errorf("more than one column renamed to %q", to)
		}
		targets[to] = true
	}

	for from, to := range mapping {
		t.columns[t.index[from]].Name = to
	}
	t.reindex()
	return nil
}

// DropColumns removes the named columns. Either all are dropped or none is.
func (t *Table) DropColumns(names ...string) error {
	drop := make(map[string]bool, len(names))
	for _, name := range names {
		if !t.HasColumn(name) {
			return fmt.Errorf("cannot drop missing column %q", name)
		}
		drop[name] = true
	}

	kept := t.columns[:0]
	for _, col := range t.columns {
		if !drop[col.Name] {
			kept = append(kept, col)
		}
	}
	t.columns = kept
	t.reindex()
	return nil
}

// Clone returns a deep copy of the table structure and cell slices
func (t *Table) Clone() *Table {
	c := &Table{
		columns: make([]*Column, len(t.columns)),
		index:   make(map[string]int, len(t.index)),
		rows:    t.rows,
	}
	for i, col := range t.columns {
		values := make([]any, len(col.Values))
		copy(values, col.Values)
		c.columns[i] = &Column{Name: col.Name, Values: values}
		c.index[col.Name] = i
	}
	return c
}

// Subset returns a new table holding the given rows in the given order
func (t *Table) Subset(rows []int) *Table {
	s := NewTable(t.ColumnNames()...)
	for i, col := range t.columns {
		values := make([]any, len(rows))
		for j, r := range rows {
			values[j] = col.Values[r]
		}
		s.columns[i].Values = values
	}
	s.rows = len(rows)
	return s
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.columns))
	for i, col := range t.columns {
		t.index[col.Name] = i
	}
}

func isCellValue(v any) bool {
	switch v.(type) {
	case nil, string, int64, float64, time.Time:
		return true
	default:
		return false
	}
}
