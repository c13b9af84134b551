package model

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSampleTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTableFromRows(
		[]string{"A", "B", "C"},
		[][]any{
			{int64(1), "x", nil},
			{int64(2), nil, 3.5},
		},
	)
	require.NoError(t, err)
	return table
}

func TestNewTableFromRows(t *testing.T) {
	table := newSampleTable(t)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 3, table.Width())
	assert.Equal(t, []string{"A", "B", "C"}, table.ColumnNames())

	v, ok := table.Cell(1, "C")
	require.True(t, ok)
	assert.Equal(t, 3.5, v)

	_, ok = table.Cell(5, "C")
	assert.False(t, ok)

	_, err := NewTableFromRows([]string{"A", "A"}, nil)
	assert.Error(t, err)

	_, err = NewTableFromRows([]string{"A"}, [][]any{{1, 2}})
	assert.Error(t, err)
}

func TestSetCell(t *testing.T) {
	table := newSampleTable(t)

	require.NoError(t, table.SetCell(0, 2, "Unknown"))
	v, _ := table.Cell(0, "C")
	assert.Equal(t, "Unknown", v)

	assert.Error(t, table.SetCell(2, 0, "x"))
	assert.Error(t, table.SetCell(0, 3, "x"))
	assert.Error(t, table.SetCell(0, 0, 42), "int is not a cell type")
	assert.NoError(t, table.SetCell(0, 0, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestAddColumn(t *testing.T) {
	table := newSampleTable(t)

	require.NoError(t, table.AddColumn("D", []any{nil, "y"}))
	assert.Equal(t, []string{"A", "B", "C", "D"}, table.ColumnNames())

	assert.Error(t, table.AddColumn("D", []any{nil, nil}))
	assert.Error(t, table.AddColumn("E", []any{nil}))
	assert.Equal(t, 2, table.Len())
}

func TestRenameColumns(t *testing.T) {
	tests := []struct {
		name    string
		mapping map[string]string
		want    []string
		wantErr bool
	}{
		{name: "single", mapping: map[string]string{"A": "X"}, want: []string{"X", "B", "C"}},
		{name: "swap", mapping: map[string]string{"A": "B", "B": "A"}, want: []string{"B", "A", "C"}},
		{name: "missing source", mapping: map[string]string{"Z": "X"}, wantErr: true},
		{name: "existing target", mapping: map[string]string{"A": "B"}, wantErr: true},
		{name: "duplicate target", mapping: map[string]string{"A": "X", "B": "X"}, wantErr: true},
		{name: "partial failure", mapping: map[string]string{"A": "X", "Z": "Y"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := newSampleTable(t)
			err := table.RenameColumns(tt.mapping)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, []string{"A", "B", "C"}, table.ColumnNames(), "no rename applied")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, table.ColumnNames())
			for _, name := range tt.want {
				assert.True(t, table.HasColumn(name))
			}
		})
	}
}

func TestDropColumns(t *testing.T) {
	table := newSampleTable(t)

	require.Error(t, table.DropColumns("A", "missing"))
	assert.Equal(t, 3, table.Width())

	require.NoError(t, table.DropColumns("A", "C"))
	assert.Equal(t, []string{"B"}, table.ColumnNames())
	assert.Equal(t, 2, table.Len())
	v, ok := table.Cell(0, "B")
	require.True(t, ok)
	assert.Equal(t, "x", v)
}

func TestCloneIsIndependent(t *testing.T) {
	table := newSampleTable(t)
	clone := table.Clone()

	require.NoError(t, clone.SetCell(0, 1, "changed"))
	require.NoError(t, clone.RenameColumns(map[string]string{"A": "Z"}))
	require.NoError(t, clone.AddColumn("D", []any{nil, nil}))

	v, _ := table.Cell(0, "B")
	assert.Equal(t, "x", v)
	assert.Equal(t, []string{"A", "B", "C"}, table.ColumnNames())
}

func TestSubset(t *testing.T) {
	table := newSampleTable(t)
	sub := table.Subset([]int{1, 0, 1})

	assert.Equal(t, 3, sub.Len())
	assert.Equal(t, []any{int64(2), nil, 3.5}, sub.Row(0))
	assert.Equal(t, []any{int64(1), "x", nil}, sub.Row(1))
}

func TestNullSnapshot(t *testing.T) {
	table := newSampleTable(t)
	snap := TakeNullSnapshot(table)

	assert.Equal(t, 2, snap.Rows())
	assert.Equal(t, [][]bool{{false, false, true}, {false, true, false}}, snap.Absent)
	assert.Equal(t, 2, snap.AbsentCount())
	assert.Equal(t, map[string]int{"A": 0, "B": 1, "C": 1}, snap.ColumnCounts())
	assert.False(t, snap.AllPresent())

	require.NoError(t, table.SetCell(0, 2, "Unknown"))
	require.NoError(t, table.SetCell(1, 1, "Unknown"))
	assert.True(t, TakeNullSnapshot(table).AllPresent())
	assert.False(t, snap.AllPresent(), "snapshot is not a view")
}

func TestSchemaMetadata(t *testing.T) {
	assert.Equal(t, KindInteger, SalesInputSchema.KindOf("ordernumber"))
	assert.Equal(t, KindNumeric, SalesInputSchema.KindOf(" SALES "))
	assert.Equal(t, KindText, SalesInputSchema.KindOf("ORDERDATE"))
	assert.Equal(t, KindText, SalesInputSchema.KindOf("CITY"))
	assert.Nil(t, SalesInputSchema.GetColumnByName("CITY"))

	table := NewTable(ColOrderNumber, ColSales)
	missing := SalesInputSchema.MissingColumns(table)
	assert.Len(t, missing, len(SalesInputSchema.Columns)-2)
	assert.NotContains(t, missing, ColSales)
}

func TestErrorCategories(t *testing.T) {
	schemaErr := MissingColumn("normalize", ColMSRP)
	transformErr := NewTransformationError("persist", errors.New("disk full"))
	loadErr := &LoadError{Path: "in.csv", Err: errors.New("no such file")}

	assert.True(t, errors.Is(schemaErr, ErrSchema))
	assert.True(t, errors.Is(transformErr, ErrTransformation))
	assert.True(t, errors.Is(loadErr, ErrLoad))
	assert.EqualError(t, errors.Unwrap(transformErr), "disk full")

	var target *SchemaError
	require.True(t, errors.As(fmt.Errorf("run: %w", schemaErr), &target))
	assert.Equal(t, ColMSRP, target.Column)

	assert.Equal(t, ErrorCategoryNone, CategorizeError(nil))
	assert.Equal(t, ErrorCategorySchema, CategorizeError(schemaErr))
	assert.Equal(t, ErrorCategoryTransformation, CategorizeError(transformErr))
	assert.Equal(t, ErrorCategoryLoad, CategorizeError(loadErr))
	assert.Equal(t, ErrorCategoryDiagnostic, CategorizeError(fmt.Errorf("%w: heatmap", ErrDiagnostic)))
	assert.Equal(t, ErrorCategoryUnknown, CategorizeError(errors.New("boom")))
	assert.Equal(t, "Schema", ErrorCategorySchema.String())
}
