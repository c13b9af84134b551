package features

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/David-Botos/sales-clean/pkg/model"
)

func TestAugment(t *testing.T) {
	table, err := model.NewTableFromRows(
		[]string{model.ColOrderNumber, model.ColOrderDate},
		[][]any{
			{int64(1), time.Date(2023, 7, 4, 0, 0, 0, 0, time.UTC)},
			{int64(2), nil},
		},
	)
	require.NoError(t, err)

	report, err := NewAugmenter(zaptest.NewLogger(t)).Augment(table)
	require.NoError(t, err)

	assert.Equal(t, []string{model.ColYear, model.ColMonth}, report.Added)
	assert.Equal(t, 1, report.MissingDate)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []string{model.ColOrderNumber, model.ColOrderDate, model.ColYear, model.ColMonth}, table.ColumnNames())
	assert.Equal(t, []any{int64(1), time.Date(2023, 7, 4, 0, 0, 0, 0, time.UTC), int64(2023), int64(7)}, table.Row(0))
	assert.Equal(t, []any{int64(2), nil, nil, nil}, table.Row(1))
}

func TestAugmentErrors(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		row     []any
		target  error
	}{
		{name: "missing date", columns: []string{model.ColOrderNumber}, row: []any{int64(1)}, target: model.ErrSchema},
		{name: "year exists", columns: []string{model.ColOrderDate, model.ColYear}, row: []any{nil, int64(2003)}, target: model.ErrSchema},
		{name: "unparsed date", columns: []string{model.ColOrderDate}, row: []any{"2/24/2003 0:00"}, target: model.ErrTransformation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := model.NewTableFromRows(tt.columns, [][]any{tt.row})
			require.NoError(t, err)

			_, err = NewAugmenter(nil).Augment(table)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target))
			assert.Equal(t, tt.columns, table.ColumnNames(), "no column added")
		})
	}
}
