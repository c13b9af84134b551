package cleaner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/David-Botos/sales-clean/pkg/model"
)

// salesRow is one input row in schema order
func salesRow(orderNumber int64, orderDate any, customer any) []any {
	return []any{
		orderNumber, int64(30), 95.7, int64(2), 2871.0, orderDate, "Shipped", int64(1),
		"Motorcycles", int64(95), customer, "2125557818", "897 Long Airport Avenue", nil,
		"NY", "10022", "USA", nil, "Yu", "Kwai", "Small",
	}
}

func newSalesTable(t *testing.T, rows ...[]any) *model.Table {
	t.Helper()
	table, err := model.NewTableFromRows(model.SalesInputSchema.Names(), rows)
	require.NoError(t, err)
	return table
}

type recordingSink struct {
	names []string
	snaps []model.NullSnapshot
	err   error
}

func (s *recordingSink) ExportSnapshot(name string, snap model.NullSnapshot) error {
	s.names = append(s.names, name)
	s.snaps = append(s.snaps, snap)
	return s.err
}
