// pkg/cleaner/nulls.go
package cleaner

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/sales-clean/pkg/model"
)

// Snapshot names handed to the diagnostic sink
const (
	SnapshotBeforeFill = "isnull"
	SnapshotAfterFill  = "isnull_fixed"
)

// NullResolution is the outcome of one null fill
type NullResolution struct {
	Pre        model.NullSnapshot
	Post       model.NullSnapshot
	Filled     int
	Operations []model.CleaningOperation
}

// NullResolver replaces every absent cell with the "Unknown" sentinel
type NullResolver struct {
	logger    *zap.Logger
	sink      DiagnosticSink
	tableName string
	now       func() time.Time
}

// NewNullResolver creates a resolver. sink may be nil when no diagnostics are wanted.
func NewNullResolver(logger *zap.Logger, sink DiagnosticSink, tableName string) *NullResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = NopDiagnosticSink{}
	}
	return &NullResolver{
		logger:    logger,
		sink:      sink,
		tableName: tableName,
		now:       time.Now,
	}
}

// Resolve fills table in place. Snapshots are exported before and after the
// fill; an export failure is logged and does not undo the fill.
func (r *NullResolver) Resolve(table *model.Table) (NullResolution, error) {
	var res NullResolution
	if table == nil {
		return res, model.NewTransformationError(model.StageResolveNulls, errors.New("table cannot be nil"))
	}

	r.logger.Info("Null resolution started", zap.Int("rowCount", table.Len()))

	res.Pre = model.TakeNullSnapshot(table)
	r.export(SnapshotBeforeFill, res.Pre)

	cleanedAt := r.now()
	for c := 0; c < table.Width(); c++ {
		col := table.ColumnAt(c)
		for row, v := range col.Values {
			if v != nil {
				continue
			}
			if err := table.SetCell(row, c, model.SentinelUnknown); err != nil {
				return res, model.NewTransformationError(model.StageResolveNulls,
					fmt.Errorf("failed to fill column %s row %d: %w", col.Name, row, err))
			}
			res.Filled++
			res.Operations = append(res.Operations, model.CleaningOperation{
				TableName:         r.tableName,
				ColumnName:        col.Name,
				RowIndex:          row,
				RowIdentifier:     rowIdentifier(table, row),
				OriginalValue:     nil,
				NewValue:          model.SentinelUnknown,
				CleaningOperation: model.OpNullFill,
				CleaningReason:    model.ReasonMissingValue,
				CleanedAt:         cleanedAt,
			})
		}
	}

	res.Post = model.TakeNullSnapshot(table)
	r.export(SnapshotAfterFill, res.Post)

	r.logger.Info("Null resolution finished",
		zap.Int("filled", res.Filled),
		zap.Any("absentByColumn", nonZero(res.Pre.ColumnCounts())))
	return res, nil
}

func (r *NullResolver) export(name string, snap model.NullSnapshot) {
	if err := r.sink.ExportSnapshot(name, snap); err != nil {
		r.logger.Warn("Failed to export null snapshot",
			zap.String("snapshot", name),
			zap.Error(fmt.Errorf("%w: %v", model.ErrDiagnostic, err)))
	}
}

// rowIdentifier names a row by its order number when the table has one
func rowIdentifier(table *model.Table, row int) string {
	if v, ok := table.Cell(row, model.ColOrderNumber); ok && v != nil {
		return fmt.Sprintf("%v", v)
	}
	return fmt.Sprintf("row:%d", row)
}

func nonZero(counts map[string]int) map[string]int {
	out := make(map[string]int)
	for k, v := range counts {
		if v > 0 {
			out[k] = v
		}
	}
	return out
}
