// pkg/cleaner/normalize.go
package cleaner

import (
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/sales-clean/pkg/model"
)

// OrderDateLayout is the MM/DD/YYYY HH:MM layout of ORDERDATE in the source
// data. Single-digit month, day and hour are accepted.
const OrderDateLayout = "1/2/2006 15:04"

// NormalizeReport is the outcome of one normalization
type NormalizeReport struct {
	UnparsableDates int
	Renamed         map[string]string
	Dropped         []string
	Operations      []model.CleaningOperation
}

// FieldNormalizer parses ORDERDATE and reshapes the column set to the cleaned schema
type FieldNormalizer struct {
	logger    *zap.Logger
	out       io.Writer
	tableName string
	now       func() time.Time
}

// NewFieldNormalizer creates a normalizer that prints its unparsable-date count to out
func NewFieldNormalizer(logger *zap.Logger, out io.Writer, tableName string) *FieldNormalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &FieldNormalizer{
		logger:    logger,
		out:       out,
		tableName: tableName,
		now:       time.Now,
	}
}

// ParseOrderDate parses one ORDERDATE cell. Time values pass through; text must
// match OrderDateLayout exactly and name a real calendar date.
func ParseOrderDate(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		t, err := time.Parse(OrderDateLayout, strings.TrimSpace(x))
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	default:
		return time.Time{}, false
	}
}

// Normalize validates the column set, then parses ORDERDATE, renames and drops
// columns in place. On a SchemaError the table is untouched.
func (n *FieldNormalizer) Normalize(table *model.Table) (NormalizeReport, error) {
	var report NormalizeReport
	if table == nil {
		return report, model.NewTransformationError(model.StageNormalize, fmt.Errorf("table cannot be nil"))
	}
	if err := n.validate(table); err != nil {
		return report, err
	}

	dateCol, _ := table.Column(model.ColOrderDate)
	dateIdx := indexOf(table.ColumnNames(), model.ColOrderDate)
	cleanedAt := n.now()
	for row, v := range dateCol.Values {
		parsed, ok := ParseOrderDate(v)
		var next any
		if ok {
			next = parsed
		} else {
			report.UnparsableDates++
			if v != nil {
				report.Operations = append(report.Operations, model.CleaningOperation{
					TableName:         n.tableName,
					ColumnName:        model.ColOrderDate,
					RowIndex:          row,
					RowIdentifier:     rowIdentifier(table, row),
					OriginalValue:     v,
					CleaningOperation: model.OpDateCoercion,
					CleaningReason:    model.ReasonUnparsableDate,
					CleanedAt:         cleanedAt,
				})
			}
		}
		if err := table.SetCell(row, dateIdx, next); err != nil {
			return report, model.NewTransformationError(model.StageNormalize,
				fmt.Errorf("failed to set ORDERDATE row %d: %w", row, err))
		}
	}

	if _, err := fmt.Fprintf(n.out, "Unparsable ORDERDATE entries: %d\n", report.UnparsableDates); err != nil {
		return report, model.NewTransformationError(model.StageNormalize, err)
	}

	report.Renamed = make(map[string]string, len(model.RenameMapping))
	for _, m := range model.RenameMapping {
		report.Renamed[m.From] = m.To
	}
	if err := table.RenameColumns(report.Renamed); err != nil {
		return report, model.NewTransformationError(model.StageNormalize, err)
	}
	if err := table.DropColumns(model.DroppedColumns...); err != nil {
		return report, model.NewTransformationError(model.StageNormalize, err)
	}
	report.Dropped = append([]string(nil), model.DroppedColumns...)

	n.logger.Info("Normalization finished",
		zap.Int("unparsableDates", report.UnparsableDates),
		zap.Strings("columns", table.ColumnNames()))
	return report, nil
}

// validate checks every column the normalization will touch before anything changes
func (n *FieldNormalizer) validate(table *model.Table) error {
	if !table.HasColumn(model.ColOrderDate) {
		return model.MissingColumn(model.StageNormalize, model.ColOrderDate)
	}

	renamed := make(map[string]bool, len(model.RenameMapping))
	for _, m := range model.RenameMapping {
		if !table.HasColumn(m.From) {
			return model.MissingColumn(model.StageNormalize, m.From)
		}
		if table.HasColumn(m.To) {
			return &model.SchemaError{Op: model.StageNormalize, Column: m.To, Reason: "rename target already exists"}
		}
		renamed[m.To] = true
	}

	for _, name := range model.DroppedColumns {
		if !table.HasColumn(name) && !renamed[name] {
			return &model.SchemaError{Op: model.StageNormalize, Column: name, Reason: "drop target not found"}
		}
	}
	return nil
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
