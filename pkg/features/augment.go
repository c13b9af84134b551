// pkg/features/augment.go
package features

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/sales-clean/pkg/model"
)

// AugmentReport describes the columns added to a table
type AugmentReport struct {
	Added       []string
	MissingDate int // rows whose ORDERDATE was absent, YEAR and MONTH left absent
}

// Augmenter derives calendar columns from the parsed ORDERDATE
type Augmenter struct {
	logger *zap.Logger
}

// NewAugmenter creates an Augmenter
func NewAugmenter(logger *zap.Logger) *Augmenter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Augmenter{logger: logger}
}

// Augment appends YEAR and MONTH (int64) computed from ORDERDATE
func (a *Augmenter) Augment(table *model.Table) (AugmentReport, error) {
	var report AugmentReport
	if table == nil {
		return report, model.NewTransformationError(model.StageAugment, errors.New("table cannot be nil"))
	}

	dates, ok := table.Column(model.ColOrderDate)
	if !ok {
		return report, model.MissingColumn(model.StageAugment, model.ColOrderDate)
	}
	for _, name := range []string{model.ColYear, model.ColMonth} {
		if table.HasColumn(name) {
			return report, &model.SchemaError{Op: model.StageAugment, Column: name, Reason: "column already exists"}
		}
	}

	years := make([]any, table.Len())
	months := make([]any, table.Len())
	for row, v := range dates.Values {
		switch d := v.(type) {
		case nil:
			report.MissingDate++
		case time.Time:
			years[row] = int64(d.Year())
			months[row] = int64(d.Month())
		default:
			return report, model.NewTransformationError(model.StageAugment,
				fmt.Errorf("ORDERDATE row %d holds %T, expected a parsed date", row, v))
		}
	}

	if err := table.AddColumn(model.ColYear, years); err != nil {
		return report, model.NewTransformationError(model.StageAugment, err)
	}
	if err := table.AddColumn(model.ColMonth, months); err != nil {
		return report, model.NewTransformationError(model.StageAugment, err)
	}
	report.Added = []string{model.ColYear, model.ColMonth}

	a.logger.Info("Calendar features added",
		zap.Strings("columns", report.Added),
		zap.Int("missingDate", report.MissingDate))
	return report, nil
}
