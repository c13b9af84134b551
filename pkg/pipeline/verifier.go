// pkg/pipeline/verifier.go
package pipeline

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/sales-clean/pkg/model"
)

// StructureDiscrepancy represents a difference between the expected and
// actual output column sets
type StructureDiscrepancy struct {
	ColumnName string
	IsMissing  bool // expected but absent
	IsExtra    bool // present but not expected
}

// RowDiscrepancy represents a derived value that disagrees with its source
type RowDiscrepancy struct {
	Row         int
	ColumnName  string
	SourceValue any
	TargetValue any
	Discrepancy string
}

// VerificationReport contains the results of a cleaned table verification
type VerificationReport struct {
	VerificationTime       time.Time
	RowCountMatches        bool
	SourceRowCount         int
	TargetRowCount         int
	StructureMatches       bool
	StructureDiscrepancies []StructureDiscrepancy
	FeaturesVerified       bool
	RowDiscrepancies       []RowDiscrepancy
	Duration               time.Duration
}

// OK reports whether every check passed
func (r *VerificationReport) OK() bool {
	return r.RowCountMatches && r.StructureMatches && r.FeaturesVerified
}

// Verifier checks a cleaned table against the table it was produced from
type Verifier struct {
	logger        *zap.Logger
	maxDiscrepant int
}

// NewVerifier creates a new verifier
func NewVerifier(logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{
		logger:        logger,
		maxDiscrepant: 10,
	}
}

// ExpectedColumns returns the cleaned column set for a table with the given
// input columns: renames applied in place, drops removed, YEAR and MONTH appended
func ExpectedColumns(input []string) []string {
	renames := make(map[string]string, len(model.RenameMapping))
	for _, m := range model.RenameMapping {
		renames[m.From] = m.To
	}
	dropped := make(map[string]bool, len(model.DroppedColumns))
	for _, name := range model.DroppedColumns {
		dropped[name] = true
	}

	out := make([]string, 0, len(input)+2)
	for _, name := range input {
		if to, ok := renames[name]; ok {
			name = to
		}
		if !dropped[name] {
			out = append(out, name)
		}
	}
	return append(out, model.ColYear, model.ColMonth)
}

// Verify compares the cleaned table with the input column names and row count
func (v *Verifier) Verify(inputColumns []string, inputRows int, cleaned *model.Table) *VerificationReport {
	start := time.Now()
	report := &VerificationReport{
		VerificationTime: start,
		SourceRowCount:   inputRows,
		TargetRowCount:   cleaned.Len(),
	}

	report.RowCountMatches = report.SourceRowCount == report.TargetRowCount
	if !report.RowCountMatches {
		v.logger.Warn("Row count mismatch",
			zap.Int("sourceCount", report.SourceRowCount),
			zap.Int("targetCount", report.TargetRowCount))
	}

	report.StructureDiscrepancies = v.verifyStructure(ExpectedColumns(inputColumns), cleaned.ColumnNames())
	report.StructureMatches = len(report.StructureDiscrepancies) == 0

	report.RowDiscrepancies = v.verifyFeatures(cleaned)
	report.FeaturesVerified = len(report.RowDiscrepancies) == 0

	report.Duration = time.Since(start)
	v.logger.Info("Verification finished",
		zap.Bool("rowCountMatches", report.RowCountMatches),
		zap.Bool("structureMatches", report.StructureMatches),
		zap.Bool("featuresVerified", report.FeaturesVerified),
		zap.Duration("duration", report.Duration))
	return report
}

func (v *Verifier) verifyStructure(expected, actual []string) []StructureDiscrepancy {
	var out []StructureDiscrepancy
	have := make(map[string]bool, len(actual))
	for _, name := range actual {
		have[name] = true
	}
	want := make(map[string]bool, len(expected))
	for _, name := range expected {
		want[name] = true
		if !have[name] {
			out = append(out, StructureDiscrepancy{ColumnName: name, IsMissing: true})
		}
	}
	for _, name := range actual {
		if !want[name] {
			out = append(out, StructureDiscrepancy{ColumnName: name, IsExtra: true})
		}
	}
	if len(out) == 0 && fmt.Sprint(expected) != fmt.Sprint(actual) {
		out = append(out, StructureDiscrepancy{ColumnName: "*column order*"})
	}
	return out
}

// verifyFeatures checks YEAR and MONTH against ORDERDATE row by row
func (v *Verifier) verifyFeatures(t *model.Table) []RowDiscrepancy {
	dates, okD := t.Column(model.ColOrderDate)
	years, okY := t.Column(model.ColYear)
	months, okM := t.Column(model.ColMonth)
	if !okD || !okY || !okM {
		return []RowDiscrepancy{{Row: -1, Discrepancy: "calendar columns missing"}}
	}

	var out []RowDiscrepancy
	add := func(d RowDiscrepancy) bool {
		out = append(out, d)
		return len(out) >= v.maxDiscrepant
	}
	for row := 0; row < t.Len(); row++ {
		var wantYear, wantMonth any
		if d, ok := dates.Values[row].(time.Time); ok {
			wantYear, wantMonth = int64(d.Year()), int64(d.Month())
		}
		if years.Values[row] != wantYear {
			if add(RowDiscrepancy{Row: row, ColumnName: model.ColYear, SourceValue: dates.Values[row],
				TargetValue: years.Values[row], Discrepancy: "year does not match order date"}) {
				break
			}
		}
		if months.Values[row] != wantMonth {
			if add(RowDiscrepancy{Row: row, ColumnName: model.ColMonth, SourceValue: dates.Values[row],
				TargetValue: months.Values[row], Discrepancy: "month does not match order date"}) {
				break
			}
		}
	}
	return out
}
