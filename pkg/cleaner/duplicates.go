// pkg/cleaner/duplicates.go
package cleaner

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/sales-clean/pkg/converter"
	"github.com/David-Botos/sales-clean/pkg/model"
)

// DuplicateReport summarizes the duplicate audit of one table
type DuplicateReport struct {
	KeyColumn      string
	DuplicatedRows int // rows identical to an earlier row across all columns
	KeyDuplicates  int // rows whose key value occurs more than once
	DuplicateKeys  int // distinct key values that occur more than once
	RowsShown      int
}

// DuplicateAuditor reports duplicated rows without changing the table
type DuplicateAuditor struct {
	logger *zap.Logger
	out    io.Writer
	conv   *converter.TypeConverter
}

// NewDuplicateAuditor creates an auditor that prints its report to out
func NewDuplicateAuditor(logger *zap.Logger, out io.Writer) *DuplicateAuditor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &DuplicateAuditor{
		logger: logger,
		out:    out,
		conv:   converter.NewTypeConverter(logger),
	}
}

// Audit returns every row whose keyColumn value occurs more than once, sorted by
// key (stable), and prints up to maxReportRows of them
func (a *DuplicateAuditor) Audit(table *model.Table, keyColumn string, maxReportRows int) (*model.Table, DuplicateReport, error) {
	a.logger.Info("Duplicate audit started", zap.String("column", keyColumn))

	report := DuplicateReport{KeyColumn: keyColumn}
	if table == nil {
		return nil, report, model.NewTransformationError(model.StageAudit, fmt.Errorf("table cannot be nil"))
	}
	key, ok := table.Column(keyColumn)
	if !ok {
		return nil, report, model.MissingColumn(model.StageAudit, keyColumn)
	}

	seenRows := make(map[string]bool, table.Len())
	keyCounts := make(map[string]int, table.Len())
	for r := 0; r < table.Len(); r++ {
		fp := rowFingerprint(table.Row(r))
		if seenRows[fp] {
			report.DuplicatedRows++
		}
		seenRows[fp] = true
		keyCounts[valueFingerprint(key.Values[r])]++
	}

	var dupRows []int
	for r := 0; r < table.Len(); r++ {
		if keyCounts[valueFingerprint(key.Values[r])] > 1 {
			dupRows = append(dupRows, r)
		}
	}
	for _, n := range keyCounts {
		if n > 1 {
			report.DuplicateKeys++
		}
	}
	report.KeyDuplicates = len(dupRows)

	sort.SliceStable(dupRows, func(i, j int) bool {
		return CompareValues(key.Values[dupRows[i]], key.Values[dupRows[j]]) < 0
	})
	subset := table.Subset(dupRows)

	if err := a.writeReport(subset, &report, maxReportRows); err != nil {
		return nil, report, model.NewTransformationError(model.StageAudit, fmt.Errorf("failed to write duplicate report: %w", err))
	}

	a.logger.Info("Duplicate audit finished",
		zap.String("column", keyColumn),
		zap.Int("duplicatedRows", report.DuplicatedRows),
		zap.Int("keyDuplicates", report.KeyDuplicates),
		zap.Int("duplicateKeys", report.DuplicateKeys))

	return subset, report, nil
}

func (a *DuplicateAuditor) writeReport(subset *model.Table, report *DuplicateReport, maxReportRows int) error {
	if report.DuplicatedRows == 0 {
		if _, err := fmt.Fprintln(a.out, "There are no duplicated rows."); err != nil {
			return err
		}
	} else if _, err := fmt.Fprintf(a.out, "Total duplicated rows in the DataFrame: %d\n", report.DuplicatedRows); err != nil {
		return err
	}

	if subset.Len() == 0 {
		_, err := fmt.Fprintf(a.out, "There are no duplicates by column '%s'.\n", report.KeyColumn)
		return err
	}
	if maxReportRows <= 0 {
		return nil
	}

	if _, err := fmt.Fprintf(a.out, "Top %d duplicates by column '%s':\n", maxReportRows, report.KeyColumn); err != nil {
		return err
	}

	shown := subset.Len()
	if shown > maxReportRows {
		shown = maxReportRows
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(subset.ColumnNames(), "\t"))
	for r := 0; r < shown; r++ {
		row := subset.Row(r)
		cells := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				cells[i] = "NaN"
				continue
			}
			cells[i] = a.conv.FormatCell(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	report.RowsShown = shown
	return tw.Flush()
}

// CompareValues orders cell values: numbers numerically, times
// chronologically, everything else by text, absent cells last. Numbers sort
// before times, times before text.
func CompareValues(a, b any) int {
	ra, rb := valueRank(a), valueRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}

	switch ra {
	case rankNumber:
		fa, _ := converter.ToFloat(a)
		fb, _ := converter.ToFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case rankTime:
		return a.(time.Time).Compare(b.(time.Time))
	case rankText:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	default:
		return 0
	}
}

const (
	rankNumber = iota
	rankTime
	rankText
	rankAbsent
)

func valueRank(v any) int {
	switch v.(type) {
	case nil:
		return rankAbsent
	case int64, float64:
		if _, ok := converter.ToFloat(v); !ok {
			return rankAbsent
		}
		return rankNumber
	case time.Time:
		return rankTime
	default:
		return rankText
	}
}

// valueFingerprint identifies a cell value by type and content
func valueFingerprint(v any) string {
	switch x := v.(type) {
	case nil:
		return "n:"
	case time.Time:
		return "t:" + x.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%T:%v", v, v)
	}
}

func rowFingerprint(row []any) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = valueFingerprint(v)
	}
	return strings.Join(parts, "\x1f")
}
