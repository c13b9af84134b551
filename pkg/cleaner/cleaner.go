// pkg/cleaner/cleaner.go
package cleaner

import (
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/sales-clean/pkg/model"
)

// DiagnosticSink receives the null snapshots taken around the fill
type DiagnosticSink interface {
	ExportSnapshot(name string, snap model.NullSnapshot) error
}

// NopDiagnosticSink discards snapshots
type NopDiagnosticSink struct{}

// ExportSnapshot implements DiagnosticSink
func (NopDiagnosticSink) ExportSnapshot(string, model.NullSnapshot) error { return nil }

// Recorder persists the cleaning operations of a run
type Recorder interface {
	RecordCleaningOperations(operations []model.CleaningOperation) error
}

// NopRecorder drops every operation
type NopRecorder struct{}

// RecordCleaningOperations implements Recorder
func (NopRecorder) RecordCleaningOperations([]model.CleaningOperation) error { return nil }

// Config holds the settings of the cleaning stages
type Config struct {
	TableName     string
	DuplicateKey  string
	MaxReportRows int
}

// DefaultConfig matches the sales dataset
func DefaultConfig() Config {
	return Config{
		TableName:     model.SalesInputSchema.Table,
		DuplicateKey:  model.ColOrderNumber,
		MaxReportRows: 20,
	}
}

// CleanReport collects the results of every cleaning stage
type CleanReport struct {
	Duplicates DuplicateReport
	Nulls      NullResolution
	Normalize  NormalizeReport
	Timings    map[string]time.Duration
}

// Operations returns every cell change of the run in stage order
func (r CleanReport) Operations() []model.CleaningOperation {
	ops := make([]model.CleaningOperation, 0, len(r.Nulls.Operations)+len(r.Normalize.Operations))
	ops = append(ops, r.Nulls.Operations...)
	return append(ops, r.Normalize.Operations...)
}

// DataCleaner runs the duplicate audit, the null fill and the normalization in order
type DataCleaner struct {
	logger     *zap.Logger
	config     Config
	auditor    *DuplicateAuditor
	resolver   *NullResolver
	normalizer *FieldNormalizer
}

// NewDataCleaner creates a new DataCleaner. Reports are printed to out.
func NewDataCleaner(logger *zap.Logger, sink DiagnosticSink, out io.Writer, config Config) (*DataCleaner, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if config.DuplicateKey == "" {
		return nil, errors.New("duplicate key column cannot be empty")
	}

	return &DataCleaner{
		logger:     logger,
		config:     config,
		auditor:    NewDuplicateAuditor(logger.Named("duplicates"), out),
		resolver:   NewNullResolver(logger.Named("nulls"), sink, config.TableName),
		normalizer: NewFieldNormalizer(logger.Named("normalize"), out, config.TableName),
	}, nil
}

// Clean mutates table in place. The first failing stage aborts the run and its
// error is returned unchanged.
func (c *DataCleaner) Clean(table *model.Table) (CleanReport, error) {
	report := CleanReport{Timings: make(map[string]time.Duration, 3)}

	start := time.Now()
	_, dup, err := c.auditor.Audit(table, c.config.DuplicateKey, c.config.MaxReportRows)
	report.Timings[model.StageAudit] = time.Since(start)
	report.Duplicates = dup
	if err != nil {
		return report, err
	}

	start = time.Now()
	nulls, err := c.resolver.Resolve(table)
	report.Timings[model.StageResolveNulls] = time.Since(start)
	report.Nulls = nulls
	if err != nil {
		return report, err
	}

	start = time.Now()
	norm, err := c.normalizer.Normalize(table)
	report.Timings[model.StageNormalize] = time.Since(start)
	report.Normalize = norm
	if err != nil {
		return report, err
	}

	c.logger.Info("Cleaning finished",
		zap.Int("rowCount", table.Len()),
		zap.Int("duplicatedRows", dup.DuplicatedRows),
		zap.Int("nullsFilled", nulls.Filled),
		zap.Int("unparsableDates", norm.UnparsableDates))
	return report, nil
}
