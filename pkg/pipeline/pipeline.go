// pkg/pipeline/pipeline.go
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/David-Botos/sales-clean/pkg/cleaner"
	"github.com/David-Botos/sales-clean/pkg/features"
	"github.com/David-Botos/sales-clean/pkg/model"
)

// Sink persists a cleaned table and returns the location it was written to
type Sink interface {
	WriteTable(table *model.Table) (string, error)
}

// Pipeline runs the cleaning stages, augmentation, verification and
// persistence over one table
type Pipeline struct {
	logger    *zap.Logger
	cleaner   *cleaner.DataCleaner
	augmenter *features.Augmenter
	verifier  *Verifier
	recorder  cleaner.Recorder
	sink      Sink
	tableName string
	newRunID  func() string
}

// New creates a Pipeline. Cleaning operations are discarded unless a recorder
// is set with WithRecorder.
func New(logger *zap.Logger, dc *cleaner.DataCleaner, sink Sink) (*Pipeline, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if dc == nil {
		return nil, errors.New("data cleaner cannot be nil")
	}
	if sink == nil {
		return nil, errors.New("sink cannot be nil")
	}

	return &Pipeline{
		logger:    logger,
		cleaner:   dc,
		augmenter: features.NewAugmenter(logger.Named("features")),
		verifier:  NewVerifier(logger.Named("verifier")),
		recorder:  cleaner.NopRecorder{},
		sink:      sink,
		tableName: model.SalesInputSchema.Table,
		newRunID:  func() string { return uuid.New().String() },
	}, nil
}

// WithRecorder sets the recorder that receives the run's cleaning operations
func (p *Pipeline) WithRecorder(r cleaner.Recorder) *Pipeline {
	if r != nil {
		p.recorder = r
	}
	return p
}

// WithTableName sets the table name stamped on results and cleaning operations
func (p *Pipeline) WithTableName(name string) *Pipeline {
	p.tableName = name
	return p
}

// Run cleans a copy of table and persists it. The caller's table is never
// modified. The first failing stage aborts the run and nothing is returned
// but the error.
func (p *Pipeline) Run(table *model.Table) (*model.Table, *RunResult, error) {
	if table == nil {
		return nil, nil, model.NewTransformationError(model.StageAudit, errors.New("table cannot be nil"))
	}

	result := NewRunResult(p.newRunID(), p.tableName, table.Len())
	logger := p.logger.With(zap.String("runID", result.RunID))
	logger.Info("Data transformation started", zap.Int("rowCount", table.Len()))

	inputColumns := table.ColumnNames()
	work := table.Clone()

	clean, err := p.cleaner.Clean(work)
	for _, stage := range []string{model.StageAudit, model.StageResolveNulls, model.StageNormalize} {
		if d, ok := clean.Timings[stage]; ok {
			result.AddStage(stage, d)
		}
	}
	if err != nil {
		return nil, nil, p.fail(logger, err)
	}
	result.DuplicatedRows = clean.Duplicates.DuplicatedRows
	result.KeyDuplicates = clean.Duplicates.KeyDuplicates
	result.NullsFilled = clean.Nulls.Filled
	result.UnparsableDates = clean.Normalize.UnparsableDates

	start := time.Now()
	_, err = p.augmenter.Augment(work)
	result.AddStage(model.StageAugment, time.Since(start))
	if err != nil {
		return nil, nil, p.fail(logger, err)
	}

	start = time.Now()
	verification := p.verifier.Verify(inputColumns, table.Len(), work)
	result.AddStage(model.StageVerify, time.Since(start))
	if !verification.OK() {
		return nil, nil, p.fail(logger, model.NewTransformationError(model.StageVerify, describeVerification(verification)))
	}

	ops := clean.Operations()
	for i := range ops {
		ops[i].RunID = result.RunID
		ops[i].TableName = p.tableName
	}
	start = time.Now()
	err = p.recorder.RecordCleaningOperations(ops)
	result.AddStage(model.StageRecord, time.Since(start))
	if err != nil {
		return nil, nil, p.fail(logger, model.NewTransformationError(model.StageRecord, err))
	}
	result.CleaningOperations = len(ops)

	start = time.Now()
	path, err := p.sink.WriteTable(work)
	result.AddStage(model.StagePersist, time.Since(start))
	if err != nil {
		return nil, nil, p.fail(logger, model.NewTransformationError(model.StagePersist, err))
	}

	result.ArtifactPath = path
	result.RowsOut = work.Len()
	result.ColumnsOut = work.ColumnNames()
	if clean.Nulls.Filled > 0 {
		result.AddWarning(fmt.Sprintf("%d absent cells filled with %q", clean.Nulls.Filled, model.SentinelUnknown))
	}
	if result.UnparsableDates > 0 {
		result.AddWarning(fmt.Sprintf("%d ORDERDATE values could not be parsed", result.UnparsableDates))
	}
	result.Complete()

	logger.Info("Data transformation finished", result.Fields()...)
	return work, result, nil
}

// fail logs err with its category and returns it unchanged
func (p *Pipeline) fail(logger *zap.Logger, err error) error {
	logger.Error("Data transformation failed",
		zap.String("category", model.CategorizeError(err).String()),
		zap.Error(err))
	return err
}

func describeVerification(r *VerificationReport) error {
	switch {
	case !r.RowCountMatches:
		return fmt.Errorf("row count changed from %d to %d", r.SourceRowCount, r.TargetRowCount)
	case !r.StructureMatches:
		return fmt.Errorf("output columns differ from expected: %d discrepancies, first %q",
			len(r.StructureDiscrepancies), r.StructureDiscrepancies[0].ColumnName)
	default:
		d := r.RowDiscrepancies[0]
		return fmt.Errorf("row %d column %s: %s", d.Row, d.ColumnName, d.Discrepancy)
	}
}
