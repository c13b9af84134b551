package pipeline

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/David-Botos/sales-clean/pkg/cleaner"
	"github.com/David-Botos/sales-clean/pkg/model"
	"github.com/David-Botos/sales-clean/pkg/sink"
)

func salesRow(orderNumber int64, orderDate any) []any {
	return []any{
		orderNumber, int64(30), 95.7, int64(2), 2871.0, orderDate, "Shipped", int64(1),
		"Motorcycles", int64(95), "Land of Toys Inc.", "2125557818", "897 Long Airport Avenue", nil,
		"NY", "10022", "USA", nil, "Yu", "Kwai", "Small",
	}
}

func newSalesTable(t *testing.T, rows ...[]any) *model.Table {
	t.Helper()
	table, err := model.NewTableFromRows(model.SalesInputSchema.Names(), rows)
	require.NoError(t, err)
	return table
}

type memorySink struct {
	written *model.Table
	err     error
}

func (s *memorySink) WriteTable(table *model.Table) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.written = table.Clone()
	return "memory", nil
}

type memoryRecorder struct {
	ops []model.CleaningOperation
	err error
}

func (r *memoryRecorder) RecordCleaningOperations(ops []model.CleaningOperation) error {
	r.ops = append(r.ops, ops...)
	return r.err
}

func newPipeline(t *testing.T, s Sink) *Pipeline {
	t.Helper()
	logger := zaptest.NewLogger(t)
	dc, err := cleaner.NewDataCleaner(logger, nil, &bytes.Buffer{}, cleaner.DefaultConfig())
	require.NoError(t, err)
	p, err := New(logger, dc, s)
	require.NoError(t, err)
	return p
}

func TestRunMinimalRowWritesCleanedSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifacts", "transformed_data.csv")
	csvSink, err := sink.NewCSVSink(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	p := newPipeline(t, csvSink)

	out, result, err := p.Run(newSalesTable(t, salesRow(10107, "2/24/2003 0:00")))
	require.NoError(t, err)

	assert.Equal(t, model.OutputColumns, out.ColumnNames())
	assert.Equal(t, 1, out.Len())
	year, _ := out.Cell(0, model.ColYear)
	month, _ := out.Cell(0, model.ColMonth)
	assert.Equal(t, int64(2003), year)
	assert.Equal(t, int64(2), month)

	assert.Equal(t, path, result.ArtifactPath)
	assert.Equal(t, 1, result.RowsIn)
	assert.Equal(t, 1, result.RowsOut)
	assert.NotEmpty(t, result.RunID)
	for _, stage := range []string{model.StageAudit, model.StageResolveNulls, model.StageNormalize,
		model.StageAugment, model.StageVerify, model.StageRecord, model.StagePersist} {
		_, ok := result.StageDuration(stage)
		assert.True(t, ok, stage)
	}

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, model.OutputColumns, records[0])
	assert.Equal(t, "2003-02-24 00:00:00", records[1][4])
}

func TestRunDoesNotMutateInput(t *testing.T) {
	p := newPipeline(t, &memorySink{})
	input := newSalesTable(t,
		salesRow(10107, "2/24/2003 0:00"),
		salesRow(10121, nil),
	)
	before := input.Clone()

	_, _, err := p.Run(input)
	require.NoError(t, err)

	assert.Equal(t, before.ColumnNames(), input.ColumnNames())
	for r := 0; r < input.Len(); r++ {
		assert.Equal(t, before.Row(r), input.Row(r))
	}
}

func TestRunKeepsRowCount(t *testing.T) {
	s := &memorySink{}
	p := newPipeline(t, s)
	input := newSalesTable(t,
		salesRow(1, "1/6/2003 0:00"),
		salesRow(1, "1/6/2003 0:00"),
		salesRow(2, "bogus"),
		salesRow(3, nil),
	)

	out, result, err := p.Run(input)
	require.NoError(t, err)
	assert.Equal(t, 4, out.Len())
	assert.Equal(t, 4, s.written.Len())
	assert.Equal(t, 1, result.DuplicatedRows)
	assert.Equal(t, 2, result.UnparsableDates)

	years, _ := out.Column(model.ColYear)
	assert.Equal(t, []any{int64(2003), int64(2003), nil, nil}, years.Values)
	assert.Contains(t, result.Report(), "Unparsable Dates:        2 (50.0%)")
}

func TestRunRecordsOperationsWithRunID(t *testing.T) {
	rec := &memoryRecorder{}
	p := newPipeline(t, &memorySink{}).WithRecorder(rec)

	_, result, err := p.Run(newSalesTable(t, salesRow(10107, "nope")))
	require.NoError(t, err)

	require.NotEmpty(t, rec.ops)
	assert.Equal(t, result.CleaningOperations, len(rec.ops))
	for _, op := range rec.ops {
		assert.Equal(t, result.RunID, op.RunID)
		assert.Equal(t, "sales", op.TableName)
	}
	last := rec.ops[len(rec.ops)-1]
	assert.Equal(t, model.OpDateCoercion, last.CleaningOperation)
}

func TestRunRecorderFailureAbortsBeforePersist(t *testing.T) {
	s := &memorySink{}
	p := newPipeline(t, s).WithRecorder(&memoryRecorder{err: errors.New("connection refused")})

	out, result, err := p.Run(newSalesTable(t, salesRow(1, nil)))
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Nil(t, result)
	assert.Nil(t, s.written)

	var te *model.TransformationError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, model.StageRecord, te.Stage)
}

func TestRunSinkFailure(t *testing.T) {
	p := newPipeline(t, &memorySink{err: errors.New("read-only file system")})

	out, _, err := p.Run(newSalesTable(t, salesRow(1, "1/6/2003 0:00")))
	require.Error(t, err)
	assert.Nil(t, out)

	var te *model.TransformationError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, model.StagePersist, te.Stage)
	assert.EqualError(t, te.Unwrap(), "read-only file system")
}

func TestRunSchemaErrorPropagatesUnwrapped(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	dc, err := cleaner.NewDataCleaner(zap.New(core), nil, nil, cleaner.DefaultConfig())
	require.NoError(t, err)
	s := &memorySink{}
	p, err := New(zap.New(core), dc, s)
	require.NoError(t, err)

	input := newSalesTable(t, salesRow(1, "1/6/2003 0:00"))
	require.NoError(t, input.DropColumns(model.ColMSRP))

	_, _, err = p.Run(input)
	require.Error(t, err)

	var se *model.SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, model.ColMSRP, se.Column)
	assert.False(t, errors.Is(err, model.ErrTransformation))
	assert.Nil(t, s.written)

	entries := logs.FilterMessage("Data transformation failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Schema", entries[0].ContextMap()["category"])
}

func TestNewValidation(t *testing.T) {
	logger := zaptest.NewLogger(t)
	dc, err := cleaner.NewDataCleaner(logger, nil, nil, cleaner.DefaultConfig())
	require.NoError(t, err)

	_, err = New(nil, dc, &memorySink{})
	assert.Error(t, err)
	_, err = New(logger, nil, &memorySink{})
	assert.Error(t, err)
	_, err = New(logger, dc, nil)
	assert.Error(t, err)
}
