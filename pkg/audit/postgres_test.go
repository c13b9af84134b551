package audit

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/David-Botos/sales-clean/pkg/model"
)

const insertPattern = `INSERT INTO "public"\.cleaning_operations`

func newRecorder(t *testing.T) (*PostgresRecorder, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	r, err := NewPostgresRecorder(sqlx.NewDb(db, "postgres"), "", zaptest.NewLogger(t))
	require.NoError(t, err)
	return r, mock
}

func sampleOperations() []model.CleaningOperation {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return []model.CleaningOperation{
		{
			RunID: "6f1c1a2e-8f0e-4c1e-9d55-0d3c2f1b7a10", TableName: "sales", ColumnName: model.ColState,
			RowIndex: 0, RowIdentifier: "10107", NewValue: model.SentinelUnknown,
			CleaningOperation: model.OpNullFill, CleaningReason: model.ReasonMissingValue, CleanedAt: at,
		},
		{
			RunID: "6f1c1a2e-8f0e-4c1e-9d55-0d3c2f1b7a10", TableName: "sales", ColumnName: model.ColOrderDate,
			RowIndex: 1, RowIdentifier: "10121", OriginalValue: "13/45/2003 0:00",
			CleaningOperation: model.OpDateCoercion, CleaningReason: model.ReasonUnparsableDate, CleanedAt: at,
		},
	}
}

func TestRecordCleaningOperations(t *testing.T) {
	r, mock := newRecorder(t)
	ops := sampleOperations()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(insertPattern)
	prep.ExpectExec().
		WithArgs(ops[0].RunID, "sales", model.ColState, 0, "10107", sql.NullString{}, model.SentinelUnknown,
			model.OpNullFill, model.ReasonMissingValue, ops[0].CleanedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().
		WithArgs(ops[1].RunID, "sales", model.ColOrderDate, 1, "10121", "13/45/2003 0:00", "",
			model.OpDateCoercion, model.ReasonUnparsableDate, ops[1].CleanedAt).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, r.RecordCleaningOperations(ops))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordCleaningOperationsRollsBack(t *testing.T) {
	r, mock := newRecorder(t)

	mock.ExpectBegin()
	mock.ExpectPrepare(insertPattern).
		ExpectExec().
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := r.RecordCleaningOperations(sampleOperations())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordNothing(t *testing.T) {
	r, mock := newRecorder(t)
	require.NoError(t, r.RecordCleaningOperations(nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureTable(t *testing.T) {
	r, mock := newRecorder(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "public"\.cleaning_operations`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, r.EnsureTable(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPostgresRecorderValidation(t *testing.T) {
	_, err := NewPostgresRecorder(nil, "public", zaptest.NewLogger(t))
	assert.Error(t, err)

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	_, err = NewPostgresRecorder(sqlx.NewDb(db, "postgres"), "public", nil)
	assert.Error(t, err)
}
