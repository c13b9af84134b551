// pkg/audit/postgres.go
package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/David-Botos/sales-clean/pkg/converter"
	"github.com/David-Botos/sales-clean/pkg/model"
)

// TableName is the audit table holding one row per cleaned cell
const TableName = "cleaning_operations"

// operationRow is the database shape of a model.CleaningOperation
type operationRow struct {
	RunID             string         `db:"run_id"`
	TableName         string         `db:"table_name"`
	ColumnName        string         `db:"column_name"`
	RowIndex          int            `db:"row_index"`
	RowIdentifier     string         `db:"row_identifier"`
	OriginalValue     sql.NullString `db:"original_value"`
	NewValue          string         `db:"new_value"`
	CleaningOperation string         `db:"cleaning_operation"`
	CleaningReason    string         `db:"cleaning_reason"`
	CleanedAt         time.Time      `db:"cleaned_at"`
}

// PostgresRecorder records cleaning operations in a PostgreSQL audit table
type PostgresRecorder struct {
	db      *sqlx.DB
	logger  *zap.Logger
	conv    *converter.TypeConverter
	table   string
	timeout time.Duration
}

// NewPostgresRecorder creates a recorder writing to schema.cleaning_operations
func NewPostgresRecorder(db *sqlx.DB, schema string, logger *zap.Logger) (*PostgresRecorder, error) {
	if db == nil {
		return nil, errors.New("database connection cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if schema == "" {
		schema = "public"
	}

	return &PostgresRecorder{
		db:      db,
		logger:  logger,
		conv:    converter.NewTypeConverter(logger),
		table:   pq.QuoteIdentifier(schema) + "." + TableName,
		timeout: 30 * time.Second,
	}, nil
}

// WithTimeout sets the timeout bounding one batch of inserts
func (r *PostgresRecorder) WithTimeout(timeout time.Duration) *PostgresRecorder {
	r.timeout = timeout
	return r
}

// EnsureTable ensures the tracking table exists
func (r *PostgresRecorder) EnsureTable(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	createTableSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id SERIAL PRIMARY KEY,
			run_id UUID NOT NULL,
			table_name TEXT NOT NULL,
			column_name TEXT NOT NULL,
			row_index INTEGER NOT NULL,
			row_identifier TEXT NOT NULL,
			original_value TEXT,
			new_value TEXT NOT NULL,
			cleaning_operation TEXT NOT NULL,
			cleaning_reason TEXT NOT NULL,
			cleaned_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`, r.table)
	if _, err := r.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create tracking table: %w", err)
	}

	r.logger.Info("Ensured audit table exists", zap.String("table", r.table))
	return nil
}

// RecordCleaningOperations batch inserts cleaning operations in one transaction
func (r *PostgresRecorder) RecordCleaningOperations(operations []model.CleaningOperation) (err error) {
	if len(operations) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	// Begin transaction
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Error("Failed to rollback transaction",
					zap.Error(rbErr),
					zap.NamedError("cause", err))
			}
		}
	}()

	// Prepare statement
	stmt, err := tx.PrepareNamedContext(ctx, fmt.Sprintf(`
		INSERT INTO %s
		(run_id, table_name, column_name, row_index, row_identifier, original_value,
		 new_value, cleaning_operation, cleaning_reason, cleaned_at)
		VALUES (:run_id, :table_name, :column_name, :row_index, :row_identifier, :original_value,
		 :new_value, :cleaning_operation, :cleaning_reason, :cleaned_at)`, r.table))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	// Execute batch insert
	for _, op := range operations {
		if _, err = stmt.ExecContext(ctx, r.toRow(op)); err != nil {
			return fmt.Errorf("failed to insert cleaning operation: %w", err)
		}
	}

	// Commit transaction
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("Recorded cleaning operations", zap.Int("count", len(operations)))
	return nil
}

func (r *PostgresRecorder) toRow(op model.CleaningOperation) operationRow {
	row := operationRow{
		RunID:             op.RunID,
		TableName:         op.TableName,
		ColumnName:        op.ColumnName,
		RowIndex:          op.RowIndex,
		RowIdentifier:     op.RowIdentifier,
		NewValue:          op.NewValue,
		CleaningOperation: op.CleaningOperation,
		CleaningReason:    op.CleaningReason,
		CleanedAt:         op.CleanedAt,
	}
	if op.OriginalValue != nil {
		row.OriginalValue = sql.NullString{String: r.conv.FormatCell(op.OriginalValue), Valid: true}
	}
	if row.CleanedAt.IsZero() {
		row.CleanedAt = time.Now()
	}
	return row
}
