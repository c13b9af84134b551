// pkg/loader/snowflake.go
package loader

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/David-Botos/sales-clean/pkg/converter"
	"github.com/David-Botos/sales-clean/pkg/model"
)

// BatchQuerier pages through a query result, as connector.SnowflakeConnector does
type BatchQuerier interface {
	BatchQuery(ctx context.Context, query string, batchSize int, processor func(*sql.Rows) error) error
}

// SnowflakeSource reads the sales table from a staged warehouse table
type SnowflakeSource struct {
	querier   BatchQuerier
	table     string
	batchSize int
	logger    *zap.Logger
	conv      *converter.TypeConverter
	schema    model.TableMetadata
}

// NewSnowflakeSource creates a source reading the fully qualified table
func NewSnowflakeSource(querier BatchQuerier, qualifiedTable string, batchSize int, logger *zap.Logger) *SnowflakeSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnowflakeSource{
		querier:   querier,
		table:     qualifiedTable,
		batchSize: batchSize,
		logger:    logger,
		conv:      converter.NewTypeConverter(logger.Named("converter")),
		schema:    model.SalesInputSchema,
	}
}

// Load reads the whole table without a deadline
func (s *SnowflakeSource) Load() (*model.Table, error) {
	return s.LoadContext(context.Background())
}

// LoadContext reads the whole table, ordered by order number and line
func (s *SnowflakeSource) LoadContext(ctx context.Context) (*model.Table, error) {
	query := fmt.Sprintf("SELECT * FROM %s ORDER BY %s, %s", s.table, model.ColOrderNumber, model.ColOrderLineNumber)
	s.logger.Info("Loading Snowflake table", zap.String("table", s.table))

	var (
		table *model.Table
		kinds []model.Kind
	)
	err := s.querier.BatchQuery(ctx, query, s.batchSize, func(rows *sql.Rows) error {
		if table == nil {
			columns, err := rows.Columns()
			if err != nil {
				return fmt.Errorf("failed to read columns: %w", err)
			}
			for i, name := range columns {
				columns[i] = strings.ToUpper(strings.TrimSpace(name))
			}
			if table, err = model.NewTableFromRows(columns, nil); err != nil {
				return err
			}
			kinds = make([]model.Kind, len(columns))
			for i, name := range columns {
				kinds[i] = s.schema.KindOf(name)
			}
		}

		raw := make([]any, len(kinds))
		ptrs := make([]any, len(kinds))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}

		row := make([]any, len(kinds))
		for i, v := range raw {
			cell, err := s.conv.NormalizeDriverValue(v)
			if err != nil {
				return fmt.Errorf("column %s: %w", table.ColumnAt(i).Name, err)
			}
			// Fixed-point NUMBER columns arrive as text
			if text, ok := cell.(string); ok && kinds[i] != model.KindText {
				cell, _ = s.conv.ConvertRaw(text, kinds[i])
			}
			row[i] = cell
		}
		return table.AppendRow(row)
	})
	if err != nil {
		return nil, &model.LoadError{Path: s.table, Err: err}
	}
	if table == nil {
		return nil, &model.LoadError{Path: s.table, Err: fmt.Errorf("query returned no rows")}
	}

	s.logger.Info("Snowflake table loaded",
		zap.Int("rowCount", table.Len()),
		zap.Int("columnCount", table.Width()))
	return table, nil
}
