// pkg/converter/converter.go
package converter

import (
	"go.uber.org/zap"

	"github.com/David-Botos/sales-clean/pkg/model"
)

// TypeConverter maps raw field text and driver values onto typed table cells
type TypeConverter struct {
	logger *zap.Logger
	// Configuration options
	config TypeConverterConfig
}

// TypeConverterConfig provides configuration options for type conversion
type TypeConverterConfig struct {
	// Whether to treat empty strings as absent cells
	EmptyStringAsNull bool
	// Whether to trim surrounding whitespace before conversion
	TrimSpace bool
	// Layout used when writing time cells as text
	TimeLayout string
}

// DefaultConfig returns the default configuration
func DefaultConfig() TypeConverterConfig {
	return TypeConverterConfig{
		EmptyStringAsNull: true,
		TrimSpace:         true,
		TimeLayout:        "2006-01-02 15:04:05",
	}
}

// NewTypeConverter creates a new TypeConverter with default configuration
func NewTypeConverter(logger *zap.Logger) *TypeConverter {
	return NewTypeConverterWithConfig(logger, DefaultConfig())
}

// NewTypeConverterWithConfig creates a TypeConverter with custom configuration
func NewTypeConverterWithConfig(logger *zap.Logger, config TypeConverterConfig) *TypeConverter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TypeConverter{
		logger: logger,
		config: config,
	}
}

// ConvertRecords builds a table from a header and raw text records, typing every
// column by its kind in schema. Columns outside schema stay text.
func (c *TypeConverter) ConvertRecords(header []string, records [][]string, schema model.TableMetadata) (*model.Table, error) {
	kinds := make([]model.Kind, len(header))
	for i, name := range header {
		kinds[i] = schema.KindOf(name)
	}

	rows := make([][]any, 0, len(records))
	fallbacks := make(map[string]int)
	for _, record := range records {
		row := make([]any, len(header))
		for i := range header {
			raw := ""
			if i < len(record) {
				raw = record[i]
			}
			value, ok := c.ConvertRaw(raw, kinds[i])
			if !ok {
				fallbacks[header[i]]++
			}
			row[i] = value
		}
		rows = append(rows, row)
	}

	for column, count := range fallbacks {
		c.logger.Warn("Values kept as text after failed conversion",
			zap.String("column", column),
			zap.String("kind", schema.KindOf(column).String()),
			zap.Int("count", count))
	}

	return model.NewTableFromRows(header, rows)
}
