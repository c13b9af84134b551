// pkg/sink/csv.go
package sink

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/David-Botos/sales-clean/pkg/converter"
	"github.com/David-Botos/sales-clean/pkg/model"
)

// CSVSink writes a cleaned table to a CSV file without an index column
type CSVSink struct {
	path   string
	logger *zap.Logger
	conv   *converter.TypeConverter
}

// NewCSVSink creates a sink that writes to path
func NewCSVSink(path string, logger *zap.Logger) (*CSVSink, error) {
	if path == "" {
		return nil, errors.New("artifact path cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVSink{
		path:   path,
		logger: logger,
		conv:   converter.NewTypeConverter(logger),
	}, nil
}

// Path returns the artifact location
func (s *CSVSink) Path() string {
	return s.path
}

// WriteTable writes table to a temporary file next to the artifact and renames
// it into place, so a failed write never leaves a partial artifact
func (s *CSVSink) WriteTable(table *model.Table) (path string, err error) {
	s.logger.Info("Writing CSV file",
		zap.String("path", s.path),
		zap.Int("rowCount", table.Len()))

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmp := file.Name()
	defer func() {
		if err != nil {
			err = multierr.Append(err, ignoreNotExist(os.Remove(tmp)))
		}
	}()

	if err = s.write(file, table); err != nil {
		err = multierr.Append(err, file.Close())
		return "", err
	}
	if err = file.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	if err = os.Rename(tmp, s.path); err != nil {
		return "", fmt.Errorf("failed to move artifact into place: %w", err)
	}

	s.logger.Info("CSV file written", zap.String("path", s.path))
	return s.path, nil
}

func (s *CSVSink) write(file *os.File, table *model.Table) error {
	writer := csv.NewWriter(file)

	if err := writer.Write(table.ColumnNames()); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	record := make([]string, table.Width())
	for r := 0; r < table.Len(); r++ {
		for c := 0; c < table.Width(); c++ {
			record[c] = s.conv.FormatCell(table.ColumnAt(c).Values[r])
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", r, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func ignoreNotExist(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
