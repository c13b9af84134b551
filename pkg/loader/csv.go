// pkg/loader/csv.go
package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/David-Botos/sales-clean/pkg/converter"
	"github.com/David-Botos/sales-clean/pkg/model"
)

// Encoding names reported by DetectEncoding
const (
	EncodingUTF8        = "utf-8"
	EncodingUTF8BOM     = "utf-8-sig"
	EncodingUTF16LE     = "utf-16le"
	EncodingUTF16BE     = "utf-16be"
	EncodingWindows1252 = "windows-1252"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// CSVSource reads the sales table from a delimited text file of unknown encoding
type CSVSource struct {
	path   string
	logger *zap.Logger
	conv   *converter.TypeConverter
	schema model.TableMetadata
}

// NewCSVSource creates a source reading path
func NewCSVSource(path string, logger *zap.Logger) *CSVSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVSource{
		path:   path,
		logger: logger,
		conv:   converter.NewTypeConverter(logger.Named("converter")),
		schema: model.SalesInputSchema,
	}
}

// DetectEncoding picks a decoder for data: a byte order mark wins, then valid
// UTF-8, and anything else is read as Windows-1252
func DetectEncoding(data []byte) (string, transform.Transformer) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return EncodingUTF8BOM, unicode.UTF8BOM.NewDecoder()
	case bytes.HasPrefix(data, bomUTF16LE):
		return EncodingUTF16LE, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
	case bytes.HasPrefix(data, bomUTF16BE):
		return EncodingUTF16BE, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
	case utf8.Valid(data):
		return EncodingUTF8, transform.Nop
	default:
		return EncodingWindows1252, charmap.Windows1252.NewDecoder()
	}
}

// Load reads and types the whole file
func (s *CSVSource) Load() (*model.Table, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &model.LoadError{Path: s.path, Err: err}
	}

	name, decoder := DetectEncoding(data)
	s.logger.Info("Loading CSV file",
		zap.String("path", s.path),
		zap.String("encoding", name),
		zap.Int("bytes", len(data)))

	header, records, err := readRecords(transform.NewReader(bytes.NewReader(data), decoder))
	if err != nil {
		return nil, &model.LoadError{Path: s.path, Err: err}
	}

	if missing := s.schema.MissingColumns(model.NewTable(header...)); len(missing) > 0 {
		s.logger.Warn("Input is missing known columns", zap.Strings("columns", missing))
	}

	table, err := s.conv.ConvertRecords(header, records, s.schema)
	if err != nil {
		return nil, &model.LoadError{Path: s.path, Err: err}
	}

	s.logger.Info("CSV file loaded",
		zap.Int("rowCount", table.Len()),
		zap.Int("columnCount", table.Width()))
	return table, nil
}

func readRecords(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errors.New("input has no header row")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i, name := range header {
		header[i] = strings.TrimSpace(name)
	}

	var records [][]string
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read record on line %d: %w", line, err)
		}
		if len(record) > len(header) {
			return nil, nil, fmt.Errorf("record on line %d has %d fields, header has %d", line, len(record), len(header))
		}
		records = append(records, record)
	}
	return header, records, nil
}
