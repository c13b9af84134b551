package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/David-Botos/sales-clean/pkg/model"
)

const sampleCSV = "ORDERNUMBER, SALES ,ORDERDATE,CUSTOMERNAME,ADDRESSLINE2\n" +
	"10107,2871,2/24/2003 0:00,Land of Toys Inc.,\n" +
	"10121,2765.9,5/7/2003 0:00,Reims Collectables,Level 3\n"

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales_data.csv")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestDetectEncoding(t *testing.T) {
	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte("A,B\n"))
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{name: "ascii", data: []byte("A,B\n"), want: EncodingUTF8},
		{name: "utf8", data: []byte("Café\n"), want: EncodingUTF8},
		{name: "utf8 bom", data: append([]byte{0xEF, 0xBB, 0xBF}, "A\n"...), want: EncodingUTF8BOM},
		{name: "utf16 bom", data: utf16, want: EncodingUTF16LE},
		{name: "latin", data: []byte{'C', 'a', 'f', 0xE9, '\n'}, want: EncodingWindows1252},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := DetectEncoding(tt.data)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadCSV(t *testing.T) {
	table, err := NewCSVSource(writeFile(t, []byte(sampleCSV)), zaptest.NewLogger(t)).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{model.ColOrderNumber, model.ColSales, model.ColOrderDate, model.ColCustomerName, model.ColAddressLine2},
		table.ColumnNames(), "header names trimmed")
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []any{int64(10107), 2871.0, "2/24/2003 0:00", "Land of Toys Inc.", nil}, table.Row(0))
	assert.Equal(t, []any{int64(10121), 2765.9, "5/7/2003 0:00", "Reims Collectables", "Level 3"}, table.Row(1))
}

func TestLoadWindows1252(t *testing.T) {
	data, err := charmap.Windows1252.NewEncoder().Bytes([]byte("CUSTOMERNAME,CITY\nAtelier graphique,Nantes\nCorrida Auto Replicas,Málaga\n"))
	require.NoError(t, err)

	table, err := NewCSVSource(writeFile(t, data), nil).Load()
	require.NoError(t, err)
	v, _ := table.Cell(1, "CITY")
	assert.Equal(t, "Málaga", v)
}

func TestLoadUTF8BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, "ORDERNUMBER\n1\n"...)
	table, err := NewCSVSource(writeFile(t, data), nil).Load()
	require.NoError(t, err)
	assert.True(t, table.HasColumn(model.ColOrderNumber), "BOM stripped from first header")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{name: "missing file", path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.csv") }},
		{name: "empty file", path: func(t *testing.T) string { return writeFile(t, nil) }},
		{name: "duplicate header", path: func(t *testing.T) string { return writeFile(t, []byte("A,A\n1,2\n")) }},
		{name: "too many fields", path: func(t *testing.T) string { return writeFile(t, []byte("A\n1,2\n")) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.path(t)
			_, err := NewCSVSource(path, nil).Load()
			require.Error(t, err)

			var le *model.LoadError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, path, le.Path)
			assert.True(t, errors.Is(err, model.ErrLoad))
		})
	}
}
