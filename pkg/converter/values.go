// pkg/converter/values.go
package converter

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/David-Botos/sales-clean/pkg/model"
)

// ConvertRaw converts one raw field to a cell value of the given kind.
// The boolean is false when the text could not be read as the kind; the trimmed
// text is returned in that case so nothing from the source is lost.
func (c *TypeConverter) ConvertRaw(raw string, kind model.Kind) (any, bool) {
	if c.config.TrimSpace {
		raw = strings.TrimSpace(raw)
	}
	if isNull(raw, c.config.EmptyStringAsNull) {
		return nil, true
	}

	switch kind {
	case model.KindInteger:
		return c.convertToInteger(raw)
	case model.KindNumeric:
		return c.convertToNumeric(raw)
	default:
		return raw, true
	}
}

// NormalizeDriverValue maps a value scanned by a database/sql driver onto the
// cell value set (nil, string, int64, float64, time.Time)
func (c *TypeConverter) NormalizeDriverValue(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		if isNull(v, c.config.EmptyStringAsNull) {
			return nil, nil
		}
		return v, nil
	case []byte:
		return c.NormalizeDriverValue(string(v))
	case int64, float64, time.Time:
		return v, nil
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, fmt.Errorf("unsigned value %d overflows int64", v)
		}
		return int64(v), nil
	case float32:
		return float64(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case *big.Float:
		f, _ := v.Float64()
		return f, nil
	case *big.Int:
		if !v.IsInt64() {
			return nil, fmt.Errorf("integer value %s overflows int64", v.String())
		}
		return v.Int64(), nil
	default:
		return nil, fmt.Errorf("unsupported driver value type %T", value)
	}
}

// FormatCell renders a cell value as CSV field text
func (c *TypeConverter) FormatCell(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.Format(c.config.TimeLayout)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToFloat returns the numeric value of a cell. Text, times and absent cells are
// not numeric.
func ToFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int64:
		return float64(v), true
	case float64:
		if math.IsNaN(v) {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}

// isNull determines if a raw field should be treated as an absent cell
func isNull(raw string, emptyAsNull bool) bool {
	return raw == "" && emptyAsNull
}

// convertToInteger parses an integer field, accepting integral floats such as "10.0"
func (c *TypeConverter) convertToInteger(raw string) (any, bool) {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i, true
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f == math.Trunc(f) && !math.IsInf(f, 0) {
		return int64(f), true
	}
	return raw, false
}

// convertToNumeric parses a float field
func (c *TypeConverter) convertToNumeric(raw string) (any, bool) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return raw, false
	}
	return f, true
}
