package sheettable

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RowNumberField is the reserved metadata key. No column may use it.
const RowNumberField = "_rowNumber"

// serialEpoch is day zero of SERIAL_NUMBER date/time rendering.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// RowData holds column values keyed by column name.
type RowData map[string]interface{}

// Row is one data row of a table snapshot.
type Row struct {
	Number int     // row number at snapshot time (2 or greater, row 1 is the header)
	Values RowData // column name -> cell value
}

// Data returns a copy of the row's column values.
func (r *Row) Data() RowData {
	data := make(RowData, len(r.Values))
	for k, v := range r.Values {
		data[k] = v
	}
	return data
}

// Get returns the raw value of a column and whether it is set.
func (r *Row) Get(col string) (interface{}, bool) {
	v, ok := r.Values[col]
	return v, ok
}

// MarshalJSON renders the row as a flat object with the reserved row number key.
func (r *Row) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(r.Values)+1)
	for k, v := range r.Values {
		flat[k] = v
	}
	flat[RowNumberField] = r.Number
	return json.Marshal(flat)
}

// GetAsString returns the value as string or defaultValue if not found
func (r *Row) GetAsString(col string, defaultValue string) string {
	v, ok := r.Values[col]
	if !ok || v == nil {
		return defaultValue
	}

	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// GetAsInt64 returns the value as int64 or defaultValue if not found
func (r *Row) GetAsInt64(col string, defaultValue int64) int64 {
	v, ok := r.Values[col]
	if !ok {
		return defaultValue
	}

	switch val := v.(type) {
	case int64:
		return val
	case uint64:
		return int64(val)
	case string:
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
		return defaultValue
	}
	if isNumeric(v) {
		return int64(toFloat64(v))
	}
	return defaultValue
}

// GetAsFloat64 returns the value as float64 or defaultValue if not found
func (r *Row) GetAsFloat64(col string, defaultValue float64) float64 {
	v, ok := r.Values[col]
	if !ok {
		return defaultValue
	}

	if isNumeric(v) {
		return toFloat64(v)
	}
	if s, ok := v.(string); ok {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// GetAsBool returns the value as bool or defaultValue if not found
func (r *Row) GetAsBool(col string, defaultValue bool) bool {
	v, ok := r.Values[col]
	if !ok {
		return defaultValue
	}

	switch val := v.(type) {
	case bool:
		return val
	case string:
		return strings.EqualFold(val, "true") || val == "1"
	case int, int64, float64:
		return toFloat64(val) != 0
	}
	return defaultValue
}

// GetAsTime returns the value as time.Time or defaultValue if not found.
// Numbers are read as serial date/time values (days since 1899-12-30).
func (r *Row) GetAsTime(col string, defaultValue time.Time) time.Time {
	v, ok := r.Values[col]
	if !ok {
		return defaultValue
	}

	switch val := v.(type) {
	case time.Time:
		return val
	case string:
		formats := []string{
			time.RFC3339,
			"2006-01-02 15:04:05",
			"2006-01-02",
		}
		for _, format := range formats {
			if t, err := time.Parse(format, val); err == nil {
				return t
			}
		}
	default:
		if isNumeric(val) {
			days := toFloat64(val)
			return serialEpoch.Add(time.Duration(days * float64(24*time.Hour))).Round(time.Millisecond)
		}
	}
	return defaultValue
}
