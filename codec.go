package sheettable

import (
	"fmt"
	"sort"
	"strings"
)

// ValuesToRow zips a row of cell values onto the table columns. Values past
// the last column are dropped and columns without a value stay unset.
func ValuesToRow(values []interface{}, columns []string, rowNumber int) *Row {
	row := &Row{
		Number: rowNumber,
		Values: make(RowData, len(values)),
	}
	for i, v := range values {
		if i >= len(columns) {
			break
		}
		row.Values[columns[i]] = v
	}
	return row
}

// RowToValues lays row data out in column order. Columns the row does not set
// are nil, which the service stores as an empty cell.
func RowToValues(data RowData, columns []string) ([]interface{}, error) {
	known := make(map[string]bool, len(columns))
	for _, col := range columns {
		known[col] = true
	}

	var missing []string
	reserved := false
	for key := range data {
		if key == RowNumberField {
			reserved = true
			continue
		}
		if !known[key] {
			missing = append(missing, key)
		}
	}
	if reserved {
		return nil, &SchemaError{
			Msg:     fmt.Sprintf("Row data must not use the reserved property %s", RowNumberField),
			Columns: []string{RowNumberField},
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &SchemaError{
			Msg:     fmt.Sprintf("Table columns missing that exist as row properties: %s", strings.Join(missing, ", ")),
			Columns: missing,
		}
	}

	values := make([]interface{}, len(columns))
	for i, col := range columns {
		values[i] = data[col]
	}
	return values, nil
}
