package sheettable

import (
	"fmt"
	"strings"
)

// ValueMismatch pairs a submitted value with the value the service stored.
type ValueMismatch struct {
	Submitted interface{} `json:"submitted"`
	Updated   interface{} `json:"updated"`
}

// ProcessUpdatedData checks the echo of a single-row write against the values
// that were submitted and returns the stored values and their row number.
func ProcessUpdatedData(updated *ValueRange, sheetName string, submitted []interface{}) ([]interface{}, int, error) {
	if updated == nil || updated.Range == "" {
		return nil, 0, &DataError{Msg: "Updated value range has empty range"}
	}
	if updated.Values == nil {
		return nil, 0, &DataError{Msg: "Updated value range has empty values"}
	}
	if len(updated.Values) != 1 {
		return nil, 0, &DataError{Msg: fmt.Sprintf("Expected one row of values, but instead got %d", len(updated.Values))}
	}
	rowValues := updated.Values[0]

	results := make([]interface{}, len(submitted))
	mismatched := false
	for i, s := range submitted {
		var u interface{}
		if i < len(rowValues) {
			u = rowValues[i]
		}
		if echoMatches(s, u) {
			results[i] = true
			continue
		}
		results[i] = ValueMismatch{Submitted: s, Updated: u}
		mismatched = true
	}
	if mismatched {
		return nil, 0, &DataError{
			Msg:  "One or more updated row values don't match corresponding submitted values",
			Data: results,
		}
	}

	rng, err := ParseRange(updated.Range)
	if err != nil {
		return nil, 0, err
	}
	if rng.Sheet != sheetName && unquoteSheet(rng.Sheet) != sheetName {
		return nil, 0, &DataError{Msg: fmt.Sprintf("Updated range sheet name '%s' doesn't match submitted sheet name '%s'", rng.Sheet, sheetName)}
	}
	if rng.StartRow != rng.EndRow {
		return nil, 0, &DataError{Msg: fmt.Sprintf("Updated range start row (%d) doesn't match end row (%d)", rng.StartRow, rng.EndRow)}
	}

	return rowValues, rng.StartRow, nil
}

// unquoteSheet strips the quoting the service applies to some sheet names.
func unquoteSheet(name string) string {
	if len(name) < 2 || name[0] != '\'' || name[len(name)-1] != '\'' {
		return name
	}
	return strings.ReplaceAll(name[1:len(name)-1], "''", "'")
}
