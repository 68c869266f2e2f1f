package sheettable_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sheettable "github.com/ideamans/go-sheettable"
)

func TestProcessUpdatedData(t *testing.T) {
	tests := []struct {
		name      string
		updated   *sheettable.ValueRange
		submitted []interface{}
		wantRow   int
		wantErr   string
	}{
		{
			name:      "matching echo",
			updated:   &sheettable.ValueRange{Range: "people!A4:B4", Values: [][]interface{}{{float64(3), "ann"}}},
			submitted: []interface{}{3, "ann"},
			wantRow:   4,
		},
		{
			name:      "omitted value echoed as empty string",
			updated:   &sheettable.ValueRange{Range: "people!A2:B2", Values: [][]interface{}{{float64(1), ""}}},
			submitted: []interface{}{1, nil},
			wantRow:   2,
		},
		{
			name:      "empty string echoed as omitted",
			updated:   &sheettable.ValueRange{Range: "people!A2:B2", Values: [][]interface{}{{float64(1)}}},
			submitted: []interface{}{1, ""},
			wantRow:   2,
		},
		{
			name:      "quoted sheet name",
			updated:   &sheettable.ValueRange{Range: "'people'!A9:A9", Values: [][]interface{}{{"x"}}},
			submitted: []interface{}{"x"},
			wantRow:   9,
		},
		{
			name:      "nil range",
			updated:   nil,
			submitted: []interface{}{1},
			wantErr:   "Updated value range has empty range",
		},
		{
			name:      "missing range",
			updated:   &sheettable.ValueRange{Values: [][]interface{}{{1}}},
			submitted: []interface{}{1},
			wantErr:   "Updated value range has empty range",
		},
		{
			name:      "missing values",
			updated:   &sheettable.ValueRange{Range: "people!A2:A2"},
			submitted: []interface{}{1},
			wantErr:   "Updated value range has empty values",
		},
		{
			name:      "no rows",
			updated:   &sheettable.ValueRange{Range: "people!A2:A2", Values: [][]interface{}{}},
			submitted: []interface{}{1},
			wantErr:   "Expected one row of values, but instead got 0",
		},
		{
			name:      "two rows",
			updated:   &sheettable.ValueRange{Range: "people!A2:A3", Values: [][]interface{}{{1}, {1}}},
			submitted: []interface{}{1},
			wantErr:   "Expected one row of values, but instead got 2",
		},
		{
			name:      "sheet mismatch",
			updated:   &sheettable.ValueRange{Range: "other!A2:A2", Values: [][]interface{}{{1}}},
			submitted: []interface{}{1},
			wantErr:   "Updated range sheet name 'other' doesn't match submitted sheet name 'people'",
		},
		{
			name:      "start and end rows differ",
			updated:   &sheettable.ValueRange{Range: "people!A2:A3", Values: [][]interface{}{{1}}},
			submitted: []interface{}{1},
			wantErr:   "Updated range start row (2) doesn't match end row (3)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, rowNumber, err := sheettable.ProcessUpdatedData(tt.updated, "people", tt.submitted)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, sheettable.ErrData)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRow, rowNumber)
			assert.Equal(t, tt.updated.Values[0], values)
		})
	}
}

func TestProcessUpdatedData_Mismatch(t *testing.T) {
	updated := &sheettable.ValueRange{Range: "people!A2:B2", Values: [][]interface{}{{float64(2), "bob"}}}

	_, _, err := sheettable.ProcessUpdatedData(updated, "people", []interface{}{1, "bob"})
	require.Error(t, err)

	var dataErr *sheettable.DataError
	require.True(t, errors.As(err, &dataErr))
	assert.Equal(t, "One or more updated row values don't match corresponding submitted values", dataErr.Msg)
	assert.Equal(t, []interface{}{
		sheettable.ValueMismatch{Submitted: 1, Updated: float64(2)},
		true,
	}, dataErr.Data)
	assert.Contains(t, err.Error(), `{"submitted":1,"updated":2}`)
}

func TestProcessUpdatedData_BadRange(t *testing.T) {
	updated := &sheettable.ValueRange{Range: "people", Values: [][]interface{}{{1}}}

	_, _, err := sheettable.ProcessUpdatedData(updated, "people", []interface{}{1})
	assert.ErrorIs(t, err, sheettable.ErrFormat)
}
