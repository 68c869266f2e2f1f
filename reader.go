package sheettable

import (
	"context"
	"fmt"
)

// Snapshot is the full contents of a table as of one read.
type Snapshot struct {
	Columns []string
	Rows    []*Row
}

// OpenTable reads an entire sheet and materializes its rows. The first row
// is the header; data rows are numbered from 2.
func OpenTable(ctx context.Context, remote Remote, spreadsheetID, sheetName string) (*Snapshot, error) {
	resp, err := remote.GetValues(ctx, spreadsheetID, sheetName, rawRender)
	if err != nil {
		return nil, err
	}

	if resp == nil || len(resp.Values) == 0 {
		return &Snapshot{Columns: []string{}, Rows: []*Row{}}, nil
	}

	header := resp.Values[0]
	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = headerName(name)
	}

	rows := make([]*Row, 0, len(resp.Values)-1)
	for i, values := range resp.Values[1:] {
		rows = append(rows, ValuesToRow(values, columns, i+2))
	}

	return &Snapshot{Columns: columns, Rows: rows}, nil
}

// CountRows counts data rows by reading only the first column.
func CountRows(ctx context.Context, remote Remote, spreadsheetID, sheetName string) (int, error) {
	resp, err := remote.GetValues(ctx, spreadsheetID, fmt.Sprintf("%s!A:A", sheetName), nil)
	if err != nil {
		return 0, err
	}
	if resp == nil || len(resp.Values) == 0 {
		return 0, nil
	}
	return len(resp.Values) - 1, nil
}

func headerName(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return cellString(v)
}
