package sheettable

import (
	"fmt"
	"slices"
)

// SortDirection is the order of one sort key.
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

func (d SortDirection) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// ColumnSort is one key of a multi-column sort.
type ColumnSort struct {
	Column    string
	Direction SortDirection
}

// Asc sorts by column in ascending order.
func Asc(column string) ColumnSort {
	return ColumnSort{Column: column, Direction: Ascending}
}

// Desc sorts by column in descending order.
func Desc(column string) ColumnSort {
	return ColumnSort{Column: column, Direction: Descending}
}

// SortRows orders rows in place by the given keys, the first key being the
// most significant. Each key is applied as a stable sort, least significant
// first, so rows equal on every key keep their relative order.
func SortRows(rows []*Row, columns []string, sorting []ColumnSort) error {
	for i := len(sorting) - 1; i >= 0; i-- {
		key := sorting[i]
		if !slices.Contains(columns, key.Column) {
			return &SchemaError{
				Msg:     fmt.Sprintf("Sort column does not exist: %s", key.Column),
				Columns: []string{key.Column},
			}
		}

		slices.SortStableFunc(rows, func(a, b *Row) int {
			c := compareValues(a.Values[key.Column], b.Values[key.Column])
			if key.Direction == Descending {
				return -c
			}
			return c
		})
	}
	return nil
}
