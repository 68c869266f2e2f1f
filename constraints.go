package sheettable

import (
	"fmt"
	"strings"
)

// ConstraintUnique is the kind of a uniqueness violation.
const ConstraintUnique = "unique"

// ColumnConstraints declares rules enforced on insert and update.
type ColumnConstraints struct {
	// Uniques lists columns whose values must be distinct, compared as
	// case-insensitive strings. Empty cells (nil or "") are exempt: any
	// number of rows may leave a unique column blank.
	Uniques []string
}

// IsZero reports whether no constraint is declared.
func (c ColumnConstraints) IsZero() bool {
	return len(c.Uniques) == 0
}

// EnforceConstraints checks candidate against rows. A candidate that is itself
// an element of rows is never compared with itself. Every violation is
// collected before returning a *ConstraintError.
func EnforceConstraints(rows []*Row, candidate *Row, constraints ColumnConstraints) error {
	var violations []ConstraintViolation

	for _, column := range constraints.Uniques {
		value, ok := candidate.Values[column]
		if !ok || isEmptyCell(value) {
			continue
		}
		folded := strings.ToUpper(cellString(value))

		for _, row := range rows {
			if row == candidate {
				continue
			}
			other, ok := row.Values[column]
			if !ok || isEmptyCell(other) {
				continue
			}
			if strings.ToUpper(cellString(other)) == folded {
				violations = append(violations, ConstraintViolation{
					Kind:        ConstraintUnique,
					Column:      column,
					Description: fmt.Sprintf("A row already exists with %s = %s", column, cellString(value)),
				})
				break
			}
		}
	}

	if len(violations) > 0 {
		return &ConstraintError{Violations: violations}
	}
	return nil
}

// isEmptyCell reports whether v is the empty marker or an empty string.
func isEmptyCell(v interface{}) bool {
	return v == nil || v == ""
}
