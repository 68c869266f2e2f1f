package sheettable

import (
	"fmt"
)

// Comparison operators understood by Condition.
const (
	OpEqual        = "=="
	OpNotEqual     = "!="
	OpGreater      = ">"
	OpGreaterEqual = ">="
	OpLess         = "<"
	OpLessEqual    = "<="
	OpIn           = "in"
	OpBetween      = "between"
)

var operators = []string{OpEqual, OpNotEqual, OpGreaterEqual, OpLessEqual, OpGreater, OpLess, OpIn, OpBetween}

// Condition compares one column of a row with a value.
//
// For OpIn the value is a []interface{} of candidates and for OpBetween a
// two element []interface{} or [2]interface{} holding inclusive bounds.
// Ordering operators only hold between two numbers or two strings.
type Condition struct {
	Column   string
	Operator string
	Value    interface{}
}

// Where builds a predicate matching rows that satisfy every condition.
// A column the row does not set compares as the empty marker.
func Where(conditions ...Condition) Predicate {
	return func(row *Row, _ int, _ []*Row) bool {
		for _, c := range conditions {
			if !c.matches(row.Values[c.Column]) {
				return false
			}
		}
		return true
	}
}

func (c Condition) matches(value interface{}) bool {
	switch c.Operator {
	case OpEqual:
		return sameValue(value, c.Value)
	case OpNotEqual:
		return !sameValue(value, c.Value)
	case OpGreater:
		cmp, ok := orderOf(value, c.Value)
		return ok && cmp > 0
	case OpGreaterEqual:
		cmp, ok := orderOf(value, c.Value)
		return ok && cmp >= 0
	case OpLess:
		cmp, ok := orderOf(value, c.Value)
		return ok && cmp < 0
	case OpLessEqual:
		cmp, ok := orderOf(value, c.Value)
		return ok && cmp <= 0
	case OpIn:
		list, _ := c.Value.([]interface{})
		for _, item := range list {
			if sameValue(value, item) {
				return true
			}
		}
		return false
	case OpBetween:
		lo, hi, ok := bounds(c.Value)
		if !ok {
			return false
		}
		cmpLo, okLo := orderOf(value, lo)
		cmpHi, okHi := orderOf(value, hi)
		return okLo && okHi && cmpLo >= 0 && cmpHi <= 0
	default:
		return false
	}
}

// orderOf compares a with b when both are numbers or both are strings.
func orderOf(a, b interface{}) (int, bool) {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb || (ra != 2 && ra != 3) {
		return 0, false
	}
	return compareValues(a, b), true
}

func bounds(v interface{}) (lo, hi interface{}, ok bool) {
	switch b := v.(type) {
	case [2]interface{}:
		return b[0], b[1], true
	case []interface{}:
		if len(b) == 2 {
			return b[0], b[1], true
		}
	}
	return nil, nil, false
}

// ValidateConditions reports the first malformed condition.
func ValidateConditions(conditions []Condition) error {
	for i, c := range conditions {
		if c.Column == "" {
			return fmt.Errorf("empty column name in condition %d", i)
		}

		valid := false
		for _, op := range operators {
			if c.Operator == op {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid operator '%s' in condition %d", c.Operator, i)
		}

		switch c.Operator {
		case OpIn:
			if _, ok := c.Value.([]interface{}); !ok {
				return fmt.Errorf("operator 'in' requires []interface{} value in condition %d", i)
			}
		case OpBetween:
			if _, _, ok := bounds(c.Value); !ok {
				return fmt.Errorf("operator 'between' requires two bounds in condition %d", i)
			}
		}
	}
	return nil
}

// Page returns at most limit rows starting at offset. A limit of zero or
// less means no limit.
func Page(rows []*Row, offset, limit int) []*Row {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return []*Row{}
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
