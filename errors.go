package sheettable

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFormat     = errors.New("format error")
	ErrSchema     = errors.New("schema error")
	ErrConstraint = errors.New("constraint violation")
	ErrNotFound   = errors.New("not found")
	ErrData       = errors.New("data error")

	ErrMissingSpreadsheetID = errors.New("spreadsheet ID is required")
	ErrMissingSheetName     = errors.New("sheet name is required")
	ErrNilRemote            = errors.New("remote is required")
)

// FormatError reports a malformed range reference.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string { return e.Msg }

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// SchemaError reports row data or sort keys naming columns the table does not have.
type SchemaError struct {
	Msg     string
	Columns []string
}

func (e *SchemaError) Error() string { return e.Msg }

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// ConstraintViolation describes one broken column constraint.
type ConstraintViolation struct {
	Kind        string `json:"kind"`
	Column      string `json:"column"`
	Description string `json:"description"`
}

// ConstraintError carries every violation found by one enforcement pass.
type ConstraintError struct {
	Violations []ConstraintViolation
}

func (e *ConstraintError) Error() string {
	descriptions := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		descriptions[i] = v.Description
	}
	return fmt.Sprintf("constraint violations: %s", strings.Join(descriptions, "; "))
}

func (e *ConstraintError) Is(target error) bool { return target == ErrConstraint }

// NotFoundError reports a missing row or sheet.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DataError reports a write echo that is malformed or disagrees with what was
// submitted. The write it describes has already been applied remotely.
type DataError struct {
	Msg  string
	Data interface{}
}

func (e *DataError) Error() string {
	if e.Data == nil {
		return e.Msg
	}
	encoded, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Sprintf("%s %v", e.Msg, e.Data)
	}
	return fmt.Sprintf("%s %s", e.Msg, encoded)
}

func (e *DataError) Is(target error) bool { return target == ErrData }

var errRowNotFound = &NotFoundError{Msg: "Row not found"}
