package sheettable

import (
	"regexp"
	"strconv"
)

// A sheet name is a run of non-whitespace characters other than '!' and quotes,
// or a single-quoted name with embedded quotes doubled. The service quotes
// names containing spaces or punctuation.
var rangePattern = regexp.MustCompile(`^([^\s!']+|'(?:[^']|'')+')!([A-Z]+)([0-9]+):([A-Z]+)([0-9]+)$`)

// Range is a parsed sheet-qualified cell range such as "Sheet1!A5:C42".
type Range struct {
	Sheet       string
	StartColumn string
	StartRow    int
	EndColumn   string
	EndRow      int
}

// ParseRange parses a range of the form <sheet>!<COL><ROW>:<COL><ROW>.
func ParseRange(text string) (Range, error) {
	m := rangePattern.FindStringSubmatch(text)
	if m == nil {
		return Range{}, &FormatError{Msg: "Missing or bad range"}
	}

	startRow, err := strconv.Atoi(m[3])
	if err != nil {
		return Range{}, &FormatError{Msg: "Missing or bad range"}
	}
	endRow, err := strconv.Atoi(m[5])
	if err != nil {
		return Range{}, &FormatError{Msg: "Missing or bad range"}
	}

	return Range{
		Sheet:       m[1],
		StartColumn: m[2],
		StartRow:    startRow,
		EndColumn:   m[4],
		EndRow:      endRow,
	}, nil
}

// String formats the range back into A1 notation.
func (r Range) String() string {
	return r.Sheet + "!" + r.StartColumn + strconv.Itoa(r.StartRow) + ":" + r.EndColumn + strconv.Itoa(r.EndRow)
}

// rowRange addresses one whole row of a sheet, e.g. "Sheet1!5:5".
func rowRange(sheet string, rowNumber int) string {
	n := strconv.Itoa(rowNumber)
	return sheet + "!" + n + ":" + n
}

// ColumnName converts a 1-based column number to its letter name (1 -> A, 27 -> AA).
func ColumnName(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
