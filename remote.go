package sheettable

import "context"

// Value and date/time rendering modes understood by the remote service.
const (
	RenderUnformattedValue = "UNFORMATTED_VALUE"
	RenderSerialNumber     = "SERIAL_NUMBER"

	DimensionRows    = "ROWS"
	DimensionColumns = "COLUMNS"
)

// RenderOptions selects how cell values are rendered on read.
type RenderOptions struct {
	ValueRender    string
	DateTimeRender string
}

// rawRender asks for raw scalars: unformatted values and serial dates.
var rawRender = &RenderOptions{
	ValueRender:    RenderUnformattedValue,
	DateTimeRender: RenderSerialNumber,
}

// ValueRange is a block of cell values and the range they occupy.
// An empty Range or a nil Values means the service left the field out.
type ValueRange struct {
	Range  string
	Values [][]interface{}
}

// SheetProperties identifies one sheet within a spreadsheet.
type SheetProperties struct {
	SheetID int64
	Title   string
}

// DimensionRange is a half-open, zero-based span of rows or columns.
type DimensionRange struct {
	SheetID    int64
	Dimension  string
	StartIndex int64
	EndIndex   int64
}

// Request is a single structural change sent through BatchUpdate.
type Request struct {
	DeleteDimension *DimensionRange
}

// Remote is the spreadsheet service a Table talks to.
//
// Writes use raw input, append as new rows and return the echoed data as
// persisted (nil when the service omitted it). Errors are returned as the
// underlying client produced them.
type Remote interface {
	// GetValues reads a range. A nil render uses the service defaults.
	GetValues(ctx context.Context, spreadsheetID, rng string, render *RenderOptions) (*ValueRange, error)

	// AppendValues appends rows after the table found in rng.
	AppendValues(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) (*ValueRange, error)

	// UpdateValues overwrites the cells of rng.
	UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) (*ValueRange, error)

	// GetSheets lists the sheets of a spreadsheet.
	GetSheets(ctx context.Context, spreadsheetID string) ([]SheetProperties, error)

	// BatchUpdate applies structural requests in order.
	BatchUpdate(ctx context.Context, spreadsheetID string, requests []Request) error
}
