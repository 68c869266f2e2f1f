package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	sheettable "github.com/ideamans/go-sheettable"
	"github.com/xuri/excelize/v2"
)

var (
	rowSpanPattern    = regexp.MustCompile(`^(.+)!([0-9]+):([0-9]+)$`)
	columnSpanPattern = regexp.MustCompile(`^(.+)!([A-Z]+):([A-Z]+)$`)
	plainSheetName    = regexp.MustCompile(`^[^\s!']+$`)
)

// Adapter implements sheettable.Remote for Excel workbooks on disk.
// The spreadsheet ID passed to each call is the workbook's file path and
// sheet IDs are the workbook's internal sheet IDs.
type Adapter struct {
	mu sync.RWMutex
}

var _ sheettable.Remote = (*Adapter)(nil)

// New creates a new Excel adapter
func New() *Adapter {
	return &Adapter{}
}

// Open validates config and returns a table backed by the workbook it names.
func Open(config *Config) (*sheettable.Table, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return sheettable.New(New(), config.TableConfig())
}

// CreateTable writes a header row into sheetName of the workbook at path,
// creating the file and the sheet when they do not exist yet.
func (a *Adapter) CreateTable(ctx context.Context, path, sheetName string, columns []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	var f *excelize.File
	if _, err := os.Stat(path); err == nil {
		f, err = excelize.OpenFile(path)
		if err != nil {
			return fmt.Errorf("failed to open Excel file: %w", err)
		}
	} else {
		f = excelize.NewFile()
	}
	defer f.Close()

	sheetIndex, err := f.GetSheetIndex(sheetName)
	if err != nil {
		return fmt.Errorf("failed to get sheet index: %w", err)
	}
	if sheetIndex == -1 {
		defaultSheet := f.GetSheetName(0)
		index, err := f.NewSheet(sheetName)
		if err != nil {
			return fmt.Errorf("failed to create sheet: %w", err)
		}
		f.SetActiveSheet(index)

		// A fresh workbook carries an empty "Sheet1"
		if rows, _ := f.GetRows(defaultSheet); len(rows) == 0 && defaultSheet != sheetName {
			_ = f.DeleteSheet(defaultSheet)
		}
	}

	header := make([]interface{}, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

// GetValues reads either a whole sheet ("Sheet1") or a column span
// ("Sheet1!A:A"). Values are always returned raw: numbers as float64,
// booleans as bool and dates as serial numbers.
func (a *Adapter) GetValues(ctx context.Context, spreadsheetID, rng string, _ *sheettable.RenderOptions) (*sheettable.ValueRange, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sheetName, firstCol, lastCol, err := parseReadRange(rng)
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(spreadsheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if err := requireSheet(f, sheetName); err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	values := make([][]interface{}, 0, len(rows))
	width := 0
	for i, row := range rows {
		start := firstCol - 1
		end := len(row)
		if lastCol > 0 && lastCol < end {
			end = lastCol
		}

		var out []interface{}
		for j := start; j < end; j++ {
			v, err := cellValue(f, sheetName, j+1, i+1, row[j])
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		out = trimTrailingEmpty(out)
		if len(out) > width {
			width = len(out)
		}
		values = append(values, out)
	}

	for len(values) > 0 && len(values[len(values)-1]) == 0 {
		values = values[:len(values)-1]
	}

	result := &sheettable.ValueRange{Range: sheetName}
	if len(values) > 0 {
		result.Values = values
		result.Range = fmt.Sprintf("%s!%s1:%s%d", quote(sheetName),
			sheettable.ColumnName(firstCol), sheettable.ColumnName(firstCol+max(width, 1)-1), len(values))
	}
	return result, nil
}

// AppendValues writes values below the last non-empty row of the sheet
// named by rng.
func (a *Adapter) AppendValues(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) (*sheettable.ValueRange, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sheetName := unquote(rng)
	if name, _, found := strings.Cut(rng, "!"); found {
		sheetName = unquote(name)
	}

	f, err := excelize.OpenFile(spreadsheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if err := requireSheet(f, sheetName); err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	return a.writeRows(f, spreadsheetID, sheetName, len(rows)+1, values)
}

// UpdateValues overwrites whole rows addressed as "Sheet1!5:5".
func (a *Adapter) UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) (*sheettable.ValueRange, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := rowSpanPattern.FindStringSubmatch(rng)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRange, rng)
	}
	sheetName := unquote(m[1])
	startRow, _ := strconv.Atoi(m[2])
	endRow, _ := strconv.Atoi(m[3])
	if startRow < 1 || endRow < startRow || len(values) > endRow-startRow+1 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRange, rng)
	}

	f, err := excelize.OpenFile(spreadsheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if err := requireSheet(f, sheetName); err != nil {
		return nil, err
	}

	return a.writeRows(f, spreadsheetID, sheetName, startRow, values)
}

// GetSheets lists the workbook's sheets ordered by sheet ID.
func (a *Adapter) GetSheets(ctx context.Context, spreadsheetID string) ([]sheettable.SheetProperties, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(spreadsheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetMap := f.GetSheetMap()
	props := make([]sheettable.SheetProperties, 0, len(sheetMap))
	for id, name := range sheetMap {
		props = append(props, sheettable.SheetProperties{SheetID: int64(id), Title: name})
	}
	sort.Slice(props, func(i, j int) bool { return props[i].SheetID < props[j].SheetID })
	return props, nil
}

// BatchUpdate applies row and column deletions and saves the workbook once.
func (a *Adapter) BatchUpdate(ctx context.Context, spreadsheetID string, requests []sheettable.Request) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := excelize.OpenFile(spreadsheetID)
	if err != nil {
		return fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetMap := f.GetSheetMap()
	for _, r := range requests {
		d := r.DeleteDimension
		if d == nil {
			continue
		}
		sheetName, ok := sheetMap[int(d.SheetID)]
		if !ok {
			return fmt.Errorf("%w: id %d", ErrSheetNotFound, d.SheetID)
		}
		if d.StartIndex < 0 || d.EndIndex <= d.StartIndex {
			return fmt.Errorf("%w: [%d, %d)", ErrUnsupportedRange, d.StartIndex, d.EndIndex)
		}

		// Each removal shifts the following rows up, so the start stays put.
		for i := d.StartIndex; i < d.EndIndex; i++ {
			switch d.Dimension {
			case sheettable.DimensionRows:
				err = f.RemoveRow(sheetName, int(d.StartIndex)+1)
			case sheettable.DimensionColumns:
				err = f.RemoveCol(sheetName, sheettable.ColumnName(int(d.StartIndex)+1))
			default:
				return fmt.Errorf("unsupported dimension: %s", d.Dimension)
			}
			if err != nil {
				return fmt.Errorf("failed to delete %s: %w", strings.ToLower(d.Dimension), err)
			}
		}
	}

	if err := f.SaveAs(spreadsheetID); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

// writeRows writes values starting at row, saves the workbook and reads the
// written cells back as the echo.
func (a *Adapter) writeRows(f *excelize.File, path, sheetName string, row int, values [][]interface{}) (*sheettable.ValueRange, error) {
	width := 0
	for i, rowValues := range values {
		cell, err := excelize.CoordinatesToCellName(1, row+i)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &rowValues); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", row+i, err)
		}
		if len(rowValues) > width {
			width = len(rowValues)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("failed to save Excel file: %w", err)
	}

	echo := make([][]interface{}, len(values))
	for i := range values {
		var out []interface{}
		for col := 1; col <= width; col++ {
			cell, err := excelize.CoordinatesToCellName(col, row+i)
			if err != nil {
				return nil, err
			}
			raw, err := f.GetCellValue(sheetName, cell, excelize.Options{RawCellValue: true})
			if err != nil {
				return nil, fmt.Errorf("failed to read back %s: %w", cell, err)
			}
			v, err := cellValue(f, sheetName, col, row+i, raw)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		echo[i] = trimTrailingEmpty(out)
	}

	lastRow := row + max(len(values), 1) - 1
	return &sheettable.ValueRange{
		Range:  fmt.Sprintf("%s!A%d:%s%d", quote(sheetName), row, sheettable.ColumnName(max(width, 1)), lastRow),
		Values: echo,
	}, nil
}

// cellValue converts a raw cell string into the scalar the cell holds.
func cellValue(f *excelize.File, sheetName string, col, row int, raw string) (interface{}, error) {
	if raw == "" {
		return "", nil
	}

	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return nil, err
	}
	cellType, err := f.GetCellType(sheetName, cell)
	if err != nil {
		return nil, fmt.Errorf("failed to get cell type of %s: %w", cell, err)
	}

	switch cellType {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula, excelize.CellTypeError:
		return raw, nil
	default:
		if floatVal, err := strconv.ParseFloat(raw, 64); err == nil {
			return floatVal, nil
		}
		return raw, nil
	}
}

func parseReadRange(rng string) (sheetName string, firstCol, lastCol int, err error) {
	if m := columnSpanPattern.FindStringSubmatch(rng); m != nil {
		first, err := excelize.ColumnNameToNumber(m[2])
		if err != nil {
			return "", 0, 0, err
		}
		last, err := excelize.ColumnNameToNumber(m[3])
		if err != nil {
			return "", 0, 0, err
		}
		if last < first {
			return "", 0, 0, fmt.Errorf("%w: %s", ErrUnsupportedRange, rng)
		}
		return unquote(m[1]), first, last, nil
	}
	if strings.Contains(rng, "!") {
		return "", 0, 0, fmt.Errorf("%w: %s", ErrUnsupportedRange, rng)
	}
	return unquote(rng), 1, 0, nil
}

func requireSheet(f *excelize.File, sheetName string) error {
	index, err := f.GetSheetIndex(sheetName)
	if err != nil {
		return fmt.Errorf("failed to get sheet index: %w", err)
	}
	if index == -1 {
		return fmt.Errorf("%w: %s", ErrSheetNotFound, sheetName)
	}
	return nil
}

func trimTrailingEmpty(values []interface{}) []interface{} {
	for len(values) > 0 && values[len(values)-1] == "" {
		values = values[:len(values)-1]
	}
	return values
}

// quote renders a sheet name for a range reference the way the Sheets API
// echoes it: names with spaces, '!' or quotes are single-quoted.
func quote(name string) string {
	if plainSheetName.MatchString(name) {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func unquote(name string) string {
	if len(name) < 2 || name[0] != '\'' || name[len(name)-1] != '\'' {
		return name
	}
	return strings.ReplaceAll(name[1:len(name)-1], "''", "'")
}
