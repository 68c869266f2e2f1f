package sheettable_test

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	sheettable "github.com/ideamans/go-sheettable"
)

var rowSpan = regexp.MustCompile(`^(.+)!([0-9]+):([0-9]+)$`)

type getCall struct {
	rng    string
	render *sheettable.RenderOptions
}

// fakeRemote keeps sheets in memory and echoes writes the way the Sheets API
// does for JSON clients: numbers come back as float64, empty cells as "" and
// trailing empty cells are dropped.
type fakeRemote struct {
	mu       sync.Mutex
	order    []string
	grids    map[string][][]interface{}
	ids      map[string]int64
	gets     []getCall
	requests []sheettable.Request
	appends  int

	// beforeAppend runs outside the mutex before each append is applied.
	beforeAppend func(ctx context.Context, values []interface{}) error
	// echo replaces the computed echo when set.
	echo func(rng string, row []interface{}) *sheettable.ValueRange
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		grids: make(map[string][][]interface{}),
		ids:   make(map[string]int64),
	}
}

func (f *fakeRemote) addSheet(title string, id int64, rows ...[]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.order = append(f.order, title)
	f.ids[title] = id
	f.grids[title] = rows
}

func (f *fakeRemote) grid(title string) [][]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.grids[title]
}

func (f *fakeRemote) GetValues(ctx context.Context, spreadsheetID, rng string, render *sheettable.RenderOptions) (*sheettable.ValueRange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.gets = append(f.gets, getCall{rng: rng, render: render})

	title, firstOnly := rng, false
	if name, span, ok := strings.Cut(rng, "!"); ok {
		if span != "A:A" {
			return nil, fmt.Errorf("unexpected range %q", rng)
		}
		title, firstOnly = name, true
	}
	rows, ok := f.grids[title]
	if !ok {
		return nil, fmt.Errorf("unable to parse range: %s", rng)
	}

	vr := &sheettable.ValueRange{Range: title}
	for _, row := range rows {
		out := echoRow(row)
		if firstOnly && len(out) > 1 {
			out = out[:1]
		}
		vr.Values = append(vr.Values, out)
	}
	return vr, nil
}

func (f *fakeRemote) AppendValues(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) (*sheettable.ValueRange, error) {
	if f.beforeAppend != nil {
		if err := f.beforeAppend(ctx, values[0]); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.appends++
	f.grids[rng] = append(f.grids[rng], values[0])
	return f.echoFor(rng, len(f.grids[rng]), values[0]), nil
}

func (f *fakeRemote) UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) (*sheettable.ValueRange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m := rowSpan.FindStringSubmatch(rng)
	if m == nil {
		return nil, fmt.Errorf("unexpected range %q", rng)
	}
	n, _ := strconv.Atoi(m[2])
	rows := f.grids[m[1]]
	if n < 1 || n > len(rows) {
		return nil, fmt.Errorf("row %d out of range", n)
	}
	rows[n-1] = values[0]
	return f.echoFor(m[1], n, values[0]), nil
}

func (f *fakeRemote) GetSheets(ctx context.Context, spreadsheetID string) ([]sheettable.SheetProperties, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	props := make([]sheettable.SheetProperties, 0, len(f.order))
	for _, title := range f.order {
		props = append(props, sheettable.SheetProperties{SheetID: f.ids[title], Title: title})
	}
	return props, nil
}

func (f *fakeRemote) BatchUpdate(ctx context.Context, spreadsheetID string, requests []sheettable.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, requests...)
	for _, r := range requests {
		d := r.DeleteDimension
		for title, id := range f.ids {
			if id != d.SheetID {
				continue
			}
			rows := f.grids[title]
			f.grids[title] = append(rows[:d.StartIndex:d.StartIndex], rows[d.EndIndex:]...)
		}
	}
	return nil
}

func (f *fakeRemote) echoFor(title string, rowNumber int, row []interface{}) *sheettable.ValueRange {
	rng := fmt.Sprintf("%s!A%d:%s%d", title, rowNumber, sheettable.ColumnName(max(len(row), 1)), rowNumber)
	if f.echo != nil {
		return f.echo(rng, row)
	}
	return &sheettable.ValueRange{Range: rng, Values: [][]interface{}{echoRow(row)}}
}

func echoRow(row []interface{}) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		switch val := v.(type) {
		case nil:
			out[i] = ""
		case int:
			out[i] = float64(val)
		case int64:
			out[i] = float64(val)
		default:
			out[i] = val
		}
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}
