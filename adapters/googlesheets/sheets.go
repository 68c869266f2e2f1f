package googlesheets

import (
	"context"
	"fmt"

	sheettable "github.com/ideamans/go-sheettable"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	valueInputRaw        = "RAW"
	insertDataInsertRows = "INSERT_ROWS"
)

// Client implements sheettable.Remote on the Google Sheets v4 API.
// Errors from the API are returned unwrapped so callers can inspect
// *googleapi.Error and apply their own retry policy.
type Client struct {
	service *sheets.Service
}

var _ sheettable.Remote = (*Client)(nil)

// NewClient creates a Google Sheets client with provided options
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{service: service}, nil
}

// GetValues reads a range of values.
func (c *Client) GetValues(ctx context.Context, spreadsheetID, rng string, render *sheettable.RenderOptions) (*sheettable.ValueRange, error) {
	call := c.service.Spreadsheets.Values.Get(spreadsheetID, rng)
	if render != nil {
		if render.ValueRender != "" {
			call = call.ValueRenderOption(render.ValueRender)
		}
		if render.DateTimeRender != "" {
			call = call.DateTimeRenderOption(render.DateTimeRender)
		}
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return fromValueRange(resp), nil
}

// AppendValues appends rows as new rows after the table in rng and returns
// the echoed data.
func (c *Client) AppendValues(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) (*sheettable.ValueRange, error) {
	resp, err := c.service.Spreadsheets.Values.Append(spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption(valueInputRaw).
		InsertDataOption(insertDataInsertRows).
		IncludeValuesInResponse(true).
		ResponseValueRenderOption(sheettable.RenderUnformattedValue).
		ResponseDateTimeRenderOption(sheettable.RenderSerialNumber).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if resp.Updates == nil {
		return nil, nil
	}
	return fromValueRange(resp.Updates.UpdatedData), nil
}

// UpdateValues overwrites rng and returns the echoed data.
func (c *Client) UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) (*sheettable.ValueRange, error) {
	resp, err := c.service.Spreadsheets.Values.Update(spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption(valueInputRaw).
		IncludeValuesInResponse(true).
		ResponseValueRenderOption(sheettable.RenderUnformattedValue).
		ResponseDateTimeRenderOption(sheettable.RenderSerialNumber).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return fromValueRange(resp.UpdatedData), nil
}

// GetSheets lists sheet IDs and titles of the spreadsheet.
func (c *Client) GetSheets(ctx context.Context, spreadsheetID string) ([]sheettable.SheetProperties, error) {
	ss, err := c.service.Spreadsheets.Get(spreadsheetID).
		Fields(googleapi.Field("sheets.properties(sheetId,title)")).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	props := make([]sheettable.SheetProperties, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties == nil {
			continue
		}
		props = append(props, sheettable.SheetProperties{
			SheetID: sh.Properties.SheetId,
			Title:   sh.Properties.Title,
		})
	}
	return props, nil
}

// BatchUpdate sends structural requests in a single batch.
func (c *Client) BatchUpdate(ctx context.Context, spreadsheetID string, requests []sheettable.Request) error {
	reqs := make([]*sheets.Request, 0, len(requests))
	for _, r := range requests {
		if r.DeleteDimension == nil {
			continue
		}
		d := r.DeleteDimension
		reqs = append(reqs, &sheets.Request{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    d.SheetID,
					Dimension:  d.Dimension,
					StartIndex: d.StartIndex,
					EndIndex:   d.EndIndex,
					// zero is a valid sheet ID and start index
					ForceSendFields: []string{"SheetId", "StartIndex", "EndIndex"},
				},
			},
		})
	}
	if len(reqs) == 0 {
		return nil
	}

	_, err := c.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: reqs,
	}).Context(ctx).Do()
	return err
}

func fromValueRange(vr *sheets.ValueRange) *sheettable.ValueRange {
	if vr == nil {
		return nil
	}
	return &sheettable.ValueRange{
		Range:  vr.Range,
		Values: vr.Values,
	}
}
