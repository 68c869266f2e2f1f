package googlesheets

import (
	"context"

	sheettable "github.com/ideamans/go-sheettable"
	"google.golang.org/api/option"
)

// Config represents configuration for a table stored in Google Sheets
type Config struct {
	SpreadsheetID string
	SheetName     string
	Constraints   sheettable.ColumnConstraints
}

// TableConfig converts the adapter config into a table config that uses the
// process-wide lock registry.
func (c Config) TableConfig() *sheettable.Config {
	return &sheettable.Config{
		SpreadsheetID: c.SpreadsheetID,
		SheetName:     c.SheetName,
		Constraints:   c.Constraints,
	}
}

// Open creates a Table for the configured sheet. credentials accepts the same
// forms as CreateTokenSource; nil selects Application Default Credentials.
func Open(ctx context.Context, config Config, credentials interface{}, opts ...option.ClientOption) (*sheettable.Table, error) {
	tableConfig := config.TableConfig()
	if err := tableConfig.Validate(); err != nil {
		return nil, err
	}

	var client *Client
	var err error
	if credentials == nil {
		client, err = NewWithDefaultCredentials(ctx, opts...)
	} else {
		client, err = NewWithCredentials(ctx, credentials, opts...)
	}
	if err != nil {
		return nil, err
	}

	return sheettable.New(client, tableConfig)
}
