package excel

import (
	sheettable "github.com/ideamans/go-sheettable"
)

// Config holds configuration for a table stored in an Excel workbook
type Config struct {
	FilePath    string                       // Path to the Excel file, used as the spreadsheet ID
	SheetName   string                       // Name of the sheet to use
	Constraints sheettable.ColumnConstraints // Checked on insert and update
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.FilePath == "" {
		return ErrMissingFilePath
	}
	if c.SheetName == "" {
		return ErrMissingSheetName
	}
	return nil
}

// TableConfig converts the adapter config into a table config.
func (c *Config) TableConfig() *sheettable.Config {
	return &sheettable.Config{
		SpreadsheetID: c.FilePath,
		SheetName:     c.SheetName,
		Constraints:   c.Constraints,
	}
}
