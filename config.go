package sheettable

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Config represents configuration for a Table
type Config struct {
	SpreadsheetID string            // Spreadsheet (Drive file) ID
	SheetName     string            // Sheet holding the table
	Constraints   ColumnConstraints // Checked on insert and update
	Locks         LockRegistry      // Write exclusion per spreadsheet (default: DefaultLocks())
	LockTimeout   time.Duration     // Max wait for the write lock (default: wait forever)
	Logger        logrus.FieldLogger
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.SpreadsheetID == "" {
		return ErrMissingSpreadsheetID
	}
	if c.SheetName == "" {
		return ErrMissingSheetName
	}
	return nil
}
