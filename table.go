package sheettable

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNilPredicate is returned by single-row operations called without a predicate.
var ErrNilPredicate = errors.New("predicate is required")

// Predicate selects rows. It receives the row, its index in the snapshot and
// the whole snapshot, and must not modify any of them.
type Predicate func(row *Row, index int, rows []*Row) bool

// All matches every row.
func All(*Row, int, []*Row) bool { return true }

// Table exposes one sheet of a spreadsheet as a table whose first row holds
// the column names.
//
// Reads take a fresh snapshot each call and never block. Inserts, updates and
// deletes run one at a time per spreadsheet, across every Table that shares
// the same LockRegistry.
type Table struct {
	remote        Remote
	spreadsheetID string
	sheetName     string
	constraints   ColumnConstraints
	locks         LockRegistry
	lockTimeout   time.Duration
	log           logrus.FieldLogger
}

// New creates a Table over remote with the given configuration
func New(remote Remote, config *Config) (*Table, error) {
	if remote == nil {
		return nil, ErrNilRemote
	}
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var locks LockRegistry = DefaultLocks()
	if config.Locks != nil {
		locks = config.Locks
	}

	var logger logrus.FieldLogger = logrus.StandardLogger()
	if config.Logger != nil {
		logger = config.Logger
	}

	return &Table{
		remote:        remote,
		spreadsheetID: config.SpreadsheetID,
		sheetName:     config.SheetName,
		constraints:   config.Constraints,
		locks:         locks,
		lockTimeout:   config.LockTimeout,
		log: logger.WithFields(logrus.Fields{
			"spreadsheet": config.SpreadsheetID,
			"sheet":       config.SheetName,
		}),
	}, nil
}

// SpreadsheetID returns the ID of the spreadsheet holding the table.
func (t *Table) SpreadsheetID() string { return t.spreadsheetID }

// SheetName returns the name of the sheet holding the table.
func (t *Table) SheetName() string { return t.sheetName }

// Constraints returns the column constraints enforced on writes.
func (t *Table) Constraints() ColumnConstraints { return t.constraints }

// Open reads a full snapshot of the table.
func (t *Table) Open(ctx context.Context) (*Snapshot, error) {
	snap, err := OpenTable(ctx, t.remote, t.spreadsheetID, t.sheetName)
	if err != nil {
		return nil, err
	}
	t.log.WithFields(logrus.Fields{
		"columns": len(snap.Columns),
		"rows":    len(snap.Rows),
	}).Debug("opened table")
	return snap, nil
}

// Columns returns the column names from the header row.
func (t *Table) Columns(ctx context.Context) ([]string, error) {
	snap, err := t.Open(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Columns, nil
}

// CountRows returns the number of data rows without reading the whole table.
func (t *Table) CountRows(ctx context.Context) (int, error) {
	return CountRows(ctx, t.remote, t.spreadsheetID, t.sheetName)
}

// FindRows returns the rows matching predicate (all rows when nil), ordered
// by sorting when given.
func (t *Table) FindRows(ctx context.Context, predicate Predicate, sorting []ColumnSort) ([]*Row, error) {
	snap, err := t.Open(ctx)
	if err != nil {
		return nil, err
	}
	if predicate == nil {
		predicate = All
	}

	found := make([]*Row, 0, len(snap.Rows))
	for i, row := range snap.Rows {
		if predicate(row, i, snap.Rows) {
			found = append(found, row)
		}
	}

	if len(sorting) > 0 {
		if err := SortRows(found, snap.Columns, sorting); err != nil {
			return nil, err
		}
	}
	return found, nil
}

// FindRow returns the first row matching predicate, or nil when none does.
func (t *Table) FindRow(ctx context.Context, predicate Predicate) (*Row, error) {
	if predicate == nil {
		return nil, ErrNilPredicate
	}
	snap, err := t.Open(ctx)
	if err != nil {
		return nil, err
	}
	return findFirst(snap.Rows, predicate), nil
}

// FindKeyRows maps each requested key to the row whose selected key equals
// it. Keys without a row are left out. When several rows share a key the
// last one in sheet order wins.
func FindKeyRows[K comparable](ctx context.Context, t *Table, selector func(row *Row) K, keys []K) (map[K]*Row, error) {
	wanted := make(map[K]struct{}, len(keys))
	for _, k := range keys {
		wanted[k] = struct{}{}
	}

	snap, err := t.Open(ctx)
	if err != nil {
		return nil, err
	}

	rowsByKey := make(map[K]*Row, len(wanted))
	for _, row := range snap.Rows {
		k := selector(row)
		if _, ok := wanted[k]; ok {
			rowsByKey[k] = row
		}
	}
	return rowsByKey, nil
}

// InsertRow appends newRow as a new row and returns it as stored.
//
// A *DataError means the row was written but the service's echo could not be
// trusted; retrying may insert the row twice.
func (t *Table) InsertRow(ctx context.Context, newRow RowData) (*Row, error) {
	var inserted *Row
	err := t.exclusive(ctx, "insert", func() error {
		snap, err := t.Open(ctx)
		if err != nil {
			return err
		}

		candidate := &Row{Values: newRow}
		if err := EnforceConstraints(snap.Rows, candidate, t.constraints); err != nil {
			return err
		}

		values, err := RowToValues(newRow, snap.Columns)
		if err != nil {
			return err
		}

		updated, err := t.remote.AppendValues(ctx, t.spreadsheetID, t.sheetName, [][]interface{}{values})
		if err != nil {
			return err
		}

		rowValues, rowNumber, err := ProcessUpdatedData(updated, t.sheetName, values)
		if err != nil {
			return err
		}
		inserted = ValuesToRow(rowValues, snap.Columns, rowNumber)
		t.log.WithField("row", rowNumber).Debug("inserted row")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

// UpdateRow merges updates into the first row matching predicate, writes it
// back in place and returns it as stored. Columns not named in updates keep
// their values; set a column to "" to clear it.
func (t *Table) UpdateRow(ctx context.Context, predicate Predicate, updates RowData) (*Row, error) {
	if predicate == nil {
		return nil, ErrNilPredicate
	}

	var updatedRow *Row
	err := t.exclusive(ctx, "update", func() error {
		snap, err := t.Open(ctx)
		if err != nil {
			return err
		}

		existing := findFirst(snap.Rows, predicate)
		if existing == nil {
			return errRowNotFound
		}

		for k, v := range updates {
			existing.Values[k] = v
		}

		if err := EnforceConstraints(snap.Rows, existing, t.constraints); err != nil {
			return err
		}

		values, err := RowToValues(existing.Values, snap.Columns)
		if err != nil {
			return err
		}

		updated, err := t.remote.UpdateValues(ctx, t.spreadsheetID, rowRange(t.sheetName, existing.Number), [][]interface{}{values})
		if err != nil {
			return err
		}

		rowValues, rowNumber, err := ProcessUpdatedData(updated, t.sheetName, values)
		if err != nil {
			return err
		}
		updatedRow = ValuesToRow(rowValues, snap.Columns, rowNumber)
		t.log.WithField("row", rowNumber).Debug("updated row")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updatedRow, nil
}

// DeleteRow removes the first row matching predicate from the sheet. Rows
// below it move up by one.
func (t *Table) DeleteRow(ctx context.Context, predicate Predicate) error {
	if predicate == nil {
		return ErrNilPredicate
	}

	return t.exclusive(ctx, "delete", func() error {
		snap, err := t.Open(ctx)
		if err != nil {
			return err
		}

		existing := findFirst(snap.Rows, predicate)
		if existing == nil {
			return errRowNotFound
		}

		sheets, err := t.remote.GetSheets(ctx, t.spreadsheetID)
		if err != nil {
			return err
		}
		var sheet *SheetProperties
		for i := range sheets {
			if sheets[i].Title == t.sheetName {
				sheet = &sheets[i]
				break
			}
		}
		if sheet == nil {
			return &NotFoundError{Msg: fmt.Sprintf("Sheet with name '%s' not found", t.sheetName)}
		}

		err = t.remote.BatchUpdate(ctx, t.spreadsheetID, []Request{{
			DeleteDimension: &DimensionRange{
				SheetID:    sheet.SheetID,
				Dimension:  DimensionRows,
				StartIndex: int64(existing.Number - 1),
				EndIndex:   int64(existing.Number),
			},
		}})
		if err != nil {
			return err
		}
		t.log.WithField("row", existing.Number).Debug("deleted row")
		return nil
	})
}

// exclusive runs fn while holding the spreadsheet's write lock. The lock is
// released on every return path.
func (t *Table) exclusive(ctx context.Context, op string, fn func() error) error {
	waitCtx := ctx
	if t.lockTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, t.lockTimeout)
		defer cancel()
	}

	release, err := t.locks.Acquire(waitCtx, t.spreadsheetID)
	if err != nil {
		return err
	}
	log := t.log.WithField("op", op)
	log.Debug("acquired write lock")
	defer func() {
		release()
		log.Debug("released write lock")
	}()

	return fn()
}

func findFirst(rows []*Row, predicate Predicate) *Row {
	for i, row := range rows {
		if predicate(row, i, rows) {
			return row
		}
	}
	return nil
}
