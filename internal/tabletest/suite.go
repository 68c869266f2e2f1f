// Package tabletest runs the same table scenarios against every Remote
// implementation.
package tabletest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"golang.org/x/sync/errgroup"

	sheettable "github.com/ideamans/go-sheettable"
)

// Columns is the header every scenario works with.
var Columns = []string{"id", "name", "email", "age", "active"}

// Target is a sheet reachable through a Remote.
type Target struct {
	Name          string
	Remote        sheettable.Remote
	SpreadsheetID string
	SheetName     string
}

// Run prepares the target sheet and runs every scenario against it.
func Run(t *testing.T, target Target) {
	t.Helper()
	t.Logf("Testing with %s", target.Name)

	prepareSheet(t, target)

	table, err := sheettable.New(target.Remote, &sheettable.Config{
		SpreadsheetID: target.SpreadsheetID,
		SheetName:     target.SheetName,
		Constraints:   sheettable.ColumnConstraints{Uniques: []string{"id", "email"}},
	})
	if err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	t.Run("BasicCRUD", func(t *testing.T) {
		testBasicCRUD(t, table)
	})

	t.Run("DataTypes", func(t *testing.T) {
		testDataTypes(t, table)
	})

	t.Run("Constraints", func(t *testing.T) {
		testConstraints(t, table)
	})

	t.Run("ConcurrentInserts", func(t *testing.T) {
		testConcurrentInserts(t, table)
	})
}

// prepareSheet writes the header row.
func prepareSheet(t *testing.T, target Target) {
	t.Helper()

	header := make([]interface{}, len(Columns))
	for i, col := range Columns {
		header[i] = col
	}

	rng := fmt.Sprintf("%s!1:1", target.SheetName)
	if _, err := target.Remote.UpdateValues(context.Background(), target.SpreadsheetID, rng, [][]interface{}{header}); err != nil {
		t.Fatalf("Failed to write header: %v", err)
	}
}

func testBasicCRUD(t *testing.T, table *sheettable.Table) {
	ctx := context.Background()
	clearAllRows(t, table)

	inserted, err := table.InsertRow(ctx, sheettable.RowData{
		"id":     int64(1),
		"name":   "Test User 1",
		"email":  "test1@example.com",
		"age":    int64(25),
		"active": true,
	})
	if err != nil {
		t.Fatalf("Failed to insert row: %v", err)
	}
	if inserted.Number != 2 {
		t.Errorf("Inserted row number = %d, want 2", inserted.Number)
	}

	byID := idPredicate(1)
	retrieved, err := table.FindRow(ctx, byID)
	if err != nil {
		t.Fatalf("Failed to find row: %v", err)
	}
	if retrieved == nil || retrieved.GetAsString("name", "") != "Test User 1" {
		t.Fatalf("Retrieved row = %+v, want Test User 1", retrieved)
	}

	updated, err := table.UpdateRow(ctx, byID, sheettable.RowData{
		"email": "updated@example.com",
		"age":   int64(26),
	})
	if err != nil {
		t.Fatalf("Failed to update row: %v", err)
	}
	if updated.GetAsString("email", "") != "updated@example.com" {
		t.Errorf("Updated email = %s, want updated@example.com", updated.GetAsString("email", ""))
	}
	if updated.GetAsString("name", "") != "Test User 1" {
		t.Errorf("Update lost untouched column name: %+v", updated.Values)
	}

	if err := table.DeleteRow(ctx, byID); err != nil {
		t.Fatalf("Failed to delete row: %v", err)
	}

	gone, err := table.FindRow(ctx, byID)
	if err != nil {
		t.Fatalf("Failed to find row after delete: %v", err)
	}
	if gone != nil {
		t.Errorf("Row still present after delete: %+v", gone)
	}

	if err := table.DeleteRow(ctx, byID); !errors.Is(err, sheettable.ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting a missing row, got %v", err)
	}
}

func testDataTypes(t *testing.T, table *sheettable.Table) {
	ctx := context.Background()
	clearAllRows(t, table)

	_, err := table.InsertRow(ctx, sheettable.RowData{
		"id":     int64(42),
		"name":   "hello",
		"email":  "",
		"age":    3.5,
		"active": false,
	})
	if err != nil {
		t.Fatalf("Failed to insert row: %v", err)
	}

	rows, err := table.FindRows(ctx, nil, nil)
	if err != nil {
		t.Fatalf("Failed to find rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}

	retrieved := rows[0]
	if retrieved.GetAsString("name", "") != "hello" {
		t.Errorf("String value mismatch: %v", retrieved.Values["name"])
	}
	if retrieved.GetAsInt64("id", 0) != 42 {
		t.Errorf("Int value mismatch: %v", retrieved.Values["id"])
	}
	if retrieved.GetAsFloat64("age", 0) != 3.5 {
		t.Errorf("Float value mismatch: %v", retrieved.Values["age"])
	}
	if retrieved.GetAsBool("active", true) != false {
		t.Errorf("Bool value mismatch: %v", retrieved.Values["active"])
	}
}

func testConstraints(t *testing.T, table *sheettable.Table) {
	ctx := context.Background()
	clearAllRows(t, table)

	for _, data := range []sheettable.RowData{
		{"id": int64(1), "email": "a@example.com"},
		{"id": int64(2), "email": "b@example.com"},
	} {
		if _, err := table.InsertRow(ctx, data); err != nil {
			t.Fatalf("Failed to insert row: %v", err)
		}
	}

	_, err := table.InsertRow(ctx, sheettable.RowData{"id": int64(2), "email": "A@EXAMPLE.COM"})
	var cErr *sheettable.ConstraintError
	if !errors.As(err, &cErr) {
		t.Fatalf("Expected a constraint error, got %v", err)
	}
	if len(cErr.Violations) != 2 {
		t.Errorf("Expected 2 violations, got %+v", cErr.Violations)
	}

	_, err = table.UpdateRow(ctx, idPredicate(2), sheettable.RowData{"email": "a@example.com"})
	if !errors.Is(err, sheettable.ErrConstraint) {
		t.Errorf("Expected ErrConstraint on update, got %v", err)
	}

	count, err := table.CountRows(ctx)
	if err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	if count != 2 {
		t.Errorf("CountRows() = %d, want 2", count)
	}
}

func testConcurrentInserts(t *testing.T, table *sheettable.Table) {
	ctx := context.Background()
	clearAllRows(t, table)

	const n = 5
	numbers := make([]int, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			row, err := table.InsertRow(ctx, sheettable.RowData{
				"id":    int64(100 + i),
				"email": fmt.Sprintf("user%d@example.com", i),
			})
			if err != nil {
				return err
			}
			numbers[i] = row.Number
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("Concurrent insert failed: %v", err)
	}

	seen := make(map[int]bool, n)
	for _, number := range numbers {
		if seen[number] {
			t.Errorf("Row number %d returned twice: %v", number, numbers)
		}
		seen[number] = true
	}

	count, err := table.CountRows(ctx)
	if err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	if count != n {
		t.Errorf("CountRows() = %d, want %d", count, n)
	}
}

func idPredicate(id int64) sheettable.Predicate {
	return func(row *sheettable.Row, _ int, _ []*sheettable.Row) bool {
		return row.GetAsInt64("id", 0) == id
	}
}

// clearAllRows deletes data rows one at a time from the bottom up.
func clearAllRows(t *testing.T, table *sheettable.Table) {
	t.Helper()
	ctx := context.Background()

	for {
		rows, err := table.FindRows(ctx, nil, nil)
		if err != nil {
			t.Fatalf("Failed to read rows for clearing: %v", err)
		}
		if len(rows) == 0 {
			return
		}

		last := rows[len(rows)-1].Number
		err = table.DeleteRow(ctx, func(row *sheettable.Row, _ int, _ []*sheettable.Row) bool {
			return row.Number == last
		})
		if err != nil {
			t.Fatalf("Failed to delete row %d: %v", last, err)
		}
	}
}

// LoadEnvFile loads KEY=VALUE lines from a .env file into the environment.
// Literal \n sequences in private keys become newlines.
func LoadEnvFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
			value = value[1 : len(value)-1]
		}
		if strings.HasSuffix(key, "PRIVATE_KEY") {
			value = strings.ReplaceAll(value, "\\n", "\n")
		}

		os.Setenv(key, value)
	}

	return nil
}
