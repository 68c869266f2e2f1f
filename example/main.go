package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	sheettable "github.com/ideamans/go-sheettable"
	"github.com/ideamans/go-sheettable/adapters/googlesheets"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose logging")
	sheetName := flag.String("sheet", "products", "Sheet holding the table")
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	if err := run(*sheetName); err != nil {
		log.Fatal(err)
	}
}

func run(sheetName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		return errors.New("GOOGLE_SPREADSHEET_ID is required")
	}

	// Service account email and key, or Application Default Credentials
	var credentials interface{}
	email := os.Getenv("GOOGLE_AUTH_CLIENT_EMAIL")
	privateKey := strings.ReplaceAll(os.Getenv("GOOGLE_AUTH_PRIVATE_KEY"), "\\n", "\n")
	if email != "" && privateKey != "" {
		credentials = &googlesheets.ServiceAccountKey{ClientEmail: email, PrivateKey: privateKey}
	}

	// The sheet's first row must hold: id, sku, name, price
	table, err := googlesheets.Open(ctx, googlesheets.Config{
		SpreadsheetID: spreadsheetID,
		SheetName:     sheetName,
		Constraints:   sheettable.ColumnConstraints{Uniques: []string{"id", "sku"}},
	}, credentials)
	if err != nil {
		return fmt.Errorf("failed to open table: %w", err)
	}

	count, err := table.CountRows(ctx)
	if err != nil {
		return fmt.Errorf("failed to count rows: %w", err)
	}
	fmt.Printf("%s has %d rows\n", sheetName, count)

	id := time.Now().Unix()
	row, err := table.InsertRow(ctx, sheettable.RowData{
		"id":    id,
		"sku":   fmt.Sprintf("SKU-%d", id),
		"name":  "Widget",
		"price": 9.99,
	})
	if err != nil {
		return fmt.Errorf("failed to insert row: %w", err)
	}
	fmt.Printf("Inserted row %d\n", row.Number)

	// Inserting the same id again is rejected before anything is written
	_, err = table.InsertRow(ctx, sheettable.RowData{"id": id, "sku": "OTHER"})
	var cErr *sheettable.ConstraintError
	if errors.As(err, &cErr) {
		for _, v := range cErr.Violations {
			fmt.Printf("Rejected duplicate: %s\n", v.Description)
		}
	} else if err != nil {
		return fmt.Errorf("unexpected insert error: %w", err)
	}

	byID := func(r *sheettable.Row, _ int, _ []*sheettable.Row) bool {
		return r.GetAsInt64("id", 0) == id
	}

	row, err = table.UpdateRow(ctx, byID, sheettable.RowData{"price": 12.5})
	if err != nil {
		return fmt.Errorf("failed to update row: %w", err)
	}
	fmt.Printf("Row %d now costs %.2f\n", row.Number, row.GetAsFloat64("price", 0))

	rows, err := table.FindRows(ctx, nil, []sheettable.ColumnSort{sheettable.Desc("price"), sheettable.Asc("name")})
	if err != nil {
		return fmt.Errorf("failed to find rows: %w", err)
	}
	for _, r := range rows {
		fmt.Printf("  Row %d: %s %s (%.2f)\n", r.Number, r.GetAsString("sku", ""), r.GetAsString("name", ""), r.GetAsFloat64("price", 0))
	}

	if err := table.DeleteRow(ctx, byID); err != nil {
		return fmt.Errorf("failed to delete row: %w", err)
	}
	fmt.Println("Deleted the example row")

	return nil
}
