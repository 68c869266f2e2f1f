package main

import (
	"context"
	"flag"
	"fmt"

	log "github.com/sirupsen/logrus"

	sheettable "github.com/ideamans/go-sheettable"
	"github.com/ideamans/go-sheettable/adapters/excel"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose logging")
	path := flag.String("file", "./example_data.xlsx", "Workbook to use")
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	if err := run(*path); err != nil {
		log.Fatal(err)
	}
}

func run(path string) error {
	ctx := context.Background()

	columns := []string{"name", "email", "age", "department", "active"}
	if err := excel.New().CreateTable(ctx, path, "users", columns); err != nil {
		return fmt.Errorf("failed to prepare workbook: %w", err)
	}

	table, err := excel.Open(&excel.Config{
		FilePath:    path,
		SheetName:   "users",
		Constraints: sheettable.ColumnConstraints{Uniques: []string{"email"}},
	})
	if err != nil {
		return fmt.Errorf("failed to open table: %w", err)
	}

	// 1. Insert rows; emails already in the workbook are rejected
	fmt.Println("Adding users...")
	users := []sheettable.RowData{
		{"name": "Alice Johnson", "email": "alice@example.com", "age": 30, "department": "Engineering", "active": true},
		{"name": "Bob Smith", "email": "bob@example.com", "age": 25, "department": "Marketing", "active": true},
		{"name": "Charlie Brown", "email": "charlie@example.com", "age": 35, "department": "Engineering", "active": false},
	}
	for _, user := range users {
		row, err := table.InsertRow(ctx, user)
		if err != nil {
			log.WithError(err).Warn("failed to add user")
			continue
		}
		fmt.Printf("Added user: %s (Row %d)\n", row.GetAsString("name", ""), row.Number)
	}

	// 2. Filter with conditions
	fmt.Println("\nActive engineers:")
	engineers, err := table.FindRows(ctx, sheettable.Where(
		sheettable.Condition{Column: "department", Operator: sheettable.OpEqual, Value: "Engineering"},
		sheettable.Condition{Column: "active", Operator: sheettable.OpEqual, Value: true},
	), nil)
	if err != nil {
		return err
	}
	for _, r := range engineers {
		fmt.Printf("- %s (age: %d)\n", r.GetAsString("name", ""), r.GetAsInt64("age", 0))
	}

	// 3. Update in place
	fmt.Println("\nMoving Bob to Sales...")
	bob, err := table.UpdateRow(ctx, func(r *sheettable.Row, _ int, _ []*sheettable.Row) bool {
		return r.GetAsString("name", "") == "Bob Smith"
	}, sheettable.RowData{"department": "Sales"})
	if err != nil {
		log.WithError(err).Warn("update failed")
	} else {
		fmt.Printf("Row %d is now in %s\n", bob.Number, bob.GetAsString("department", ""))
	}

	// 4. Look rows up by email
	byEmail := func(r *sheettable.Row) string { return r.GetAsString("email", "") }
	found, err := sheettable.FindKeyRows(ctx, table, byEmail, []string{"alice@example.com", "nobody@example.com"})
	if err != nil {
		return err
	}
	for email, r := range found {
		fmt.Printf("\n%s is on row %d\n", email, r.Number)
	}

	// 5. Sorted listing
	fmt.Println("\nEveryone by age, oldest first:")
	rows, err := table.FindRows(ctx, nil, []sheettable.ColumnSort{sheettable.Desc("age")})
	if err != nil {
		return err
	}
	for _, r := range rows {
		fmt.Printf("- %s (%d)\n", r.GetAsString("name", ""), r.GetAsInt64("age", 0))
	}

	fmt.Printf("\nExample completed. Check %s for the data.\n", path)
	return nil
}
