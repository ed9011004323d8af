// Package engines holds the per-engine adapters. Importing it (usually
// blank, from the composition root) registers every adapter with the
// dispatcher.
package engines

import (
	"database/sql"
	"fmt"

	"sqldeck/internal/introspect"
)

// collectTables scans (name, table_type) rows and splits them into tables and
// views: anything the engine reports as VIEW is a view, everything else a
// table. The slices are non-nil so an empty database serializes as [].
func collectTables(rows *sql.Rows) (tables, views []string, err error) {
	tables = []string{}
	views = []string{}
	defer rows.Close()
	for rows.Next() {
		var name, tableType string
		if err := rows.Scan(&name, &tableType); err != nil {
			return tables, views, fmt.Errorf("scan table row: %w", err)
		}
		if tableType == "VIEW" {
			views = append(views, name)
		} else {
			tables = append(tables, name)
		}
	}
	return tables, views, rows.Err()
}

// describeResult assembles the single-node result for a fully expanded
// database.
func describeResult(database string, tables, views []string, columns map[string][]introspect.ColumnDescriptor) introspect.SchemaResult {
	return introspect.SchemaResult{
		Databases: []introspect.DatabaseNode{{
			Name:   database,
			Tables: tables,
			Views:  views,
			Loaded: true,
		}},
		Columns: columns,
	}
}

// listNames scans single-column rows into a string slice.
func listNames(rows *sql.Rows) ([]string, error) {
	names := []string{}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return names, fmt.Errorf("scan database name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
