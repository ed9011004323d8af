package engines

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/denisenkom/go-mssqldb"

	"sqldeck/internal/db"
	"sqldeck/internal/introspect"
	"sqldeck/pkg/config"
)

// mssqlKeys names the INFORMATION_SCHEMA aliases the SQL Server queries below
// use.
var mssqlKeys = introspect.KeyMap{
	Table:    "TABLE_NAME",
	Column:   "COLUMN_NAME",
	Type:     "DATA_TYPE",
	Length:   "CHARACTER_MAXIMUM_LENGTH",
	Scale:    "NUMERIC_SCALE",
	Nullable: "IS_NULLABLE",
	Key:      "COLUMN_KEY",
	Comment:  "COLUMN_COMMENT",
}

// mssqlAdapter implements Adapter for Microsoft SQL Server. Cross-database
// access works by qualifying INFORMATION_SCHEMA with the database name, and
// queries against a target database run as a single "USE [db]; ..." batch.
type mssqlAdapter struct{}

func (mssqlAdapter) Connect(ctx context.Context, cfg config.ConnectionConfig) (*sql.DB, error) {
	return db.OpenPool(ctx, cfg, "")
}

func (mssqlAdapter) ListDatabases(ctx context.Context, h *db.Handle) ([]string, error) {
	rows, err := h.DB.QueryContext(ctx, `
        SELECT name
        FROM sys.databases
        WHERE name NOT IN ('master','tempdb','model','msdb')
        ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query databases: %w", err)
	}
	return listNames(rows)
}

func (mssqlAdapter) DescribeDatabase(ctx context.Context, h *db.Handle, database string) (introspect.SchemaResult, error) {
	var s introspect.SchemaResult
	q := quoteBracket(database)

	tr, err := h.DB.QueryContext(ctx, fmt.Sprintf(`
        SELECT TABLE_NAME, TABLE_TYPE
        FROM %s.INFORMATION_SCHEMA.TABLES
        ORDER BY TABLE_NAME`, q))
	if err != nil {
		return s, fmt.Errorf("query tables: %w", err)
	}
	tables, views, err := collectTables(tr)
	if err != nil {
		return s, err
	}

	cr, err := h.DB.QueryContext(ctx, fmt.Sprintf(`
        SELECT c.TABLE_NAME, c.COLUMN_NAME, c.DATA_TYPE, c.CHARACTER_MAXIMUM_LENGTH,
               c.NUMERIC_SCALE, c.IS_NULLABLE,
               CASE WHEN k.COLUMN_NAME IS NOT NULL THEN 'PRI' ELSE '' END AS COLUMN_KEY,
               CAST('' AS nvarchar(1)) AS COLUMN_COMMENT
        FROM %[1]s.INFORMATION_SCHEMA.COLUMNS c
        LEFT JOIN (
            SELECT kcu.TABLE_SCHEMA, kcu.TABLE_NAME, kcu.COLUMN_NAME
            FROM %[1]s.INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
            JOIN %[1]s.INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
              ON tc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME
             AND tc.TABLE_SCHEMA = kcu.TABLE_SCHEMA
            WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY'
        ) k ON k.TABLE_SCHEMA = c.TABLE_SCHEMA
           AND k.TABLE_NAME = c.TABLE_NAME
           AND k.COLUMN_NAME = c.COLUMN_NAME
        ORDER BY c.TABLE_NAME, c.ORDINAL_POSITION`, q))
	if err != nil {
		return s, fmt.Errorf("query columns: %w", err)
	}
	defer cr.Close()
	_, colRows, err := db.ScanAll(cr)
	if err != nil {
		return s, fmt.Errorf("scan columns: %w", err)
	}

	return describeResult(database, tables, views, introspect.GroupColumns(database, colRows, mssqlKeys)), nil
}

func (mssqlAdapter) Query(ctx context.Context, h *db.Handle, sqlText, database string) (introspect.QueryResult, error) {
	if database != "" {
		// single batch so the USE applies to the statement that follows
		sqlText = "USE " + quoteBracket(database) + ";\n" + sqlText
	}

	rows, err := h.DB.QueryContext(ctx, sqlText)
	if err != nil {
		return introspect.QueryResult{}, err
	}
	defer rows.Close()

	headers, recs, err := db.ScanAll(rows)
	if err != nil {
		return introspect.QueryResult{}, err
	}
	return introspect.QueryResult{Headers: headers, Rows: recs}, nil
}

func (mssqlAdapter) Close(h *db.Handle) error {
	return h.DB.Close()
}

// quoteBracket bracket-quotes an identifier.
func quoteBracket(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func init() {
	db.Register("sqlserver", mssqlAdapter{})
	db.Register("mssql", mssqlAdapter{})
}
