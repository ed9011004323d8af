package engines

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"sqldeck/internal/db"
	"sqldeck/internal/introspect"
	"sqldeck/pkg/config"
)

// pgKeys names the information_schema aliases the PostgreSQL queries below
// use. lib/pq reports labels lowercased.
var pgKeys = introspect.KeyMap{
	Table:    "table_name",
	Column:   "column_name",
	Type:     "data_type",
	Length:   "character_maximum_length",
	Scale:    "numeric_scale",
	Nullable: "is_nullable",
	Key:      "column_key",
	Comment:  "column_comment",
}

// pgAdapter implements Adapter for PostgreSQL. A pool is bound to one
// database at connect time, so targeting another database means opening a
// temporary pool scoped to that database and tearing it down inside the same
// call. The original handle is never touched.
type pgAdapter struct{}

func (pgAdapter) Connect(ctx context.Context, cfg config.ConnectionConfig) (*sql.DB, error) {
	return db.OpenPool(ctx, cfg, "")
}

func (pgAdapter) ListDatabases(ctx context.Context, h *db.Handle) ([]string, error) {
	rows, err := h.DB.QueryContext(ctx, `
        SELECT datname
        FROM pg_database
        WHERE NOT datistemplate
          AND datname NOT IN ('information_schema','pg_catalog')
        ORDER BY datname`)
	if err != nil {
		return nil, fmt.Errorf("query databases: %w", err)
	}
	return listNames(rows)
}

func (pgAdapter) DescribeDatabase(ctx context.Context, h *db.Handle, database string) (introspect.SchemaResult, error) {
	var s introspect.SchemaResult

	pool, err := db.OpenPool(ctx, h.Cfg, database)
	if err != nil {
		return s, fmt.Errorf("open scoped pool for %s: %w", database, err)
	}
	// the scoped pool must not outlive this call, success or error
	defer pool.Close()

	tr, err := pool.QueryContext(ctx, `
        SELECT table_name, table_type
        FROM information_schema.tables
        WHERE table_schema NOT IN ('pg_catalog','information_schema')
        ORDER BY table_name`)
	if err != nil {
		return s, fmt.Errorf("query tables: %w", err)
	}
	tables, views, err := collectTables(tr)
	if err != nil {
		return s, err
	}

	cr, err := pool.QueryContext(ctx, `
        SELECT c.table_name, c.column_name, c.data_type, c.character_maximum_length,
               c.numeric_scale, c.is_nullable,
               CASE WHEN pk.column_name IS NOT NULL THEN 'PRI' ELSE '' END AS column_key,
               col_description((quote_ident(c.table_schema)||'.'||quote_ident(c.table_name))::regclass, c.ordinal_position) AS column_comment
        FROM information_schema.columns c
        LEFT JOIN (
            SELECT kcu.table_schema, kcu.table_name, kcu.column_name
            FROM information_schema.table_constraints tc
            JOIN information_schema.key_column_usage kcu
              ON tc.constraint_name = kcu.constraint_name
             AND tc.constraint_schema = kcu.constraint_schema
            WHERE tc.constraint_type = 'PRIMARY KEY'
        ) pk ON pk.table_schema = c.table_schema
            AND pk.table_name = c.table_name
            AND pk.column_name = c.column_name
        WHERE c.table_schema NOT IN ('pg_catalog','information_schema')
        ORDER BY c.table_name, c.ordinal_position`)
	if err != nil {
		return s, fmt.Errorf("query columns: %w", err)
	}
	defer cr.Close()
	_, colRows, err := db.ScanAll(cr)
	if err != nil {
		return s, fmt.Errorf("scan columns: %w", err)
	}

	return describeResult(database, tables, views, introspect.GroupColumns(database, colRows, pgKeys)), nil
}

func (pgAdapter) Query(ctx context.Context, h *db.Handle, sqlText, database string) (introspect.QueryResult, error) {
	// every statement runs on a temporary pool: the target database when one
	// is given, the handle's default otherwise
	pool, err := db.OpenPool(ctx, h.Cfg, database)
	if err != nil {
		return introspect.QueryResult{}, err
	}
	defer pool.Close()

	rows, err := pool.QueryContext(ctx, sqlText)
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

func (pgAdapter) Close(h *db.Handle) error {
	return h.DB.Close()
}

func init() {
	db.Register("postgres", pgAdapter{})
	db.Register("postgresql", pgAdapter{})
}
