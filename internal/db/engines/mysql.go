package engines

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"sqldeck/internal/db"
	"sqldeck/internal/introspect"
	"sqldeck/pkg/config"
)

// mysqlKeys names the information_schema aliases the MySQL queries below use.
var mysqlKeys = introspect.KeyMap{
	Table:    "TABLE_NAME",
	Column:   "COLUMN_NAME",
	Type:     "DATA_TYPE",
	Length:   "CHARACTER_MAXIMUM_LENGTH",
	Scale:    "NUMERIC_SCALE",
	Nullable: "IS_NULLABLE",
	Key:      "COLUMN_KEY",
	Comment:  "COLUMN_COMMENT",
}

// mysqlAdapter implements Adapter for MySQL/MariaDB. Database switching pins
// a dedicated connection from the pool so the USE and the statement that
// follows cannot interleave with another call's.
type mysqlAdapter struct{}

func (mysqlAdapter) Connect(ctx context.Context, cfg config.ConnectionConfig) (*sql.DB, error) {
	return db.OpenPool(ctx, cfg, "")
}

// ListDatabases returns every schema the credentials can see. MySQL hides
// nothing here; the caller gets information_schema and friends too.
func (mysqlAdapter) ListDatabases(ctx context.Context, h *db.Handle) ([]string, error) {
	rows, err := h.DB.QueryContext(ctx, "SHOW DATABASES")
	if err != nil {
		return nil, fmt.Errorf("query databases: %w", err)
	}
	return listNames(rows)
}

func (mysqlAdapter) DescribeDatabase(ctx context.Context, h *db.Handle, database string) (introspect.SchemaResult, error) {
	var s introspect.SchemaResult

	conn, err := h.DB.Conn(ctx)
	if err != nil {
		return s, fmt.Errorf("borrow connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "USE "+quoteMySQL(database)); err != nil {
		return s, fmt.Errorf("use %s: %w", database, err)
	}

	tr, err := conn.QueryContext(ctx, `
        SELECT TABLE_NAME, TABLE_TYPE
        FROM information_schema.tables
        WHERE TABLE_SCHEMA = ?
        ORDER BY TABLE_NAME`, database)
	if err != nil {
		return s, fmt.Errorf("query tables: %w", err)
	}
	tables, views, err := collectTables(tr)
	if err != nil {
		return s, err
	}

	cr, err := conn.QueryContext(ctx, `
        SELECT TABLE_NAME, COLUMN_NAME, DATA_TYPE, CHARACTER_MAXIMUM_LENGTH,
               NUMERIC_SCALE, IS_NULLABLE, COLUMN_KEY, COLUMN_COMMENT
        FROM information_schema.columns
        WHERE TABLE_SCHEMA = ?
        ORDER BY TABLE_NAME, ORDINAL_POSITION`, database)
	if err != nil {
		return s, fmt.Errorf("query columns: %w", err)
	}
	defer cr.Close()
	_, colRows, err := db.ScanAll(cr)
	if err != nil {
		return s, fmt.Errorf("scan columns: %w", err)
	}

	return describeResult(database, tables, views, introspect.GroupColumns(database, colRows, mysqlKeys)), nil
}

func (mysqlAdapter) Query(ctx context.Context, h *db.Handle, sqlText, database string) (introspect.QueryResult, error) {
	conn, err := h.DB.Conn(ctx)
	if err != nil {
		return introspect.QueryResult{}, err
	}
	// the borrowed connection goes back to the pool on success and failure alike
	defer conn.Close()

	if database != "" {
		if _, err := conn.ExecContext(ctx, "USE "+quoteMySQL(database)); err != nil {
			return introspect.QueryResult{}, err
		}
	}

	rows, err := conn.QueryContext(ctx, sqlText)
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

func (mysqlAdapter) Close(h *db.Handle) error {
	return h.DB.Close()
}

// quoteMySQL backtick-quotes an identifier.
func quoteMySQL(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func init() {
	db.Register("mysql", mysqlAdapter{})
	db.Register("mariadb", mysqlAdapter{})
}
