package engines

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqldeck/internal/db"
	"sqldeck/pkg/config"
)

var mysqlColumnHeaders = []string{
	"TABLE_NAME", "COLUMN_NAME", "DATA_TYPE", "CHARACTER_MAXIMUM_LENGTH",
	"NUMERIC_SCALE", "IS_NULLABLE", "COLUMN_KEY", "COLUMN_COMMENT",
}

func mysqlHandle(t *testing.T) (*db.Handle, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return &db.Handle{Type: config.EngineMySQL, DB: mockDB}, mock
}

func TestMySQLListDatabases(t *testing.T) {
	h, mock := mysqlHandle(t)
	mock.ExpectQuery("SHOW DATABASES").WillReturnRows(
		sqlmock.NewRows([]string{"Database"}).
			AddRow("information_schema").
			AddRow("shop").
			AddRow("test"))

	names, err := mysqlAdapter{}.ListDatabases(context.Background(), h)

	require.NoError(t, err)
	assert.Equal(t, []string{"information_schema", "shop", "test"}, names, "mysql excludes nothing")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLDescribeDatabase(t *testing.T) {
	h, mock := mysqlHandle(t)
	mock.ExpectExec("USE `shop`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM information_schema.tables").
		WithArgs("shop").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME", "TABLE_TYPE"}).
			AddRow("orders", "BASE TABLE").
			AddRow("users", "BASE TABLE").
			AddRow("v_sales", "VIEW"))
	mock.ExpectQuery("FROM information_schema.columns").
		WithArgs("shop").
		WillReturnRows(sqlmock.NewRows(mysqlColumnHeaders).
			AddRow("orders", "id", "int", nil, nil, "NO", "PRI", "").
			AddRow("orders", "total", "decimal", nil, int64(2), "NO", "", "").
			AddRow("users", "id", "int", nil, nil, "NO", "PRI", "").
			AddRow("users", "email", "varchar", int64(255), nil, "YES", "", "contact"))

	res, err := mysqlAdapter{}.DescribeDatabase(context.Background(), h, "shop")

	require.NoError(t, err)
	require.Len(t, res.Databases, 1)
	node := res.Databases[0]
	assert.Equal(t, "shop", node.Name)
	assert.True(t, node.Loaded)
	assert.Equal(t, []string{"orders", "users"}, node.Tables)
	assert.Equal(t, []string{"v_sales"}, node.Views)

	orders := res.Columns["orders"]
	require.Len(t, orders, 2)
	assert.Equal(t, "INT", orders[0].Type)
	assert.True(t, orders[0].Primary)
	require.NotNil(t, orders[1].Scale)
	assert.Equal(t, 2, *orders[1].Scale)

	users := res.Columns["users"]
	require.Len(t, users, 2)
	assert.False(t, users[1].NotNull)
	assert.Equal(t, "contact", users[1].Comment)

	assert.Equal(t, res.Columns["orders"], res.Columns["shop.orders"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLQueryWithTargetDatabase(t *testing.T) {
	h, mock := mysqlHandle(t)
	mock.ExpectExec("USE `test`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 AS one").WillReturnRows(
		sqlmock.NewRows([]string{"one"}).AddRow(int64(1)))

	res, err := mysqlAdapter{}.Query(context.Background(), h, "SELECT 1 AS one", "test")

	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, res.Headers)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, int64(1), res.Rows[0]["one"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLQueryWithoutTargetDatabase(t *testing.T) {
	h, mock := mysqlHandle(t)
	mock.ExpectQuery("SELECT 2 AS two").WillReturnRows(
		sqlmock.NewRows([]string{"two"}).AddRow(int64(2)))

	res, err := mysqlAdapter{}.Query(context.Background(), h, "SELECT 2 AS two", "")

	require.NoError(t, err)
	assert.Equal(t, []string{"two"}, res.Headers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLQueryDriverError(t *testing.T) {
	h, mock := mysqlHandle(t)
	mock.ExpectQuery("SELEC 1").WillReturnError(errors.New("Error 1064: syntax error"))

	_, err := mysqlAdapter{}.Query(context.Background(), h, "SELEC 1", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1064")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuoteMySQL(t *testing.T) {
	assert.Equal(t, "`shop`", quoteMySQL("shop"))
	assert.Equal(t, "`we``ird`", quoteMySQL("we`ird"))
}
