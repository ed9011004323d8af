package engines

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqldeck/internal/db"
	"sqldeck/pkg/config"
)

func mssqlHandle(t *testing.T) (*db.Handle, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return &db.Handle{Type: config.EngineSQLServer, DB: mockDB}, mock
}

func TestMSSQLListDatabases(t *testing.T) {
	h, mock := mssqlHandle(t)
	mock.ExpectQuery("FROM sys.databases").WillReturnRows(
		sqlmock.NewRows([]string{"name"}).
			AddRow("inventory").
			AddRow("reporting"))

	names, err := mssqlAdapter{}.ListDatabases(context.Background(), h)

	require.NoError(t, err)
	assert.Equal(t, []string{"inventory", "reporting"}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMSSQLDescribeDatabase(t *testing.T) {
	h, mock := mssqlHandle(t)
	mock.ExpectQuery(regexp.QuoteMeta("[inventory].INFORMATION_SCHEMA.TABLES")).
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME", "TABLE_TYPE"}).
			AddRow("stock", "BASE TABLE").
			AddRow("v_low_stock", "VIEW"))
	mock.ExpectQuery(regexp.QuoteMeta("[inventory].INFORMATION_SCHEMA.COLUMNS")).
		WillReturnRows(sqlmock.NewRows(mysqlColumnHeaders).
			AddRow("stock", "sku", "nvarchar", int64(32), nil, "NO", "PRI", "").
			AddRow("stock", "on_hand", "int", nil, nil, "NO", "", ""))

	res, err := mssqlAdapter{}.DescribeDatabase(context.Background(), h, "inventory")

	require.NoError(t, err)
	require.Len(t, res.Databases, 1)
	assert.Equal(t, []string{"stock"}, res.Databases[0].Tables)
	assert.Equal(t, []string{"v_low_stock"}, res.Databases[0].Views)

	stock := res.Columns["stock"]
	require.Len(t, stock, 2)
	assert.Equal(t, "NVARCHAR", stock[0].Type)
	assert.True(t, stock[0].Primary)
	require.NotNil(t, stock[0].Length)
	assert.Equal(t, 32, *stock[0].Length)
	assert.Equal(t, stock, res.Columns["inventory.stock"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMSSQLQueryPrefixesUseBatch(t *testing.T) {
	h, mock := mssqlHandle(t)
	mock.ExpectQuery(regexp.QuoteMeta("USE [reporting];")).WillReturnRows(
		sqlmock.NewRows([]string{"n"}).AddRow(int64(7)))

	res, err := mssqlAdapter{}.Query(context.Background(), h, "SELECT 7 AS n", "reporting")

	require.NoError(t, err)
	assert.Equal(t, []string{"n"}, res.Headers)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, int64(7), res.Rows[0]["n"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMSSQLQueryWithoutTargetDatabase(t *testing.T) {
	h, mock := mssqlHandle(t)
	mock.ExpectQuery("SELECT 7 AS n").WillReturnRows(
		sqlmock.NewRows([]string{"n"}).AddRow(int64(7)))

	_, err := mssqlAdapter{}.Query(context.Background(), h, "SELECT 7 AS n", "")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuoteBracket(t *testing.T) {
	assert.Equal(t, "[reporting]", quoteBracket("reporting"))
	assert.Equal(t, "[we]]ird]", quoteBracket("we]ird"))
}
