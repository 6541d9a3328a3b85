package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

func stubOpen(t *testing.T, db *sql.DB, err error) {
	t.Helper()
	orig := sqlOpen
	sqlOpen = func(driver, dsn string) (*sql.DB, error) {
		if driver != "pgx" {
			t.Fatalf("unexpected driver %q", driver)
		}
		return db, err
	}
	t.Cleanup(func() { sqlOpen = orig })
}

func TestOpenPostgres_Success(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()
	stubOpen(t, db, nil)

	got, err := OpenPostgres(context.Background(), "postgres://x")
	require.NoError(t, err)
	assert.Same(t, db, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenPostgres_OpenError(t *testing.T) {
	stubOpen(t, nil, errors.New("bad dsn"))

	_, err := OpenPostgres(context.Background(), "::")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db open error: bad dsn")
}

func TestOpenPostgres_PingError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	mock.ExpectPing().WillReturnError(errors.New("refused"))
	mock.ExpectClose()
	stubOpen(t, db, nil)

	_, err = OpenPostgres(context.Background(), "postgres://x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db ping error: refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}
