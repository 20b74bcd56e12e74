package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS roles").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, EnsureSchema(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchemaError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))

	err = EnsureSchema(context.Background(), db)
	require.ErrorContains(t, err, "permission denied")
}

func TestSchemaDeclaresTables(t *testing.T) {
	for _, table := range []string{"roles", "permissions", "role_permissions", "employees", "login_attempts"} {
		require.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
}

func TestPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()
	require.NoError(t, Ping(context.Background(), db, time.Second))

	mock.ExpectPing().WillReturnError(errors.New("down"))
	require.Error(t, Ping(context.Background(), db, time.Second))
}
