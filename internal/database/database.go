// Package database opens the Postgres connection pool shared by the SQL repositories.
package database

import (
	"context"
	"database/sql"
	_ "embed"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	apperrors "github.com/jrsteele09/go-admin-auth/internal/errors"
)

//go:embed schema.sql
var schema string

// Open returns a pooled *sql.DB backed by the pgx driver. No connection is made until first use.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[database Open]")
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// EnsureSchema creates the tables used by the service when they do not exist yet
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return apperrors.Wrapf(err, "[database EnsureSchema]")
	}
	return nil
}

// Ping checks the database is reachable within timeout
func Ping(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return apperrors.Wrapf(err, "[database Ping] timeout %s", timeout)
	}
	return nil
}
