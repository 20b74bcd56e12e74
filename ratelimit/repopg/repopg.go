// Package repopg stores login attempt counters in the login_attempts table
package repopg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/go-admin-auth/internal/errors"
	"github.com/jrsteele09/go-admin-auth/internal/utils"
	"github.com/jrsteele09/go-admin-auth/ratelimit"
)

var _ ratelimit.Repo = (*Repo)(nil)

type Repo struct {
	db *sql.DB
}

func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *Repo) Get(ctx context.Context, address string) (*ratelimit.Record, error) {
	rec, err := selectRecord(ctx, r.db, `
		SELECT ip_address, login, attempts, last_attempt, blocked_until
		FROM login_attempts WHERE ip_address = $1`, address)
	if err != nil {
		return nil, fmt.Errorf("[login_attempts Get] %w", err)
	}
	return rec, nil
}

// Update locks the row for the duration of fn so concurrent failures from one address
// are counted exactly once each.
func (r *Repo) Update(ctx context.Context, address string, fn func(rec *ratelimit.Record) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("[login_attempts Update] begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO login_attempts (ip_address, attempts, last_attempt)
		VALUES ($1, 0, NOW())
		ON CONFLICT (ip_address) DO NOTHING`, address); err != nil {
		return fmt.Errorf("[login_attempts Update] insert: %w", err)
	}

	rec, err := selectRecord(ctx, tx, `
		SELECT ip_address, login, attempts, last_attempt, blocked_until
		FROM login_attempts WHERE ip_address = $1 FOR UPDATE`, address)
	if err != nil {
		return fmt.Errorf("[login_attempts Update] select: %w", err)
	}

	if err := fn(rec); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE login_attempts
		SET login = COALESCE(login, $2), attempts = $3, last_attempt = $4, blocked_until = $5
		WHERE ip_address = $1`,
		address, rec.Login, rec.Attempts, rec.LastAttempt, rec.BlockedUntil); err != nil {
		return fmt.Errorf("[login_attempts Update] update: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("[login_attempts Update] commit: %w", err)
	}
	return nil
}

func (r *Repo) Clear(ctx context.Context, address string, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE login_attempts
		SET attempts = 0, blocked_until = NULL, last_attempt = $2
		WHERE ip_address = $1`, address, at); err != nil {
		return fmt.Errorf("[login_attempts Clear] %w", err)
	}
	return nil
}

func selectRecord(ctx context.Context, q queryRower, query, address string) (*ratelimit.Record, error) {
	var (
		rec          ratelimit.Record
		login        sql.Null[string]
		blockedUntil sql.Null[time.Time]
	)
	err := q.QueryRowContext(ctx, query, address).
		Scan(&rec.Address, &login, &rec.Attempts, &rec.LastAttempt, &blockedUntil)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec.Login = utils.NullPtr(login)
	rec.BlockedUntil = utils.NullPtr(blockedUntil)
	return &rec, nil
}
