// Package repopg implements accounts.Repo on Postgres
package repopg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-admin-auth/accounts"
	apperrors "github.com/jrsteele09/go-admin-auth/internal/errors"
	"github.com/jrsteele09/go-admin-auth/internal/utils"
)

var _ accounts.Repo = (*Repo)(nil)

const accountColumns = `e.id, e.uuid, e.login, e.full_name, e.password_hash, e.is_active,
       e.is_superadmin, e.role_id, COALESCE(r.name, ''), e.last_login`

type Repo struct {
	db *sql.DB
}

func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) FindByLogin(ctx context.Context, login string) (*accounts.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM employees e
		LEFT JOIN roles r ON r.id = e.role_id
		WHERE e.login = $1 AND e.deleted_at IS NULL`, login)
	a, err := scanAccount(row)
	if err != nil {
		return nil, fmt.Errorf("[accounts FindByLogin] %w", err)
	}
	return a, nil
}

func (r *Repo) FindByID(ctx context.Context, id int64) (*accounts.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM employees e
		LEFT JOIN roles r ON r.id = e.role_id
		WHERE e.id = $1 AND e.deleted_at IS NULL`, id)
	a, err := scanAccount(row)
	if err != nil {
		return nil, fmt.Errorf("[accounts FindByID] %w", err)
	}
	return a, nil
}

func (r *Repo) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE employees SET last_login = $1 WHERE id = $2 AND deleted_at IS NULL`, at, id); err != nil {
		return fmt.Errorf("[accounts UpdateLastLogin] %w", err)
	}
	return nil
}

func (r *Repo) PermissionNamesForRole(ctx context.Context, roleID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.name
		FROM permissions p
		JOIN role_permissions rp ON p.id = rp.permission_id
		WHERE rp.role_id = $1 AND rp.is_allowed = TRUE AND p.deleted_at IS NULL
		ORDER BY p.name`, roleID)
	if err != nil {
		return nil, fmt.Errorf("[accounts PermissionNamesForRole] %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("[accounts PermissionNamesForRole] scan: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("[accounts PermissionNamesForRole] %w", err)
	}
	return names, nil
}

func (r *Repo) Create(ctx context.Context, account *accounts.Account) error {
	if account.UUID == "" {
		account.UUID = uuid.NewString()
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO employees (uuid, login, full_name, password_hash, is_active, is_superadmin, role_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (login) DO NOTHING
		RETURNING id`,
		account.UUID, account.Login, account.FullName, account.PasswordHash,
		account.IsActive, account.IsSuperadmin, account.RoleID,
	).Scan(&account.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("[accounts Create] login %q: %w", account.Login, apperrors.ErrAlreadyExist)
	}
	if err != nil {
		return fmt.Errorf("[accounts Create] %w", err)
	}
	return nil
}

func (r *Repo) CountSuperadmins(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM employees WHERE is_superadmin = TRUE AND deleted_at IS NULL`).Scan(&count); err != nil {
		return 0, fmt.Errorf("[accounts CountSuperadmins] %w", err)
	}
	return count, nil
}

func scanAccount(row *sql.Row) (*accounts.Account, error) {
	var (
		a         accounts.Account
		roleID    sql.Null[int64]
		lastLogin sql.Null[time.Time]
	)
	err := row.Scan(&a.ID, &a.UUID, &a.Login, &a.FullName, &a.PasswordHash, &a.IsActive,
		&a.IsSuperadmin, &roleID, &a.RoleName, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.RoleID = utils.NullPtr(roleID)
	a.LastLogin = utils.NullPtr(lastLogin)
	return &a, nil
}
