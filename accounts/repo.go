package accounts

import (
	"context"
	"time"
)

// Repo is the credential store. Lookups never return soft-deleted accounts;
// a missing account is reported as errors.ErrNotFound.
type Repo interface {
	FindByLogin(ctx context.Context, login string) (*Account, error)
	FindByID(ctx context.Context, id int64) (*Account, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	// PermissionNamesForRole lists the allowed, non-deleted permission names of a role
	PermissionNamesForRole(ctx context.Context, roleID int64) ([]string, error)
	Create(ctx context.Context, account *Account) error
	CountSuperadmins(ctx context.Context) (int, error)
}
