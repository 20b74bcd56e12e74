package auth

import (
	"context"
	"slices"

	"github.com/jrsteele09/go-admin-auth/accounts"
	"github.com/jrsteele09/go-admin-auth/sessions"
	"github.com/pkg/errors"
)

// Authorizer answers permission questions for the session's account. Nothing is cached
// between calls, so role changes take effect on the next request.
type Authorizer struct {
	sessions *sessions.Manager
	accounts accounts.Repo
}

func NewAuthorizer(manager *sessions.Manager, accountRepo accounts.Repo) (*Authorizer, error) {
	if manager == nil {
		return nil, errors.New("[NewAuthorizer] session manager is required")
	}
	if accountRepo == nil {
		return nil, errors.New("[NewAuthorizer] accounts repo is required")
	}
	return &Authorizer{sessions: manager, accounts: accountRepo}, nil
}

// Can reports whether the session's account holds permission. Superadmins hold every permission.
func (a *Authorizer) Can(ctx context.Context, s *sessions.Session, permission string) (bool, error) {
	granted, err := a.Permissions(ctx, s, permission)
	if err != nil {
		return false, err
	}
	return granted[permission], nil
}

// Permissions evaluates several permissions against one read of the account and its role
func (a *Authorizer) Permissions(ctx context.Context, s *sessions.Session, names ...string) (map[string]bool, error) {
	result := make(map[string]bool, len(names))
	for _, name := range names {
		result[name] = false
	}

	all, allowed, err := a.Granted(ctx, s)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		result[name] = all || slices.Contains(allowed, name)
	}
	return result, nil
}

// Granted returns all=true for a superadmin; otherwise the permission names of the account's role
func (a *Authorizer) Granted(ctx context.Context, s *sessions.Session) (all bool, names []string, err error) {
	account, err := a.sessions.CurrentUser(ctx, s)
	if err != nil {
		return false, nil, errors.Wrap(err, "[Authorizer]")
	}
	if account == nil {
		return false, nil, nil
	}
	if account.IsSuperadmin {
		return true, nil, nil
	}
	if !account.HasRole() {
		return false, nil, nil
	}

	names, err = a.accounts.PermissionNamesForRole(ctx, *account.RoleID)
	if err != nil {
		return false, nil, errors.Wrap(err, "[Authorizer]")
	}
	return false, names, nil
}
