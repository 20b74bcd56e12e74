package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-admin-auth/accounts"
	"github.com/jrsteele09/go-admin-auth/auth"
	"github.com/jrsteele09/go-admin-auth/internal/utils"
	"github.com/jrsteele09/go-admin-auth/sessions"
	"github.com/stretchr/testify/require"
)

func (f *testFixture) login(t *testing.T, login string) *sessions.Session {
	t.Helper()
	s := f.newSession(t)
	result, err := f.service.Attempt(context.Background(), s, testAddress, login, testPassword)
	require.NoError(t, err)
	require.True(t, result.Succeeded())
	return s
}

func TestNewAuthorizerValidation(t *testing.T) {
	f := setupTestFixture(t)
	_, err := auth.NewAuthorizer(nil, f.accounts)
	require.Error(t, err)
	_, err = auth.NewAuthorizer(f.manager, nil)
	require.Error(t, err)
}

func TestAnonymousCannot(t *testing.T) {
	f := setupTestFixture(t)

	can, err := f.authorizer.Can(context.Background(), f.newSession(t), "role_view")
	require.NoError(t, err)
	require.False(t, can)
}

func TestSuperadminCanEverything(t *testing.T) {
	f := setupTestFixture(t)
	f.createAccount(t, "root", func(a *accounts.Account) { a.IsSuperadmin = true })
	s := f.login(t, "root")

	for _, permission := range []string{"role_view", "user_view", "permission_that_does_not_exist"} {
		can, err := f.authorizer.Can(context.Background(), s, permission)
		require.NoError(t, err)
		require.True(t, can, permission)
	}
}

func TestRolePermissions(t *testing.T) {
	f := setupTestFixture(t)
	f.createAccount(t, "ed", func(a *accounts.Account) { a.RoleID = utils.Ptr(editorRoleID) })
	s := f.login(t, "ed")
	ctx := context.Background()

	granted, err := f.authorizer.Permissions(ctx, s, "role_view", "user_view", "employee_view")
	require.NoError(t, err)
	require.Equal(t, map[string]bool{"role_view": true, "user_view": false, "employee_view": false}, granted)
}

func TestRoleChangesApplyImmediately(t *testing.T) {
	f := setupTestFixture(t)
	account := f.createAccount(t, "ed", func(a *accounts.Account) { a.RoleID = utils.Ptr(editorRoleID) })
	s := f.login(t, "ed")
	ctx := context.Background()

	can, err := f.authorizer.Can(ctx, s, "user_view")
	require.NoError(t, err)
	require.False(t, can)

	f.accounts.SetPermission(editorRoleID, "user_view", true)
	can, err = f.authorizer.Can(ctx, s, "user_view")
	require.NoError(t, err)
	require.True(t, can)

	f.accounts.DeletePermission("user_view")
	can, err = f.authorizer.Can(ctx, s, "user_view")
	require.NoError(t, err)
	require.False(t, can)

	f.accounts.SetRole(account.ID, nil)
	can, err = f.authorizer.Can(ctx, s, "role_view")
	require.NoError(t, err)
	require.False(t, can)
}

func TestExpiredSessionCannot(t *testing.T) {
	f := setupTestFixture(t)
	f.createAccount(t, "root", func(a *accounts.Account) { a.IsSuperadmin = true })
	s := f.login(t, "root")

	f.now = f.now.Add(16 * time.Minute)
	can, err := f.authorizer.Can(context.Background(), s, "role_view")
	require.NoError(t, err)
	require.False(t, can)
}

func TestGranted(t *testing.T) {
	f := setupTestFixture(t)
	f.createAccount(t, "ed", func(a *accounts.Account) { a.RoleID = utils.Ptr(editorRoleID) })
	f.createAccount(t, "norole", nil)
	ctx := context.Background()

	all, names, err := f.authorizer.Granted(ctx, f.login(t, "ed"))
	require.NoError(t, err)
	require.False(t, all)
	require.Equal(t, []string{"role_view"}, names)

	all, names, err = f.authorizer.Granted(ctx, f.login(t, "norole"))
	require.NoError(t, err)
	require.False(t, all)
	require.Empty(t, names)
}
