package fakeaccountrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-admin-auth/accounts"
	apperrors "github.com/jrsteele09/go-admin-auth/internal/errors"
)

var _ accounts.Repo = (*FakeAccountRepo)(nil)

type FakeAccountRepo struct {
	accounts    map[int64]*accounts.Account
	logins      map[string]int64 // login to account id
	roles       map[int64]string
	permissions map[int64]map[string]bool // role id to permission name to is_allowed
	deletedPerm map[string]bool
	nextID      int64
	lock        sync.RWMutex
}

func NewFakeAccountRepo() *FakeAccountRepo {
	return &FakeAccountRepo{
		accounts:    make(map[int64]*accounts.Account),
		logins:      make(map[string]int64),
		roles:       make(map[int64]string),
		permissions: make(map[int64]map[string]bool),
		deletedPerm: make(map[string]bool),
	}
}

func (r *FakeAccountRepo) FindByLogin(_ context.Context, login string) (*accounts.Account, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	id, ok := r.logins[login]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return r.live(id)
}

func (r *FakeAccountRepo) FindByID(_ context.Context, id int64) (*accounts.Account, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.live(id)
}

func (r *FakeAccountRepo) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	a, ok := r.accounts[id]
	if !ok || a.DeletedAt != nil {
		return nil
	}
	a.LastLogin = &at
	return nil
}

func (r *FakeAccountRepo) PermissionNamesForRole(_ context.Context, roleID int64) ([]string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	names := make([]string, 0)
	for name, allowed := range r.permissions[roleID] {
		if allowed && !r.deletedPerm[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (r *FakeAccountRepo) Create(_ context.Context, account *accounts.Account) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, exists := r.logins[account.Login]; exists {
		return apperrors.ErrAlreadyExist
	}
	r.nextID++
	account.ID = r.nextID
	if account.UUID == "" {
		account.UUID = uuid.NewString()
	}
	if account.RoleID != nil {
		account.RoleName = r.roles[*account.RoleID]
	}
	stored := *account
	r.accounts[account.ID] = &stored
	r.logins[account.Login] = account.ID
	return nil
}

func (r *FakeAccountRepo) CountSuperadmins(_ context.Context) (int, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	count := 0
	for _, a := range r.accounts {
		if a.IsSuperadmin && a.DeletedAt == nil {
			count++
		}
	}
	return count, nil
}

// AddRole registers a role name under id
func (r *FakeAccountRepo) AddRole(id int64, name string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.roles[id] = name
}

// SetPermission sets the is_allowed flag of a role/permission pair
func (r *FakeAccountRepo) SetPermission(roleID int64, name string, allowed bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.permissions[roleID] == nil {
		r.permissions[roleID] = make(map[string]bool)
	}
	r.permissions[roleID][name] = allowed
}

// DeletePermission soft-deletes a permission for every role
func (r *FakeAccountRepo) DeletePermission(name string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.deletedPerm[name] = true
}

// SetActive toggles the is_active flag of an account
func (r *FakeAccountRepo) SetActive(id int64, active bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if a, ok := r.accounts[id]; ok {
		a.IsActive = active
	}
}

// SetRole rebinds an account to a role, nil removes it
func (r *FakeAccountRepo) SetRole(id int64, roleID *int64) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if a, ok := r.accounts[id]; ok {
		a.RoleID = roleID
		a.RoleName = ""
		if roleID != nil {
			a.RoleName = r.roles[*roleID]
		}
	}
}

// SoftDelete marks an account deleted
func (r *FakeAccountRepo) SoftDelete(id int64, at time.Time) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if a, ok := r.accounts[id]; ok {
		a.DeletedAt = &at
	}
}

// live returns a copy so callers never share state with the store
func (r *FakeAccountRepo) live(id int64) (*accounts.Account, error) {
	a, ok := r.accounts[id]
	if !ok || a.DeletedAt != nil {
		return nil, apperrors.ErrNotFound
	}
	cp := *a
	return &cp, nil
}
