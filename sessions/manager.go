package sessions

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-admin-auth/accounts"
	apperrors "github.com/jrsteele09/go-admin-auth/internal/errors"
	"github.com/pkg/errors"
)

const (
	DefaultLifetime   = 15 * time.Minute
	DefaultCookieName = "admin_session"

	// stored sessions outlive the idle lifetime a little so an expired session can still be
	// recognised, and its identity cleared, instead of silently vanishing
	storeGrace = 5 * time.Minute
)

// CookieConfig describes the session cookie
type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	HTTPOnly bool
	SameSite http.SameSite
}

func DefaultCookieConfig() CookieConfig {
	return CookieConfig{
		Name:     DefaultCookieName,
		Path:     "/",
		HTTPOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Manager loads, authenticates and persists sessions
type Manager struct {
	store    Store
	accounts accounts.Repo
	cookie   CookieConfig
	lifetime time.Duration
	strict   bool
	nowTime  func() time.Time
}

type ManagerOption func(*Manager)

// WithLifetime sets the idle lifetime of an authenticated session
func WithLifetime(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.lifetime = d
		}
	}
}

func WithCookie(cfg CookieConfig) ManagerOption {
	return func(m *Manager) {
		if cfg.Name == "" {
			cfg.Name = DefaultCookieName
		}
		if cfg.Path == "" {
			cfg.Path = "/"
		}
		m.cookie = cfg
	}
}

// WithStrictMode refuses to adopt session ids the server did not issue
func WithStrictMode(strict bool) ManagerOption {
	return func(m *Manager) {
		m.strict = strict
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

func NewManager(store Store, accountRepo accounts.Repo, options ...ManagerOption) (*Manager, error) {
	if store == nil {
		return nil, errors.New("[NewManager] store is required")
	}
	if accountRepo == nil {
		return nil, errors.New("[NewManager] accounts repo is required")
	}

	m := &Manager{
		store:    store,
		accounts: accountRepo,
		cookie:   DefaultCookieConfig(),
		lifetime: DefaultLifetime,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

func (m *Manager) Lifetime() time.Duration {
	return m.lifetime
}

func (m *Manager) CookieName() string {
	return m.cookie.Name
}

// Load returns the session named by the request cookie, or a new anonymous session.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	c, err := r.Cookie(m.cookie.Name)
	if err != nil || !validID(c.Value) {
		return &Session{id: newID()}, nil
	}

	data, err := m.store.Get(ctx, c.Value)
	switch {
	case err == nil:
		return &Session{id: c.Value, data: data, stored: true}, nil
	case apperrors.Is(err, apperrors.ErrSessionNotFound):
		if m.strict {
			return &Session{id: newID()}, nil
		}
		return &Session{id: c.Value}, nil
	default:
		return nil, errors.Wrap(err, "[Manager Load]")
	}
}

// Check reports whether s carries a live identity. An idle session loses its identity;
// a live one has its activity time slid forward.
func (m *Manager) Check(s *Session) bool {
	if s == nil || !s.data.Authenticated() {
		return false
	}

	now := m.nowTime()
	if now.Sub(s.data.LastActivity) > m.lifetime {
		s.data.clearIdentity()
		s.dirty = true
		return false
	}

	s.data.LastActivity = now
	s.dirty = true
	return true
}

// CurrentUser re-reads the authenticated account from the store on every call.
// It returns nil when the session is not authenticated or the account no longer exists.
func (m *Manager) CurrentUser(ctx context.Context, s *Session) (*accounts.Account, error) {
	if !m.Check(s) {
		return nil, nil
	}

	account, err := m.accounts.FindByID(ctx, s.data.AccountID)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[Manager CurrentUser]")
	}
	return account, nil
}

// Establish binds account to s under a freshly issued id. Nothing from the previous
// session survives, the CSRF token included.
func (m *Manager) Establish(ctx context.Context, s *Session, account *accounts.Account) error {
	if account == nil {
		return errors.New("[Manager Establish] account is required")
	}

	if err := m.store.Delete(ctx, s.id); err != nil {
		return errors.Wrap(err, "[Manager Establish] drop previous session")
	}

	now := m.nowTime()
	s.id = newID()
	s.stored = false
	s.expireCookie = false
	s.data = Data{
		AccountID:    account.ID,
		AccountUUID:  account.UUID,
		DisplayName:  account.DisplayName(),
		IsSuperadmin: account.IsSuperadmin,
		LastActivity: now,
	}
	s.dirty = true

	if err := m.accounts.UpdateLastLogin(ctx, account.ID, now); err != nil {
		return errors.Wrap(err, "[Manager Establish] update last login")
	}
	return nil
}

// Terminate destroys s. The handle continues as an empty anonymous session under a new id;
// unless something is stored in it before Commit, the cookie is expired.
func (m *Manager) Terminate(ctx context.Context, s *Session) error {
	if err := m.store.Delete(ctx, s.id); err != nil {
		return errors.Wrap(err, "[Manager Terminate]")
	}
	s.id = newID()
	s.data = Data{}
	s.stored = false
	s.dirty = false
	s.expireCookie = true
	return nil
}

// Commit saves s and writes its cookie. It must run before the response header is sent.
// A session loaded from the store is only written back while its entry still exists; if a
// concurrent Terminate or Establish removed it, the handle is dropped and no cookie is sent.
func (m *Manager) Commit(ctx context.Context, w http.ResponseWriter, s *Session) error {
	ttl := m.lifetime + storeGrace
	switch {
	case s.stored:
		updated, err := m.store.Update(ctx, s.id, s.data, ttl)
		if err != nil {
			return errors.Wrap(err, "[Manager Commit]")
		}
		if !updated {
			s.data = Data{}
			s.stored = false
			s.dirty = false
			s.expireCookie = false
			return nil
		}
		s.dirty = false
		http.SetCookie(w, m.newCookie(s.id, int(m.lifetime.Seconds())))
	case s.dirty:
		if err := m.store.Set(ctx, s.id, s.data, ttl); err != nil {
			return errors.Wrap(err, "[Manager Commit]")
		}
		s.dirty = false
		s.stored = true
		s.expireCookie = false
		http.SetCookie(w, m.newCookie(s.id, int(m.lifetime.Seconds())))
	case s.expireCookie:
		s.expireCookie = false
		http.SetCookie(w, m.newCookie("", -1))
	}
	return nil
}

func (m *Manager) newCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookie.Name,
		Value:    value,
		Path:     m.cookie.Path,
		Domain:   m.cookie.Domain,
		Secure:   m.cookie.Secure,
		HttpOnly: m.cookie.HTTPOnly,
		SameSite: m.cookie.SameSite,
		MaxAge:   maxAge,
	}
}

func newID() string {
	return uuid.NewString()
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
