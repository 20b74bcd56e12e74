package sessions_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-admin-auth/accounts"
	fakeaccountrepo "github.com/jrsteele09/go-admin-auth/accounts/repofake"
	"github.com/jrsteele09/go-admin-auth/sessions"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	accounts *fakeaccountrepo.FakeAccountRepo
	store    *sessions.MemoryStore
	manager  *sessions.Manager
	account  *accounts.Account
	now      time.Time
}

func setupTestFixture(t *testing.T, options ...sessions.ManagerOption) *testFixture {
	t.Helper()

	f := &testFixture{
		accounts: fakeaccountrepo.NewFakeAccountRepo(),
		store:    sessions.NewMemoryStore(100, time.Hour),
		now:      time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
	}
	f.account = &accounts.Account{Login: "jdoe", FullName: "John Doe", IsActive: true}
	require.NoError(t, f.accounts.Create(context.Background(), f.account))

	opts := append([]sessions.ManagerOption{
		sessions.WithLifetime(15 * time.Minute),
		sessions.WithNowTime(func() time.Time { return f.now }),
	}, options...)
	manager, err := sessions.NewManager(f.store, f.accounts, opts...)
	require.NoError(t, err)
	f.manager = manager
	return f
}

// roundTrip commits s and returns a request carrying the resulting cookie
func (f *testFixture) roundTrip(t *testing.T, s *sessions.Session) *http.Request {
	t.Helper()
	w := httptest.NewRecorder()
	require.NoError(t, f.manager.Commit(context.Background(), w, s))

	r := httptest.NewRequest(http.MethodGet, "/admin", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func (f *testFixture) establish(t *testing.T) *sessions.Session {
	t.Helper()
	s, err := f.manager.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/login", nil))
	require.NoError(t, err)
	require.NoError(t, f.manager.Establish(context.Background(), s, f.account))
	return s
}

func TestNewManagerValidation(t *testing.T) {
	_, err := sessions.NewManager(nil, fakeaccountrepo.NewFakeAccountRepo())
	require.Error(t, err)
	_, err = sessions.NewManager(sessions.NewMemoryStore(1, time.Minute), nil)
	require.Error(t, err)
}

func TestLoadWithoutCookieIsAnonymous(t *testing.T) {
	f := setupTestFixture(t)

	s, err := f.manager.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.NotEmpty(t, s.ID())
	require.False(t, s.IsAuthenticated())
	require.False(t, f.manager.Check(s))
}

func TestEmptySessionIsNotPersisted(t *testing.T) {
	f := setupTestFixture(t)

	s, err := f.manager.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, f.manager.Commit(context.Background(), w, s))
	require.Empty(t, w.Result().Cookies())
	require.Zero(t, f.store.Len())
}

func TestCommitWritesConfiguredCookie(t *testing.T) {
	f := setupTestFixture(t, sessions.WithCookie(sessions.CookieConfig{
		Name:     "bo",
		Secure:   true,
		HTTPOnly: true,
		SameSite: http.SameSiteStrictMode,
	}))

	s := f.establish(t)
	w := httptest.NewRecorder()
	require.NoError(t, f.manager.Commit(context.Background(), w, s))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	require.Equal(t, "bo", c.Name)
	require.Equal(t, s.ID(), c.Value)
	require.Equal(t, "/", c.Path)
	require.Equal(t, 900, c.MaxAge)
	require.True(t, c.Secure)
	require.True(t, c.HttpOnly)
	require.Equal(t, http.SameSiteStrictMode, c.SameSite)
}

func TestEstablishRegeneratesID(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	anon, err := f.manager.Load(ctx, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.NoError(t, err)
	anon.SetCSRFToken("pre-login-token")
	anon.AddFlash(sessions.FlashError, "stale")
	r := f.roundTrip(t, anon)
	preLoginID := anon.ID()

	s, err := f.manager.Load(ctx, r)
	require.NoError(t, err)
	require.Equal(t, preLoginID, s.ID())

	require.NoError(t, f.manager.Establish(ctx, s, f.account))
	require.NotEqual(t, preLoginID, s.ID())
	require.Empty(t, s.CSRFToken())
	require.Empty(t, s.PopFlashes())
	require.Equal(t, "John Doe", s.DisplayName())
	require.Equal(t, f.account.UUID, s.AccountUUID())

	// the pre-login id no longer resolves to anything
	_, err = f.store.Get(ctx, preLoginID)
	require.Error(t, err)

	stored, err := f.accounts.FindByID(ctx, f.account.ID)
	require.NoError(t, err)
	require.Equal(t, f.now, *stored.LastLogin)
}

func TestSlidingExpiry(t *testing.T) {
	f := setupTestFixture(t)
	s := f.establish(t)

	for i := 0; i < 4; i++ {
		f.now = f.now.Add(14 * time.Minute)
		require.True(t, f.manager.Check(s))
		require.Equal(t, f.now, s.LastActivity())
	}

	f.now = f.now.Add(15*time.Minute + time.Second)
	require.False(t, f.manager.Check(s))
	require.False(t, s.IsAuthenticated())
	require.False(t, f.manager.Check(s))
}

func TestCheckAtExactLifetimeIsStillValid(t *testing.T) {
	f := setupTestFixture(t)
	s := f.establish(t)

	f.now = f.now.Add(15 * time.Minute)
	require.True(t, f.manager.Check(s))
}

func TestSessionSurvivesRoundTrip(t *testing.T) {
	f := setupTestFixture(t)
	s := f.establish(t)
	s.SetCSRFToken("tok")

	loaded, err := f.manager.Load(context.Background(), f.roundTrip(t, s))
	require.NoError(t, err)
	require.Equal(t, s.ID(), loaded.ID())
	require.True(t, loaded.IsAuthenticated())
	require.Equal(t, "tok", loaded.CSRFToken())
}

func TestCurrentUserRefetchesAccount(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	s := f.establish(t)

	user, err := f.manager.CurrentUser(ctx, s)
	require.NoError(t, err)
	require.NotNil(t, user)
	require.Nil(t, user.RoleID)

	f.accounts.AddRole(5, "viewer")
	roleID := int64(5)
	f.accounts.SetRole(f.account.ID, &roleID)

	user, err = f.manager.CurrentUser(ctx, s)
	require.NoError(t, err)
	require.Equal(t, "viewer", user.RoleName)

	f.accounts.SoftDelete(f.account.ID, f.now)
	user, err = f.manager.CurrentUser(ctx, s)
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestCurrentUserAnonymous(t *testing.T) {
	f := setupTestFixture(t)
	s, err := f.manager.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	user, err := f.manager.CurrentUser(context.Background(), s)
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestTerminate(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	s := f.establish(t)
	f.roundTrip(t, s)
	oldID := s.ID()

	require.NoError(t, f.manager.Terminate(ctx, s))
	require.False(t, f.manager.Check(s))
	require.NotEqual(t, oldID, s.ID())
	_, err := f.store.Get(ctx, oldID)
	require.Error(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, f.manager.Commit(ctx, w, s))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, -1, cookies[0].MaxAge)

	// idempotent
	require.NoError(t, f.manager.Terminate(ctx, s))
}

func TestStaleHandleDoesNotUndoTerminate(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	r := f.roundTrip(t, f.establish(t))

	logout, err := f.manager.Load(ctx, r)
	require.NoError(t, err)
	inflight, err := f.manager.Load(ctx, r)
	require.NoError(t, err)
	require.True(t, f.manager.Check(inflight))
	oldID := inflight.ID()

	require.NoError(t, f.manager.Terminate(ctx, logout))
	f.roundTrip(t, logout)

	w := httptest.NewRecorder()
	require.NoError(t, f.manager.Commit(ctx, w, inflight))
	require.Empty(t, w.Result().Cookies())
	require.False(t, inflight.IsAuthenticated())

	_, err = f.store.Get(ctx, oldID)
	require.Error(t, err)
	again, err := f.manager.Load(ctx, r)
	require.NoError(t, err)
	require.False(t, f.manager.Check(again))
}

func TestStaleHandleDoesNotResurrectPreLoginSession(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	anon, err := f.manager.Load(ctx, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.NoError(t, err)
	anon.SetCSRFToken("pre-login-token")
	r := f.roundTrip(t, anon)

	login, err := f.manager.Load(ctx, r)
	require.NoError(t, err)
	inflight, err := f.manager.Load(ctx, r)
	require.NoError(t, err)

	require.NoError(t, f.manager.Establish(ctx, login, f.account))
	f.roundTrip(t, login)

	w := httptest.NewRecorder()
	require.NoError(t, f.manager.Commit(ctx, w, inflight))
	require.Empty(t, w.Result().Cookies())
	_, err = f.store.Get(ctx, anon.ID())
	require.Error(t, err)
}

func TestAnonymousTrafficKeepsSessionsLoggedIn(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	manager, err := sessions.NewManager(sessions.NewMemoryStore(0, time.Hour), f.accounts,
		sessions.WithNowTime(func() time.Time { return f.now }))
	require.NoError(t, err)

	s, err := manager.Load(ctx, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.NoError(t, err)
	require.NoError(t, manager.Establish(ctx, s, f.account))
	w := httptest.NewRecorder()
	require.NoError(t, manager.Commit(ctx, w, s))
	r := httptest.NewRequest(http.MethodGet, "/admin", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}

	for i := 0; i < sessions.DefaultMemoryStoreSize; i++ {
		anon, err := manager.Load(ctx, httptest.NewRequest(http.MethodGet, "/login", nil))
		require.NoError(t, err)
		anon.SetCSRFToken("token")
		require.NoError(t, manager.Commit(ctx, httptest.NewRecorder(), anon))
	}

	loaded, err := manager.Load(ctx, r)
	require.NoError(t, err)
	require.True(t, manager.Check(loaded))
}

func TestTerminateThenFlashKeepsNewSession(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	s := f.establish(t)

	require.NoError(t, f.manager.Terminate(ctx, s))
	s.AddFlash(sessions.FlashSuccess, "bye")

	loaded, err := f.manager.Load(ctx, f.roundTrip(t, s))
	require.NoError(t, err)
	require.False(t, loaded.IsAuthenticated())
	require.Equal(t, []string{"bye"}, loaded.PopFlashes()[sessions.FlashSuccess])
}

func TestStrictModeRejectsUnknownID(t *testing.T) {
	const planted = "0b6f7c1e-3d3a-4c55-9a51-2f0f0f3f1a11"

	r := httptest.NewRequest(http.MethodGet, "/login", nil)
	r.AddCookie(&http.Cookie{Name: sessions.DefaultCookieName, Value: planted})

	strict := setupTestFixture(t, sessions.WithStrictMode(true))
	s, err := strict.manager.Load(context.Background(), r)
	require.NoError(t, err)
	require.NotEqual(t, planted, s.ID())

	lax := setupTestFixture(t)
	s, err = lax.manager.Load(context.Background(), r)
	require.NoError(t, err)
	require.Equal(t, planted, s.ID())
}

func TestMalformedCookieIsIgnored(t *testing.T) {
	f := setupTestFixture(t)
	r := httptest.NewRequest(http.MethodGet, "/login", nil)
	r.AddCookie(&http.Cookie{Name: sessions.DefaultCookieName, Value: "../../etc/passwd"})

	s, err := f.manager.Load(context.Background(), r)
	require.NoError(t, err)
	require.NotEqual(t, "../../etc/passwd", s.ID())
}

func TestFlashesAreConsumedOnce(t *testing.T) {
	f := setupTestFixture(t)
	s, err := f.manager.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	s.AddFlash(sessions.FlashError, "Login and password are required")
	s.AddFlash(sessions.FlashSuccess, "ok")

	flashes := s.PopFlashes()
	require.Len(t, flashes, 2)
	require.Empty(t, s.PopFlashes())
}

func TestFlashesOfOneKindAccumulate(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	s, err := f.manager.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	s.AddFlash(sessions.FlashErrorPersistent, "first")
	s.AddFlash(sessions.FlashErrorPersistent, "second")

	loaded, err := f.manager.Load(ctx, f.roundTrip(t, s))
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second"}, loaded.PopFlashes()[sessions.FlashErrorPersistent])
}

func TestContextHelpers(t *testing.T) {
	_, ok := sessions.FromContext(context.Background())
	require.False(t, ok)

	f := setupTestFixture(t)
	s := f.establish(t)
	got, ok := sessions.FromContext(sessions.NewContext(context.Background(), s))
	require.True(t, ok)
	require.Same(t, s, got)
}
