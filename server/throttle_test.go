package server

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoginThrottleAllow(t *testing.T) {
	disabled := NewLoginThrottle(0, 1)
	for i := 0; i < 100; i++ {
		require.True(t, disabled.Allow(testAddress))
	}

	throttle := NewLoginThrottle(0.001, 2)
	require.True(t, throttle.Allow(testAddress))
	require.True(t, throttle.Allow(testAddress))
	require.False(t, throttle.Allow(testAddress))

	// buckets are per address
	require.True(t, throttle.Allow("203.0.113.1"))
	require.True(t, throttle.Allow(""))
}

func TestLoginThrottleMiddleware(t *testing.T) {
	f := setupTestFixture(t, map[string]string{
		"LOGIN_THROTTLE_PER_SECOND": "0.001",
		"LOGIN_THROTTLE_BURST":      "1",
	})
	b := f.newBrowser(t)

	requireRedirect(t, b.post(RouteLogin, url.Values{}), RouteLogin)

	rec := b.post(RouteLogin, url.Values{})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Contains(t, rec.Body.String(), msgTooManyRequests)
	require.Contains(t, f.scrape(t), "admin_auth_login_throttled_total 1")

	// the page itself is not throttled
	require.Equal(t, http.StatusOK, b.get(RouteLogin).Code)
}
