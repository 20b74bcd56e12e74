package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	throttleMaxAddresses = 10000
	throttleIdleTTL      = 5 * time.Minute
)

// LoginThrottle is a per-address token bucket in front of the login form. It smooths
// request floods; the persistent failure counter in ratelimit decides lockouts.
type LoginThrottle struct {
	lock      sync.Mutex
	limiters  *expirable.LRU[string, *rate.Limiter]
	perSecond rate.Limit
	burst     int
}

// NewLoginThrottle creates a throttle. A non-positive rate disables it.
func NewLoginThrottle(perSecond float64, burst int) *LoginThrottle {
	if burst < 1 {
		burst = 1
	}
	return &LoginThrottle{
		limiters:  expirable.NewLRU[string, *rate.Limiter](throttleMaxAddresses, nil, throttleIdleTTL),
		perSecond: rate.Limit(perSecond),
		burst:     burst,
	}
}

// Allow reports whether address may submit another request now
func (t *LoginThrottle) Allow(address string) bool {
	if t.perSecond <= 0 {
		return true
	}
	if address == "" {
		address = "unknown"
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	limiter, ok := t.limiters.Get(address)
	if !ok {
		limiter = rate.NewLimiter(t.perSecond, t.burst)
	}
	// re-adding refreshes the idle expiry
	t.limiters.Add(address, limiter)
	return limiter.Allow()
}

// LoginThrottleMiddleware answers 429 when the caller's bucket is empty
func (s *Server) LoginThrottleMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address := s.clientIP(r)
		if !s.throttle.Allow(address) {
			s.metrics.Throttled()
			log.Warn().Str("security", "login_throttled").Str("address", address).Msg("login submissions arriving too fast")
			http.Error(w, msgTooManyRequests, http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
