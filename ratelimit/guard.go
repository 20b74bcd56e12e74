package ratelimit

import (
	"context"
	"sync"
)

type guardKey struct{}

type attemptGuard struct {
	lock   sync.Mutex
	logged map[string]bool
}

// WithAttemptGuard scopes attempt logging to ctx: within it, LogAttempt counts each address once.
// The HTTP layer installs one guard per request.
func WithAttemptGuard(ctx context.Context) context.Context {
	return context.WithValue(ctx, guardKey{}, &attemptGuard{logged: make(map[string]bool)})
}

// claim returns false when address was already logged under the guard in ctx
func claim(ctx context.Context, address string) bool {
	g, ok := ctx.Value(guardKey{}).(*attemptGuard)
	if !ok {
		return true
	}
	g.lock.Lock()
	defer g.lock.Unlock()

	if g.logged[address] {
		return false
	}
	g.logged[address] = true
	return true
}
