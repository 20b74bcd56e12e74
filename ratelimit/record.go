package ratelimit

import (
	"context"
	"time"
)

// Record tracks failed logins from one client address
type Record struct {
	Address      string
	Login        *string // first login name seen from this address
	Attempts     int
	LastAttempt  time.Time
	BlockedUntil *time.Time
}

// IsBlocked reports whether the block is still in force at now
func (r *Record) IsBlocked(now time.Time) bool {
	return r != nil && r.BlockedUntil != nil && r.BlockedUntil.After(now)
}

// Repo persists attempt records. Records are never deleted.
type Repo interface {
	// Get returns errors.ErrNotFound when the address has no record
	Get(ctx context.Context, address string) (*Record, error)
	// Update runs fn against the record for address, creating an empty one if needed,
	// and persists the result. Concurrent updates of the same address are serialised.
	Update(ctx context.Context, address string, fn func(rec *Record) error) error
	// Clear resets the counter and block of an existing record; it is a no-op otherwise
	Clear(ctx context.Context, address string, at time.Time) error
}
