package sessions

import (
	"context"
	"time"
)

// Store persists session data by id. Get returns errors.ErrSessionNotFound on a miss.
// Update only overwrites an entry that still exists and reports whether it did.
type Store interface {
	Get(ctx context.Context, id string) (Data, error)
	Set(ctx context.Context, id string, data Data, ttl time.Duration) error
	Update(ctx context.Context, id string, data Data, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, id string) error
}
