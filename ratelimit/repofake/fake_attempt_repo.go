package fakeratelimitrepo

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-admin-auth/internal/errors"
	"github.com/jrsteele09/go-admin-auth/ratelimit"
)

var _ ratelimit.Repo = (*FakeAttemptRepo)(nil)

type FakeAttemptRepo struct {
	records map[string]ratelimit.Record
	lock    sync.Mutex
}

func NewFakeAttemptRepo() *FakeAttemptRepo {
	return &FakeAttemptRepo{records: make(map[string]ratelimit.Record)}
}

func (r *FakeAttemptRepo) Get(_ context.Context, address string) (*ratelimit.Record, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	rec, ok := r.records[address]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &rec, nil
}

func (r *FakeAttemptRepo) Update(_ context.Context, address string, fn func(rec *ratelimit.Record) error) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	rec, ok := r.records[address]
	if !ok {
		rec = ratelimit.Record{Address: address}
	}
	if err := fn(&rec); err != nil {
		return err
	}
	if ok && r.records[address].Login != nil {
		// first known login wins
		rec.Login = r.records[address].Login
	}
	r.records[address] = rec
	return nil
}

func (r *FakeAttemptRepo) Clear(_ context.Context, address string, at time.Time) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	rec, ok := r.records[address]
	if !ok {
		return nil
	}
	rec.Attempts = 0
	rec.BlockedUntil = nil
	rec.LastAttempt = at
	r.records[address] = rec
	return nil
}

// Put stores rec as is; useful to arrange a block in tests
func (r *FakeAttemptRepo) Put(rec ratelimit.Record) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.records[rec.Address] = rec
}
