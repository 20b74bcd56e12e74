package sessions

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	apperrors "github.com/jrsteele09/go-admin-auth/internal/errors"
)

const DefaultMemoryStoreSize = 10000

var _ Store = (*MemoryStore)(nil)

type memoryEntry struct {
	data      Data
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. Anonymous and authenticated sessions live in
// separate caches of size entries each, so a flood of anonymous visitors can only evict
// other anonymous sessions. Entries are also dropped once their ttl passes.
type MemoryStore struct {
	mu            sync.Mutex
	anonymous     *lru.LRU[string, memoryEntry]
	authenticated *lru.LRU[string, memoryEntry]
	nowTime       func() time.Time
}

// NewMemoryStore creates a store holding up to size anonymous and size authenticated
// sessions, none older than maxTTL
func NewMemoryStore(size int, maxTTL time.Duration) *MemoryStore {
	if size <= 0 {
		size = DefaultMemoryStoreSize
	}
	return &MemoryStore{
		anonymous:     lru.NewLRU[string, memoryEntry](size, nil, maxTTL),
		authenticated: lru.NewLRU[string, memoryEntry](size, nil, maxTTL),
		nowTime:       time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (Data, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.lookup(id)
	if !ok {
		return Data{}, apperrors.ErrSessionNotFound
	}
	return entry.data.Clone(), nil
}

func (m *MemoryStore) Set(_ context.Context, id string, data Data, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.put(id, data, ttl)
	return nil
}

func (m *MemoryStore) Update(_ context.Context, id string, data Data, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.lookup(id); !ok {
		return false, nil
	}
	m.put(id, data, ttl)
	return true, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.anonymous.Remove(id)
	m.authenticated.Remove(id)
	return nil
}

// Len returns the number of cached sessions
func (m *MemoryStore) Len() int {
	return m.anonymous.Len() + m.authenticated.Len()
}

// lookup finds a live entry in either cache. Callers hold mu.
func (m *MemoryStore) lookup(id string) (memoryEntry, bool) {
	for _, cache := range []*lru.LRU[string, memoryEntry]{m.authenticated, m.anonymous} {
		entry, ok := cache.Get(id)
		if !ok {
			continue
		}
		if !entry.expiresAt.IsZero() && m.nowTime().After(entry.expiresAt) {
			cache.Remove(id)
			return memoryEntry{}, false
		}
		return entry, true
	}
	return memoryEntry{}, false
}

// put files the entry under the cache matching its identity. Callers hold mu.
func (m *MemoryStore) put(id string, data Data, ttl time.Duration) {
	entry := memoryEntry{data: data.Clone()}
	if ttl > 0 {
		entry.expiresAt = m.nowTime().Add(ttl)
	}

	target, other := m.anonymous, m.authenticated
	if data.Authenticated() {
		target, other = m.authenticated, m.anonymous
	}
	other.Remove(id)
	target.Add(id, entry)
}
