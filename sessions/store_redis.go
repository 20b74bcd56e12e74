package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	apperrors "github.com/jrsteele09/go-admin-auth/internal/errors"
)

const DefaultRedisKeyPrefix = "session:"

var _ Store = (*RedisStore)(nil)

// RedisStore keeps JSON encoded session data in Redis so several instances can share sessions
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisClient parses redisURL and verifies the server answers
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("[sessions NewRedisClient] invalid redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("[sessions NewRedisClient] failed to connect to redis: %w", err)
	}
	return client, nil
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) Get(ctx context.Context, id string) (Data, error) {
	raw, err := r.client.Get(ctx, r.prefix+id).Bytes()
	if err == redis.Nil {
		return Data{}, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return Data{}, fmt.Errorf("[sessions RedisStore Get] %w", err)
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		// corrupt entries are dropped and treated as missing
		r.client.Del(ctx, r.prefix+id)
		return Data{}, apperrors.ErrSessionNotFound
	}
	return data, nil
}

func (r *RedisStore) Set(ctx context.Context, id string, data Data, ttl time.Duration) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("[sessions RedisStore Set] marshal: %w", err)
	}
	if err := r.client.Set(ctx, r.prefix+id, raw, ttl).Err(); err != nil {
		return fmt.Errorf("[sessions RedisStore Set] %w", err)
	}
	return nil
}

// Update rewrites an existing entry with SET XX so a session deleted in the meantime
// stays deleted
func (r *RedisStore) Update(ctx context.Context, id string, data Data, ttl time.Duration) (bool, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return false, fmt.Errorf("[sessions RedisStore Update] marshal: %w", err)
	}
	updated, err := r.client.SetXX(ctx, r.prefix+id, raw, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("[sessions RedisStore Update] %w", err)
	}
	return updated, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.prefix+id).Err(); err != nil {
		return fmt.Errorf("[sessions RedisStore Delete] %w", err)
	}
	return nil
}
