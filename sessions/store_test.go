package sessions_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	apperrors "github.com/jrsteele09/go-admin-auth/internal/errors"
	"github.com/jrsteele09/go-admin-auth/sessions"
	"github.com/stretchr/testify/require"
)

func sampleData() sessions.Data {
	return sessions.Data{
		AccountID:    7,
		AccountUUID:  "b1c4",
		DisplayName:  "John Doe",
		IsSuperadmin: true,
		LastActivity: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
		CSRFToken:    "abc",
		Flashes:      map[sessions.FlashKind][]string{sessions.FlashSuccess: {"hi"}},
	}
}

func exerciseStore(t *testing.T, store sessions.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	require.NoError(t, store.Set(ctx, "sid", sampleData(), time.Minute))
	got, err := store.Get(ctx, "sid")
	require.NoError(t, err)
	require.Equal(t, sampleData(), got)

	changed := sampleData()
	changed.CSRFToken = "rotated"
	updated, err := store.Update(ctx, "sid", changed, time.Minute)
	require.NoError(t, err)
	require.True(t, updated)
	got, err = store.Get(ctx, "sid")
	require.NoError(t, err)
	require.Equal(t, "rotated", got.CSRFToken)

	require.NoError(t, store.Delete(ctx, "sid"))
	_, err = store.Get(ctx, "sid")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	require.NoError(t, store.Delete(ctx, "sid"))

	// a deleted entry is not brought back by Update
	updated, err = store.Update(ctx, "sid", sampleData(), time.Minute)
	require.NoError(t, err)
	require.False(t, updated)
	_, err = store.Get(ctx, "sid")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, sessions.NewMemoryStore(10, time.Hour))
}

func TestMemoryStoreIsolatesCopies(t *testing.T) {
	ctx := context.Background()
	store := sessions.NewMemoryStore(10, time.Hour)

	data := sampleData()
	require.NoError(t, store.Set(ctx, "sid", data, time.Minute))
	data.Flashes[sessions.FlashError] = []string{"mutated"}
	data.Flashes[sessions.FlashSuccess][0] = "mutated"

	got, err := store.Get(ctx, "sid")
	require.NoError(t, err)
	require.NotContains(t, got.Flashes, sessions.FlashError)
	require.Equal(t, []string{"hi"}, got.Flashes[sessions.FlashSuccess])
}

func TestMemoryStoreEvictsBeyondSize(t *testing.T) {
	ctx := context.Background()
	store := sessions.NewMemoryStore(2, time.Hour)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Set(ctx, id, sampleData(), time.Minute))
	}
	require.Equal(t, 2, store.Len())
	_, err := store.Get(ctx, "a")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestMemoryStoreAnonymousDoNotEvictAuthenticated(t *testing.T) {
	ctx := context.Background()
	store := sessions.NewMemoryStore(2, time.Hour)

	require.NoError(t, store.Set(ctx, "member", sampleData(), time.Minute))
	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, store.Set(ctx, id, sessions.Data{CSRFToken: "t-" + id}, time.Minute))
	}
	require.Equal(t, 3, store.Len())

	got, err := store.Get(ctx, "member")
	require.NoError(t, err)
	require.True(t, got.Authenticated())
	_, err = store.Get(ctx, "a")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestMemoryStoreMovesEntryWhenIdentityChanges(t *testing.T) {
	ctx := context.Background()
	store := sessions.NewMemoryStore(2, time.Hour)

	require.NoError(t, store.Set(ctx, "sid", sessions.Data{CSRFToken: "t"}, time.Minute))
	updated, err := store.Update(ctx, "sid", sampleData(), time.Minute)
	require.NoError(t, err)
	require.True(t, updated)
	require.Equal(t, 1, store.Len())

	// a full anonymous cache no longer reaches it
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Set(ctx, id, sessions.Data{CSRFToken: "t-" + id}, time.Minute))
	}
	got, err := store.Get(ctx, "sid")
	require.NoError(t, err)
	require.Equal(t, int64(7), got.AccountID)

	require.NoError(t, store.Delete(ctx, "sid"))
	require.Equal(t, 2, store.Len())
}

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := sessions.NewRedisClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	store := sessions.NewRedisStore(client, "")
	exerciseStore(t, store)

	require.NoError(t, store.Set(context.Background(), "ttl", sampleData(), time.Minute))
	require.True(t, mr.Exists(sessions.DefaultRedisKeyPrefix+"ttl"))
	require.Equal(t, time.Minute, mr.TTL(sessions.DefaultRedisKeyPrefix+"ttl"))

	mr.FastForward(2 * time.Minute)
	_, err = store.Get(context.Background(), "ttl")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestRedisStoreCorruptEntry(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := sessions.NewRedisClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, mr.Set("bo:sid", "{not json"))
	store := sessions.NewRedisStore(client, "bo:")
	_, err = store.Get(context.Background(), "sid")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	require.False(t, mr.Exists("bo:sid"))
}

func TestNewRedisClientBadURL(t *testing.T) {
	_, err := sessions.NewRedisClient(context.Background(), "not-a-url://")
	require.Error(t, err)
}
