package cache

import (
	"context"
	"os"
	"testing"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"path2prevention/internal/chat"
)

type sessionStore interface {
	Get(ctx context.Context, id string) (*chat.Session, error)
	Save(ctx context.Context, session *chat.Session) error
	Delete(ctx context.Context, id string) (bool, error)
}

func exerciseStore(t *testing.T, store sessionStore, id string) {
	ctx := context.Background()

	missing, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, missing)

	s := chat.NewSession(id, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	s.UserName = "Lee"
	s.FormatPreferenceSet = true
	require.NoError(t, store.Save(ctx, s))

	s.UserName = "changed after save"

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Lee", got.UserName)
	assert.True(t, got.FormatPreferenceSet)
	assert.Equal(t, chat.Greeting, got.Messages[0].Text)

	deleted, err := store.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestMemorySessionStore(t *testing.T) {
	exerciseStore(t, NewMemorySessionStore(time.Minute), "mem-1")
}

func TestMemorySessionStoreExpires(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(context.Background(), chat.NewSession("old", now)))
	now = now.Add(2 * time.Minute)

	got, err := store.Get(context.Background(), "old")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemorySessionStoreDropsExpiredSessions(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore(time.Minute)
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, chat.NewSession("stale", now)))
	require.NoError(t, store.Save(ctx, chat.NewSession("abandoned", now)))
	now = now.Add(2 * time.Minute)

	deleted, err := store.Delete(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, deleted)

	require.NoError(t, store.Save(ctx, chat.NewSession("fresh", now)))
	assert.Len(t, store.entries, 1)
	assert.Contains(t, store.entries, "fresh")
}

func TestSessionCacheAgainstRedis(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redisv9.NewClient(&redisv9.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	cache := NewSessionCache(client, time.Minute)
	require.NoError(t, cache.Ping(context.Background()))
	exerciseStore(t, cache, "redis-test-"+time.Now().Format("150405.000000"))
}
