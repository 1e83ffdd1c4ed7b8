package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consatan/weibo-image-uploader/internal/domain"
	"github.com/consatan/weibo-image-uploader/internal/store"
)

func sampleSession() domain.Session {
	return domain.Session{
		Username: "alice",
		Cookies: []domain.SessionCookie{
			{Name: "SUB", Value: "token", Domain: ".weibo.com", Path: "/"},
		},
		SavedUTC: 1700000000,
	}
}

func TestSessionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := store.NewMemoryCache()
	sessions := store.NewSessionStore(cache)
	id := domain.Identity{Username: "alice", Password: "pw"}

	_, ok, err := sessions.Load(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, sessions.Save(ctx, id, sampleSession()))

	got, ok, err := sessions.Load(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleSession(), got)
}

func TestSessionStoreBlobIsOpaque(t *testing.T) {
	ctx := context.Background()
	cache := store.NewMemoryCache()
	sessions := store.NewSessionStore(cache)
	id := domain.Identity{Username: "alice", Password: "pw"}

	require.NoError(t, sessions.Save(ctx, id, sampleSession()))

	blob, ok, err := cache.Get(ctx, id.CacheKey())
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, string(blob), "SUB")
	assert.NotContains(t, string(blob), "token")
	assert.NotContains(t, string(blob), "alice")
}

func TestSessionStoreWrongPasswordIsAbsent(t *testing.T) {
	ctx := context.Background()
	cache := store.NewMemoryCache()
	sessions := store.NewSessionStore(cache)

	require.NoError(t, sessions.Save(ctx, domain.Identity{Username: "alice", Password: "pw"}, sampleSession()))

	// Same account, changed credential: the old session must not surface.
	_, ok, err := sessions.Load(ctx, domain.Identity{Username: "alice", Password: "other"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionStoreCorruptedBlobIsAbsent(t *testing.T) {
	ctx := context.Background()
	cache := store.NewMemoryCache()
	sessions := store.NewSessionStore(cache)
	id := domain.Identity{Username: "alice", Password: "pw"}

	require.NoError(t, cache.Set(ctx, id.CacheKey(), []byte("not an envelope")))

	_, ok, err := sessions.Load(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionStoreLastWriteWins(t *testing.T) {
	ctx := context.Background()
	sessions := store.NewSessionStore(store.NewMemoryCache())
	id := domain.Identity{Username: "alice", Password: "pw"}

	first := sampleSession()
	require.NoError(t, sessions.Save(ctx, id, first))

	second := sampleSession()
	second.Cookies[0].Value = "newer"
	require.NoError(t, sessions.Save(ctx, id, second))

	got, ok, err := sessions.Load(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "newer", got.Cookies[0].Value)
}

func TestSessionStoreDrop(t *testing.T) {
	ctx := context.Background()
	sessions := store.NewSessionStore(store.NewMemoryCache())
	id := domain.Identity{Username: "alice", Password: "pw"}

	require.NoError(t, sessions.Save(ctx, id, sampleSession()))
	require.NoError(t, sessions.Drop(ctx, id))

	_, ok, err := sessions.Load(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	// idempotent
	require.NoError(t, sessions.Drop(ctx, id))
}
