package noncesvc

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisStore(client)
	ctx := context.Background()

	fresh, err := store.Claim(ctx, "emp:abc", time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = store.Claim(ctx, "emp:abc", time.Minute)
	require.NoError(t, err)
	assert.False(t, fresh, "replayed nonce")

	fresh, err = store.Claim(ctx, "emp:def", time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh)

	mr.FastForward(2 * time.Minute)
	fresh, err = store.Claim(ctx, "emp:abc", time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh, "expired nonce is claimable again")
}

func TestMemoryStore(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	fresh, _ := store.Claim(ctx, "n1", time.Minute)
	assert.True(t, fresh)
	fresh, _ = store.Claim(ctx, "n1", time.Minute)
	assert.False(t, fresh)

	now = now.Add(61 * time.Second)
	fresh, _ = store.Claim(ctx, "n1", time.Minute)
	assert.True(t, fresh)
	assert.Len(t, store.expires, 1)
}
