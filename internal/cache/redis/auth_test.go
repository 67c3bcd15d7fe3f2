package redis

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/design-portfolio/internal/domain"
)

// Set PORTFOLIO_TEST_REDIS_ADDR to a scratch redis to run these.
func TestTokenStore(t *testing.T) {
	addr := os.Getenv("PORTFOLIO_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PORTFOLIO_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb, err := NewClient(ctx, addr, "", 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer rdb.Close()

	store := NewTokenStore(rdb, time.Minute)
	s := &domain.Session{Token: "test-token", UserID: "u1", Email: "admin@example.com"}
	require.NoError(t, store.Save(ctx, s))
	assert.False(t, s.ExpiresAt.IsZero())

	got, err := store.Get(ctx, "test-token")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "admin@example.com", got.Email)

	ttl, err := rdb.TTL(ctx, keyPrefix+"test-token").Result()
	require.NoError(t, err)
	assert.InDelta(t, time.Minute.Seconds(), ttl.Seconds(), 5)

	require.NoError(t, rdb.Expire(ctx, keyPrefix+"test-token", 30*time.Second).Err())
	peeked, err := store.Peek(ctx, "test-token")
	require.NoError(t, err)
	assert.Equal(t, "u1", peeked.UserID)
	ttl, err = rdb.TTL(ctx, keyPrefix+"test-token").Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, 30*time.Second, "peek does not extend the expiry")

	require.NoError(t, store.Delete(ctx, "test-token"))
	_, err = store.Get(ctx, "test-token")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.Peek(ctx, "test-token")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTokenStoreBadValue(t *testing.T) {
	addr := os.Getenv("PORTFOLIO_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PORTFOLIO_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb, err := NewClient(ctx, addr, "", 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer rdb.Close()

	require.NoError(t, rdb.Set(ctx, keyPrefix+"garbled", "{", time.Minute).Err())
	_, err = NewTokenStore(rdb, time.Minute).Get(ctx, "garbled")
	assert.ErrorIs(t, err, ErrRedisBadValue)
}
