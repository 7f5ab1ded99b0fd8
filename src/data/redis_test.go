package data

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRunLockMutualExclusion(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()
	lock := NewRunLock(rdb, "ma_legislature", time.Minute)

	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = lock.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must fail while lock is held")

	require.NoError(t, lock.Release(ctx))

	ok, err = lock.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok, "lock must be available after release")
}

func TestRunLockExpires(t *testing.T) {
	// A crashed run must not block successors past the TTL.
	mr, rdb := newTestRedis(t)
	ctx := context.Background()
	lock := NewRunLock(rdb, "ma_legislature", time.Minute)

	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)

	ok, err = lock.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLastSummaryRoundTrip(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, CacheLastSummary(ctx, rdb, "ma_legislature", `{"hearingsSynced":3}`, time.Hour))

	got, err := LastSummary(ctx, rdb, "ma_legislature")
	require.NoError(t, err)
	assert.JSONEq(t, `{"hearingsSynced":3}`, got)

	_, err = LastSummary(ctx, rdb, "unknown_source")
	assert.Error(t, err)
}
