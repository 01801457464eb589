package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealbuddy/engine/internal/ports/outbound"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache() (*CacheRepository, *manualClock) {
	clock := &manualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	repo := NewCacheRepository(0)
	repo.now = clock.Now
	return repo, clock
}

func TestCacheRepository_SetGet(t *testing.T) {
	repo, _ := newTestCache()
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	exists, err := repo.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCacheRepository_Miss(t *testing.T) {
	repo, _ := newTestCache()

	_, err := repo.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)
}

func TestCacheRepository_Expiry(t *testing.T) {
	repo, clock := newTestCache()
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "k", []byte("v"), time.Minute))
	clock.Advance(2 * time.Minute)

	exists, err := repo.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.Get(ctx, "k")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)
	assert.Zero(t, repo.Len())
}

func TestCacheRepository_ZeroTTLUsesDefault(t *testing.T) {
	repo, clock := newTestCache()
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "k", []byte("v"), 0))
	clock.Advance(defaultTTL - time.Second)

	_, err := repo.Get(ctx, "k")
	assert.NoError(t, err)
}

func TestCacheRepository_StoredValueIsCopied(t *testing.T) {
	repo, _ := newTestCache()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, repo.Set(ctx, "k", value, time.Minute))
	value[0] = 'z'

	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	got[1] = 'z'

	again, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestCacheRepository_Delete(t *testing.T) {
	repo, _ := newTestCache()
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, repo.Delete(ctx, "k"))

	_, err := repo.Get(ctx, "k")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)
}

func TestCacheRepository_PurgeExpired(t *testing.T) {
	repo, clock := newTestCache()
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "short", []byte("1"), time.Second))
	require.NoError(t, repo.Set(ctx, "long", []byte("2"), time.Hour))
	clock.Advance(time.Minute)

	repo.purgeExpired()

	assert.Equal(t, 1, repo.Len())
}

func TestCacheRepository_CanceledContext(t *testing.T) {
	repo, _ := newTestCache()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, repo.Set(ctx, "k", []byte("v"), time.Minute), context.Canceled)
	_, err := repo.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCacheRepository_StopIsIdempotent(t *testing.T) {
	repo := NewCacheRepository(time.Millisecond)
	repo.Stop()
	repo.Stop()
}
