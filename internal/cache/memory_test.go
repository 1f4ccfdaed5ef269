package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock lets tests age entries without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newClockedCache(ttl time.Duration) (*MemoryAdviceCache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	c := NewMemoryAdviceCache(ttl)
	c.now = clock.Now
	return c, clock
}

func TestMemoryCacheGetSet(t *testing.T) {
	t.Parallel()

	c, _ := newClockedCache(DefaultTTL)
	ctx := context.Background()

	_, hit, err := c.Get(ctx, "advice:none:a")
	require.NoError(t, err)
	require.False(t, hit)

	require.NoError(t, c.Set(ctx, "advice:none:a", []byte("v1")))

	got, hit, err := c.Get(ctx, "advice:none:a")
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, []byte("v1"), got)

	// Last write wins.
	require.NoError(t, c.Set(ctx, "advice:none:a", []byte("v2")))
	got, hit, _ = c.Get(ctx, "advice:none:a")
	require.True(t, hit)
	require.Equal(t, []byte("v2"), got)
	require.Equal(t, 1, c.Len())
}

func TestMemoryCacheLazyExpiry(t *testing.T) {
	t.Parallel()

	c, clock := newClockedCache(DefaultTTL)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "advice:none:a", []byte("v")))

	clock.Advance(DefaultTTL - time.Minute)
	_, hit, err := c.Get(ctx, "advice:none:a")
	require.NoError(t, err)
	require.True(t, hit, "entry younger than TTL must still be served")

	clock.Advance(2 * time.Minute)
	_, hit, err = c.Get(ctx, "advice:none:a")
	require.NoError(t, err)
	require.False(t, hit, "entry older than TTL must be a miss")
	require.Equal(t, 0, c.Len(), "expired entry must be evicted on lookup")
}

func TestMemoryCacheSweep(t *testing.T) {
	t.Parallel()

	c, clock := newClockedCache(DefaultTTL)
	ctx := context.Background()

	// N entries that will expire, M that will not.
	const n, m = 5, 3
	for i := 0; i < n; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("advice:none:old%d", i), []byte("v")))
	}
	clock.Advance(DefaultTTL + time.Second)
	for i := 0; i < m; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("advice:none:new%d", i), []byte("v")))
	}

	removed, err := c.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, n, removed)
	require.Equal(t, m, c.Len())

	// Nothing left to remove.
	removed, err = c.Sweep(ctx)
	require.NoError(t, err)
	require.Zero(t, removed)
}

func TestMemoryCacheConcurrentAccess(t *testing.T) {
	t.Parallel()

	c, _ := newClockedCache(DefaultTTL)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("advice:none:k%d", i%4)
			for j := 0; j < 100; j++ {
				_ = c.Set(ctx, key, []byte("v"))
				_, _, _ = c.Get(ctx, key)
				_, _ = c.Sweep(ctx)
			}
		}(i)
	}
	wg.Wait()

	require.LessOrEqual(t, c.Len(), 4)
}

func TestMemoryCacheClear(t *testing.T) {
	t.Parallel()

	c, _ := newClockedCache(DefaultTTL)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "advice:none:a", []byte("v")))
	c.Clear()
	require.Zero(t, c.Len())
}
