// ABOUTME: Tests for the idempotency key cache
// ABOUTME: Validates claims, TTL expiry, eviction, sweeping and concurrent claims

package dedupe

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCache returns a cache with a controllable clock.
func newTestCache(t *testing.T, ttl time.Duration, size int) (*Cache, *time.Time) {
	t.Helper()
	c := New(ttl, size)
	t.Cleanup(c.Close)
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCache_ClaimAndDuplicate(t *testing.T) {
	c, _ := newTestCache(t, time.Minute, 10)

	v, dup := c.Claim("k", "notif-1")
	assert.False(t, dup)
	assert.Equal(t, "notif-1", v)

	v, dup = c.Claim("k", "notif-2")
	assert.True(t, dup)
	assert.Equal(t, "notif-1", v, "duplicate returns the first value")

	got, ok := c.Lookup("k")
	require.True(t, ok)
	assert.Equal(t, "notif-1", got)
}

func TestCache_Expiry(t *testing.T) {
	c, now := newTestCache(t, time.Minute, 10)

	c.Claim("k", "first")
	*now = now.Add(2 * time.Minute)

	_, ok := c.Lookup("k")
	assert.False(t, ok)

	v, dup := c.Claim("k", "second")
	assert.False(t, dup)
	assert.Equal(t, "second", v)
}

func TestCache_EvictsOldest(t *testing.T) {
	c, _ := newTestCache(t, time.Hour, 2)

	c.Claim("a", "1")
	c.Claim("b", "2")
	c.Claim("c", "3")

	_, ok := c.Lookup("a")
	assert.False(t, ok)
	_, ok = c.Lookup("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestCache_Forget(t *testing.T) {
	c, _ := newTestCache(t, time.Hour, 10)

	c.Claim("k", "1")
	c.Forget("k")
	_, dup := c.Claim("k", "2")
	assert.False(t, dup)
}

func TestCache_PurgeExpired(t *testing.T) {
	c, now := newTestCache(t, time.Minute, 10)

	c.Claim("old", "1")
	*now = now.Add(30 * time.Second)
	c.Claim("new", "2")
	*now = now.Add(45 * time.Second)

	c.purgeExpired()
	assert.Equal(t, 1, c.Len())
	_, ok := c.Lookup("new")
	assert.True(t, ok)
}

func TestKey_ScopesByUser(t *testing.T) {
	assert.NotEqual(t, Key("A", "x"), Key("B", "x"))
}

func TestCache_ConcurrentClaims(t *testing.T) {
	c := New(time.Minute, 100)
	defer c.Close()

	var winners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, dup := c.Claim("same", fmt.Sprint(i)); !dup {
				winners.Add(1)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int32(1), winners.Load())
}

func TestCache_CloseIdempotent(t *testing.T) {
	c := New(time.Millisecond, 1)
	c.Close()
	c.Close()
}
