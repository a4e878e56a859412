// ABOUTME: Thread-safe TTL cache of idempotency keys for notification posts
// ABOUTME: Remembers the notification ID first issued for each key

package dedupe

import (
	"container/list"
	"sync"
	"time"
)

// record is what the cache keeps per key.
type record struct {
	value   string
	addedAt time.Time
	element *list.Element
}

// Cache maps idempotency keys to the result of their first use for a TTL.
// Size is bounded; when full the oldest key is evicted in O(1) via an
// insertion-ordered list.
type Cache struct {
	mu      sync.Mutex
	records map[string]*record
	order   *list.List // keys, oldest at front
	ttl     time.Duration
	maxSize int
	now     func() time.Time
	done    chan struct{}
	closed  bool
}

// New creates a cache with the given TTL and capacity and starts a
// background sweeper that runs every sweepInterval(ttl).
func New(ttl time.Duration, maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 1
	}
	c := &Cache{
		records: make(map[string]*record),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go c.sweep(sweepInterval(ttl))
	return c
}

func sweepInterval(ttl time.Duration) time.Duration {
	if ttl > 0 && ttl < time.Minute {
		return ttl
	}
	return time.Minute
}

// Key scopes an idempotency key to the user that sent it.
func Key(userID, idempotencyKey string) string {
	return userID + "\x00" + idempotencyKey
}

// Lookup returns the value stored for key if it has not expired.
func (c *Cache) Lookup(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.records[key]
	if !ok || c.expired(r) {
		return "", false
	}
	return r.value, true
}

// Claim atomically stores value under key unless a live record exists.
// It returns the earlier value and true for a duplicate, or value and
// false when the claim succeeded.
func (c *Cache) Claim(key, value string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if r, ok := c.records[key]; ok {
		if !c.expired(r) {
			return r.value, true
		}
		c.removeLocked(key, r)
	}

	if len(c.records) >= c.maxSize {
		c.evictOldest()
	}
	c.records[key] = &record{
		value:   value,
		addedAt: c.now(),
		element: c.order.PushBack(key),
	}
	return value, false
}

// Forget drops key, allowing it to be claimed again. Used when the work a
// claim guarded failed.
func (c *Cache) Forget(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.records[key]; ok {
		c.removeLocked(key, r)
	}
}

// Len returns the number of records, including expired ones not yet swept.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

func (c *Cache) expired(r *record) bool {
	return c.now().Sub(r.addedAt) >= c.ttl
}

// Must be called with mu held.
func (c *Cache) removeLocked(key string, r *record) {
	c.order.Remove(r.element)
	delete(c.records, key)
}

// Must be called with mu held.
func (c *Cache) evictOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}
	key, _ := front.Value.(string)
	c.order.Remove(front)
	delete(c.records, key)
}

func (c *Cache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.purgeExpired()
		case <-c.done:
			return
		}
	}
}

// purgeExpired walks from the oldest record and stops at the first live one.
func (c *Cache) purgeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for e := c.order.Front(); e != nil; {
		next := e.Next()
		key, _ := e.Value.(string)
		r := c.records[key]
		if r == nil || !c.expired(r) {
			break
		}
		c.removeLocked(key, r)
		e = next
	}
}

// Close stops the sweeper. It is safe to call multiple times.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.done)
		c.closed = true
	}
}
