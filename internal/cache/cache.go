package cache

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// entry stores one cached value with its expiry and insertion order.
type entry[V any] struct {
	value      V
	expiresAt  time.Time
	insertedAt time.Time
	seq        uint64
}

// Cache is an in-memory key/value store with per-entry TTL, a periodic
// expiry sweep and oldest-inserted capacity eviction. Misses are a normal
// outcome, never an error.
type Cache[V any] struct {
	defaultTTL time.Duration
	maxItems   int

	mu    sync.Mutex
	items map[string]entry[V]
	seq   uint64

	stop chan struct{}
	once sync.Once
}

// New builds a cache and starts its sweep goroutine. sweepEvery <= 0
// disables the background sweep; expired entries are then only dropped
// lazily on access.
func New[V any](defaultTTL time.Duration, maxItems int, sweepEvery time.Duration) *Cache[V] {
	c := &Cache[V]{
		defaultTTL: defaultTTL,
		maxItems:   maxItems,
		items:      make(map[string]entry[V]),
		stop:       make(chan struct{}),
	}
	if sweepEvery > 0 {
		go c.sweepLoop(sweepEvery)
	}
	return c
}

// Stop halts the background sweep. Safe to call more than once.
func (c *Cache[V]) Stop() {
	c.once.Do(func() { close(c.stop) })
}

// Set stores value under key with the given TTL. ttl <= 0 uses the default.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.items[key] = entry[V]{
		value:      value,
		expiresAt:  now.Add(ttl),
		insertedAt: now,
		seq:        c.seq,
	}
	c.evictOverCapacity()
}

// Get returns the value for key and whether it was present and unexpired.
// An expired entry is removed on access.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.items, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// GetOrSet returns the cached value for key, or invokes producer once,
// stores its result and returns it. Producer errors are returned without
// caching. Two concurrent misses on the same key may both invoke producer;
// entries are recomputable so the second store simply wins.
func (c *Cache[V]) GetOrSet(ctx context.Context, key string, ttl time.Duration, producer func(context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := producer(ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	c.Set(key, v, ttl)
	return v, nil
}

// Len reports the current number of live entries, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cache[V]) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache[V]) sweep() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.items {
		if now.After(e.expiresAt) {
			delete(c.items, k)
		}
	}
}

// evictOverCapacity drops oldest-inserted entries until the count is back at
// maxItems. Insertion order, not last access, decides the victim.
// Caller holds c.mu.
func (c *Cache[V]) evictOverCapacity() {
	if c.maxItems <= 0 {
		return
	}
	for len(c.items) > c.maxItems {
		var oldestKey string
		var oldestSeq uint64
		first := true
		for k, e := range c.items {
			if first || e.seq < oldestSeq {
				oldestKey, oldestSeq = k, e.seq
				first = false
			}
		}
		delete(c.items, oldestKey)
	}
}

// Key derives a deterministic cache key from a name and a parameter map.
// Params are emitted sorted so identical logical requests always collide to
// the same key regardless of map iteration order.
func Key(name string, params map[string]string) string {
	if len(params) == 0 {
		return name
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(name)
	for _, k := range keys {
		fmt.Fprintf(&b, "|%s=%s", k, params[k])
	}
	return b.String()
}
