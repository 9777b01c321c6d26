package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// TTL is a simple in-memory cache with TTL. Keys are strings, values are []byte (e.g. JSON).
type TTL struct {
	mu    sync.RWMutex
	items map[string]item
	ttl   time.Duration
	now   func() time.Time
	stop  chan struct{}
	once  sync.Once
}

type item struct {
	data []byte
	exp  time.Time
}

// New returns a new TTL cache with the given duration. After duration, entries expire.
func New(ttl time.Duration) *TTL {
	return newTTL(ttl, time.Now)
}

func newTTL(ttl time.Duration, now func() time.Time) *TTL {
	c := &TTL{items: make(map[string]item), ttl: ttl, now: now, stop: make(chan struct{})}
	go c.cleanup()
	return c
}

func (c *TTL) cleanup() {
	interval := c.ttl / 2
	if interval <= 0 {
		interval = time.Second
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-tick.C:
			c.purge()
		}
	}
}

func (c *TTL) purge() {
	c.mu.Lock()
	now := c.now()
	for k, v := range c.items {
		if v.exp.Before(now) {
			delete(c.items, k)
		}
	}
	c.mu.Unlock()
}

// Get returns the value for key if present and not expired.
func (c *TTL) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if now := c.now(); it.exp.Before(now) {
		c.evict(key, now)
		return nil, false
	}
	return it.data, true
}

// evict drops key only if it is still expired at now; a Set that raced in
// between the read and the write lock keeps its fresh value.
func (c *TTL) evict(key string, now time.Time) {
	c.mu.Lock()
	if it, ok := c.items[key]; ok && it.exp.Before(now) {
		delete(c.items, key)
	}
	c.mu.Unlock()
}

// Set stores the value for key with the cache TTL.
func (c *TTL) Set(_ context.Context, key string, value []byte) {
	exp := c.now().Add(c.ttl)
	c.mu.Lock()
	c.items[key] = item{data: value, exp: exp}
	c.mu.Unlock()
}

// Delete removes the keys.
func (c *TTL) Delete(_ context.Context, keys ...string) {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.items, k)
	}
	c.mu.Unlock()
}

// DeleteMatching removes all keys containing substr (e.g. "atendimentos:list:" to clear every list page).
func (c *TTL) DeleteMatching(_ context.Context, substr string) {
	c.mu.Lock()
	for k := range c.items {
		if strings.Contains(k, substr) {
			delete(c.items, k)
		}
	}
	c.mu.Unlock()
}

// Len reports how many entries are held, expired or not.
func (c *TTL) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the cleanup goroutine.
func (c *TTL) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}
