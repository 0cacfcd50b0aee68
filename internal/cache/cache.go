package cache

import (
	"context"
	"sync"
	"time"
)

// Store is a read-through cache for serialized response payloads. The
// in-process implementation below is the default; a Redis-backed one is
// used when REDIS_ADDR is configured.
//
// SetIfAbsent exists for read-side write-backs: writers that must win a
// race against readers (a delete tombstone, for instance) use Set, while
// readers filling the cache use SetIfAbsent so they can never clobber a
// value a writer just placed.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte)
	SetIfAbsent(ctx context.Context, key string, val []byte) bool
	Delete(ctx context.Context, key string)
}

type Cache struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]entry
}

type entry struct {
	val []byte
	exp time.Time
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache{
		ttl: ttl,
		m:   make(map[string]entry),
	}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	now := time.Now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if now.After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false
	}

	return e.val, true
}

func (c *Cache) Set(ctx context.Context, key string, val []byte) {
	c.mu.Lock()
	c.m[key] = entry{val: val, exp: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *Cache) SetIfAbsent(ctx context.Context, key string, val []byte) bool {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.m[key]; ok && now.Before(e.exp) {
		return false
	}

	c.m[key] = entry{val: val, exp: now.Add(c.ttl)}
	return true
}

func (c *Cache) Delete(ctx context.Context, key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

func (c *Cache) Clear() {
	c.mu.Lock()
	c.m = make(map[string]entry)
	c.mu.Unlock()
}
