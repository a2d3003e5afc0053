package cache

import (
	"sync"
	"time"
)

// Cache is the read-through cache port used by handlers that serve
// rarely-changing documents (category lists, site content). A distributed
// implementation can replace the in-memory one behind the same interface.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	Delete(key string)
	Clear()
}

// Clock abstracts time reads so expiry can be tested deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall-clock implementation.
func SystemClock() Clock { return systemClock{} }

type entry struct {
	value     interface{}
	expiresAt time.Time
}

type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	clock   Clock
}

// NewMemory builds an in-memory TTL cache. Expired entries are dropped on
// read; there is no background sweeper.
func NewMemory(clock Clock) Cache {
	if clock == nil {
		clock = SystemClock()
	}
	return &memoryCache{
		entries: make(map[string]entry),
		clock:   clock,
	}
}

func (c *memoryCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.clock.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (c *memoryCache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{
		value:     value,
		expiresAt: c.clock.Now().Add(ttl),
	}
	c.mu.Unlock()
}

func (c *memoryCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *memoryCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}
