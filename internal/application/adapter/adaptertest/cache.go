package adaptertest

import (
	"context"
	"sync"
	"time"
)

// Cache is an in-memory adapter.ForecastCache that counts invalidations.
type Cache struct {
	mu            sync.Mutex
	entries       map[string][]byte
	Invalidations int
	Err           error
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string][]byte)}
}

// Get implements adapter.ForecastCache.
func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, false, c.Err
	}
	value, ok := c.entries[key]
	return value, ok, nil
}

// Set implements adapter.ForecastCache.
func (c *Cache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.entries[key] = value
	return nil
}

// Invalidate implements adapter.ForecastCache.
func (c *Cache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Invalidations++
	if c.Err != nil {
		return c.Err
	}
	c.entries = make(map[string][]byte)
	return nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clock is a settable billing.Clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a clock fixed at now.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the current fixed time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock.
func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
