package cache

import (
	"errors"
	"time"
)

// LayeredCache checks memory before disk and promotes disk hits
type LayeredCache struct {
	memory  Cache
	disk    Cache
	onEvent EventFunc
}

// NewLayeredCache creates a memory+disk cache. onEvent may be nil.
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration, onEvent EventFunc) *LayeredCache {
	if onEvent == nil {
		onEvent = func(string, string) {}
	}
	return &LayeredCache{
		memory:  NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:    NewDiskCache(diskDir, diskTTL),
		onEvent: onEvent,
	}
}

// Get retrieves a value from the cache (checks memory first, then disk)
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		c.onEvent("memory", EventHit)
		return val, true
	}
	c.onEvent("memory", EventMiss)

	if val, found := c.disk.Get(key); found {
		c.onEvent("disk", EventHit)
		_ = c.memory.Set(key, val, 0)
		return val, true
	}
	c.onEvent("disk", EventMiss)

	return nil, false
}

// Set stores a value in both layers
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.memory.Set(key, value, ttl); err != nil {
		return err
	}
	if err := c.disk.Set(key, value, ttl); err != nil {
		return err
	}
	c.onEvent("layered", EventSet)
	return nil
}

// Delete removes a value from both layers
func (c *LayeredCache) Delete(key string) error {
	return errors.Join(c.memory.Delete(key), c.disk.Delete(key))
}

// Clear removes all values from both layers
func (c *LayeredCache) Clear() error {
	return errors.Join(c.memory.Clear(), c.disk.Clear())
}
