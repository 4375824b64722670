package service

import (
	"github.com/berfenger/descview/internal/core/domain"
)

type CacheState int

const (
	CACHE_ABSENT CacheState = iota
	CACHE_PENDING
	CACHE_READY
	CACHE_FAILED
)

type cacheEntry struct {
	state      CacheState
	descriptor *domain.DeviceDescriptor
	err        error
}

// DetailCache holds the descriptors of the selected devices for one
// session. It is owned by a single session and is not safe for concurrent
// use.
type DetailCache struct {
	entries map[string]cacheEntry
}

func NewDetailCache() *DetailCache {
	return &DetailCache{
		entries: make(map[string]cacheEntry),
	}
}

func (c *DetailCache) MarkPending(ref domain.DeviceRef) {
	c.entries[ref.Key()] = cacheEntry{state: CACHE_PENDING}
}

func (c *DetailCache) Put(ref domain.DeviceRef, descriptor *domain.DeviceDescriptor) {
	c.entries[ref.Key()] = cacheEntry{state: CACHE_READY, descriptor: descriptor}
}

func (c *DetailCache) Fail(ref domain.DeviceRef, err error) {
	c.entries[ref.Key()] = cacheEntry{state: CACHE_FAILED, err: err}
}

func (c *DetailCache) State(ref domain.DeviceRef) CacheState {
	entry, ok := c.entries[ref.Key()]
	if !ok {
		return CACHE_ABSENT
	}
	return entry.state
}

// Descriptor returns the cached descriptor, or nil when the entry is
// absent, pending or failed.
func (c *DetailCache) Descriptor(ref domain.DeviceRef) *domain.DeviceDescriptor {
	entry, ok := c.entries[ref.Key()]
	if !ok || entry.state != CACHE_READY {
		return nil
	}
	return entry.descriptor
}

func (c *DetailCache) Failure(ref domain.DeviceRef) error {
	entry, ok := c.entries[ref.Key()]
	if !ok || entry.state != CACHE_FAILED {
		return nil
	}
	return entry.err
}

func (c *DetailCache) Evict(ref domain.DeviceRef) {
	delete(c.entries, ref.Key())
}

func (c *DetailCache) Clear() {
	c.entries = make(map[string]cacheEntry)
}

func (c *DetailCache) Len() int {
	return len(c.entries)
}
