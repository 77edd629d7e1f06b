package store

import (
	"context"
	"sync"
	"time"

	"github.com/darmiel/doipv/internal/core"
)

type cacheEntry struct {
	profile   *core.VerifiedProfile
	expiresAt time.Time
}

// ProfileCache keeps verified profiles in memory for a fixed time.
type ProfileCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

func NewProfileCache(ttl time.Duration) *ProfileCache {
	return &ProfileCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached profile of uri unless it has expired.
func (c *ProfileCache) Get(_ context.Context, uri string) (*core.VerifiedProfile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[uri]
	if !ok || !e.expiresAt.After(c.now()) {
		return nil, false
	}
	return e.profile, true
}

func (c *ProfileCache) Put(_ context.Context, uri string, profile *core.VerifiedProfile) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[uri] = cacheEntry{
		profile:   profile,
		expiresAt: c.now().Add(c.ttl),
	}
}

// DeleteExpired removes all expired entries and returns how many were removed.
func (c *ProfileCache) DeleteExpired(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var deleted int64
	for uri, e := range c.entries {
		if !e.expiresAt.After(now) {
			delete(c.entries, uri)
			deleted++
		}
	}
	return deleted, nil
}

func (c *ProfileCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
