// Package cache provides a small TTL read cache for user-profile lookups.
// It is a latency optimization only: callers must behave identically with
// the cache disabled, and nothing consults it for consistency.
package cache

import (
	"sync"
	"time"

	"github.com/promptarena/prompt-arena/models"
)

type entry struct {
	user      *models.User
	expiresAt time.Time
}

type ProfileCache struct {
	mu      sync.RWMutex
	entries map[int]entry
	ttl     time.Duration
}

// NewProfileCache returns a cache with the given TTL. A TTL of zero or
// less disables the cache: Get always misses and Set is a no-op.
func NewProfileCache(ttl time.Duration) *ProfileCache {
	return &ProfileCache{
		entries: make(map[int]entry),
		ttl:     ttl,
	}
}

func (c *ProfileCache) Get(userID int) (*models.User, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[userID]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.user, true
}

func (c *ProfileCache) Set(user *models.User) {
	if c.ttl <= 0 || user == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[user.ID] = entry{user: user, expiresAt: time.Now().Add(c.ttl)}
}

// Invalidate drops one user, e.g. after a role change.
func (c *ProfileCache) Invalidate(userID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

// Sweep removes expired entries and reports how many were dropped.
// Run it periodically; correctness does not depend on it.
func (c *ProfileCache) Sweep() int {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep on the given interval until stop is closed.
func (c *ProfileCache) StartSweeper(interval time.Duration, stop <-chan struct{}) {
	if c.ttl <= 0 || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Sweep()
			case <-stop:
				return
			}
		}
	}()
}
