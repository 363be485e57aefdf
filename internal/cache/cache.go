// Package cache keeps read results per logical query group. A write to an
// entity invalidates that entity's group and nothing else.
package cache

import (
	"slices"
	"strings"
	"sync"
	"time"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// QueryCache maps group -> key -> value with a TTL. A nil *QueryCache is a
// valid, always-missing cache.
type QueryCache struct {
	mu     sync.RWMutex
	ttl    time.Duration
	groups map[string]map[string]entry
}

// New returns a cache whose entries live for ttl. ttl <= 0 disables caching.
func New(ttl time.Duration) *QueryCache {
	if ttl <= 0 {
		return nil
	}
	return &QueryCache{ttl: ttl, groups: make(map[string]map[string]entry)}
}

// Get returns the cached value for (group, key).
func (c *QueryCache) Get(group, key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.groups[group][key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under (group, key).
func (c *QueryCache) Set(group, key string, value any) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	g, ok := c.groups[group]
	if !ok {
		g = make(map[string]entry)
		c.groups[group] = g
	}
	g[key] = entry{value: value, expiresAt: time.Now().Add(c.ttl)}
}

// Invalidate drops every key of group.
func (c *QueryCache) Invalidate(group string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.groups, group)
	c.mu.Unlock()
}

// InvalidatePrefix drops every group whose name starts with prefix.
func (c *QueryCache) InvalidatePrefix(prefix string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for g := range c.groups {
		if strings.HasPrefix(g, prefix) {
			delete(c.groups, g)
		}
	}
}

// Size returns the number of cached keys across all groups.
func (c *QueryCache) Size() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, g := range c.groups {
		n += len(g)
	}
	return n
}

// LoadSlice returns the cached slice for (group, key) or calls fetch and
// caches its result. Callers always get their own copy.
func LoadSlice[T any](c *QueryCache, group, key string, fetch func() ([]T, error)) ([]T, error) {
	if v, ok := c.Get(group, key); ok {
		if s, ok := v.([]T); ok {
			return slices.Clone(s), nil
		}
	}
	s, err := fetch()
	if err != nil {
		return nil, err
	}
	c.Set(group, key, slices.Clone(s))
	return s, nil
}
