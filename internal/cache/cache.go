// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache provides a bounded LRU cache keyed by an unordered pair of
// strings. Lookups for (a, b) and (b, a) hit the same entry. The cache is
// safe for concurrent use and holds no state that affects correctness: a
// cached value is always what a fresh computation would return.
package cache

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// keySep separates the two halves of a pair key. It cannot appear in
// titles or names harvested as text.
const keySep = "\x00"

// Stats reports cache effectiveness.
type Stats struct {
	Hits   int64
	Misses int64
	Size   int
}

// HitRatio returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// PairCache is an LRU cache keyed by an unordered string pair.
type PairCache[V any] struct {
	lru    *lru.Cache[string, V]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewPairCache creates a cache holding at most size entries.
func NewPairCache[V any](size int) (*PairCache[V], error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache size must be positive (got %d)", size)
	}
	c, err := lru.New[string, V](size)
	if err != nil {
		return nil, fmt.Errorf("creating LRU cache: %w", err)
	}
	return &PairCache[V]{lru: c}, nil
}

// PairKey returns the order-independent key for a and b.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + keySep + b
}

// Get returns the value cached for the pair, if any.
func (c *PairCache[V]) Get(a, b string) (V, bool) {
	v, ok := c.lru.Get(PairKey(a, b))
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Add stores v for the pair, evicting the least recently used entry when full.
func (c *PairCache[V]) Add(a, b string, v V) {
	c.lru.Add(PairKey(a, b), v)
}

// GetOrCompute returns the cached value for the pair or computes, stores,
// and returns it. compute must be symmetric in a and b.
func (c *PairCache[V]) GetOrCompute(a, b string, compute func() V) V {
	if v, ok := c.Get(a, b); ok {
		return v
	}
	v := compute()
	c.Add(a, b, v)
	return v
}

// Len returns the number of cached entries.
func (c *PairCache[V]) Len() int {
	return c.lru.Len()
}

// Purge drops every entry and resets the counters.
func (c *PairCache[V]) Purge() {
	c.lru.Purge()
	c.hits.Store(0)
	c.misses.Store(0)
}

// Stats returns a snapshot of hit/miss counters and the current size.
func (c *PairCache[V]) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   c.lru.Len(),
	}
}
