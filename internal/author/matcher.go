// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package author

import (
	"fmt"

	"github.com/pdiddy/paper-dedup/internal/cache"
	"github.com/pdiddy/paper-dedup/pkg/types"
)

// Matcher caches author-list similarities keyed by the unordered pair of
// sorted name tuples. A nil *Matcher computes greedily without caching.
type Matcher struct {
	strategy types.AuthorAssignment
	pairs    *cache.PairCache[float64]
}

// NewMatcher creates a Matcher with a cache of up to size entries.
func NewMatcher(size int, strategy types.AuthorAssignment) (*Matcher, error) {
	switch strategy {
	case "":
		strategy = types.AssignGreedy
	case types.AssignGreedy, types.AssignOptimal:
	default:
		return nil, fmt.Errorf("unknown author assignment %q", strategy)
	}
	pairs, err := cache.NewPairCache[float64](size)
	if err != nil {
		return nil, fmt.Errorf("author match cache: %w", err)
	}
	return &Matcher{strategy: strategy, pairs: pairs}, nil
}

// Strategy returns the assignment strategy in use.
func (m *Matcher) Strategy() types.AuthorAssignment {
	if m == nil {
		return types.AssignGreedy
	}
	return m.strategy
}

// Similarity returns the list similarity of a and b.
func (m *Matcher) Similarity(a, b []types.Author) float64 {
	if m == nil {
		return Similarity(a, b, types.AssignGreedy)
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	return m.pairs.GetOrCompute(listKey(a), listKey(b), func() float64 {
		return Similarity(a, b, m.strategy)
	})
}

// CacheStats reports the cache counters.
func (m *Matcher) CacheStats() cache.Stats {
	if m == nil {
		return cache.Stats{}
	}
	return m.pairs.Stats()
}

// Reset drops all cached entries.
func (m *Matcher) Reset() {
	if m != nil {
		m.pairs.Purge()
	}
}
