// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package title

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pdiddy/paper-dedup/internal/cache"
	"github.com/pdiddy/paper-dedup/internal/textsim"
)

// Weights of the combined title score.
const (
	weightTokenSort = 0.4
	weightTokenSet  = 0.3
	weightPartial   = 0.2
	weightRatio     = 0.1
)

// Similarity scores two raw titles in [0, 1]. Identical normalized titles
// score 1; an empty normalized title on either side scores 0.
func Similarity(a, b string) float64 {
	return NormalizedSimilarity(Normalize(a), Normalize(b))
}

// NormalizedSimilarity scores two titles that are already normalized.
func NormalizedSimilarity(na, nb string) float64 {
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	score := weightTokenSort*textsim.TokenSortRatio(na, nb) +
		weightTokenSet*textsim.TokenSetRatio(na, nb) +
		weightPartial*textsim.PartialRatio(na, nb) +
		weightRatio*textsim.Ratio(na, nb)
	return min(max(score, 0), 1)
}

// Matcher caches normalized titles and pairwise similarities. A nil
// *Matcher computes everything fresh. Safe for concurrent use.
type Matcher struct {
	normalized *lru.Cache[string, string]
	pairs      *cache.PairCache[float64]
}

// NewMatcher creates a Matcher whose caches each hold up to size entries.
func NewMatcher(size int) (*Matcher, error) {
	pairs, err := cache.NewPairCache[float64](size)
	if err != nil {
		return nil, fmt.Errorf("title similarity cache: %w", err)
	}
	normalized, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("title normalization cache: %w", err)
	}
	return &Matcher{normalized: normalized, pairs: pairs}, nil
}

// Normalize returns Normalize(title), cached.
func (m *Matcher) Normalize(title string) string {
	if m == nil {
		return Normalize(title)
	}
	if n, ok := m.normalized.Get(title); ok {
		return n
	}
	n := Normalize(title)
	m.normalized.Add(title, n)
	return n
}

// Similarity returns Similarity(a, b), cached by the unordered raw pair.
func (m *Matcher) Similarity(a, b string) float64 {
	if m == nil {
		return Similarity(a, b)
	}
	return m.pairs.GetOrCompute(a, b, func() float64 {
		return NormalizedSimilarity(m.Normalize(a), m.Normalize(b))
	})
}

// CacheStats reports the pair cache counters.
func (m *Matcher) CacheStats() cache.Stats {
	if m == nil {
		return cache.Stats{}
	}
	return m.pairs.Stats()
}

// Reset drops all cached entries.
func (m *Matcher) Reset() {
	if m == nil {
		return
	}
	m.pairs.Purge()
	m.normalized.Purge()
}
