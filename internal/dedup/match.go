// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"cmp"
	"slices"

	"github.com/pdiddy/paper-dedup/internal/author"
	"github.com/pdiddy/paper-dedup/internal/identifier"
	"github.com/pdiddy/paper-dedup/internal/index"
	"github.com/pdiddy/paper-dedup/pkg/types"
)

// FindPotentialDuplicates scores record against candidates and returns the
// matches whose overall score reaches the match confidence floor, sorted by
// confidence descending (ties keep candidate order). Each match is labelled
// with the strongest reason it matched: exact_id, then title_venue, then
// author_overlap, then fuzzy_title.
//
// Large candidate lists are narrowed through a token index first: only
// candidates sharing a title token, an author signature, or an identifier
// with record are scored.
func (e *Engine) FindPotentialDuplicates(record types.Paper, candidates []types.Paper) []types.DuplicateMatch {
	var pool []int
	if t := e.cfg.IndexedLookupThreshold; t > 0 && len(candidates) >= t {
		pool = e.indexedPool(record, candidates)
	} else {
		pool = make([]int, len(candidates))
		for i := range candidates {
			pool[i] = i
		}
	}

	normRecord := e.titles.Normalize(record.Title)
	var matches []types.DuplicateMatch
	for _, i := range pool {
		c := candidates[i]
		s := e.CalculateSimilarity(record, c)
		if s.OverallScore < e.cfg.MatchMinConfidence {
			continue
		}
		matches = append(matches, types.DuplicateMatch{
			CandidateIndex: i,
			Candidate:      c.Clone(),
			Confidence:     s.OverallScore,
			Score:          s,
			Stage:          e.classify(s, normRecord, e.titles.Normalize(c.Title)),
		})
	}
	slices.SortStableFunc(matches, func(a, b types.DuplicateMatch) int {
		return cmp.Compare(b.Confidence, a.Confidence)
	})
	return matches
}

func (e *Engine) classify(s types.SimilarityScore, normA, normB string) types.MatchStage {
	switch {
	case s.IDOverlap:
		return types.StageExactID
	case normA != "" && normA == normB && s.VenueSimilarity == 1:
		return types.StageTitleVenue
	case s.AuthorSimilarity >= e.cfg.AuthorThreshold:
		return types.StageAuthorOverlap
	default:
		return types.StageFuzzyTitle
	}
}

// indexedPool returns, in ascending order, the candidates sharing a title
// token, an author signature, or a normalized identifier with record.
func (e *Engine) indexedPool(record types.Paper, candidates []types.Paper) []int {
	lookupCfg := e.idxCfg
	lookupCfg.PruneSingletons = false
	ix := index.New(lookupCfg, index.WithLogger(e.logger), index.WithTitleMatcher(e.titles))
	ix.Build(candidates)

	in := make(map[int]bool)
	for _, c := range ix.Query(record, index.Query{MinTokenOverlap: 1}) {
		in[c.Index] = true
	}
	for _, a := range record.Authors {
		for _, j := range ix.ByAuthor(author.Signature(a)) {
			in[j] = true
		}
	}
	if keys := identifier.Keys(record.IDs); len(keys) > 0 {
		want := make(map[string]bool, len(keys))
		for _, k := range keys {
			want[k] = true
		}
		for j, c := range candidates {
			for _, k := range identifier.Keys(c.IDs) {
				if want[k] {
					in[j] = true
					break
				}
			}
		}
	}

	pool := make([]int, 0, len(in))
	for j := range in {
		pool = append(pool, j)
	}
	slices.Sort(pool)
	return pool
}
