// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index builds an inverted index over normalized paper titles plus
// author-signature, venue, and year buckets. Candidate retrieval through
// shared title tokens replaces an all-pairs comparison with near-linear
// candidate generation.
package index

import (
	"cmp"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-dedup/internal/author"
	"github.com/pdiddy/paper-dedup/internal/title"
	"github.com/pdiddy/paper-dedup/pkg/types"
)

// Rough per-entry overheads used by the memory estimate.
const (
	mapEntryBytes = 48
	postingBytes  = 8
)

// Candidate is a record sharing title tokens with a query.
type Candidate struct {
	Index        int
	SharedTokens int
}

// Query narrows candidate retrieval.
type Query struct {
	// MinTokenOverlap is the shared-token count a candidate needs (at least 1).
	MinTokenOverlap int

	// Venue, when non-empty, keeps only candidates whose venue key matches.
	Venue string

	// Year, when non-zero, keeps only candidates whose year lies within
	// YearWindow of it. Candidates with unknown year are excluded.
	Year       int
	YearWindow int

	// StrictYear applies the year filter even when Year is 0: an unknown
	// year then keeps only candidates whose year is also unknown.
	StrictYear bool

	// Limit caps the number of returned candidates. Zero means no cap.
	Limit int
}

// Index is the similarity index over one batch of papers. It is built and
// read by a single run; concurrent reads after Build are safe.
type Index struct {
	cfg    types.IndexConfig
	logger *zap.Logger
	titles *title.Matcher

	papers     []types.Paper
	normTitles []string
	tokens     [][]string

	inverted map[string][]int
	byAuthor map[string][]int
	byVenue  map[string][]int
	byYear   map[int][]int

	stats types.IndexStats
}

// Option configures an Index.
type Option func(*Index)

// WithLogger sets the index logger.
func WithLogger(l *zap.Logger) Option {
	return func(ix *Index) {
		if l != nil {
			ix.logger = l
		}
	}
}

// WithTitleMatcher shares a title normalization cache with the index.
func WithTitleMatcher(m *title.Matcher) Option {
	return func(ix *Index) { ix.titles = m }
}

// New creates an empty index.
func New(cfg types.IndexConfig, opts ...Option) *Index {
	ix := &Index{cfg: cfg, logger: zap.NewNop()}
	for _, o := range opts {
		o(ix)
	}
	ix.reset(0)
	return ix
}

func (ix *Index) reset(n int) {
	ix.papers = nil
	ix.normTitles = make([]string, 0, n)
	ix.tokens = make([][]string, 0, n)
	ix.inverted = make(map[string][]int)
	ix.byAuthor = make(map[string][]int)
	ix.byVenue = make(map[string][]int)
	ix.byYear = make(map[int][]int)
	ix.stats = types.IndexStats{}
}

// Build replaces the index contents with papers. Record i of the index is
// papers[i]. When the config prunes singletons, Optimize runs afterwards.
func (ix *Index) Build(papers []types.Paper) {
	start := time.Now()
	ix.reset(len(papers))
	ix.papers = papers

	for i, p := range papers {
		norm := ix.titles.Normalize(p.Title)
		toks := ix.capTokens(title.NormalizedTokens(norm))
		ix.normTitles = append(ix.normTitles, norm)
		ix.tokens = append(ix.tokens, toks)
		for _, t := range toks {
			ix.inverted[t] = append(ix.inverted[t], i)
		}
		ix.stats.TotalTokens += len(toks)

		seen := make(map[string]bool, len(p.Authors))
		for _, a := range p.Authors {
			sig := author.Signature(a)
			if sig == "" || seen[sig] {
				continue
			}
			seen[sig] = true
			ix.byAuthor[sig] = append(ix.byAuthor[sig], i)
		}
		if v := p.VenueKey(); v != "" {
			ix.byVenue[v] = append(ix.byVenue[v], i)
		}
		if p.Year != 0 {
			ix.byYear[p.Year] = append(ix.byYear[p.Year], i)
		}
	}

	ix.stats.RecordCount = len(papers)
	if ix.cfg.PruneSingletons {
		ix.Optimize()
	}
	ix.refreshStats()
	ix.stats.BuildTime = time.Since(start)

	ix.logger.Debug("similarity index built",
		zap.Int("records", ix.stats.RecordCount),
		zap.Int("unique_tokens", ix.stats.UniqueTokens),
		zap.Int("pruned_tokens", ix.stats.PrunedTokens),
		zap.Int64("estimated_bytes", ix.stats.EstimatedMemoryBytes),
		zap.Duration("build_time", ix.stats.BuildTime),
	)
}

// capTokens keeps at most MaxTokensPerRecord tokens, preferring longer ones.
func (ix *Index) capTokens(toks []string) []string {
	limit := ix.cfg.MaxTokensPerRecord
	if limit <= 0 || len(toks) <= limit {
		return toks
	}
	kept := slices.Clone(toks)
	slices.SortStableFunc(kept, func(a, b string) int {
		return cmp.Or(cmp.Compare(len(b), len(a)), cmp.Compare(a, b))
	})
	return kept[:limit]
}

// Optimize drops tokens indexed for at most one record. Such tokens cannot
// pair two indexed records, but they can still match a record passed to
// Query, so lookup indexes should not prune.
func (ix *Index) Optimize() {
	pruned := 0
	for t, postings := range ix.inverted {
		if len(postings) <= 1 {
			delete(ix.inverted, t)
			pruned++
		}
	}
	ix.stats.PrunedTokens += pruned
	ix.refreshStats()
}

func (ix *Index) refreshStats() {
	s := &ix.stats
	s.UniqueTokens = len(ix.inverted)
	if s.RecordCount > 0 {
		s.AvgTokensPerRecord = float64(s.TotalTokens) / float64(s.RecordCount)
	}

	var bytes int64
	for t, postings := range ix.inverted {
		bytes += int64(mapEntryBytes + len(t) + postingBytes*len(postings))
	}
	for sig, postings := range ix.byAuthor {
		bytes += int64(mapEntryBytes + len(sig) + postingBytes*len(postings))
	}
	for v, postings := range ix.byVenue {
		bytes += int64(mapEntryBytes + len(v) + postingBytes*len(postings))
	}
	for _, postings := range ix.byYear {
		bytes += int64(mapEntryBytes + postingBytes*len(postings))
	}
	for i := range ix.tokens {
		bytes += int64(len(ix.normTitles[i]))
		for _, t := range ix.tokens[i] {
			bytes += int64(16 + len(t))
		}
	}
	s.EstimatedMemoryBytes = bytes
}

// FindSimilarPapers returns indexed records sharing title tokens with
// record i, excluding i, ranked by shared-token count (ties by index).
func (ix *Index) FindSimilarPapers(i int, q Query) []Candidate {
	if i < 0 || i >= len(ix.papers) {
		return nil
	}
	return ix.candidates(ix.tokens[i], i, q)
}

// Query returns indexed records sharing title tokens with p, which need not
// be part of the index.
func (ix *Index) Query(p types.Paper, q Query) []Candidate {
	toks := ix.capTokens(title.NormalizedTokens(ix.titles.Normalize(p.Title)))
	return ix.candidates(toks, -1, q)
}

func (ix *Index) candidates(toks []string, self int, q Query) []Candidate {
	minOverlap := max(q.MinTokenOverlap, 1)

	counts := make(map[int]int)
	for _, t := range toks {
		for _, j := range ix.inverted[t] {
			if j != self {
				counts[j]++
			}
		}
	}

	out := make([]Candidate, 0, len(counts))
	for j, n := range counts {
		if n < minOverlap {
			continue
		}
		p := ix.papers[j]
		if q.Venue != "" && p.VenueKey() != q.Venue {
			continue
		}
		if (q.Year != 0 || q.StrictYear) && !yearsCompatible(q.Year, p.Year, q.YearWindow) {
			continue
		}
		out = append(out, Candidate{Index: j, SharedTokens: n})
	}

	slices.SortFunc(out, func(a, b Candidate) int {
		return cmp.Or(cmp.Compare(b.SharedTokens, a.SharedTokens), cmp.Compare(a.Index, b.Index))
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// Len returns the number of indexed records.
func (ix *Index) Len() int { return len(ix.papers) }

// Paper returns indexed record i.
func (ix *Index) Paper(i int) types.Paper { return ix.papers[i] }

// NormalizedTitle returns the normalized title of record i.
func (ix *Index) NormalizedTitle(i int) string { return ix.normTitles[i] }

// Tokens returns the indexed title tokens of record i.
func (ix *Index) Tokens(i int) []string { return ix.tokens[i] }

// ByAuthor returns records with an author carrying the given signature.
func (ix *Index) ByAuthor(signature string) []int { return ix.byAuthor[signature] }

// ByVenue returns records whose venue key equals venue.
func (ix *Index) ByVenue(venue string) []int { return ix.byVenue[venue] }

// ByYear returns records published in year.
func (ix *Index) ByYear(year int) []int { return ix.byYear[year] }

// Stats returns index statistics.
func (ix *Index) Stats() types.IndexStats { return ix.stats }

// yearsCompatible reports whether a and b lie within window of each other.
// Zero is an unknown year and is compatible only with another zero.
func yearsCompatible(a, b, window int) bool {
	if a == 0 || b == 0 {
		return a == b
	}
	return abs(a-b) <= window
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
