// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedup links bibliographic records that describe the same
// publication and merges them into one canonical record.
//
// Deduplicate runs four stages in order, each consuming the unique records
// left by the previous one:
//
//  1. exact identifier matching (paper ID, DOI, arXiv ID, source ID)
//  2. normalized title + venue + year signature matching
//  3. fuzzy title/author matching over a token index
//  4. venue-variant consolidation by normalized title, authors and year
//
// Every merge is recorded as a DuplicateGroup with its stage, confidence and
// evidence. Merges never drop an identifier.
package dedup

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-dedup/internal/author"
	"github.com/pdiddy/paper-dedup/internal/metrics"
	"github.com/pdiddy/paper-dedup/internal/title"
	"github.com/pdiddy/paper-dedup/pkg/types"
)

// Engine runs the deduplication pipeline. Deduplicate is serialized by an
// internal lock; the similarity caches are shared across runs.
type Engine struct {
	mu sync.Mutex

	cfg     types.DedupConfig
	idxCfg  types.IndexConfig
	logger  *zap.Logger
	metrics *metrics.Recorder
	titles  *title.Matcher
	authors *author.Matcher
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. The default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics records every run into r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(e *Engine) { e.metrics = r }
}

// WithTitleMatcher replaces the engine-owned title cache.
func WithTitleMatcher(m *title.Matcher) Option {
	return func(e *Engine) { e.titles = m }
}

// WithAuthorMatcher replaces the engine-owned author cache.
func WithAuthorMatcher(m *author.Matcher) Option {
	return func(e *Engine) { e.authors = m }
}

// WithIndexConfig sets the fuzzy-stage index configuration.
func WithIndexConfig(cfg types.IndexConfig) Option {
	return func(e *Engine) { e.idxCfg = cfg }
}

// New validates cfg and builds an engine.
func New(cfg types.DedupConfig, opts ...Option) (*Engine, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.AuthorAssignment == "" {
		cfg.AuthorAssignment = types.AssignGreedy
	}

	e := &Engine{
		cfg:    cfg,
		idxCfg: types.DefaultIndexConfig(),
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(e)
	}

	if e.titles == nil {
		m, err := title.NewMatcher(cfg.TitleCacheSize)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		e.titles = m
	}
	if e.authors == nil {
		m, err := author.NewMatcher(cfg.AuthorCacheSize, cfg.AuthorAssignment)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		e.authors = m
	}
	return e, nil
}

// Config returns the effective engine configuration.
func (e *Engine) Config() types.DedupConfig { return e.cfg }

// Deduplicate runs the four-stage pipeline over papers. Inputs are never
// modified; every returned record is an independent copy.
func (e *Engine) Deduplicate(papers []types.Paper) types.DeduplicationResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	res := types.DeduplicationResult{
		OriginalCount:  len(papers),
		StageCounts:    make(map[types.MatchStage]int, len(types.PipelineStages)),
		StageDurations: make(map[types.MatchStage]time.Duration, len(types.PipelineStages)),
	}

	current := prepare(papers)
	for _, stage := range types.PipelineStages {
		stageStart := time.Now()
		var out stageOutput
		switch stage {
		case types.StageExactID:
			out = e.exactIDStage(current)
		case types.StageTitleVenue:
			out = e.titleVenueStage(current)
		case types.StageFuzzyTitle:
			out = e.fuzzyStage(current)
			res.IndexStats = out.indexStats
			res.NearMisses = out.nearMisses
		case types.StageVenueVariant:
			out = e.venueVariantStage(current)
		}
		elapsed := time.Since(stageStart)

		removed := 0
		for _, g := range out.groups {
			removed += g.Removed()
		}
		res.StageCounts[stage] = removed
		res.StageDurations[stage] = elapsed
		res.Groups = append(res.Groups, out.groups...)

		e.logger.Debug("stage finished",
			zap.String("stage", string(stage)),
			zap.Int("input", len(current)),
			zap.Int("output", len(out.papers)),
			zap.Int("groups", len(out.groups)),
			zap.Duration("elapsed", elapsed),
		)
		current = out.papers
	}

	res.Papers = current
	res.DeduplicatedCount = len(current)
	res.DuplicatesRemoved = res.OriginalCount - res.DeduplicatedCount
	for _, g := range res.Groups {
		res.Confidence.Add(g.MergeConfidence)
	}
	res.EstimatedFalsePositiveRate, res.EstimatedFalseNegativeRate = errorRates(res)
	res.ProcessingTime = time.Since(start)

	e.metrics.ObserveRun(res)
	e.metrics.ObserveCache("title", e.titles.CacheStats())
	e.metrics.ObserveCache("author", e.authors.CacheStats())

	e.logger.Info("deduplication finished",
		zap.Int("original", res.OriginalCount),
		zap.Int("deduplicated", res.DeduplicatedCount),
		zap.Int("removed", res.DuplicatesRemoved),
		zap.Int("groups", len(res.Groups)),
		zap.Duration("elapsed", res.ProcessingTime),
	)
	return res
}

// errorRates estimates false positives as the removal-weighted mean of
// (1 - merge confidence), and false negatives as fuzzy-stage near misses
// over removed records plus near misses.
func errorRates(res types.DeduplicationResult) (fp, fn float64) {
	weighted, removed := 0.0, 0
	for _, g := range res.Groups {
		n := g.Removed()
		weighted += float64(n) * (1 - g.MergeConfidence)
		removed += n
	}
	if removed > 0 {
		fp = weighted / float64(removed)
	}
	if d := removed + res.NearMisses; d > 0 {
		fn = float64(res.NearMisses) / float64(d)
	}
	return fp, fn
}

// DeduplicatePapers runs a one-off engine with default settings and the
// given thresholds.
func DeduplicatePapers(papers []types.Paper, titleThreshold, authorThreshold, venueWeight float64) (types.DeduplicationResult, error) {
	cfg := types.DefaultDedupConfig()
	cfg.TitleThreshold = titleThreshold
	cfg.AuthorThreshold = authorThreshold
	cfg.VenueWeight = venueWeight
	e, err := New(cfg)
	if err != nil {
		return types.DeduplicationResult{}, err
	}
	return e.Deduplicate(papers), nil
}
