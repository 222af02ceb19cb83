// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-dedup/internal/identifier"
	"github.com/pdiddy/paper-dedup/internal/index"
	"github.com/pdiddy/paper-dedup/pkg/types"
)

// residualThreshold is the overall score at which two surviving records are
// counted as a missed duplicate.
const residualThreshold = 0.9

// ValidateDeduplicationQuality estimates the quality of a finished run from
// its input and output record sets. No ground truth is assumed: precision is
// penalized by conflicting merges and lost identifiers, recall by
// near-duplicate pairs still present in deduplicated. The report is
// diagnostic only.
func (e *Engine) ValidateDeduplicationQuality(original, deduplicated []types.Paper) types.QualityReport {
	start := time.Now()
	r := types.QualityReport{
		OriginalCount:     len(original),
		DeduplicatedCount: len(deduplicated),
		DuplicatesRemoved: max(len(original)-len(deduplicated), 0),
	}
	if r.OriginalCount > 0 {
		r.ReductionRatio = float64(r.DuplicatesRemoved) / float64(r.OriginalCount)
	}

	kept := make(map[string]bool)
	for _, p := range deduplicated {
		if len(p.IDs.Alternates) > 0 {
			r.ConflictingMerges++
		}
		for _, k := range identifier.Keys(p.IDs) {
			kept[k] = true
		}
	}
	lost := make(map[string]bool)
	for _, p := range original {
		for _, k := range identifier.Keys(identifier.FillFromURLs(p.IDs, p.URLs)) {
			if !kept[k] {
				lost[k] = true
			}
		}
	}
	r.LostIdentifiers = len(lost)

	ix := index.New(e.idxCfg, index.WithLogger(e.logger), index.WithTitleMatcher(e.titles))
	ix.Build(deduplicated)
	bp := index.NewBatchProcessor(ix, func(a, b types.Paper) float64 {
		return e.CalculateSimilarity(a, b).OverallScore
	})
	r.ResidualDuplicatePairs = len(bp.FindSimilarPairs(index.BatchOptions{
		Threshold:       residualThreshold,
		MaxCandidates:   e.cfg.MaxCandidates,
		MinTokenOverlap: e.cfg.MinTokenOverlap,
	}))
	r.EstimatedMemoryBytes = ix.Stats().EstimatedMemoryBytes

	r.EstimatedPrecision = 1
	if r.DuplicatesRemoved > 0 {
		bad := float64(r.ConflictingMerges+r.LostIdentifiers) / float64(r.DuplicatesRemoved)
		r.EstimatedPrecision = min(max(1-bad, 0), 1)
	}
	r.EstimatedRecall = 1
	if d := r.DuplicatesRemoved + r.ResidualDuplicatePairs; d > 0 {
		r.EstimatedRecall = float64(r.DuplicatesRemoved) / float64(d)
	}
	if s := r.EstimatedPrecision + r.EstimatedRecall; s > 0 {
		r.EstimatedF1 = 2 * r.EstimatedPrecision * r.EstimatedRecall / s
	}

	r.ProcessingTime = time.Since(start)
	if secs := r.ProcessingTime.Seconds(); secs > 0 {
		r.RecordsPerSecond = float64(r.OriginalCount+r.DeduplicatedCount) / secs
	}

	e.logger.Debug("quality estimated",
		zap.Float64("precision", r.EstimatedPrecision),
		zap.Float64("recall", r.EstimatedRecall),
		zap.Int("residual_pairs", r.ResidualDuplicatePairs),
		zap.Int("lost_identifiers", r.LostIdentifiers),
	)
	return r
}
