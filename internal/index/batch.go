// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"cmp"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-dedup/internal/title"
	"github.com/pdiddy/paper-dedup/pkg/types"
)

// ScoreFunc computes the true similarity of two papers in [0, 1].
type ScoreFunc func(a, b types.Paper) float64

// SimilarPair is a pair of indexed records (I < J) and their score.
type SimilarPair struct {
	I     int     `json:"i" yaml:"i"`
	J     int     `json:"j" yaml:"j"`
	Score float64 `json:"score" yaml:"score"`
}

// BatchOptions bounds a dataset-wide pair search.
type BatchOptions struct {
	// Threshold is the minimum score for an emitted pair.
	Threshold float64

	// MaxCandidates caps candidates pulled per record. Zero means no cap.
	MaxCandidates int

	// MinTokenOverlap is passed through to candidate retrieval.
	MinTokenOverlap int
}

// BatchProcessor finds near-duplicate pairs across a whole index. Cheap
// token-overlap retrieval runs first; the score function only sees pairs
// that survive it, and each unordered pair is scored once.
type BatchProcessor struct {
	idx    *Index
	score  ScoreFunc
	logger *zap.Logger

	scored int
}

// NewBatchProcessor wraps idx. A nil score function scores by title.
func NewBatchProcessor(idx *Index, score ScoreFunc) *BatchProcessor {
	if score == nil {
		score = TitleScore(idx.titles)
	}
	return &BatchProcessor{idx: idx, score: score, logger: idx.logger}
}

// FindSimilarPairs returns every candidate pair scoring at or above the
// threshold, sorted by score descending and then by (I, J).
func (bp *BatchProcessor) FindSimilarPairs(opts BatchOptions) []SimilarPair {
	start := time.Now()
	seen := make(map[[2]int]bool)
	var pairs []SimilarPair

	for i := 0; i < bp.idx.Len(); i++ {
		cands := bp.idx.FindSimilarPapers(i, Query{
			MinTokenOverlap: opts.MinTokenOverlap,
			Limit:           opts.MaxCandidates,
		})
		for _, c := range cands {
			key := [2]int{min(i, c.Index), max(i, c.Index)}
			if seen[key] {
				continue
			}
			seen[key] = true
			s := bp.score(bp.idx.Paper(key[0]), bp.idx.Paper(key[1]))
			if s >= opts.Threshold {
				pairs = append(pairs, SimilarPair{I: key[0], J: key[1], Score: s})
			}
		}
	}
	bp.scored = len(seen)

	slices.SortFunc(pairs, func(a, b SimilarPair) int {
		return cmp.Or(cmp.Compare(b.Score, a.Score), cmp.Compare(a.I, b.I), cmp.Compare(a.J, b.J))
	})

	bp.logger.Debug("batch similarity search finished",
		zap.Int("records", bp.idx.Len()),
		zap.Int("pairs_scored", bp.scored),
		zap.Int("pairs_emitted", len(pairs)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return pairs
}

// PairsScored returns how many distinct pairs the last search scored.
func (bp *BatchProcessor) PairsScored() int { return bp.scored }

// TitleScore scores papers by title similarity through m (nil computes fresh).
func TitleScore(m *title.Matcher) ScoreFunc {
	return func(a, b types.Paper) float64 {
		return m.Similarity(a.Title, b.Title)
	}
}
