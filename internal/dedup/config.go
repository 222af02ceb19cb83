// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"errors"
	"fmt"
	"math"

	"github.com/pdiddy/paper-dedup/pkg/types"
)

// ErrInvalidConfig wraps every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid deduplication config")

// Validate checks that cfg can build an engine.
func Validate(cfg types.DedupConfig) error {
	unit := []struct {
		name string
		v    float64
	}{
		{"title_threshold", cfg.TitleThreshold},
		{"author_threshold", cfg.AuthorThreshold},
		{"venue_weight", cfg.VenueWeight},
		{"fuzzy_title_floor", cfg.FuzzyTitleFloor},
		{"venue_author_threshold", cfg.VenueAuthorThreshold},
		{"match_min_confidence", cfg.MatchMinConfidence},
	}
	for _, u := range unit {
		if math.IsNaN(u.v) || u.v < 0.0 || u.v > 1.0 {
			return fmt.Errorf("%w: %s must be between 0.0 and 1.0 (got %.2f)", ErrInvalidConfig, u.name, u.v)
		}
	}
	if cfg.MinTokenOverlap < 1 {
		return fmt.Errorf("%w: min_token_overlap must be at least 1 (got %d)", ErrInvalidConfig, cfg.MinTokenOverlap)
	}
	if cfg.YearWindow < 0 {
		return fmt.Errorf("%w: year_window cannot be negative (got %d)", ErrInvalidConfig, cfg.YearWindow)
	}
	if cfg.MaxCandidates < 0 {
		return fmt.Errorf("%w: max_candidates cannot be negative (got %d)", ErrInvalidConfig, cfg.MaxCandidates)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("%w: workers cannot be negative (got %d)", ErrInvalidConfig, cfg.Workers)
	}
	if cfg.TitleCacheSize <= 0 {
		return fmt.Errorf("%w: title_cache_size must be positive (got %d)", ErrInvalidConfig, cfg.TitleCacheSize)
	}
	if cfg.AuthorCacheSize <= 0 {
		return fmt.Errorf("%w: author_cache_size must be positive (got %d)", ErrInvalidConfig, cfg.AuthorCacheSize)
	}
	if cfg.IndexedLookupThreshold < 0 {
		return fmt.Errorf("%w: indexed_lookup_threshold cannot be negative (got %d)", ErrInvalidConfig, cfg.IndexedLookupThreshold)
	}
	switch cfg.AuthorAssignment {
	case "", types.AssignGreedy, types.AssignOptimal:
	default:
		return fmt.Errorf("%w: author_assignment must be %q or %q (got %q)",
			ErrInvalidConfig, types.AssignGreedy, types.AssignOptimal, cfg.AuthorAssignment)
	}
	return nil
}
