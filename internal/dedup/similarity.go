// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"strings"

	"github.com/pdiddy/paper-dedup/internal/identifier"
	"github.com/pdiddy/paper-dedup/internal/textsim"
	"github.com/pdiddy/paper-dedup/pkg/types"
)

// Fixed weights of the overall score. The venue weight is configurable.
const (
	titleWeight  = 0.5
	authorWeight = 0.3
	yearBonus    = 0.1

	// neutralVenue is the venue similarity when neither record has a venue.
	neutralVenue = 0.5
)

// CalculateSimilarity scores a against b. A shared identifier forces the
// overall score to 1. The score is symmetric in a and b.
func (e *Engine) CalculateSimilarity(a, b types.Paper) types.SimilarityScore {
	s := types.SimilarityScore{
		TitleSimilarity:  e.titles.Similarity(a.Title, b.Title),
		AuthorSimilarity: e.authors.Similarity(a.Authors, b.Authors),
		VenueSimilarity:  venueSimilarity(a, b),
		YearMatch:        a.Year != 0 && a.Year == b.Year,
		IDOverlap:        identifier.Overlap(a.IDs, b.IDs),
	}
	if s.IDOverlap {
		s.OverallScore = 1
		return s
	}
	overall := titleWeight*s.TitleSimilarity +
		authorWeight*s.AuthorSimilarity +
		e.cfg.VenueWeight*s.VenueSimilarity
	if s.YearMatch {
		overall += yearBonus
	}
	s.OverallScore = min(overall, 1)
	return s
}

// venueSimilarity compares venue keys: 1 when equal ignoring case, 0.5 when
// both are missing, 0 when only one is, otherwise the edit-distance ratio.
func venueSimilarity(a, b types.Paper) float64 {
	va, vb := a.VenueKey(), b.VenueKey()
	switch {
	case va == "" && vb == "":
		return neutralVenue
	case va == "" || vb == "":
		return 0
	case strings.EqualFold(va, vb):
		return 1
	default:
		return textsim.Ratio(va, vb)
	}
}
