// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"math"
	"slices"
	"strings"

	"github.com/pdiddy/paper-dedup/internal/identifier"
	"github.com/pdiddy/paper-dedup/pkg/types"
)

// Quality function weights used to pick the base record of a merge.
const (
	qualityAbstract      = 2.0
	qualityPerAuthor     = 0.5
	qualityCitationField = 1.0
	qualityDOI           = 1.0
	qualityPaperID       = 0.5
	qualityCitationMax   = 3.0
	qualityVenueMax      = 2.0
)

// recordQuality scores how complete a record is. Higher wins the merge.
func recordQuality(p types.Paper) float64 {
	q := 0.0
	if strings.TrimSpace(p.Abstract) != "" {
		q += qualityAbstract
	}
	q += qualityPerAuthor * float64(len(p.Authors))
	if p.CitationCount != nil {
		q += qualityCitationField
		c := max(*p.CitationCount, 0)
		q += min(qualityCitationMax, math.Log10(float64(c)+1))
	}
	if strings.TrimSpace(p.IDs.DOI) != "" {
		q += qualityDOI
	}
	if strings.TrimSpace(p.IDs.PaperID) != "" {
		q += qualityPaperID
	}
	q += qualityVenueMax * min(max(p.VenueConfidence, 0), 1)
	return q
}

// ResolveDuplicateGroup merges records describing one publication. The most
// complete record is the base; empty fields are filled from the others in
// order, identifiers are unioned (conflicting values become alternates), the
// highest citation count wins and URL lists are unioned. The result shares
// no memory with the inputs and loses no identifier.
func ResolveDuplicateGroup(papers []types.Paper) types.Paper {
	if len(papers) == 0 {
		return types.Paper{}
	}

	best := 0
	bestQ := recordQuality(papers[0])
	for i := 1; i < len(papers); i++ {
		if q := recordQuality(papers[i]); q > bestQ {
			best, bestQ = i, q
		}
	}

	out := papers[best].Clone()
	out.URLs = unionStrings(nil, out.URLs)
	for i, p := range papers {
		if i == best {
			continue
		}
		mergeInto(&out, p)
	}
	return out
}

// mergeInto fills empty fields of dst from src.
func mergeInto(dst *types.Paper, src types.Paper) {
	mergeIdentifiers(&dst.IDs, src.IDs)

	if dst.Title == "" {
		dst.Title = src.Title
	}
	if len(dst.Authors) == 0 && len(src.Authors) > 0 {
		dst.Authors = slices.Clone(src.Authors)
	}
	if dst.Venue == "" {
		dst.Venue = src.Venue
	}
	if dst.NormalizedVenue == "" && src.NormalizedVenue != "" {
		dst.NormalizedVenue = src.NormalizedVenue
		dst.VenueConfidence = src.VenueConfidence
	}
	if dst.Year == 0 {
		dst.Year = src.Year
	}
	if strings.TrimSpace(dst.Abstract) == "" {
		dst.Abstract = src.Abstract
	}
	if src.CitationCount != nil && (dst.CitationCount == nil || *src.CitationCount > *dst.CitationCount) {
		dst.CitationCount = types.IntPtr(*src.CitationCount)
	}
	if dst.Source == "" {
		dst.Source = src.Source
	}
	dst.URLs = unionStrings(dst.URLs, src.URLs)
}

// mergeIdentifiers adds every identifier of src that dst lacks: into the
// empty primary slot when there is one, otherwise as an alternate.
func mergeIdentifiers(dst *types.Identifiers, src types.Identifiers) {
	have := make(map[string]bool)
	for _, k := range identifier.Keys(*dst) {
		have[k] = true
	}
	for _, ref := range src.Refs() {
		k := identifier.Key(ref)
		if have[k] {
			continue
		}
		have[k] = true
		if strings.TrimSpace(dst.Get(ref.Type)) == "" {
			dst.Set(ref.Type, ref.Value)
			continue
		}
		dst.Alternates = append(dst.Alternates, ref)
	}
}

// unionStrings appends the non-empty values of add missing from base.
// It returns nil when both are empty.
func unionStrings(base, add []string) []string {
	seen := make(map[string]bool, len(base)+len(add))
	var out []string
	for _, s := range slices.Concat(base, add) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
