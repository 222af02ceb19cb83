// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-dedup engine:
// bibliographic records, similarity scores, duplicate groups, run results,
// and configuration.
package types

import (
	"slices"
	"strings"
)

// IdentifierType names one kind of bibliographic identifier.
type IdentifierType string

const (
	IDPaperID  IdentifierType = "paper_id"
	IDDOI      IdentifierType = "doi"
	IDArxiv    IdentifierType = "arxiv"
	IDSourceID IdentifierType = "source_id"
)

// IdentifierTypes lists identifier types in priority order.
var IdentifierTypes = []IdentifierType{IDPaperID, IDDOI, IDArxiv, IDSourceID}

// IdentifierRef is a single typed identifier value.
type IdentifierRef struct {
	Type  IdentifierType `json:"type" yaml:"type"`
	Value string         `json:"value" yaml:"value"`
}

// Key returns the "{type}:{value}" form used for identifier lookups.
func (r IdentifierRef) Key() string {
	return string(r.Type) + ":" + r.Value
}

// Identifiers holds every known identifier for a paper.
type Identifiers struct {
	// PaperID is an aggregator-wide paper identifier (e.g. a Semantic Scholar corpus ID).
	PaperID string `json:"paper_id,omitempty" yaml:"paper_id,omitempty"`

	// DOI is the Digital Object Identifier (e.g. "10.1145/1234567.1234568").
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// ArxivID is the arXiv identifier without the "arXiv:" prefix.
	ArxivID string `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`

	// SourceID is the identifier assigned by the harvesting source.
	SourceID string `json:"source_id,omitempty" yaml:"source_id,omitempty"`

	// Alternates holds values that conflicted with a primary identifier of
	// the same type when records were merged.
	Alternates []IdentifierRef `json:"alternates,omitempty" yaml:"alternates,omitempty"`
}

// Get returns the primary value for the given type.
func (ids Identifiers) Get(t IdentifierType) string {
	switch t {
	case IDPaperID:
		return ids.PaperID
	case IDDOI:
		return ids.DOI
	case IDArxiv:
		return ids.ArxivID
	case IDSourceID:
		return ids.SourceID
	}
	return ""
}

// Set assigns the primary value for the given type.
func (ids *Identifiers) Set(t IdentifierType, v string) {
	switch t {
	case IDPaperID:
		ids.PaperID = v
	case IDDOI:
		ids.DOI = v
	case IDArxiv:
		ids.ArxivID = v
	case IDSourceID:
		ids.SourceID = v
	}
}

// Refs returns every non-empty identifier, primaries first in priority
// order, then alternates in stored order. Values are trimmed but not
// otherwise normalized.
func (ids Identifiers) Refs() []IdentifierRef {
	var refs []IdentifierRef
	for _, t := range IdentifierTypes {
		if v := strings.TrimSpace(ids.Get(t)); v != "" {
			refs = append(refs, IdentifierRef{Type: t, Value: v})
		}
	}
	for _, alt := range ids.Alternates {
		if v := strings.TrimSpace(alt.Value); v != "" {
			refs = append(refs, IdentifierRef{Type: alt.Type, Value: v})
		}
	}
	return refs
}

// IsEmpty reports whether no identifier is present.
func (ids Identifiers) IsEmpty() bool {
	return len(ids.Refs()) == 0
}

// Has reports whether ref is present as a primary or alternate value.
func (ids Identifiers) Has(ref IdentifierRef) bool {
	for _, r := range ids.Refs() {
		if r == ref {
			return true
		}
	}
	return false
}

// Author identifies a paper author. Authors are compared by normalized name
// and affiliation similarity, never by identity.
type Author struct {
	// Name is the author's display name as harvested.
	Name string `json:"name" yaml:"name"`

	// Affiliation is the author's institutional affiliation.
	Affiliation string `json:"affiliation,omitempty" yaml:"affiliation,omitempty"`
}

// Paper is a bibliographic record harvested from an external source.
// The engine treats Papers as immutable input; merges produce new Papers
// that share no slices with their inputs.
type Paper struct {
	// Title is the paper title as harvested.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []Author `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Venue is the journal or conference string as harvested.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// NormalizedVenue is the canonical venue alias supplied by the venue
	// normalization service, when known.
	NormalizedVenue string `json:"normalized_venue,omitempty" yaml:"normalized_venue,omitempty"`

	// VenueConfidence is the venue normalizer's confidence in NormalizedVenue (0.0-1.0).
	VenueConfidence float64 `json:"venue_confidence,omitempty" yaml:"venue_confidence,omitempty"`

	// Year is the publication year. Zero means unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// CitationCount is the citation count reported by the source, if any.
	CitationCount *int `json:"citation_count,omitempty" yaml:"citation_count,omitempty"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// IDs holds the paper's identifiers.
	IDs Identifiers `json:"ids" yaml:"ids"`

	// URLs lists landing-page and PDF URLs in discovery order.
	URLs []string `json:"urls,omitempty" yaml:"urls,omitempty"`

	// Source names the harvesting source (e.g. "openalex", "dblp").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// VenueKey returns the venue used for comparison: the normalized alias when
// present, otherwise the raw venue, lowercased and trimmed.
func (p Paper) VenueKey() string {
	v := p.NormalizedVenue
	if strings.TrimSpace(v) == "" {
		v = p.Venue
	}
	return strings.ToLower(strings.TrimSpace(v))
}

// Clone returns a deep copy of p. Nil slices stay nil.
func (p Paper) Clone() Paper {
	out := p
	out.Authors = slices.Clone(p.Authors)
	out.URLs = slices.Clone(p.URLs)
	out.IDs.Alternates = slices.Clone(p.IDs.Alternates)
	if p.CitationCount != nil {
		c := *p.CitationCount
		out.CitationCount = &c
	}
	return out
}

// IntPtr returns a pointer to v. It keeps literals for optional counts short.
func IntPtr(v int) *int {
	return &v
}
