// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-dedup/internal/identifier"
	"github.com/pdiddy/paper-dedup/pkg/types"
)

// CSLItem is a bibliographic entry in CSL-YAML form, consumable by Pandoc
// and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	DOI            string    `yaml:"DOI,omitempty"`
	URL            string    `yaml:"URL,omitempty"`
}

// CSLName is a person's name in CSL form.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate is a date in CSL form using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// CSLSource reads CSL-YAML bibliographies.
type CSLSource struct{}

func (CSLSource) Name() string { return "csl" }
func (CSLSource) Extensions() []string {
	return []string{".csl.yaml", ".csl.yml", ".csl"}
}

func (CSLSource) Read(r io.Reader) ([]types.Paper, error) {
	var items []CSLItem
	if err := yaml.NewDecoder(r).Decode(&items); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parsing CSL-YAML: %w", err)
	}
	papers := make([]types.Paper, len(items))
	for i, item := range items {
		papers[i] = fromCSLItem(item)
	}
	return papers, nil
}

// WriteCSL writes papers to w as a CSL-YAML list.
func WriteCSL(w io.Writer, papers []types.Paper) error {
	items := make([]CSLItem, len(papers))
	for i, p := range papers {
		items[i] = toCSLItem(p)
	}
	return WriteYAMLValue(w, items)
}

func fromCSLItem(item CSLItem) types.Paper {
	p := types.Paper{
		Title:    strings.TrimSpace(item.Title),
		Abstract: item.Abstract,
		Venue:    item.ContainerTitle,
		Source:   "csl",
	}
	for _, n := range item.Author {
		if name := n.fullName(); name != "" {
			p.Authors = append(p.Authors, types.Author{Name: name})
		}
	}
	if item.Issued != nil && len(item.Issued.DateParts) > 0 && len(item.Issued.DateParts[0]) > 0 {
		p.Year = item.Issued.DateParts[0][0]
	}
	if item.DOI != "" {
		p.IDs.DOI = identifier.NormalizeDOI(item.DOI)
	}
	if item.URL != "" {
		p.URLs = []string{item.URL}
	}

	switch kind, norm := identifier.Classify(item.ID); kind {
	case identifier.KindArxiv:
		p.IDs.ArxivID = norm
	case identifier.KindDOI:
		if p.IDs.DOI == "" {
			p.IDs.DOI = norm
		} else if norm != p.IDs.DOI {
			p.IDs.SourceID = item.ID
		}
	default:
		p.IDs.SourceID = strings.TrimSpace(item.ID)
	}
	return p
}

func (n CSLName) fullName() string {
	if n.Literal != "" {
		return strings.TrimSpace(n.Literal)
	}
	return strings.TrimSpace(n.Given + " " + n.Family)
}

// toCSLItem converts a record to a CSLItem keyed by its strongest identifier.
func toCSLItem(p types.Paper) CSLItem {
	item := CSLItem{
		ID:             citationKey(p),
		Type:           "article",
		Title:          p.Title,
		ContainerTitle: p.Venue,
		Abstract:       p.Abstract,
		DOI:            p.IDs.DOI,
	}
	if p.Venue != "" {
		item.Type = "paper-conference"
	}
	for _, a := range p.Authors {
		item.Author = append(item.Author, parseAuthorName(a.Name))
	}
	if p.Year != 0 {
		item.Issued = &CSLDate{DateParts: [][]int{{p.Year}}}
	}
	if len(p.URLs) > 0 {
		item.URL = p.URLs[0]
	}
	return item
}

// citationKey prefers DOI, then arXiv ID, then any other identifier, then
// the title.
func citationKey(p types.Paper) string {
	switch {
	case p.IDs.DOI != "":
		return identifier.Slug(identifier.KindDOI, identifier.NormalizeDOI(p.IDs.DOI))
	case p.IDs.ArxivID != "":
		return identifier.Slug(identifier.KindArxiv, identifier.NormalizeArxiv(p.IDs.ArxivID))
	case p.IDs.PaperID != "":
		return identifier.Slug(identifier.KindUnknown, p.IDs.PaperID)
	case p.IDs.SourceID != "":
		return identifier.Slug(identifier.KindUnknown, p.IDs.SourceID)
	default:
		return identifier.Slug(identifier.KindUnknown, p.Title)
	}
}

// parseAuthorName splits a display name into CSL family/given parts.
// "Family, Given" is honoured; otherwise the last token is the family name.
// Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	if family, given, ok := strings.Cut(name, ","); ok {
		return CSLName{Family: strings.TrimSpace(family), Given: strings.TrimSpace(given)}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
