// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identifier classifies and normalizes bibliographic identifiers so
// that equivalent spellings ("10.1/X", "doi:10.1/x", "https://doi.org/10.1/x")
// produce the same lookup key.
package identifier

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/pdiddy/paper-dedup/pkg/types"
)

// Kind classifies a free-form identifier string.
type Kind int

const (
	KindUnknown Kind = iota
	KindArxiv
	KindDOI
	KindURL
)

func (k Kind) String() string {
	switch k {
	case KindArxiv:
		return "arxiv"
	case KindDOI:
		return "doi"
	case KindURL:
		return "url"
	default:
		return "unknown"
	}
}

// arxivPattern matches new-style ("2301.07041v2") and old-style
// ("hep-th/9901001") arXiv IDs, with an optional "arXiv:" prefix.
var arxivPattern = regexp.MustCompile(`(?i)^(?:arxiv:)?(\d{4}\.\d{4,5}|[a-z][a-z.-]*/\d{7})(?:v\d+)?$`)

// doiPattern matches DOIs: "10.1145/1234567.1234568".
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

// arxivVersion matches a trailing version suffix.
var arxivVersion = regexp.MustCompile(`v\d+$`)

// doiPrefixes are stripped, case-insensitively, before a DOI is compared.
var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi.org/",
	"doi:",
}

var arxivURLPrefixes = []string{"/abs/", "/pdf/"}

// Classify determines the identifier kind and returns its normalized form.
func Classify(raw string) (Kind, string) {
	raw = strings.TrimSpace(raw)

	if m := arxivPattern.FindStringSubmatch(raw); m != nil {
		return KindArxiv, strings.ToLower(m[1])
	}

	if d := NormalizeDOI(raw); doiPattern.MatchString(d) {
		return KindDOI, d
	}

	if u, err := url.Parse(raw); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		if id := arxivFromURL(u); id != "" {
			return KindArxiv, id
		}
		return KindURL, raw
	}

	return KindUnknown, raw
}

// NormalizeDOI lowercases a DOI and strips resolver and "doi:" prefixes.
func NormalizeDOI(doi string) string {
	d := strings.ToLower(strings.TrimSpace(doi))
	for _, p := range doiPrefixes {
		if strings.HasPrefix(d, p) {
			d = strings.TrimSpace(d[len(p):])
			break
		}
	}
	return d
}

// NormalizeArxiv strips the "arXiv:" prefix, any abs/pdf URL, and the
// version suffix.
func NormalizeArxiv(id string) string {
	a := strings.TrimSpace(id)
	if u, err := url.Parse(a); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		if got := arxivFromURL(u); got != "" {
			return got
		}
	}
	a = strings.ToLower(a)
	a = strings.TrimPrefix(a, "arxiv:")
	a = strings.TrimSuffix(a, ".pdf")
	return arxivVersion.ReplaceAllString(a, "")
}

// Normalize returns the comparison form of a typed identifier value.
func Normalize(t types.IdentifierType, value string) string {
	switch t {
	case types.IDDOI:
		return NormalizeDOI(value)
	case types.IDArxiv:
		return NormalizeArxiv(value)
	default:
		return strings.TrimSpace(value)
	}
}

// Key returns the normalized "{type}:{value}" lookup key for ref.
func Key(ref types.IdentifierRef) string {
	return types.IdentifierRef{Type: ref.Type, Value: Normalize(ref.Type, ref.Value)}.Key()
}

// Keys returns the distinct normalized keys of every identifier in ids,
// primaries first.
func Keys(ids types.Identifiers) []string {
	refs := ids.Refs()
	seen := make(map[string]bool, len(refs))
	keys := make([]string, 0, len(refs))
	for _, r := range refs {
		k := Key(r)
		if seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

// Overlap reports whether a and b share any normalized identifier.
func Overlap(a, b types.Identifiers) bool {
	ka := Keys(a)
	if len(ka) == 0 {
		return false
	}
	set := make(map[string]bool, len(ka))
	for _, k := range ka {
		set[k] = true
	}
	for _, k := range Keys(b) {
		if set[k] {
			return true
		}
	}
	return false
}

// FromURLs extracts the first DOI and arXiv ID embedded in landing-page or
// PDF URLs. Either result may be empty.
func FromURLs(urls []string) (doi, arxiv string) {
	for _, raw := range urls {
		u, err := url.Parse(strings.TrimSpace(raw))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			continue
		}
		host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
		switch {
		case doi == "" && (host == "doi.org" || host == "dx.doi.org"):
			if d := NormalizeDOI(strings.TrimPrefix(u.Path, "/")); doiPattern.MatchString(d) {
				doi = d
			}
		case arxiv == "":
			arxiv = arxivFromURL(u)
		}
	}
	return doi, arxiv
}

// FillFromURLs returns ids with empty DOI and arXiv fields filled from urls.
func FillFromURLs(ids types.Identifiers, urls []string) types.Identifiers {
	if ids.DOI != "" && ids.ArxivID != "" {
		return ids
	}
	doi, arxiv := FromURLs(urls)
	if ids.DOI == "" {
		ids.DOI = doi
	}
	if ids.ArxivID == "" {
		ids.ArxivID = arxiv
	}
	return ids
}

func arxivFromURL(u *url.URL) string {
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	if host != "arxiv.org" && host != "export.arxiv.org" {
		return ""
	}
	for _, p := range arxivURLPrefixes {
		if rest, ok := strings.CutPrefix(u.Path, p); ok {
			rest = strings.TrimSuffix(rest, ".pdf")
			if m := arxivPattern.FindStringSubmatch(rest); m != nil {
				return strings.ToLower(m[1])
			}
		}
	}
	return ""
}

// Slug returns a filesystem- and citation-key-safe stem for an identifier.
func Slug(kind Kind, normalized string) string {
	switch kind {
	case KindArxiv:
		return strings.ReplaceAll(normalized, "/", "-")
	case KindDOI:
		return strings.NewReplacer("/", "-", ":", "-").Replace(normalized)
	case KindURL:
		u, err := url.Parse(normalized)
		if err != nil {
			return hashSlug(normalized)
		}
		base := strings.TrimSuffix(path.Base(u.Path), path.Ext(u.Path))
		if base == "" || base == "." || base == "/" {
			return hashSlug(normalized)
		}
		return base
	default:
		return hashSlug(normalized)
	}
}

func hashSlug(s string) string {
	h := sha256.Sum256([]byte(s))
	return fmt.Sprintf("id-%x", h[:8])
}
