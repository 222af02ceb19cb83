// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package author canonicalizes author names and scores how well two author
// lists describe the same people.
//
// Names are compared in a "last, first middle" form after honorifics and
// suffixes are stripped and accents are folded to ASCII. List similarity
// pairs authors across the two lists (greedily by default, optionally with
// an optimal assignment) and discounts the score for unmatched authors.
package author

import (
	"strings"
	"unicode"

	"github.com/pdiddy/paper-dedup/internal/textsim"
	"github.com/pdiddy/paper-dedup/pkg/types"
)

var honorifics = map[string]bool{
	"dr": true, "prof": true, "professor": true, "mr": true, "mrs": true,
	"ms": true, "miss": true, "sir": true, "dame": true,
}

var suffixes = map[string]bool{
	"jr": true, "sr": true, "phd": true, "md": true, "msc": true,
	"ii": true, "iii": true, "iv": true,
}

// affiliationSynonyms maps institutional abbreviations to one spelling.
var affiliationSynonyms = map[string]string{
	"univ":   "university",
	"uni":    "university",
	"u":      "university",
	"inst":   "institute",
	"dept":   "department",
	"lab":    "laboratory",
	"labs":   "laboratories",
	"tech":   "technology",
	"natl":   "national",
	"intl":   "international",
	"coll":   "college",
	"sch":    "school",
	"ctr":    "center",
	"centre": "center",
	"res":    "research",
	"sci":    "science",
	"&":      "and",
}

// NormalizeName returns the canonical "last, first middle" lowercase form
// of a name. Names already containing a comma keep their order. Two-token
// names are read as "First Last"; longer names as "First Middle... Last".
func NormalizeName(name string) string {
	s := strings.ToLower(textsim.Fold(name))
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == ',', r == '-', r == '\'':
			return r
		default:
			return ' '
		}
	}, s)

	tokens := cleanTokens(s)
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		last := cleanTokens(parts[0])
		var given []string
		for _, p := range parts[1:] {
			given = append(given, cleanTokens(p)...)
		}
		// "Yoshua Bengio, PhD" only had a suffix after the comma.
		if len(given) > 0 {
			return joinName(last, given)
		}
		tokens = last
	}

	switch len(tokens) {
	case 0:
		return ""
	case 1:
		return tokens[0]
	default:
		return joinName(tokens[len(tokens)-1:], tokens[:len(tokens)-1])
	}
}

// splitName splits a normalized name into its last name and given names.
func splitName(normalized string) (last string, given []string) {
	head, tail, found := strings.Cut(normalized, ", ")
	if !found {
		return normalized, nil
	}
	return head, strings.Fields(tail)
}

// Signature returns the first-initial plus last-name bucket key used by the
// index ("a_vaswani"). Different people can share a signature.
func Signature(a types.Author) string {
	last, given := splitName(NormalizeName(a.Name))
	if last == "" {
		if len(given) == 0 {
			return ""
		}
		return given[0]
	}
	if len(given) == 0 {
		return last
	}
	return string([]rune(given[0])[0]) + "_" + last
}

func cleanTokens(s string) []string {
	var out []string
	for _, f := range strings.Fields(s) {
		f = strings.Trim(f, "-'")
		if f == "" || honorifics[f] || suffixes[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

func joinName(last, given []string) string {
	l := strings.Join(last, " ")
	g := strings.Join(given, " ")
	switch {
	case l == "":
		return g
	case g == "":
		return l
	default:
		return l + ", " + g
	}
}

func normalizeAffiliation(aff string) string {
	s := strings.ToLower(textsim.Fold(aff))
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '&' {
			return r
		}
		return ' '
	}, s)
	fields := strings.Fields(s)
	for i, f := range fields {
		if syn, ok := affiliationSynonyms[f]; ok {
			fields[i] = syn
		}
	}
	return strings.Join(fields, " ")
}
