// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package author

import (
	"cmp"
	"slices"
	"strings"

	"github.com/pdiddy/paper-dedup/internal/textsim"
	"github.com/pdiddy/paper-dedup/pkg/types"
)

// DefaultSameAuthorThreshold is the pair score IsSameAuthor uses by default.
const DefaultSameAuthorThreshold = 0.9

// MinPairScore is the lowest pair score accepted when pairing author lists.
const MinPairScore = 0.7

const (
	scoreSameFirst   = 0.95
	scorePrefixFirst = 0.9
	scoreInitial     = 0.85

	minAffiliationSim = 0.7
	affiliationBonus  = 0.1
)

// PairSimilarity scores two authors in [0, 1].
func PairSimilarity(a, b types.Author) float64 {
	return normalizedPairSimilarity(
		NormalizeName(a.Name), NormalizeName(b.Name),
		normalizeAffiliation(a.Affiliation), normalizeAffiliation(b.Affiliation),
	)
}

func normalizedPairSimilarity(na, nb, affA, affB string) float64 {
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	if s, ok := initialMatch(na, nb); ok {
		return s
	}

	score := 0.5*textsim.TokenSortRatio(na, nb) +
		0.3*textsim.Ratio(na, nb) +
		0.2*textsim.PartialRatio(na, nb)
	if affA != "" && affB != "" {
		if as := textsim.TokenSetRatio(affA, affB); as >= minAffiliationSim {
			score += affiliationBonus * as
		}
	}
	return min(score, 1)
}

// initialMatch recognizes the same last name with compatible first names:
// "vaswani, ashish" against "vaswani, a" or "vaswani, ash".
func initialMatch(na, nb string) (float64, bool) {
	lastA, givenA := splitName(na)
	lastB, givenB := splitName(nb)
	if lastA != lastB || len(givenA) == 0 || len(givenB) == 0 {
		return 0, false
	}
	fa, fb := givenA[0], givenB[0]
	switch {
	case fa == fb:
		return scoreSameFirst, true
	case isInitialOf(fa, fb) || isInitialOf(fb, fa):
		return scoreInitial, true
	case strings.HasPrefix(fa, fb) || strings.HasPrefix(fb, fa):
		return scorePrefixFirst, true
	default:
		return 0, false
	}
}

func isInitialOf(initial, name string) bool {
	r := []rune(initial)
	return len(r) == 1 && strings.HasPrefix(name, initial)
}

// IsSameAuthor reports whether the pair score reaches threshold.
func IsSameAuthor(a, b types.Author, threshold float64) bool {
	return PairSimilarity(a, b) >= threshold
}

// Similarity scores two author lists with the given assignment strategy.
// An empty list on either side scores 0. The result does not depend on the
// order of authors within either list or on argument order.
func Similarity(a, b []types.Author, strategy types.AuthorAssignment) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	a, b = sortedAuthors(a), sortedAuthors(b)
	if listKey(b) < listKey(a) {
		a, b = b, a
	}

	na, affA := normalizeList(a)
	nb, affB := normalizeList(b)
	matrix := make([][]float64, len(a))
	for i := range a {
		matrix[i] = make([]float64, len(b))
		for j := range b {
			matrix[i][j] = normalizedPairSimilarity(na[i], nb[j], affA[i], affB[j])
		}
	}

	var pairs []Pair
	if strategy == types.AssignOptimal {
		pairs = OptimalPairs(matrix, MinPairScore)
	} else {
		pairs = GreedyPairs(matrix, MinPairScore)
	}
	return listScore(pairs, len(a), len(b))
}

// listScore is mean pair score x coverage x (1 - unmatched/2).
func listScore(pairs []Pair, lenA, lenB int) float64 {
	m := len(pairs)
	if m == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range pairs {
		sum += p.Score
	}
	avg := sum / float64(m)
	coverage := float64(m) / float64(max(lenA, lenB))
	unmatched := float64(lenA+lenB-2*m) / float64(lenA+lenB)
	return avg * coverage * (1 - 0.5*unmatched)
}

func normalizeList(authors []types.Author) (names, affs []string) {
	names = make([]string, len(authors))
	affs = make([]string, len(authors))
	for i, a := range authors {
		names[i] = NormalizeName(a.Name)
		affs[i] = normalizeAffiliation(a.Affiliation)
	}
	return names, affs
}

func sortedAuthors(authors []types.Author) []types.Author {
	out := slices.Clone(authors)
	slices.SortStableFunc(out, func(x, y types.Author) int {
		return cmp.Or(cmp.Compare(x.Name, y.Name), cmp.Compare(x.Affiliation, y.Affiliation))
	})
	return out
}

// listKey identifies an author list independent of order.
func listKey(authors []types.Author) string {
	parts := make([]string, len(authors))
	for i, a := range sortedAuthors(authors) {
		parts[i] = a.Name + "\x1f" + a.Affiliation
	}
	return strings.Join(parts, "\x1e")
}
