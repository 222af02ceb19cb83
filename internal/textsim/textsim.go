// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textsim provides classical string-similarity measures over
// already-normalized text.
//
// Every measure returns a value in [0, 1], is symmetric in its arguments,
// and returns 0 when either side is empty. Distances are computed on runes
// with github.com/agnivade/levenshtein.
package textsim

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Ratio returns 1 - editDistance/maxLen.
func Ratio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	longest := max(la, lb)
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}

// PartialRatio returns the best Ratio between the shorter string and any
// equally long window of the longer one. Windows start at the beginning,
// at every word boundary, and flush with the end of the longer string.
func PartialRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == len(rb) {
		return Ratio(a, b)
	}
	short, long := ra, rb
	if len(short) > len(long) {
		short, long = long, short
	}
	s := string(short)
	last := len(long) - len(short)

	best := 0.0
	seen := make(map[int]bool)
	try := func(start int) {
		start = min(start, last)
		if seen[start] {
			return
		}
		seen[start] = true
		if r := Ratio(s, string(long[start:start+len(short)])); r > best {
			best = r
		}
	}

	try(0)
	for i := 1; i < len(long) && best < 1; i++ {
		if long[i-1] == ' ' && long[i] != ' ' {
			try(i)
		}
	}
	if best < 1 {
		try(last)
	}
	return best
}

// TokenSortRatio compares the strings after sorting their whitespace tokens.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortedJoin(strings.Fields(a)), sortedJoin(strings.Fields(b)))
}

// TokenSetRatio compares the shared tokens against each side's shared plus
// unique tokens and returns the best of the three pairings. It ignores token
// order and repetition.
func TokenSetRatio(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	var inter, onlyA, onlyB []string
	for t := range setA {
		if setB[t] {
			inter = append(inter, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range setB {
		if !setA[t] {
			onlyB = append(onlyB, t)
		}
	}

	t0 := sortedJoin(inter)
	t1 := strings.TrimSpace(t0 + " " + sortedJoin(onlyA))
	t2 := strings.TrimSpace(t0 + " " + sortedJoin(onlyB))

	return max(Ratio(t0, t1), Ratio(t0, t2), Ratio(t1, t2))
}

// Tokens splits normalized text on whitespace.
func Tokens(s string) []string {
	return strings.Fields(s)
}

func tokenSet(s string) map[string]bool {
	fields := strings.Fields(s)
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

func sortedJoin(tokens []string) string {
	sorted := slices.Clone(tokens)
	slices.Sort(sorted)
	return strings.Join(sorted, " ")
}
