// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textsim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "attention", "attention", 1},
		{"both empty", "", "", 0},
		{"one empty", "", "attention", 0},
		{"kitten sitting", "kitten", "sitting", 1 - 3.0/7.0},
		{"single typo", "recognition", "recogntion", 1 - 1.0/11.0},
		{"multibyte runes", "café", "cafe", 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Ratio(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestPartialRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"substring at word boundary", "new york mets", "the new york mets are great", 1},
		{"substring at start", "deep residual", "deep residual learning", 1},
		{"substring at end", "image recognition", "deep residual image recognition", 1},
		{"equal length falls back to ratio", "abcd", "abce", 0.75},
		{"empty", "", "abc", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PartialRatio(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PartialRatio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestTokenSortRatioIgnoresOrder(t *testing.T) {
	assert.Equal(t, 1.0, TokenSortRatio("fuzzy wuzzy was a bear", "wuzzy fuzzy was a bear"))
	assert.Less(t, TokenSortRatio("fuzzy wuzzy", "fuzzy bear"), 1.0)
}

func TestTokenSetRatioIgnoresRepetition(t *testing.T) {
	assert.Equal(t, 1.0, TokenSetRatio("fuzzy was a bear", "fuzzy fuzzy was a bear"))
	assert.Equal(t, 0.0, TokenSetRatio("", "bear"))
}

func TestTokenSetRatioSubset(t *testing.T) {
	// A token subset scores 1: the intersection equals the smaller side.
	assert.Equal(t, 1.0, TokenSetRatio("graph neural networks", "graph neural networks survey"))

	got := TokenSetRatio("graph neural networks", "graph attention networks")
	assert.Greater(t, got, 0.5)
	assert.Less(t, got, 1.0)
}

func TestMeasuresAreSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"deep residual image learning recognition", "deep residual image learning recogntion"},
		{"attention need", "attention is all you need"},
		{"graph", "graph neural networks"},
		{"a b c", "c b a d"},
		{"", "something"},
	}
	measures := map[string]func(a, b string) float64{
		"Ratio":          Ratio,
		"PartialRatio":   PartialRatio,
		"TokenSortRatio": TokenSortRatio,
		"TokenSetRatio":  TokenSetRatio,
	}
	for name, fn := range measures {
		for _, p := range pairs {
			ab := fn(p[0], p[1])
			ba := fn(p[1], p[0])
			if ab != ba {
				t.Errorf("%s not symmetric for %q/%q: %v vs %v", name, p[0], p[1], ab, ba)
			}
			if ab < 0 || ab > 1 {
				t.Errorf("%s(%q, %q) = %v, outside [0,1]", name, p[0], p[1], ab)
			}
		}
	}
}

func BenchmarkPartialRatio(b *testing.B) {
	a := "deep residual image learning recognition"
	c := "deep residual learning for image recognition with very deep networks"
	for i := 0; i < b.N; i++ {
		PartialRatio(a, c)
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Müller", "Muller"},
		{"José García", "Jose Garcia"},
		{"Łukasz Kaiser", "Lukasz Kaiser"},
		{"Straße", "Strasse"},
		{"Søren Kierkegaard", "Soren Kierkegaard"},
		{"plain ascii", "plain ascii"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Fold(tt.in))
		})
	}
}
