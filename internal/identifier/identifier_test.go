// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package identifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/paper-dedup/pkg/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind Kind
		wantNorm string
	}{
		{"arxiv bare", "2301.07041", KindArxiv, "2301.07041"},
		{"arxiv prefixed with version", "arXiv:2301.07041v2", KindArxiv, "2301.07041"},
		{"arxiv old style", "hep-th/9901001v1", KindArxiv, "hep-th/9901001"},
		{"arxiv abs url", "https://arxiv.org/abs/1706.03762v5", KindArxiv, "1706.03762"},
		{"arxiv pdf url", "https://arxiv.org/pdf/1706.03762.pdf", KindArxiv, "1706.03762"},
		{"doi bare", "10.1145/1234567.1234568", KindDOI, "10.1145/1234567.1234568"},
		{"doi mixed case", "10.1109/CVPR.2016.90", KindDOI, "10.1109/cvpr.2016.90"},
		{"doi prefixed", "doi:10.1109/CVPR.2016.90", KindDOI, "10.1109/cvpr.2016.90"},
		{"doi resolver url", "https://doi.org/10.1109/CVPR.2016.90", KindDOI, "10.1109/cvpr.2016.90"},
		{"plain url", "https://example.com/paper.pdf", KindURL, "https://example.com/paper.pdf"},
		{"unknown", "hello-world", KindUnknown, "hello-world"},
		{"empty", "", KindUnknown, ""},
		{"whitespace", "  2301.07041  ", KindArxiv, "2301.07041"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotKind, gotNorm := Classify(tt.input)
			if gotKind != tt.wantKind {
				t.Errorf("Classify(%q) kind = %v, want %v", tt.input, gotKind, tt.wantKind)
			}
			if gotNorm != tt.wantNorm {
				t.Errorf("Classify(%q) norm = %q, want %q", tt.input, gotNorm, tt.wantNorm)
			}
		})
	}
}

func TestKeysNormalizeEquivalentSpellings(t *testing.T) {
	a := types.Identifiers{DOI: "10.1/X", ArxivID: "arXiv:1706.03762v5"}
	b := types.Identifiers{DOI: "https://doi.org/10.1/x", ArxivID: "1706.03762"}

	assert.Equal(t, []string{"doi:10.1/x", "arxiv:1706.03762"}, Keys(a))
	assert.Equal(t, Keys(a), Keys(b))
	assert.True(t, Overlap(a, b))
}

func TestKeysIncludeAlternatesOnce(t *testing.T) {
	ids := types.Identifiers{
		PaperID: "S2:1",
		DOI:     "10.1/a",
		Alternates: []types.IdentifierRef{
			{Type: types.IDDOI, Value: "10.1/B"},
			{Type: types.IDDOI, Value: "10.1/A"},
		},
	}
	assert.Equal(t, []string{"paper_id:S2:1", "doi:10.1/a", "doi:10.1/b"}, Keys(ids))
}

func TestOverlap(t *testing.T) {
	assert.False(t, Overlap(types.Identifiers{}, types.Identifiers{}))
	assert.False(t, Overlap(types.Identifiers{DOI: "10.1/a"}, types.Identifiers{DOI: "10.1/b"}))
	// Same value under different types is not an overlap.
	assert.False(t, Overlap(types.Identifiers{PaperID: "123"}, types.Identifiers{SourceID: "123"}))
	assert.True(t, Overlap(types.Identifiers{SourceID: "dblp:x"}, types.Identifiers{SourceID: " dblp:x "}))
}

func TestFromURLs(t *testing.T) {
	doi, arxiv := FromURLs([]string{
		"not a url",
		"https://example.com/landing",
		"https://dx.doi.org/10.1109/CVPR.2016.90",
		"https://www.arxiv.org/abs/1512.03385v1",
	})
	assert.Equal(t, "10.1109/cvpr.2016.90", doi)
	assert.Equal(t, "1512.03385", arxiv)

	doi, arxiv = FromURLs(nil)
	assert.Empty(t, doi)
	assert.Empty(t, arxiv)
}

func TestFillFromURLsKeepsExistingValues(t *testing.T) {
	ids := FillFromURLs(types.Identifiers{DOI: "10.9/keep"}, []string{
		"https://doi.org/10.1/other",
		"https://arxiv.org/pdf/1512.03385v2.pdf",
	})
	assert.Equal(t, "10.9/keep", ids.DOI)
	assert.Equal(t, "1512.03385", ids.ArxivID)
}

func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		norm string
		want string
	}{
		{"arxiv", KindArxiv, "2301.07041", "2301.07041"},
		{"arxiv old style", KindArxiv, "hep-th/9901001", "hep-th-9901001"},
		{"doi", KindDOI, "10.1145/1234567.1234568", "10.1145-1234567.1234568"},
		{"url with file", KindURL, "https://example.com/papers/attention.pdf", "attention"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.kind, tt.norm))
		})
	}

	root := Slug(KindURL, "https://example.com/")
	assert.Regexp(t, `^id-[0-9a-f]{16}$`, root)
	assert.Equal(t, root, Slug(KindURL, "https://example.com/"), "hash slugs are stable")
}
