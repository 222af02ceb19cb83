// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/paper-dedup/internal/identifier"
	"github.com/pdiddy/paper-dedup/internal/metrics"
	"github.com/pdiddy/paper-dedup/pkg/types"
)

var (
	vaswani = []types.Author{{Name: "Ashish Vaswani"}, {Name: "Noam Shazeer"}, {Name: "Niki Parmar"}}
	he      = []types.Author{{Name: "Kaiming He"}, {Name: "Xiangyu Zhang"}, {Name: "Jian Sun"}}
)

func newEngine(t testing.TB, mutate func(*types.DedupConfig), opts ...Option) *Engine {
	t.Helper()
	cfg := types.DefaultDedupConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := New(cfg, opts...)
	require.NoError(t, err)
	return e
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.DedupConfig)
	}{
		{"title threshold above one", func(c *types.DedupConfig) { c.TitleThreshold = 1.5 }},
		{"author threshold negative", func(c *types.DedupConfig) { c.AuthorThreshold = -0.1 }},
		{"venue weight above one", func(c *types.DedupConfig) { c.VenueWeight = 2 }},
		{"match confidence negative", func(c *types.DedupConfig) { c.MatchMinConfidence = -1 }},
		{"zero token overlap", func(c *types.DedupConfig) { c.MinTokenOverlap = 0 }},
		{"negative year window", func(c *types.DedupConfig) { c.YearWindow = -1 }},
		{"negative workers", func(c *types.DedupConfig) { c.Workers = -2 }},
		{"zero title cache", func(c *types.DedupConfig) { c.TitleCacheSize = 0 }},
		{"zero author cache", func(c *types.DedupConfig) { c.AuthorCacheSize = 0 }},
		{"unknown assignment", func(c *types.DedupConfig) { c.AuthorAssignment = "hungarian" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := types.DefaultDedupConfig()
			tt.mutate(&cfg)
			require.ErrorIs(t, Validate(cfg), ErrInvalidConfig)

			_, err := New(cfg)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	require.NoError(t, Validate(types.DefaultDedupConfig()))
}

func TestNewDefaults(t *testing.T) {
	e := newEngine(t, func(c *types.DedupConfig) {
		c.Workers = 0
		c.AuthorAssignment = ""
	})
	assert.Equal(t, 1, e.Config().Workers)
	assert.Equal(t, types.AssignGreedy, e.Config().AuthorAssignment)
}

func TestDeduplicatePapersRejectsBadThresholds(t *testing.T) {
	_, err := DeduplicatePapers(nil, 1.2, 0.8, 0.3)
	require.ErrorIs(t, err, ErrInvalidConfig)

	res, err := DeduplicatePapers(nil, 0.95, 0.8, 0.3)
	require.NoError(t, err)
	assert.Zero(t, res.OriginalCount)
	assert.Empty(t, res.Papers)
}

func TestCalculateSimilarity(t *testing.T) {
	e := newEngine(t, nil)

	t.Run("shared identifier forces one", func(t *testing.T) {
		a := types.Paper{Title: "Alpha Particles", IDs: types.Identifiers{DOI: "10.1/X"}}
		b := types.Paper{Title: "Beta Decay", IDs: types.Identifiers{DOI: "https://doi.org/10.1/x"}}
		s := e.CalculateSimilarity(a, b)
		assert.True(t, s.IDOverlap)
		assert.Equal(t, 1.0, s.OverallScore)
	})

	t.Run("missing venues are neutral", func(t *testing.T) {
		s := e.CalculateSimilarity(types.Paper{Title: "A"}, types.Paper{Title: "B"})
		assert.Equal(t, 0.5, s.VenueSimilarity)
		assert.False(t, s.YearMatch)
	})

	t.Run("one missing venue scores zero", func(t *testing.T) {
		s := e.CalculateSimilarity(types.Paper{Venue: "ICML"}, types.Paper{})
		assert.Equal(t, 0.0, s.VenueSimilarity)
	})

	t.Run("unknown years never match", func(t *testing.T) {
		s := e.CalculateSimilarity(types.Paper{Title: "x"}, types.Paper{Title: "x"})
		assert.False(t, s.YearMatch)
	})

	t.Run("identical records", func(t *testing.T) {
		p := types.Paper{Title: "Attention Is All You Need", Authors: vaswani, Venue: "NeurIPS", Year: 2017}
		s := e.CalculateSimilarity(p, p.Clone())
		assert.Equal(t, 1.0, s.TitleSimilarity)
		assert.Equal(t, 1.0, s.AuthorSimilarity)
		assert.Equal(t, 1.0, s.VenueSimilarity)
		assert.True(t, s.YearMatch)
		assert.Equal(t, 1.0, s.OverallScore)
	})

	t.Run("empty records degrade without failing", func(t *testing.T) {
		s := e.CalculateSimilarity(types.Paper{}, types.Paper{})
		assert.Equal(t, 0.0, s.TitleSimilarity)
		assert.Equal(t, 0.0, s.AuthorSimilarity)
		assert.InDelta(t, 0.3*0.5, s.OverallScore, 1e-9)
	})
}

func TestCalculateSimilaritySymmetric(t *testing.T) {
	e := newEngine(t, nil)
	records := []types.Paper{
		{Title: "Deep Residual Learning for Image Recognition", Authors: he, Venue: "CVPR", Year: 2016},
		{Title: "Deep Residual Learning for Image Recogntion", Authors: he[:2], Venue: "arXiv", Year: 2015},
		{Title: "Attention Is All You Need", Authors: vaswani, Venue: "NeurIPS", Year: 2017},
		{Title: "Attention is all you need (NeurIPS 2017)", Authors: vaswani[1:], Year: 2017},
		{Title: "", Authors: nil},
		{Title: "Protein Folding", Authors: []types.Author{{Name: "J. Jumper", Affiliation: "DeepMind"}}},
	}
	for i := range records {
		for j := range records {
			ab := e.CalculateSimilarity(records[i], records[j])
			ba := e.CalculateSimilarity(records[j], records[i])
			assert.Equal(t, ab.OverallScore, ba.OverallScore, "records %d and %d", i, j)
			assert.Equal(t, ab.AuthorSimilarity, ba.AuthorSimilarity, "records %d and %d", i, j)
		}
	}
}

func TestResolveDuplicateGroup(t *testing.T) {
	a := types.Paper{
		Title:         "Attention Is All You Need",
		IDs:           types.Identifiers{DOI: "10.1/a"},
		CitationCount: types.IntPtr(5),
		URLs:          []string{"https://example.org/a"},
		Source:        "dblp",
	}
	b := types.Paper{
		Title:         "Attention Is All You Need",
		Abstract:      "The dominant sequence transduction models...",
		Year:          2017,
		IDs:           types.Identifiers{DOI: "10.1/b", ArxivID: "1706.03762"},
		CitationCount: types.IntPtr(12),
		URLs:          []string{"https://example.org/a", "https://arxiv.org/abs/1706.03762"},
	}
	aBefore, bBefore := a.Clone(), b.Clone()

	got := ResolveDuplicateGroup([]types.Paper{a, b})

	assert.Equal(t, b.Abstract, got.Abstract, "most complete record is the base")
	assert.Equal(t, "10.1/b", got.IDs.DOI)
	assert.Equal(t, "1706.03762", got.IDs.ArxivID)
	assert.Equal(t, []types.IdentifierRef{{Type: types.IDDOI, Value: "10.1/a"}}, got.IDs.Alternates)
	require.NotNil(t, got.CitationCount)
	assert.Equal(t, 12, *got.CitationCount)
	assert.Equal(t, []string{"https://example.org/a", "https://arxiv.org/abs/1706.03762"}, got.URLs)
	assert.Equal(t, "dblp", got.Source)
	assert.Equal(t, 2017, got.Year)

	assert.Equal(t, aBefore, a, "inputs are not modified")
	assert.Equal(t, bBefore, b, "inputs are not modified")

	got.URLs[0] = "changed"
	assert.Equal(t, "https://example.org/a", b.URLs[0], "result shares no memory with inputs")
}

func TestResolveDuplicateGroupTiesKeepFirst(t *testing.T) {
	a := types.Paper{Title: "First", Venue: "ICML"}
	b := types.Paper{Title: "Second", Venue: "NeurIPS"}
	got := ResolveDuplicateGroup([]types.Paper{a, b})
	assert.Equal(t, "First", got.Title)
	assert.Equal(t, "ICML", got.Venue)

	assert.Equal(t, types.Paper{}, ResolveDuplicateGroup(nil))
}

func TestResolveDuplicateGroupIdempotent(t *testing.T) {
	groups := [][]types.Paper{
		{
			{Title: "A", IDs: types.Identifiers{DOI: "10.1/a"}, URLs: []string{"u1", "u1", " "}},
			{Title: "A", IDs: types.Identifiers{DOI: "10.1/b", PaperID: "p1"}, CitationCount: types.IntPtr(3)},
		},
		{
			{Title: "B", Authors: he, Year: 2016},
			{Title: "B", Venue: "CVPR", Abstract: "residual", NormalizedVenue: "cvpr", VenueConfidence: 0.9},
			{Title: "B", IDs: types.Identifiers{SourceID: "s1"}, URLs: []string{"https://arxiv.org/abs/1512.03385"}},
		},
		{{Title: "single"}},
	}
	for i, g := range groups {
		t.Run(fmt.Sprintf("group %d", i), func(t *testing.T) {
			once := ResolveDuplicateGroup(g)
			twice := ResolveDuplicateGroup([]types.Paper{once})
			assert.Equal(t, once, twice)
		})
	}
}

func identifierKeys(papers ...types.Paper) map[string]bool {
	keys := make(map[string]bool)
	for _, p := range papers {
		for _, k := range identifier.Keys(p.IDs) {
			keys[k] = true
		}
	}
	return keys
}

// assertGroupsPreserveIdentifiers checks that every member identifier
// survives in the selected record.
func assertGroupsPreserveIdentifiers(t *testing.T, res types.DeduplicationResult) {
	t.Helper()
	for _, g := range res.Groups {
		selected := identifierKeys(g.Selected)
		for k := range identifierKeys(g.Members...) {
			assert.True(t, selected[k], "group %s lost identifier %s", g.Stage, k)
		}
	}
}

func assertConservation(t *testing.T, res types.DeduplicationResult) {
	t.Helper()
	assert.Equal(t, res.OriginalCount, res.DeduplicatedCount+res.DuplicatesRemoved)
	assert.Len(t, res.Papers, res.DeduplicatedCount)
	total := 0
	for _, n := range res.StageCounts {
		total += n
	}
	assert.Equal(t, res.DuplicatesRemoved, total)
}

func TestDeduplicateScenarios(t *testing.T) {
	tests := []struct {
		name       string
		papers     []types.Paper
		wantCount  int
		wantStage  types.MatchStage
		wantConf   float64
		wantGroups int
	}{
		{
			name: "shared DOI merges at exact_id",
			papers: []types.Paper{
				{Title: "Learning Things", Venue: "ICML", IDs: types.Identifiers{DOI: "10.1/x"}},
				{Title: "A Completely Different Title", Venue: "JMLR", IDs: types.Identifiers{DOI: "10.1/x"}},
			},
			wantCount: 1, wantStage: types.StageExactID, wantConf: 1.0, wantGroups: 1,
		},
		{
			name: "normalized title and venue merge at title_venue",
			papers: []types.Paper{
				{Title: "Attention Is All You Need", Authors: vaswani, Venue: "NeurIPS", Year: 2017},
				{Title: "ATTENTION IS ALL YOU NEED (NeurIPS 2017)", Authors: vaswani, Venue: "NeurIPS", Year: 2017},
			},
			wantCount: 1, wantStage: types.StageTitleVenue, wantConf: 0.95, wantGroups: 1,
		},
		{
			name: "title typo within year window merges at fuzzy_title",
			papers: []types.Paper{
				{Title: "Deep Residual Learning for Image Recognition", Authors: he, Venue: "CVPR", Year: 2015},
				{Title: "Deep Residual Learning for Image Recogntion", Authors: he, Venue: "CVPR", Year: 2016},
			},
			wantCount: 1, wantStage: types.StageFuzzyTitle, wantGroups: 1,
		},
		{
			name: "venue spellings merge at venue_variant",
			papers: []types.Paper{
				{Title: "Dropout", Authors: vaswani, Venue: "NeurIPS", Year: 2014},
				{Title: "Dropout", Authors: vaswani, Venue: "Neural Information Processing Systems", Year: 2014},
			},
			wantCount: 1, wantStage: types.StageVenueVariant, wantConf: 0.85, wantGroups: 1,
		},
		{
			// Multi-word titles reach the fuzzy stage first: identical titles
			// score 1.0 there regardless of venue spelling.
			name: "venue spellings of a multi-word title merge at fuzzy_title",
			papers: []types.Paper{
				{Title: "Improving Neural Networks by Preventing Co-adaptation", Authors: vaswani, Venue: "NeurIPS", Year: 2014},
				{Title: "Improving Neural Networks by Preventing Co-adaptation", Authors: vaswani, Venue: "Neural Information Processing Systems", Year: 2014},
			},
			wantCount: 1, wantStage: types.StageFuzzyTitle, wantGroups: 1,
		},
		{
			name: "unrelated records stay unique",
			papers: []types.Paper{
				{Title: "Attention Is All You Need", Authors: vaswani, Venue: "NeurIPS", Year: 2017},
				{Title: "Protein Structure Prediction with AlphaFold", Authors: []types.Author{{Name: "John Jumper"}}, Venue: "Nature", Year: 2021},
			},
			wantCount: 2, wantGroups: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, nil)
			res := e.Deduplicate(tt.papers)

			assertConservation(t, res)
			assertGroupsPreserveIdentifiers(t, res)
			assert.Equal(t, tt.wantCount, res.DeduplicatedCount)
			require.Len(t, res.Groups, tt.wantGroups)
			if tt.wantGroups == 0 {
				assert.Zero(t, res.DuplicatesRemoved)
				return
			}

			g := res.Groups[0]
			assert.Equal(t, tt.wantStage, g.Stage)
			assert.Equal(t, 1, res.StageCounts[tt.wantStage])
			assert.Len(t, g.Members, 2)
			assert.NotEmpty(t, g.Evidence)
			if tt.wantConf > 0 {
				assert.Equal(t, tt.wantConf, g.MergeConfidence)
			} else {
				assert.GreaterOrEqual(t, g.MergeConfidence, 0.9)
			}
		})
	}
}

func TestDeduplicateFuzzyYearOutsideWindow(t *testing.T) {
	e := newEngine(t, nil)
	res := e.Deduplicate([]types.Paper{
		{Title: "Deep Residual Learning for Image Recognition", Authors: he, Venue: "CVPR", Year: 2010},
		{Title: "Deep Residual Learning for Image Recogntion", Authors: he, Venue: "CVPR", Year: 2016},
	})
	assert.Equal(t, 2, res.DeduplicatedCount)
}

func TestDeduplicateUnknownYearIsOrderIndependent(t *testing.T) {
	known := types.Paper{Title: "Deep Residual Learning for Image Recognition", Authors: he, Venue: "CVPR", Year: 2015}
	unknown := types.Paper{Title: "Deep Residual Learning for Image Recogntion", Authors: he, Venue: "CVPR"}
	alsoUnknown := known
	alsoUnknown.Year = 0

	tests := []struct {
		name  string
		a, b  types.Paper
		wantN int
	}{
		{"known then unknown", known, unknown, 2},
		{"unknown then known", unknown, known, 2},
		{"both unknown", alsoUnknown, unknown, 1},
		{"both unknown swapped", unknown, alsoUnknown, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newEngine(t, nil).Deduplicate([]types.Paper{tt.a, tt.b})
			assertConservation(t, res)
			assert.Equal(t, tt.wantN, res.DeduplicatedCount)
		})
	}
}

func TestScoreAllParallelReportsWorkerPanic(t *testing.T) {
	e := newEngine(t, func(c *types.DedupConfig) { c.Workers = 3 })

	scored, err := e.scoreAllParallel(9, func(i int) []scoredCandidate {
		return []scoredCandidate{{index: i}}
	})
	require.NoError(t, err)
	require.Len(t, scored, 9)
	for i, s := range scored {
		assert.Equal(t, i, s[0].index)
	}

	_, err = e.scoreAllParallel(9, func(i int) []scoredCandidate {
		if i == 4 {
			panic("bad record")
		}
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seeds 3-5")
	assert.Contains(t, err.Error(), "bad record")
}

func TestDeduplicateTransitiveIdentifiers(t *testing.T) {
	e := newEngine(t, nil)
	papers := []types.Paper{
		{Title: "One", IDs: types.Identifiers{DOI: "10.1/a"}},
		{Title: "Two", IDs: types.Identifiers{ArxivID: "1706.03762"}},
		{Title: "Three", IDs: types.Identifiers{DOI: "10.1/A", ArxivID: "arXiv:1706.03762v2"}},
		{Title: "Four", URLs: []string{"https://arxiv.org/pdf/1706.03762v1"}},
	}
	res := e.Deduplicate(papers)

	require.Len(t, res.Groups, 1)
	assert.Equal(t, types.StageExactID, res.Groups[0].Stage)
	assert.Len(t, res.Groups[0].Members, 4)
	assert.Equal(t, 1, res.DeduplicatedCount)
	assert.Equal(t, 3, res.StageCounts[types.StageExactID])
	assertGroupsPreserveIdentifiers(t, res)
}

func TestDeduplicateConflictingIdentifiersBecomeAlternates(t *testing.T) {
	e := newEngine(t, nil)
	res := e.Deduplicate([]types.Paper{
		{Title: "Shared", IDs: types.Identifiers{DOI: "10.1/a", ArxivID: "1706.03762"}},
		{Title: "Shared", IDs: types.Identifiers{DOI: "10.1/b", ArxivID: "1706.03762"}},
	})
	require.Len(t, res.Papers, 1)
	ids := res.Papers[0].IDs
	assert.Equal(t, "10.1/a", ids.DOI)
	assert.True(t, ids.Has(types.IdentifierRef{Type: types.IDDOI, Value: "10.1/b"}))
	assertGroupsPreserveIdentifiers(t, res)
}

func TestDeduplicateDoesNotModifyInput(t *testing.T) {
	papers := syntheticCorpus(30)
	before := make([]types.Paper, len(papers))
	for i, p := range papers {
		before[i] = p.Clone()
	}

	newEngine(t, nil).Deduplicate(papers)
	assert.Equal(t, before, papers)
}

func TestDeduplicateEmptyAndDegraded(t *testing.T) {
	e := newEngine(t, nil)

	res := e.Deduplicate(nil)
	assertConservation(t, res)
	assert.Zero(t, res.OriginalCount)

	res = e.Deduplicate([]types.Paper{{}, {}, {Title: "   "}})
	assertConservation(t, res)
	assert.Equal(t, 3, res.DeduplicatedCount, "empty titles never match")
}

// syntheticCorpus returns n records drawn from ten publications in three
// spellings each, with a DOI on every seventh record.
func syntheticCorpus(n int) []types.Paper {
	bases := []string{
		"Deep Residual Learning for Image Recognition",
		"Attention Is All You Need",
		"Generative Adversarial Networks",
		"Batch Normalization Accelerating Deep Network Training",
		"Adam a Method for Stochastic Optimization",
		"Mastering the Game of Go with Deep Neural Networks",
		"Sequence to Sequence Learning with Neural Networks",
		"Distributed Representations of Words and Phrases",
		"Neural Machine Translation by Jointly Learning to Align",
		"Long Short Term Memory Recurrent Architectures",
	}
	venues := []string{"NeurIPS", "ICML", "arXiv"}
	out := make([]types.Paper, 0, n)
	for i := range n {
		b := i % len(bases)
		k := i / len(bases)
		title := bases[b]
		switch k % 3 {
		case 1:
			title = strings.ToUpper(title) + " (Extended Version)"
		case 2:
			title = title[:len(title)-2] + title[len(title)-1:] + title[len(title)-2:len(title)-1]
		}
		p := types.Paper{
			Title:   title,
			Authors: []types.Author{{Name: fmt.Sprintf("Author %c. Lastname%d", 'A'+b, b)}, {Name: "Jian Sun"}},
			Venue:   venues[k%len(venues)],
			Year:    2015 + k%3,
			Source:  fmt.Sprintf("source-%d", k%2),
		}
		if i%7 == 0 {
			p.IDs.DOI = fmt.Sprintf("10.1000/%d", b)
		}
		out = append(out, p)
	}
	return out
}

func TestDeduplicateParallelMatchesSequential(t *testing.T) {
	papers := syntheticCorpus(90)

	seq := newEngine(t, func(c *types.DedupConfig) { c.Workers = 1 }).Deduplicate(papers)
	par := newEngine(t, func(c *types.DedupConfig) { c.Workers = 4 }).Deduplicate(papers)

	assertConservation(t, seq)
	assertConservation(t, par)
	assert.Equal(t, seq.Papers, par.Papers)
	assert.Equal(t, seq.Groups, par.Groups)
	assert.Equal(t, seq.StageCounts, par.StageCounts)
	assert.Equal(t, seq.NearMisses, par.NearMisses)
	assert.Less(t, seq.DeduplicatedCount, seq.OriginalCount)
	assertGroupsPreserveIdentifiers(t, seq)
}

func TestDeduplicateOptimalAssignment(t *testing.T) {
	papers := syntheticCorpus(60)
	greedy := newEngine(t, nil).Deduplicate(papers)
	optimal := newEngine(t, func(c *types.DedupConfig) { c.AuthorAssignment = types.AssignOptimal }).Deduplicate(papers)

	assertConservation(t, optimal)
	assert.Equal(t, greedy.DeduplicatedCount, optimal.DeduplicatedCount)
}

func TestDeduplicateOptimalAssignmentUnevenAuthorLists(t *testing.T) {
	papers := []types.Paper{
		{Title: "Deep Residual Learning for Image Recognition", Authors: he, Venue: "CVPR", Year: 2016},
		{Title: "Deep Residual Learning for Image Recognition", Authors: he[:1], Venue: "arXiv", Year: 2016},
		{Title: "Attention Is All You Need", Authors: vaswani[:2], Venue: "NeurIPS", Year: 2017},
		{Title: "Attention Is All You Need", Authors: vaswani, Venue: "arXiv", Year: 2017},
		{Title: "Generative Adversarial Networks", Authors: vaswani[:1], Venue: "NeurIPS", Year: 2014},
	}

	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			optimal := newEngine(t, func(c *types.DedupConfig) {
				c.AuthorAssignment = types.AssignOptimal
				c.Workers = workers
			})
			greedy := newEngine(t, func(c *types.DedupConfig) { c.Workers = workers })

			var res types.DeduplicationResult
			require.NotPanics(t, func() { res = optimal.Deduplicate(papers) })
			assertConservation(t, res)
			assert.Equal(t, 3, res.DeduplicatedCount)
			assert.Equal(t, greedy.Deduplicate(papers).DeduplicatedCount, res.DeduplicatedCount)

			ab := optimal.CalculateSimilarity(papers[0], papers[1])
			ba := optimal.CalculateSimilarity(papers[1], papers[0])
			assert.Equal(t, ab, ba)
		})
	}
}

func TestDeduplicateLogsAndMetrics(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	rec := metrics.New()
	e := newEngine(t, nil, WithLogger(zap.New(core)), WithMetrics(rec))

	res := e.Deduplicate(syntheticCorpus(20))

	assert.Equal(t, len(types.PipelineStages), logs.FilterMessage("stage finished").Len())
	finished := logs.FilterMessage("deduplication finished").All()
	require.Len(t, finished, 1)
	assert.Equal(t, int64(res.DuplicatesRemoved), finished[0].ContextMap()["removed"])

	expected := `
# HELP paperdedup_runs_total Deduplication runs completed.
# TYPE paperdedup_runs_total counter
paperdedup_runs_total 1
`
	require.NoError(t, testutil.GatherAndCompare(rec.Registry(), strings.NewReader(expected), "paperdedup_runs_total"))
}

func TestErrorRates(t *testing.T) {
	res := types.DeduplicationResult{
		Groups: []types.DuplicateGroup{
			{Members: make([]types.Paper, 3), MergeConfidence: 1.0},
			{Members: make([]types.Paper, 2), MergeConfidence: 0.7},
		},
		NearMisses: 1,
	}
	fp, fn := errorRates(res)
	assert.InDelta(t, 0.3/3, fp, 1e-9)
	assert.InDelta(t, 0.25, fn, 1e-9)

	fp, fn = errorRates(types.DeduplicationResult{})
	assert.Zero(t, fp)
	assert.Zero(t, fn)
}

func BenchmarkDeduplicate(b *testing.B) {
	papers := syntheticCorpus(300)
	e := newEngine(b, nil)
	b.ResetTimer()
	for range b.N {
		e.Deduplicate(papers)
	}
}

func BenchmarkDeduplicateParallel(b *testing.B) {
	papers := syntheticCorpus(300)
	e := newEngine(b, func(c *types.DedupConfig) { c.Workers = 4 })
	b.ResetTimer()
	for range b.N {
		e.Deduplicate(papers)
	}
}
