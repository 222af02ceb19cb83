// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/paper-dedup/internal/identifier"
	"github.com/pdiddy/paper-dedup/internal/index"
	"github.com/pdiddy/paper-dedup/pkg/types"
)

// Merge confidences of the deterministic stages.
const (
	confidenceExactID      = 1.0
	confidenceTitleVenue   = 0.95
	confidenceVenueVariant = 0.85
)

// stageOutput is the unique-record output of one stage plus its merges.
type stageOutput struct {
	papers []types.Paper
	groups []types.DuplicateGroup

	indexStats types.IndexStats
	nearMisses int
}

// prepare copies the input and fills empty DOI/arXiv fields from URLs.
func prepare(papers []types.Paper) []types.Paper {
	out := make([]types.Paper, len(papers))
	for i, p := range papers {
		c := p.Clone()
		c.IDs = identifier.FillFromURLs(c.IDs, c.URLs)
		out[i] = c
	}
	return out
}

// newGroup merges members (in input order) into a DuplicateGroup.
func newGroup(members []types.Paper, stage types.MatchStage, confidence float64, evidence []string) types.DuplicateGroup {
	var sources []string
	seen := make(map[string]bool)
	for _, m := range members {
		if m.Source != "" && !seen[m.Source] {
			seen[m.Source] = true
			sources = append(sources, m.Source)
		}
	}
	return types.DuplicateGroup{
		Selected:        ResolveDuplicateGroup(members),
		Members:         members,
		MergeConfidence: confidence,
		Stage:           stage,
		Evidence:        evidence,
		MemberSources:   sources,
	}
}

// exactIDStage unifies records sharing any normalized identifier. A record
// matching several existing slots joins them all into the earliest one,
// and the merged slot's identifiers are re-registered, so a paper reachable
// through two identifier types is unified in one pass.
func (e *Engine) exactIDStage(in []types.Paper) stageOutput {
	type slot struct {
		members []int
		record  types.Paper
		dead    bool
	}
	var slots []*slot
	owner := make(map[string]int)

	for i, p := range in {
		keys := identifier.Keys(p.IDs)
		var hits []int
		for _, k := range keys {
			if s, ok := owner[k]; ok && !slices.Contains(hits, s) {
				hits = append(hits, s)
			}
		}

		if len(hits) == 0 {
			slots = append(slots, &slot{members: []int{i}, record: p})
			for _, k := range keys {
				owner[k] = len(slots) - 1
			}
			continue
		}

		slices.Sort(hits)
		target := slots[hits[0]]
		target.members = append(target.members, i)
		for _, h := range hits[1:] {
			target.members = append(target.members, slots[h].members...)
			slots[h].dead = true
		}
		slices.Sort(target.members)

		members := make([]types.Paper, len(target.members))
		for k, m := range target.members {
			members[k] = in[m]
		}
		target.record = ResolveDuplicateGroup(members)
		for _, k := range identifier.Keys(target.record.IDs) {
			owner[k] = hits[0]
		}
	}

	var out stageOutput
	for _, s := range slots {
		if s.dead {
			continue
		}
		if len(s.members) == 1 {
			out.papers = append(out.papers, s.record)
			continue
		}
		members := make([]types.Paper, len(s.members))
		for k, m := range s.members {
			members[k] = in[m]
		}
		g := newGroup(members, types.StageExactID, confidenceExactID, sharedIdentifiers(members))
		out.groups = append(out.groups, g)
		out.papers = append(out.papers, g.Selected)
	}
	return out
}

// sharedIdentifiers lists the identifier keys carried by two or more members.
func sharedIdentifiers(members []types.Paper) []string {
	counts := make(map[string]int)
	var order []string
	for _, m := range members {
		for _, k := range identifier.Keys(m.IDs) {
			if counts[k] == 0 {
				order = append(order, k)
			}
			counts[k]++
		}
	}
	var evidence []string
	for _, k := range order {
		if counts[k] > 1 {
			evidence = append(evidence, "shared identifier "+k)
		}
	}
	return evidence
}

// titleVenueStage merges records with equal (normalized title, venue key,
// year) signatures. Records with an empty normalized title never match.
func (e *Engine) titleVenueStage(in []types.Paper) stageOutput {
	buckets := make(map[string][]int)
	var order []string
	for i, p := range in {
		norm := e.titles.Normalize(p.Title)
		if norm == "" {
			order = append(order, "#"+strconv.Itoa(i))
			buckets[order[len(order)-1]] = []int{i}
			continue
		}
		key := norm + "\x00" + p.VenueKey() + "\x00" + strconv.Itoa(p.Year)
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], i)
	}

	var out stageOutput
	for _, key := range order {
		idx := buckets[key]
		if len(idx) == 1 {
			out.papers = append(out.papers, in[idx[0]])
			continue
		}
		members := pick(in, idx)
		first := members[0]
		evidence := []string{
			fmt.Sprintf("normalized title %q", e.titles.Normalize(first.Title)),
			fmt.Sprintf("venue %q", first.VenueKey()),
			fmt.Sprintf("year %d", first.Year),
		}
		g := newGroup(members, types.StageTitleVenue, confidenceTitleVenue, evidence)
		out.groups = append(out.groups, g)
		out.papers = append(out.papers, g.Selected)
	}
	return out
}

// scoredCandidate is one fuzzy-stage candidate with its full score.
type scoredCandidate struct {
	index int
	score types.SimilarityScore
}

// fuzzyStage matches records through the token index. For each unprocessed
// seed it scores the index candidates and accepts a candidate when its
// title similarity reaches the title threshold, or when it clears the fuzzy
// title floor and its author similarity reaches the author threshold. The
// seed and accepted candidates are marked processed.
//
// With Workers > 1, candidate scoring runs in parallel over index ranges.
// Group assembly is always a sequential reduction in seed order, so the
// output does not depend on the worker count.
func (e *Engine) fuzzyStage(in []types.Paper) stageOutput {
	ix := index.New(e.idxCfg, index.WithLogger(e.logger), index.WithTitleMatcher(e.titles))
	ix.Build(in)

	var scored [][]scoredCandidate
	if e.cfg.Workers > 1 {
		var err error
		scored, err = e.scoreAllParallel(ix.Len(), func(i int) []scoredCandidate { return e.scoreSeed(ix, i) })
		if err != nil {
			e.logger.Error("parallel scoring failed, scoring sequentially", zap.Error(err))
			scored = nil
		}
	}
	scoresFor := func(i int) []scoredCandidate {
		if scored != nil {
			return scored[i]
		}
		return e.scoreSeed(ix, i)
	}

	out := stageOutput{indexStats: ix.Stats()}
	processed := make([]bool, len(in))
	absorbed := make([]bool, len(in))
	merged := make(map[int]types.DuplicateGroup)

	for i := range in {
		if processed[i] {
			continue
		}
		processed[i] = true

		var accepted []scoredCandidate
		for _, c := range scoresFor(i) {
			if processed[c.index] {
				continue
			}
			if e.acceptFuzzy(c.score) {
				accepted = append(accepted, c)
				processed[c.index] = true
				absorbed[c.index] = true
			} else if c.score.OverallScore >= e.cfg.MatchMinConfidence {
				out.nearMisses++
			}
		}
		if len(accepted) == 0 {
			continue
		}

		memberIdx := []int{i}
		sum := 0.0
		var evidence []string
		for _, c := range accepted {
			memberIdx = append(memberIdx, c.index)
			sum += c.score.OverallScore
			evidence = append(evidence, fmt.Sprintf("%q: title %.3f, authors %.3f, overall %.3f",
				in[c.index].Title, c.score.TitleSimilarity, c.score.AuthorSimilarity, c.score.OverallScore))
		}
		slices.Sort(memberIdx)
		confidence := sum / float64(len(accepted))
		merged[i] = newGroup(pick(in, memberIdx), types.StageFuzzyTitle, confidence, evidence)
	}

	// Seeds always precede their accepted candidates, so the merged record
	// takes the seed's position.
	for i := range in {
		if g, ok := merged[i]; ok {
			out.groups = append(out.groups, g)
			out.papers = append(out.papers, g.Selected)
			continue
		}
		if !absorbed[i] {
			out.papers = append(out.papers, in[i])
		}
	}
	return out
}

func (e *Engine) acceptFuzzy(s types.SimilarityScore) bool {
	return s.TitleSimilarity >= e.cfg.TitleThreshold ||
		(s.TitleSimilarity >= e.cfg.FuzzyTitleFloor && s.AuthorSimilarity >= e.cfg.AuthorThreshold)
}

// scoreSeed scores every index candidate of record i.
func (e *Engine) scoreSeed(ix *index.Index, i int) []scoredCandidate {
	seed := ix.Paper(i)
	cands := ix.FindSimilarPapers(i, index.Query{
		MinTokenOverlap: e.cfg.MinTokenOverlap,
		Year:            seed.Year,
		YearWindow:      e.cfg.YearWindow,
		StrictYear:      true,
		Limit:           e.cfg.MaxCandidates,
	})
	out := make([]scoredCandidate, len(cands))
	for k, c := range cands {
		out[k] = scoredCandidate{index: c.Index, score: e.CalculateSimilarity(seed, ix.Paper(c.Index))}
	}
	return out
}

// scoreAllParallel scores seeds 0..n-1, sharding them into contiguous
// ranges across at most Workers goroutines. A panic in a worker is
// returned as an error.
func (e *Engine) scoreAllParallel(n int, score func(i int) []scoredCandidate) ([][]scoredCandidate, error) {
	scored := make([][]scoredCandidate, n)
	shard := max(1, (n+e.cfg.Workers-1)/e.cfg.Workers)

	var g errgroup.Group
	g.SetLimit(e.cfg.Workers)
	for lo := 0; lo < n; lo += shard {
		hi := min(lo+shard, n)
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("scoring seeds %d-%d: %v", lo, hi-1, r)
				}
			}()
			for i := lo; i < hi; i++ {
				scored[i] = score(i)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scored, nil
}

// venueVariantStage re-groups records by normalized title alone and merges
// records whose authors match and whose years are equal. Clustering is
// greedy in input order; a record joins the first cluster whose every
// member it matches.
func (e *Engine) venueVariantStage(in []types.Paper) stageOutput {
	byTitle := make(map[string][]int)
	var order []string
	for i, p := range in {
		norm := e.titles.Normalize(p.Title)
		if norm == "" {
			continue
		}
		if _, ok := byTitle[norm]; !ok {
			order = append(order, norm)
		}
		byTitle[norm] = append(byTitle[norm], i)
	}

	merged := make(map[int]types.DuplicateGroup)
	absorbed := make([]bool, len(in))
	for _, norm := range order {
		idx := byTitle[norm]
		if len(idx) < 2 {
			continue
		}
		var clusters [][]int
		for _, i := range idx {
			placed := false
			for c := range clusters {
				if e.joinsCluster(in, clusters[c], i) {
					clusters[c] = append(clusters[c], i)
					placed = true
					break
				}
			}
			if !placed {
				clusters = append(clusters, []int{i})
			}
		}
		for _, c := range clusters {
			if len(c) < 2 {
				continue
			}
			members := pick(in, c)
			venues := make([]string, 0, len(members))
			for _, m := range members {
				venues = append(venues, fmt.Sprintf("%q", m.Venue))
			}
			evidence := []string{
				fmt.Sprintf("normalized title %q", norm),
				fmt.Sprintf("year %d", members[0].Year),
				"venue variants " + strings.Join(venues, ", "),
			}
			merged[c[0]] = newGroup(members, types.StageVenueVariant, confidenceVenueVariant, evidence)
			for _, j := range c[1:] {
				absorbed[j] = true
			}
		}
	}

	var out stageOutput
	for i := range in {
		if g, ok := merged[i]; ok {
			out.groups = append(out.groups, g)
			out.papers = append(out.papers, g.Selected)
			continue
		}
		if !absorbed[i] {
			out.papers = append(out.papers, in[i])
		}
	}
	return out
}

func (e *Engine) joinsCluster(in []types.Paper, cluster []int, i int) bool {
	for _, j := range cluster {
		if in[i].Year != in[j].Year {
			return false
		}
		if e.authors.Similarity(in[i].Authors, in[j].Authors) < e.cfg.VenueAuthorThreshold {
			return false
		}
	}
	return true
}

func pick(in []types.Paper, idx []int) []types.Paper {
	out := make([]types.Paper, len(idx))
	for k, i := range idx {
		out[k] = in[i]
	}
	return out
}
