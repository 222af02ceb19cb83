// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-dedup/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{Path: filepath.Join(t.TempDir(), "db", "runs.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult() types.DeduplicationResult {
	a := types.Paper{Title: "Attention Is All You Need", Year: 2017, IDs: types.Identifiers{DOI: "10.1/x"}, Source: "dblp"}
	b := types.Paper{Title: "Attention is all you need", Year: 2017, IDs: types.Identifiers{DOI: "10.1/x"}, Source: "openalex",
		CitationCount: types.IntPtr(10)}
	merged := b.Clone()
	return types.DeduplicationResult{
		OriginalCount:     3,
		DeduplicatedCount: 2,
		DuplicatesRemoved: 1,
		Papers:            []types.Paper{merged, {Title: "Protein Folding", Authors: []types.Author{{Name: "J. Jumper"}}}},
		Groups: []types.DuplicateGroup{{
			Selected:        merged,
			Members:         []types.Paper{a, b},
			MergeConfidence: 1,
			Stage:           types.StageExactID,
			Evidence:        []string{"shared identifier doi:10.1/x"},
			MemberSources:   []string{"dblp", "openalex"},
		}},
		StageCounts:    map[types.MatchStage]int{types.StageExactID: 1, types.StageTitleVenue: 0},
		StageDurations: map[types.MatchStage]time.Duration{types.StageExactID: time.Millisecond},
		ProcessingTime: 5 * time.Millisecond,
		IndexStats:     types.IndexStats{RecordCount: 2, TotalTokens: 5},
		NearMisses:     2,

		EstimatedFalseNegativeRate: 2.0 / 3.0,
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	res := sampleResult()
	res.Confidence.Add(1)

	id, err := s.SaveRun(ctx, res)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	run, err := s.LoadRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, run.ID)
	assert.Equal(t, 1, run.GroupCount)
	assert.WithinDuration(t, time.Now(), run.CreatedAt, time.Minute)
	assert.Equal(t, res.Papers, run.Papers)
	assert.Equal(t, res.Groups, run.Groups)

	got := run.Result()
	assert.Equal(t, res.OriginalCount, got.OriginalCount)
	assert.Equal(t, res.DeduplicatedCount, got.DeduplicatedCount)
	assert.Equal(t, res.DuplicatesRemoved, got.DuplicatesRemoved)
	assert.Equal(t, res.StageCounts, got.StageCounts)
	assert.Equal(t, res.StageDurations, got.StageDurations)
	assert.Equal(t, res.ProcessingTime, got.ProcessingTime)
	assert.Equal(t, res.IndexStats, got.IndexStats)
	assert.Equal(t, res.NearMisses, got.NearMisses)
	assert.InDelta(t, res.EstimatedFalseNegativeRate, got.EstimatedFalseNegativeRate, 1e-12)
	assert.Equal(t, res.Confidence, got.Confidence)
}

func TestLoadRunNotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.LoadRun(context.Background(), "missing")
	require.ErrorIs(t, err, ErrRunNotFound)

	require.ErrorIs(t, s.DeleteRun(context.Background(), "missing"), ErrRunNotFound)
	require.ErrorIs(t, s.ExportJSON(context.Background(), "missing", &bytes.Buffer{}), ErrRunNotFound)
}

func TestListAndDeleteRuns(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)

	first, err := s.SaveRun(ctx, sampleResult())
	require.NoError(t, err)
	second, err := s.SaveRun(ctx, types.DeduplicationResult{OriginalCount: 1, DeduplicatedCount: 1})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	runs, err = s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID, "newest first")
	assert.Equal(t, first, runs[1].ID)

	require.NoError(t, s.DeleteRun(ctx, first))
	runs, err = s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	var members int
	require.NoError(t, s.db.QueryRow(`SELECT count(*) FROM group_members`).Scan(&members))
	assert.Zero(t, members, "deleting a run cascades to its groups")
}

func TestEmptyRunRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	id, err := s.SaveRun(ctx, types.DeduplicationResult{})
	require.NoError(t, err)

	run, err := s.LoadRun(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, run.Papers)
	assert.Empty(t, run.Groups)
}

func TestExport(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	id, err := s.SaveRun(ctx, sampleResult())
	require.NoError(t, err)

	var jsonBuf bytes.Buffer
	require.NoError(t, s.ExportJSON(ctx, id, &jsonBuf))
	var fromJSON Run
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &fromJSON))
	assert.Equal(t, id, fromJSON.ID)
	assert.Len(t, fromJSON.Groups, 1)
	assert.Len(t, fromJSON.Papers, 2)

	var yamlBuf bytes.Buffer
	require.NoError(t, s.ExportYAML(ctx, id, &yamlBuf))
	var fromYAML map[string]any
	require.NoError(t, yaml.Unmarshal(yamlBuf.Bytes(), &fromYAML))
	assert.Equal(t, id, fromYAML["id"], "summary fields are inlined")
	assert.Contains(t, fromYAML, "groups")
	assert.Contains(t, fromYAML, "papers")
}
