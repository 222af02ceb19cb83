// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// MatchStage identifies the pipeline stage (or match reason) that linked two records.
type MatchStage string

const (
	StageExactID       MatchStage = "exact_id"
	StageTitleVenue    MatchStage = "title_venue"
	StageFuzzyTitle    MatchStage = "fuzzy_title"
	StageAuthorOverlap MatchStage = "author_overlap"
	StageVenueVariant  MatchStage = "venue_variant"
)

// PipelineStages lists the stages in the order the engine runs them.
var PipelineStages = []MatchStage{StageExactID, StageTitleVenue, StageFuzzyTitle, StageVenueVariant}

// SimilarityScore holds the component and overall similarity between two
// papers. Every component is symmetric in its two arguments.
type SimilarityScore struct {
	TitleSimilarity  float64 `json:"title_similarity" yaml:"title_similarity"`
	AuthorSimilarity float64 `json:"author_similarity" yaml:"author_similarity"`
	VenueSimilarity  float64 `json:"venue_similarity" yaml:"venue_similarity"`
	YearMatch        bool    `json:"year_match" yaml:"year_match"`
	IDOverlap        bool    `json:"id_overlap" yaml:"id_overlap"`
	OverallScore     float64 `json:"overall_score" yaml:"overall_score"`
}

// DuplicateMatch is one candidate returned by a single-record duplicate lookup.
type DuplicateMatch struct {
	// CandidateIndex is the candidate's position in the input slice.
	CandidateIndex int `json:"candidate_index" yaml:"candidate_index"`

	// Candidate is the matched record.
	Candidate Paper `json:"candidate" yaml:"candidate"`

	// Confidence equals Score.OverallScore.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Score holds the full component breakdown.
	Score SimilarityScore `json:"score" yaml:"score"`

	// Stage is the strongest reason the candidate matched.
	Stage MatchStage `json:"stage" yaml:"stage"`
}

// DuplicateGroup is a set of records the engine merged into one.
type DuplicateGroup struct {
	// Selected is the merged record that replaces Members.
	Selected Paper `json:"selected" yaml:"selected"`

	// Members are the stage inputs subsumed by Selected, in input order.
	Members []Paper `json:"members" yaml:"members"`

	// MergeConfidence is the engine's confidence in the merge (0.0-1.0).
	MergeConfidence float64 `json:"merge_confidence" yaml:"merge_confidence"`

	// Stage is the pipeline stage that formed the group.
	Stage MatchStage `json:"stage" yaml:"stage"`

	// Evidence lists human-readable reasons for the merge.
	Evidence []string `json:"evidence,omitempty" yaml:"evidence,omitempty"`

	// MemberSources lists the harvesting sources of Members, deduplicated.
	MemberSources []string `json:"member_sources,omitempty" yaml:"member_sources,omitempty"`
}

// Removed returns the number of records the group eliminated.
func (g DuplicateGroup) Removed() int {
	if len(g.Members) == 0 {
		return 0
	}
	return len(g.Members) - 1
}

// ConfidenceHistogram counts groups by merge confidence band.
type ConfidenceHistogram struct {
	High   int `json:"high" yaml:"high"`     // >= 0.9
	Medium int `json:"medium" yaml:"medium"` // >= 0.7
	Low    int `json:"low" yaml:"low"`       // < 0.7
}

// Add places one confidence value into its band.
func (h *ConfidenceHistogram) Add(confidence float64) {
	switch {
	case confidence >= 0.9:
		h.High++
	case confidence >= 0.7:
		h.Medium++
	default:
		h.Low++
	}
}

// DeduplicationResult is the outcome of one deduplication run.
// OriginalCount == DeduplicatedCount + DuplicatesRemoved always holds.
type DeduplicationResult struct {
	OriginalCount     int `json:"original_count" yaml:"original_count"`
	DeduplicatedCount int `json:"deduplicated_count" yaml:"deduplicated_count"`
	DuplicatesRemoved int `json:"duplicates_removed" yaml:"duplicates_removed"`

	// Papers is the deduplicated record set.
	Papers []Paper `json:"papers" yaml:"papers"`

	// Groups lists every merge performed, in stage order.
	Groups []DuplicateGroup `json:"groups" yaml:"groups"`

	Confidence ConfidenceHistogram `json:"confidence" yaml:"confidence"`

	// StageCounts maps each stage to the number of records it removed.
	StageCounts map[MatchStage]int `json:"stage_counts" yaml:"stage_counts"`

	// StageDurations maps each stage to its wall-clock time.
	StageDurations map[MatchStage]time.Duration `json:"stage_durations" yaml:"stage_durations"`

	ProcessingTime time.Duration `json:"processing_time" yaml:"processing_time"`

	// IndexStats describes the similarity index built for the fuzzy stage.
	IndexStats IndexStats `json:"index_stats" yaml:"index_stats"`

	// NearMisses counts fuzzy-stage candidates rejected despite an overall
	// score at or above the match confidence floor.
	NearMisses int `json:"near_misses" yaml:"near_misses"`

	EstimatedFalsePositiveRate float64 `json:"estimated_false_positive_rate" yaml:"estimated_false_positive_rate"`
	EstimatedFalseNegativeRate float64 `json:"estimated_false_negative_rate" yaml:"estimated_false_negative_rate"`
}

// IndexStats describes a built similarity index.
type IndexStats struct {
	RecordCount          int           `json:"record_count" yaml:"record_count"`
	TotalTokens          int           `json:"total_tokens" yaml:"total_tokens"`
	UniqueTokens         int           `json:"unique_tokens" yaml:"unique_tokens"`
	AvgTokensPerRecord   float64       `json:"avg_tokens_per_record" yaml:"avg_tokens_per_record"`
	PrunedTokens         int           `json:"pruned_tokens" yaml:"pruned_tokens"`
	EstimatedMemoryBytes int64         `json:"estimated_memory_bytes" yaml:"estimated_memory_bytes"`
	BuildTime            time.Duration `json:"build_time" yaml:"build_time"`
}

// QualityReport is an advisory estimate of deduplication quality. It never
// feeds back into merge decisions.
type QualityReport struct {
	OriginalCount     int     `json:"original_count" yaml:"original_count"`
	DeduplicatedCount int     `json:"deduplicated_count" yaml:"deduplicated_count"`
	DuplicatesRemoved int     `json:"duplicates_removed" yaml:"duplicates_removed"`
	ReductionRatio    float64 `json:"reduction_ratio" yaml:"reduction_ratio"`

	EstimatedPrecision float64 `json:"estimated_precision" yaml:"estimated_precision"`
	EstimatedRecall    float64 `json:"estimated_recall" yaml:"estimated_recall"`
	EstimatedF1        float64 `json:"estimated_f1" yaml:"estimated_f1"`

	// ResidualDuplicatePairs counts near-duplicate pairs still present in
	// the deduplicated set.
	ResidualDuplicatePairs int `json:"residual_duplicate_pairs" yaml:"residual_duplicate_pairs"`

	// ConflictingMerges counts deduplicated records carrying alternate
	// identifiers, i.e. merges of records whose identifiers disagreed.
	ConflictingMerges int `json:"conflicting_merges" yaml:"conflicting_merges"`

	// LostIdentifiers counts identifiers present in the original set but
	// missing from every deduplicated record.
	LostIdentifiers int `json:"lost_identifiers" yaml:"lost_identifiers"`

	ProcessingTime       time.Duration `json:"processing_time" yaml:"processing_time"`
	RecordsPerSecond     float64       `json:"records_per_second" yaml:"records_per_second"`
	EstimatedMemoryBytes int64         `json:"estimated_memory_bytes" yaml:"estimated_memory_bytes"`
}
