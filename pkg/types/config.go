// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// AuthorAssignment selects how author lists are paired up.
type AuthorAssignment string

const (
	// AssignGreedy pairs highest-scoring authors first. Fast, not optimal.
	AssignGreedy AuthorAssignment = "greedy"

	// AssignOptimal finds the maximum-weight pairing (Kuhn-Munkres).
	AssignOptimal AuthorAssignment = "optimal"
)

// DedupConfig holds the deduplication engine settings.
type DedupConfig struct {
	// TitleThreshold accepts a fuzzy-stage candidate on title alone (default 0.95).
	TitleThreshold float64 `json:"title_threshold" yaml:"title_threshold" mapstructure:"title_threshold"`

	// AuthorThreshold accepts a fuzzy-stage candidate whose title clears
	// FuzzyTitleFloor and whose author similarity reaches it (default 0.8).
	AuthorThreshold float64 `json:"author_threshold" yaml:"author_threshold" mapstructure:"author_threshold"`

	// VenueWeight is the venue contribution to the overall score (default 0.3).
	VenueWeight float64 `json:"venue_weight" yaml:"venue_weight" mapstructure:"venue_weight"`

	// FuzzyTitleFloor is the title similarity required alongside the author
	// threshold in the fuzzy stage (default 0.8).
	FuzzyTitleFloor float64 `json:"fuzzy_title_floor" yaml:"fuzzy_title_floor" mapstructure:"fuzzy_title_floor"`

	// VenueAuthorThreshold is the author similarity required by the
	// venue-variant stage (default 0.8).
	VenueAuthorThreshold float64 `json:"venue_author_threshold" yaml:"venue_author_threshold" mapstructure:"venue_author_threshold"`

	// MatchMinConfidence filters single-record duplicate lookups and marks
	// fuzzy-stage near misses (default 0.7).
	MatchMinConfidence float64 `json:"match_min_confidence" yaml:"match_min_confidence" mapstructure:"match_min_confidence"`

	// MinTokenOverlap is the shared-token count a fuzzy candidate needs (default 2).
	MinTokenOverlap int `json:"min_token_overlap" yaml:"min_token_overlap" mapstructure:"min_token_overlap"`

	// YearWindow bounds fuzzy candidates to +/- this many years (default 2).
	YearWindow int `json:"year_window" yaml:"year_window" mapstructure:"year_window"`

	// MaxCandidates caps fuzzy candidates scored per seed record (default 50).
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates" mapstructure:"max_candidates"`

	// Workers sets fuzzy-stage scoring parallelism. 1 runs sequentially.
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// TitleCacheSize bounds the title-similarity LRU cache (default 10000).
	TitleCacheSize int `json:"title_cache_size" yaml:"title_cache_size" mapstructure:"title_cache_size"`

	// AuthorCacheSize bounds the author-match LRU cache (default 10000).
	AuthorCacheSize int `json:"author_cache_size" yaml:"author_cache_size" mapstructure:"author_cache_size"`

	// AuthorAssignment selects greedy or optimal author pairing (default greedy).
	AuthorAssignment AuthorAssignment `json:"author_assignment" yaml:"author_assignment" mapstructure:"author_assignment"`

	// IndexedLookupThreshold is the candidate count at which single-record
	// lookups switch to an index-assisted search (default 256).
	IndexedLookupThreshold int `json:"indexed_lookup_threshold" yaml:"indexed_lookup_threshold" mapstructure:"indexed_lookup_threshold"`
}

// IndexConfig holds similarity index settings.
type IndexConfig struct {
	// MaxTokensPerRecord caps indexed title tokens per record (default 50).
	MaxTokensPerRecord int `json:"max_tokens_per_record" yaml:"max_tokens_per_record" mapstructure:"max_tokens_per_record"`

	// PruneSingletons drops tokens indexed for a single record after build.
	PruneSingletons bool `json:"prune_singletons" yaml:"prune_singletons" mapstructure:"prune_singletons"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is json or console (default console).
	Format string `json:"format" yaml:"format" mapstructure:"format"`

	// OutputPaths lists log sinks; "stderr" and "stdout" are special (default stderr).
	OutputPaths []string `json:"output_paths" yaml:"output_paths" mapstructure:"output_paths"`
}

// StoreConfig holds run persistence settings.
type StoreConfig struct {
	// Path is the SQLite database file (default "paper-dedup.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// Config groups every setting the CLI loads.
type Config struct {
	Dedup DedupConfig `json:"dedup" yaml:"dedup" mapstructure:"dedup"`
	Index IndexConfig `json:"index" yaml:"index" mapstructure:"index"`
	Log   LogConfig   `json:"log" yaml:"log" mapstructure:"log"`
	Store StoreConfig `json:"store" yaml:"store" mapstructure:"store"`
}

// DefaultDedupConfig returns the engine defaults.
func DefaultDedupConfig() DedupConfig {
	return DedupConfig{
		TitleThreshold:         0.95,
		AuthorThreshold:        0.8,
		VenueWeight:            0.3,
		FuzzyTitleFloor:        0.8,
		VenueAuthorThreshold:   0.8,
		MatchMinConfidence:     0.7,
		MinTokenOverlap:        2,
		YearWindow:             2,
		MaxCandidates:          50,
		Workers:                1,
		TitleCacheSize:         10000,
		AuthorCacheSize:        10000,
		AuthorAssignment:       AssignGreedy,
		IndexedLookupThreshold: 256,
	}
}

// DefaultIndexConfig returns the index defaults.
func DefaultIndexConfig() IndexConfig {
	return IndexConfig{
		MaxTokensPerRecord: 50,
		PruneSingletons:    true,
	}
}

// DefaultConfig returns defaults for every section.
func DefaultConfig() Config {
	return Config{
		Dedup: DefaultDedupConfig(),
		Index: DefaultIndexConfig(),
		Log: LogConfig{
			Level:       "info",
			Format:      "console",
			OutputPaths: []string{"stderr"},
		},
		Store: StoreConfig{Path: "paper-dedup.db"},
	}
}
