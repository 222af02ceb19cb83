// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-dedup CLI. It loads
// bibliographic record files, runs the deduplication engine over them, and
// reports, exports or stores the result.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-dedup/internal/dedup"
	"github.com/pdiddy/paper-dedup/internal/logging"
	"github.com/pdiddy/paper-dedup/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the paper-dedup CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-dedup",
	Short: "Link and merge duplicate bibliographic records",
	Long: `paper-dedup finds records that describe the same publication across
harvesting sources and merges them into one canonical record.

Records are read from JSON, YAML or CSL-YAML files. The dedupe command runs
the four-stage pipeline (exact identifiers, title and venue signatures,
fuzzy title and author matching, venue variants) and writes the
deduplicated set; match, compare, index and quality expose the individual
pieces for inspection.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-dedup.yaml or ~/.config/paper-dedup/paper-dedup.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "console", "log format: console or json")
	rootCmd.PersistentFlags().String("store", "", "run database path (default: paper-dedup.db)")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("store"))
}

func initConfig() {
	setDefaults()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-dedup")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-dedup"))
		}
	}

	viper.SetEnvPrefix("PAPER_DEDUP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so environment variables and
// config files can override any of them.
func setDefaults() {
	d := types.DefaultConfig()

	viper.SetDefault("dedup.title_threshold", d.Dedup.TitleThreshold)
	viper.SetDefault("dedup.author_threshold", d.Dedup.AuthorThreshold)
	viper.SetDefault("dedup.venue_weight", d.Dedup.VenueWeight)
	viper.SetDefault("dedup.fuzzy_title_floor", d.Dedup.FuzzyTitleFloor)
	viper.SetDefault("dedup.venue_author_threshold", d.Dedup.VenueAuthorThreshold)
	viper.SetDefault("dedup.match_min_confidence", d.Dedup.MatchMinConfidence)
	viper.SetDefault("dedup.min_token_overlap", d.Dedup.MinTokenOverlap)
	viper.SetDefault("dedup.year_window", d.Dedup.YearWindow)
	viper.SetDefault("dedup.max_candidates", d.Dedup.MaxCandidates)
	viper.SetDefault("dedup.workers", d.Dedup.Workers)
	viper.SetDefault("dedup.title_cache_size", d.Dedup.TitleCacheSize)
	viper.SetDefault("dedup.author_cache_size", d.Dedup.AuthorCacheSize)
	viper.SetDefault("dedup.author_assignment", string(d.Dedup.AuthorAssignment))
	viper.SetDefault("dedup.indexed_lookup_threshold", d.Dedup.IndexedLookupThreshold)

	viper.SetDefault("index.max_tokens_per_record", d.Index.MaxTokensPerRecord)
	viper.SetDefault("index.prune_singletons", d.Index.PruneSingletons)

	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.format", d.Log.Format)
	viper.SetDefault("log.output_paths", d.Log.OutputPaths)

	viper.SetDefault("store.path", d.Store.Path)
}

// engineFlag is a command-line override of one config key.
type engineFlag struct {
	name, key, usage string
	def              func(types.Config) any
}

var engineFlags = []engineFlag{
	{"title-threshold", "dedup.title_threshold", "title similarity that alone accepts a fuzzy match",
		func(c types.Config) any { return c.Dedup.TitleThreshold }},
	{"author-threshold", "dedup.author_threshold", "author similarity that accepts a fuzzy match above the title floor",
		func(c types.Config) any { return c.Dedup.AuthorThreshold }},
	{"venue-weight", "dedup.venue_weight", "venue contribution to the overall score",
		func(c types.Config) any { return c.Dedup.VenueWeight }},
	{"fuzzy-title-floor", "dedup.fuzzy_title_floor", "title similarity required alongside the author threshold",
		func(c types.Config) any { return c.Dedup.FuzzyTitleFloor }},
	{"venue-author-threshold", "dedup.venue_author_threshold", "author similarity required to merge venue variants",
		func(c types.Config) any { return c.Dedup.VenueAuthorThreshold }},
	{"match-min-confidence", "dedup.match_min_confidence", "minimum overall score reported by match",
		func(c types.Config) any { return c.Dedup.MatchMinConfidence }},
	{"min-token-overlap", "dedup.min_token_overlap", "shared title tokens a fuzzy candidate needs",
		func(c types.Config) any { return c.Dedup.MinTokenOverlap }},
	{"year-window", "dedup.year_window", "fuzzy candidates must be within this many years",
		func(c types.Config) any { return c.Dedup.YearWindow }},
	{"max-candidates", "dedup.max_candidates", "fuzzy candidates scored per record",
		func(c types.Config) any { return c.Dedup.MaxCandidates }},
	{"workers", "dedup.workers", "parallel scoring workers for the fuzzy stage",
		func(c types.Config) any { return c.Dedup.Workers }},
	{"author-assignment", "dedup.author_assignment", "author pairing: greedy or optimal",
		func(c types.Config) any { return string(c.Dedup.AuthorAssignment) }},
	{"max-tokens", "index.max_tokens_per_record", "title tokens indexed per record",
		func(c types.Config) any { return c.Index.MaxTokensPerRecord }},
}

// addEngineFlags registers the engine flags on cmd with the engine defaults.
func addEngineFlags(cmd *cobra.Command) {
	d := types.DefaultConfig()
	fs := cmd.Flags()
	for _, f := range engineFlags {
		switch v := f.def(d).(type) {
		case float64:
			fs.Float64(f.name, v, f.usage)
		case int:
			fs.Int(f.name, v, f.usage)
		case string:
			fs.String(f.name, v, f.usage)
		}
	}
}

// loadConfig binds the running command's engine flags and decodes the
// merged configuration. Flags are bound here rather than in init so that
// several commands can share flag names without overriding each other.
func loadConfig(cmd *cobra.Command) (types.Config, error) {
	for _, f := range engineFlags {
		if fl := cmd.Flags().Lookup(f.name); fl != nil {
			if err := viper.BindPFlag(f.key, fl); err != nil {
				return types.Config{}, fmt.Errorf("binding flag %s: %w", f.name, err)
			}
		}
	}
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// newEngine builds a logger and an engine from cfg.
func newEngine(cfg types.Config, opts ...dedup.Option) (*dedup.Engine, *zap.Logger, error) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	opts = append([]dedup.Option{dedup.WithLogger(logger), dedup.WithIndexConfig(cfg.Index)}, opts...)
	e, err := dedup.New(cfg.Dedup, opts...)
	if err != nil {
		logger.Sync()
		return nil, nil, err
	}
	return e, logger, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
