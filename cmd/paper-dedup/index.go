// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-dedup/internal/index"
	"github.com/pdiddy/paper-dedup/internal/ingest"
	"github.com/pdiddy/paper-dedup/internal/logging"
	"github.com/pdiddy/paper-dedup/internal/title"
	"github.com/pdiddy/paper-dedup/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index FILE...",
	Short: "Build the title token index and list similar pairs",
	Long: `Index builds the inverted title-token index the fuzzy stage uses,
prints its statistics, and lists the most similar record pairs by title
similarity. Use it to tune --min-token-overlap and --max-tokens.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	threshold, _ := cmd.Flags().GetFloat64("threshold")
	top, _ := cmd.Flags().GetInt("top")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	papers, err := ingest.LoadFiles(ingest.DefaultRegistry(), "", args...)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	titles, err := title.NewMatcher(cfg.Dedup.TitleCacheSize)
	if err != nil {
		return err
	}
	ix := index.New(cfg.Index, index.WithLogger(logger), index.WithTitleMatcher(titles))
	ix.Build(papers)

	pairs := index.NewBatchProcessor(ix, nil).FindSimilarPairs(index.BatchOptions{
		Threshold:       threshold,
		MaxCandidates:   cfg.Dedup.MaxCandidates,
		MinTokenOverlap: cfg.Dedup.MinTokenOverlap,
	})
	if top > 0 && len(pairs) > top {
		pairs = pairs[:top]
	}

	if jsonOutput {
		return ingest.WriteJSONValue(os.Stdout, struct {
			Stats types.IndexStats    `json:"stats"`
			Pairs []index.SimilarPair `json:"pairs"`
		}{ix.Stats(), pairs})
	}

	st := ix.Stats()
	fmt.Println(keyValueTable([][]string{
		{"Records", strconv.Itoa(st.RecordCount)},
		{"Total tokens", strconv.Itoa(st.TotalTokens)},
		{"Unique tokens", strconv.Itoa(st.UniqueTokens)},
		{"Pruned tokens", strconv.Itoa(st.PrunedTokens)},
		{"Avg tokens per record", fmt.Sprintf("%.2f", st.AvgTokensPerRecord)},
		{"Estimated memory", fmt.Sprintf("%d bytes", st.EstimatedMemoryBytes)},
		{"Build time", st.BuildTime.String()},
	}))

	if len(pairs) == 0 {
		fmt.Printf("\nNo pairs at or above %.2f\n", threshold)
		return nil
	}
	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{
			strconv.Itoa(p.I),
			strconv.Itoa(p.J),
			f3(p.Score),
			truncate(ix.Paper(p.I).Title, 40),
			truncate(ix.Paper(p.J).Title, 40),
		})
	}
	fmt.Println(renderTable(
		[]string{"I", "J", "Title sim", "Title I", "Title J"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignLeft},
	))
	return nil
}

func init() {
	addEngineFlags(indexCmd)
	indexCmd.Flags().Float64("threshold", 0.8, "minimum title similarity for listed pairs")
	indexCmd.Flags().Int("top", 20, "number of pairs to list (0 = all)")
	indexCmd.Flags().Bool("json", false, "output stats and pairs as JSON")

	rootCmd.AddCommand(indexCmd)
}
