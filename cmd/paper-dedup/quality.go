// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-dedup/internal/ingest"
	"github.com/pdiddy/paper-dedup/pkg/types"
)

var qualityCmd = &cobra.Command{
	Use:   "quality ORIGINAL DEDUPED",
	Short: "Estimate the quality of a deduplicated record set",
	Long: `Quality compares an original record file with its deduplicated version and
estimates precision, recall and F1 without ground truth: conflicting merges
and lost identifiers count against precision, near-duplicate pairs left in
the deduplicated set count against recall. The estimate is diagnostic only.`,
	Args: cobra.ExactArgs(2),
	RunE: runQuality,
}

func runQuality(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")

	reg := ingest.DefaultRegistry()
	original, err := ingest.LoadFiles(reg, "", args[0])
	if err != nil {
		return err
	}
	deduped, err := ingest.LoadFiles(reg, "", args[1])
	if err != nil {
		return err
	}

	engine, logger, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	q := engine.ValidateDeduplicationQuality(original, deduped)
	if jsonOutput {
		return ingest.WriteJSONValue(os.Stdout, q)
	}
	fmt.Println(qualityTable(q))
	return nil
}

func qualityTable(q types.QualityReport) string {
	return keyValueTable([][]string{
		{"Original records", strconv.Itoa(q.OriginalCount)},
		{"Deduplicated records", strconv.Itoa(q.DeduplicatedCount)},
		{"Duplicates removed", strconv.Itoa(q.DuplicatesRemoved)},
		{"Reduction ratio", f3(q.ReductionRatio)},
		{"Residual duplicate pairs", strconv.Itoa(q.ResidualDuplicatePairs)},
		{"Conflicting merges", strconv.Itoa(q.ConflictingMerges)},
		{"Lost identifiers", strconv.Itoa(q.LostIdentifiers)},
		{"Est. precision", f3(q.EstimatedPrecision)},
		{"Est. recall", f3(q.EstimatedRecall)},
		{"Est. F1", f3(q.EstimatedF1)},
		{"Records per second", fmt.Sprintf("%.0f", q.RecordsPerSecond)},
	})
}

func init() {
	addEngineFlags(qualityCmd)
	qualityCmd.Flags().Bool("json", false, "output the report as JSON")

	rootCmd.AddCommand(qualityCmd)
}
