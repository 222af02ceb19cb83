// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-dedup/internal/dedup"
	"github.com/pdiddy/paper-dedup/internal/ingest"
	"github.com/pdiddy/paper-dedup/internal/metrics"
	"github.com/pdiddy/paper-dedup/internal/store"
	"github.com/pdiddy/paper-dedup/pkg/types"
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe FILE...",
	Short: "Deduplicate the records in one or more files",
	Long: `Dedupe reads every record in the given files, links records that describe
the same publication, and writes the merged set.

With --format table (the default) a run summary and the duplicate groups are
printed. json, yaml and csl write the deduplicated records; add --report to
write the full run result instead. --save stores the run in the SQLite
database for later inspection with the runs command.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDedupe,
}

func runDedupe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	inputFormat, _ := cmd.Flags().GetString("input-format")
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	report, _ := cmd.Flags().GetBool("report")
	save, _ := cmd.Flags().GetBool("save")
	metricsFile, _ := cmd.Flags().GetString("metrics-file")
	withQuality, _ := cmd.Flags().GetBool("quality")

	papers, err := ingest.LoadFiles(ingest.DefaultRegistry(), inputFormat, args...)
	if err != nil {
		return err
	}

	rec := metrics.New()
	engine, logger, err := newEngine(cfg, dedup.WithMetrics(rec))
	if err != nil {
		return err
	}
	defer logger.Sync()

	res := engine.Deduplicate(papers)

	if save {
		s, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer s.Close()
		id, err := s.SaveRun(context.Background(), res)
		if err != nil {
			return err
		}
		logger.Info("run saved", zap.String("run_id", id), zap.String("store", cfg.Store.Path))
		fmt.Fprintf(os.Stderr, "Saved run %s\n", id)
	}

	if metricsFile != "" {
		if err := rec.WriteTextfile(metricsFile); err != nil {
			return err
		}
	}

	w, err := openOutput(output)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := writeResult(w, format, report, res); err != nil {
		return err
	}

	if withQuality {
		q := engine.ValidateDeduplicationQuality(papers, res.Papers)
		fmt.Fprintln(os.Stderr, qualityTable(q))
	}
	return nil
}

func writeResult(w io.Writer, format string, report bool, res types.DeduplicationResult) error {
	switch format {
	case "table", "":
		fmt.Fprintln(w, summaryTable(res))
		if len(res.Groups) > 0 {
			fmt.Fprintln(w, groupsTable(res.Groups))
		}
		return nil
	case "json":
		if report {
			return ingest.WriteJSONValue(w, res)
		}
		return ingest.WriteJSON(w, res.Papers)
	case "yaml":
		if report {
			return ingest.WriteYAMLValue(w, res)
		}
		return ingest.WriteYAML(w, res.Papers)
	case "csl":
		return ingest.WriteCSL(w, res.Papers)
	default:
		return fmt.Errorf("unsupported format %q: use table, json, yaml or csl", format)
	}
}

func summaryTable(res types.DeduplicationResult) string {
	rows := [][]string{
		{"Original records", strconv.Itoa(res.OriginalCount)},
		{"Deduplicated records", strconv.Itoa(res.DeduplicatedCount)},
		{"Duplicates removed", strconv.Itoa(res.DuplicatesRemoved)},
	}
	for _, stage := range types.PipelineStages {
		rows = append(rows, []string{
			fmt.Sprintf("  %s", stage),
			fmt.Sprintf("%d (%s)", res.StageCounts[stage], res.StageDurations[stage].Round(time.Microsecond)),
		})
	}
	rows = append(rows,
		[]string{"Confidence high/medium/low", fmt.Sprintf("%d/%d/%d", res.Confidence.High, res.Confidence.Medium, res.Confidence.Low)},
		[]string{"Est. false positive rate", f3(res.EstimatedFalsePositiveRate)},
		[]string{"Est. false negative rate", f3(res.EstimatedFalseNegativeRate)},
		[]string{"Indexed tokens", fmt.Sprintf("%d unique / %d total", res.IndexStats.UniqueTokens, res.IndexStats.TotalTokens)},
		[]string{"Processing time", res.ProcessingTime.String()},
	)
	return keyValueTable(rows)
}

func groupsTable(groups []types.DuplicateGroup) string {
	rows := make([][]string, 0, len(groups))
	for i, g := range groups {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			string(g.Stage),
			strconv.Itoa(len(g.Members)),
			f3(g.MergeConfidence),
			truncate(g.Selected.Title, 60),
		})
	}
	return renderTable(
		[]string{"#", "Stage", "Members", "Confidence", "Selected title"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft},
	)
}

func init() {
	addEngineFlags(dedupeCmd)
	dedupeCmd.Flags().String("input-format", "", "input format: json, yaml or csl (default: from file extension)")
	dedupeCmd.Flags().String("format", "table", "output format: table, json, yaml or csl")
	dedupeCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	dedupeCmd.Flags().Bool("report", false, "write the full run result instead of the records (json, yaml)")
	dedupeCmd.Flags().Bool("save", false, "store the run in the run database")
	dedupeCmd.Flags().String("metrics-file", "", "write Prometheus metrics to this file")
	dedupeCmd.Flags().Bool("quality", false, "print a quality estimate to stderr")

	rootCmd.AddCommand(dedupeCmd)
}
