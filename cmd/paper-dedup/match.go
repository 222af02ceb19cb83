// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-dedup/internal/ingest"
	"github.com/pdiddy/paper-dedup/pkg/types"
)

// --- match subcommand ---

var matchCmd = &cobra.Command{
	Use:   "match RECORD_FILE CANDIDATES_FILE",
	Short: "Find likely duplicates of one record among candidates",
	Long: `Match scores one record (the first in RECORD_FILE, or --record N) against
every record in CANDIDATES_FILE and lists the candidates whose overall score
reaches --match-min-confidence, best first. Each match names the strongest
reason it matched: exact_id, title_venue, author_overlap or fuzzy_title.`,
	Args: cobra.ExactArgs(2),
	RunE: runMatch,
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	recordIdx, _ := cmd.Flags().GetInt("record")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	reg := ingest.DefaultRegistry()
	records, err := ingest.LoadFiles(reg, "", args[0])
	if err != nil {
		return err
	}
	if recordIdx < 0 || recordIdx >= len(records) {
		return fmt.Errorf("record %d out of range: %s has %d record(s)", recordIdx, args[0], len(records))
	}
	candidates, err := ingest.LoadFiles(reg, "", args[1])
	if err != nil {
		return err
	}

	engine, logger, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	matches := engine.FindPotentialDuplicates(records[recordIdx], candidates)
	if jsonOutput {
		return ingest.WriteJSONValue(os.Stdout, matches)
	}
	if len(matches) == 0 {
		fmt.Println("No potential duplicates found.")
		return nil
	}

	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, []string{
			strconv.Itoa(m.CandidateIndex),
			string(m.Stage),
			f3(m.Confidence),
			f3(m.Score.TitleSimilarity),
			f3(m.Score.AuthorSimilarity),
			f3(m.Score.VenueSimilarity),
			truncate(m.Candidate.Title, 50),
		})
	}
	fmt.Println(renderTable(
		[]string{"Candidate", "Stage", "Confidence", "Title", "Authors", "Venue", "Candidate title"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
	))
	fmt.Printf("\n%d of %d candidates matched\n", len(matches), len(candidates))
	return nil
}

// --- compare subcommand ---

var compareCmd = &cobra.Command{
	Use:   "compare FILE",
	Short: "Show the similarity breakdown of two records",
	Long: `Compare scores two records from FILE (the first two, or --a and --b) and
prints every similarity component, the normalized titles, and the overall
score.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompare,
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ia, _ := cmd.Flags().GetInt("a")
	ib, _ := cmd.Flags().GetInt("b")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	records, err := ingest.LoadFiles(ingest.DefaultRegistry(), "", args[0])
	if err != nil {
		return err
	}
	for _, i := range []int{ia, ib} {
		if i < 0 || i >= len(records) {
			return fmt.Errorf("record %d out of range: %s has %d record(s)", i, args[0], len(records))
		}
	}

	engine, logger, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	a, b := records[ia], records[ib]
	s := engine.CalculateSimilarity(a, b)
	if jsonOutput {
		return ingest.WriteJSONValue(os.Stdout, s)
	}

	fmt.Println(keyValueTable([][]string{
		{"A title", truncate(a.Title, 60)},
		{"B title", truncate(b.Title, 60)},
		{"A authors", truncate(authorNames(a.Authors), 60)},
		{"B authors", truncate(authorNames(b.Authors), 60)},
		{"Title similarity", f3(s.TitleSimilarity)},
		{"Author similarity", f3(s.AuthorSimilarity)},
		{"Venue similarity", f3(s.VenueSimilarity)},
		{"Year match", strconv.FormatBool(s.YearMatch)},
		{"Identifier overlap", strconv.FormatBool(s.IDOverlap)},
		{"Overall", f3(s.OverallScore)},
	}))
	return nil
}

func authorNames(authors []types.Author) string {
	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = a.Name
	}
	return strings.Join(names, "; ")
}

func init() {
	addEngineFlags(matchCmd)
	matchCmd.Flags().Int("record", 0, "index of the record to match within RECORD_FILE")
	matchCmd.Flags().Bool("json", false, "output matches as JSON")

	addEngineFlags(compareCmd)
	compareCmd.Flags().Int("a", 0, "index of the first record")
	compareCmd.Flags().Int("b", 1, "index of the second record")
	compareCmd.Flags().Bool("json", false, "output the score as JSON")

	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(compareCmd)
}
