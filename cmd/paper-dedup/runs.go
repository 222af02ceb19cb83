// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-dedup/internal/ingest"
	"github.com/pdiddy/paper-dedup/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect deduplication runs saved with dedupe --save",
}

// --- list subcommand ---

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		runs, err := s.ListRuns(context.Background())
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No saved runs.")
			return nil
		}

		rows := make([][]string, 0, len(runs))
		for _, r := range runs {
			rows = append(rows, []string{
				r.ID,
				r.CreatedAt.Local().Format(time.DateTime),
				strconv.Itoa(r.OriginalCount),
				strconv.Itoa(r.DeduplicatedCount),
				strconv.Itoa(r.GroupCount),
				r.ProcessingTime.Round(time.Millisecond).String(),
			})
		}
		fmt.Println(renderTable(
			[]string{"Run", "Created", "Original", "Deduplicated", "Groups", "Time"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
		))
		return nil
	},
}

// --- show subcommand ---

var runsShowCmd = &cobra.Command{
	Use:   "show RUN_ID",
	Short: "Show the summary and duplicate groups of a saved run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		run, err := s.LoadRun(context.Background(), args[0])
		if err != nil {
			return err
		}
		res := run.Result()
		fmt.Println(summaryTable(res))
		if len(res.Groups) > 0 {
			fmt.Println(groupsTable(res.Groups))
		}
		return nil
	},
}

// --- export subcommand ---

var runsExportCmd = &cobra.Command{
	Use:   "export RUN_ID",
	Short: "Export a saved run to YAML, JSON or CSL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		w, err := openOutput(output)
		if err != nil {
			return err
		}
		defer w.Close()

		ctx := context.Background()
		switch format {
		case "yaml", "":
			return s.ExportYAML(ctx, args[0], w)
		case "json":
			return s.ExportJSON(ctx, args[0], w)
		case "csl":
			run, err := s.LoadRun(ctx, args[0])
			if err != nil {
				return err
			}
			return ingest.WriteCSL(w, run.Papers)
		default:
			return fmt.Errorf("unsupported format %q: use yaml, json or csl", format)
		}
	},
}

// --- delete subcommand ---

var runsDeleteCmd = &cobra.Command{
	Use:   "delete RUN_ID",
	Short: "Delete a saved run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.DeleteRun(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Deleted run %s\n", args[0])
		return nil
	},
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return store.Open(cfg.Store)
}

func init() {
	runsExportCmd.Flags().String("format", "yaml", "export format: yaml, json or csl")
	runsExportCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsDeleteCmd)

	rootCmd.AddCommand(runsCmd)
}
