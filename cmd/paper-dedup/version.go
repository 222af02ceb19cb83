// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-dedup/pkg/types"
)

// reportedDeps are the modules whose versions decide matching and storage
// behaviour, so they are worth quoting in bug reports.
var reportedDeps = []string{
	"github.com/agnivade/levenshtein",
	"github.com/mattn/go-sqlite3",
	"golang.org/x/text",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the paper-dedup version and build details",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		short, _ := cmd.Flags().GetBool("short")
		if short {
			fmt.Println(version)
			return nil
		}
		info, _ := debug.ReadBuildInfo()
		fmt.Fprintln(os.Stdout, keyValueTable(versionRows(version, info)))
		return nil
	},
}

// versionRows lists the version, the Go toolchain, the pipeline stage
// order, and the versions of reportedDeps found in info. info may be nil.
func versionRows(v string, info *debug.BuildInfo) [][]string {
	stages := make([]string, len(types.PipelineStages))
	for i, s := range types.PipelineStages {
		stages[i] = string(s)
	}
	rows := [][]string{
		{"Version", v},
		{"Stages", strings.Join(stages, " > ")},
	}
	if info == nil {
		return rows
	}
	rows = append(rows, []string{"Go", info.GoVersion})
	for _, dep := range info.Deps {
		for _, want := range reportedDeps {
			if dep.Path == want {
				rows = append(rows, []string{dep.Path, dep.Version})
			}
		}
	}
	return rows
}

func init() {
	versionCmd.Flags().Bool("short", false, "print only the version")
	rootCmd.AddCommand(versionCmd)
}
