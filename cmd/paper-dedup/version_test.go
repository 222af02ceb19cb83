// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionRows(t *testing.T) {
	t.Run("without build info", func(t *testing.T) {
		rows := versionRows("1.2.3", nil)
		assert.Equal(t, [][]string{
			{"Version", "1.2.3"},
			{"Stages", "exact_id > title_venue > fuzzy_title > venue_variant"},
		}, rows)
	})

	t.Run("with build info", func(t *testing.T) {
		info := &debug.BuildInfo{
			GoVersion: "go1.25.6",
			Deps: []*debug.Module{
				{Path: "github.com/spf13/cobra", Version: "v1.10.2"},
				{Path: "github.com/mattn/go-sqlite3", Version: "v1.14.34"},
			},
		}
		rows := versionRows("dev", info)
		assert.Contains(t, rows, []string{"Go", "go1.25.6"})
		assert.Contains(t, rows, []string{"github.com/mattn/go-sqlite3", "v1.14.34"})
		assert.NotContains(t, rows, []string{"github.com/spf13/cobra", "v1.10.2"})
	})
}
