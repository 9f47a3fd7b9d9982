// Copyright 2026 The CommuneCheck Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jcodagnone/communecheck/utils/textutils"
	"github.com/jcodagnone/communecheck/verify"
	"github.com/spf13/cobra"
)

var runsDbPath string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Liste les vérifications enregistrées",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if _, err := os.Stat(runsDbPath); errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("database not found at %s - run 'verify --db %s' first", runsDbPath, runsDbPath)
		}

		repo, closeRepo, err := openResultRepository(runsDbPath)
		if err != nil {
			return err
		}
		defer closeRepo()

		runs, err := repo.ListRuns()
		if err != nil {
			return fmt.Errorf("listing runs: %w", err)
		}

		for _, run := range runs {
			ok := run.Counts[verify.StatusOK.String()]

			var others []string

			for _, status := range verify.Statuses {
				if status == verify.StatusOK || run.Counts[status.String()] == 0 {
					continue
				}

				others = append(others, fmt.Sprintf("%s=%d", status, run.Counts[status.String()]))
			}

			fmt.Printf("#%-4d %s  %-30s %-12s %8s rows  ok=%s %s\n",
				run.ID,
				run.StartedAt.Format("2006-01-02 15:04"),
				textutils.Truncate(run.Source, 30),
				run.Provider,
				textutils.FormatInt(int64(run.Total)),
				textutils.FormatInt(int64(ok)),
				strings.Join(others, " "),
			)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().StringVar(&runsDbPath, "db", "db/communecheck.duckdb", "DuckDB file where runs are recorded")
}
