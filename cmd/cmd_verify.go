// Copyright 2026 The CommuneCheck Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jcodagnone/communecheck/store"
	"github.com/jcodagnone/communecheck/table"
	"github.com/jcodagnone/communecheck/utils/textutils"
	"github.com/jcodagnone/communecheck/verify"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

type verifyOptions struct {
	geocoderOptions

	Output          string
	Separator       string
	OutputSeparator string
	Charset         string
	AddressColumn   string
	CommuneColumn   string
}

var verifyOpts = &verifyOptions{}

var verifyCmd = &cobra.Command{
	Use:   "verify <file.csv>",
	Short: "Géocode les adresses d'un fichier et vérifie la commune",
	Long: `Geocodes every address of the table, one at a time, and compares the commune
returned by the provider with the expected one. The output table holds the
original columns plus Latitude, Longitude, Commune_Geocoded and Verifie_Commune.`,
	Args: cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		return runVerify(c.Context(), args[0], verifyOpts)
	},
}

func loadTable(path, separator, charset string) (*table.Table, error) {
	sep, err := table.ParseSeparator(separator)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	tbl, err := table.Load(f, table.LoadOptions{Separator: sep, Charset: charset})
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	return tbl, nil
}

func newProgress(total int, description string) verify.ProgressFunc {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return func(done, total int) {
			if done%100 == 0 || done == total {
				log.Printf("Geocoded %s of %s rows", textutils.FormatInt(int64(done)), textutils.FormatInt(int64(total)))
			}
		}
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
	)

	return func(done, _ int) {
		if err := bar.Set(done); err != nil {
			log.Printf("Updating progress bar: %v", err)
		}
	}
}

func runVerify(ctx context.Context, input string, opts *verifyOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	tbl, err := loadTable(input, opts.Separator, opts.Charset)
	if err != nil {
		return err
	}

	outSep, err := table.ParseSeparator(opts.OutputSeparator)
	if err != nil {
		return fmt.Errorf("output separator: %w", err)
	}

	// Fail on a wrong column before any request is sent.
	for _, column := range []string{opts.AddressColumn, opts.CommuneColumn} {
		if _, err := tbl.Index(column); err != nil {
			return fmt.Errorf("%w (available: %s)", err, strings.Join(tbl.Header, ", "))
		}
	}

	repo, closeRepo, err := openResultRepository(opts.DbPath)
	if err != nil {
		return err
	}
	defer closeRepo()

	geocoder, provider, err := newGeocoder(ctx, &opts.geocoderOptions)
	if err != nil {
		return fmt.Errorf("setting up geocoder: %w", err)
	}

	log.Printf("🗺️  Geocoding %s rows of %s with %s", textutils.FormatInt(int64(tbl.Len())), input, provider)

	started := time.Now()
	runner := verify.NewRunner(geocoder, opts.Timeout, newProgress(tbl.Len(), "Geocoding")).
		WithRateLimit(opts.RequestsPerSecond)

	rows, err := runner.Run(ctx, tbl, opts.AddressColumn, opts.CommuneColumn)
	if err != nil {
		return err
	}

	finished := time.Now()

	out, err := os.Create(filepath.Clean(opts.Output))
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}

	if err := table.Write(out, verify.Records(tbl.Header, rows), outSep); err != nil {
		out.Close()

		return err
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}

	log.Printf("✅ Geocoding complete in %v - results written to %s", finished.Sub(started).Round(time.Second), opts.Output)

	if repo != nil {
		run := &store.Run{
			Source:        input,
			AddressColumn: opts.AddressColumn,
			CommuneColumn: opts.CommuneColumn,
			Provider:      provider,
			StartedAt:     started,
			FinishedAt:    finished,
		}
		if err := repo.SaveRun(run, tbl.Header, rows); err != nil {
			return fmt.Errorf("recording run: %w", err)
		}

		log.Printf("✅ Recorded run #%d in %s", run.ID, opts.DbPath)
	}

	printSummary(rows)

	return nil
}

func printSummary(rows []verify.OutputRow) {
	counts := verify.Tally(rows)

	a, b := strings.Repeat("─", 20), strings.Repeat("─", 10)
	fmt.Printf("╭─%-20s─┬─%10s─╮\n", a, b)
	fmt.Printf("│ %-20s │ %10s │\n", "Vérification", "Lignes")
	fmt.Printf("├─%-20s─┼─%10s─┤\n", a, b)

	for _, status := range verify.Statuses {
		if counts[status] == 0 {
			continue
		}

		fmt.Printf("│ %-20s │ %10s │\n", status, textutils.FormatInt(int64(counts[status])))
	}

	fmt.Printf("├─%-20s─┼─%10s─┤\n", a, b)
	fmt.Printf("│ %-20s │ %10s │\n", "total", textutils.FormatInt(int64(len(rows))))
	fmt.Printf("╰─%-20s─┴─%10s─╯\n", a, b)
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	addGeocoderFlags(verifyCmd, &verifyOpts.geocoderOptions)
	verifyCmd.Flags().StringVarP(
		&verifyOpts.Output,
		"output",
		"o",
		"adresses_geocoded_verified.csv",
		"Fichier CSV de résultats",
	)
	verifyCmd.Flags().StringVar(
		&verifyOpts.Separator,
		"separator",
		",",
		"Séparateur de colonnes du fichier d'entrée: , ; tab |",
	)
	verifyCmd.Flags().StringVar(
		&verifyOpts.OutputSeparator,
		"output-separator",
		",",
		"Séparateur de colonnes du fichier de résultats",
	)
	verifyCmd.Flags().StringVar(
		&verifyOpts.Charset,
		"encoding",
		"",
		"Encodage du fichier d'entrée (utf-8 par défaut, ex. windows-1252)",
	)
	verifyCmd.Flags().StringVar(
		&verifyOpts.AddressColumn,
		"address-column",
		"",
		"Colonne contenant les adresses à géocoder",
	)
	verifyCmd.Flags().StringVar(
		&verifyOpts.CommuneColumn,
		"commune-column",
		"",
		"Colonne contenant la commune attendue",
	)
	_ = verifyCmd.MarkFlagRequired("address-column")
	_ = verifyCmd.MarkFlagRequired("commune-column")
}
