// Copyright 2026 The CommuneCheck Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jcodagnone/communecheck/spatial"
	"github.com/jcodagnone/communecheck/store"
	"github.com/jcodagnone/communecheck/verify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunsCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.duckdb")

	repo, closeRepo, err := openResultRepository(dbPath)
	require.NoError(t, err)

	paris := spatial.Point{Lat: 48.8556475, Lng: 2.3588091}
	rows := []verify.OutputRow{
		{
			Index:    0,
			Values:   []string{"1", "10 Rue de Rivoli", "Paris"},
			Position: verify.Located(paris),
			Locality: verify.Locality{Name: "Paris"},
			Outcome:  verify.Outcome{Status: verify.StatusOK},
		},
		{
			Index:    1,
			Values:   []string{"2", "10 Rue de Rivoli", "Lyon"},
			Position: verify.Located(paris),
			Locality: verify.Locality{Name: "Paris"},
			Outcome:  verify.Outcome{Status: verify.StatusMismatch, Found: "Paris"},
		},
		{
			Index:    2,
			Values:   []string{"3", "nowhere", "Nantes"},
			Position: verify.Position{Failure: verify.FailureNotFound},
			Locality: verify.Locality{Failure: verify.FailureNotFound},
			Outcome:  verify.Outcome{Status: verify.StatusAddressNotFound},
		},
	}

	started := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	require.NoError(t, repo.SaveRun(&store.Run{
		Source:        "adresses.csv",
		AddressColumn: "adresse",
		CommuneColumn: "commune",
		Provider:      "nominatim",
		StartedAt:     started,
		FinishedAt:    started.Add(time.Minute),
	}, []string{"id", "adresse", "commune"}, rows))

	require.NoError(t, closeRepo())

	runsDbPath = dbPath

	out := captureStdout(t, func() error {
		return runsCmd.RunE(runsCmd, nil)
	})

	assert.Contains(t, out, "#1 ")
	assert.Contains(t, out, "adresses.csv")
	assert.Contains(t, out, "nominatim")
	assert.Contains(t, out, "3 rows")
	assert.Contains(t, out, "ok=1 ")
	assert.Contains(t, out, "mismatch=1")
	assert.Contains(t, out, "address_not_found=1")
}

func TestRunsCommandMissingDatabase(t *testing.T) {
	runsDbPath = filepath.Join(t.TempDir(), "missing.duckdb")

	err := runsCmd.RunE(runsCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database not found")
}
