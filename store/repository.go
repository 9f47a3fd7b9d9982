// Copyright 2026 The CommuneCheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package store keeps the history of verification runs in DuckDB.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jcodagnone/communecheck/spatial"
	"github.com/jcodagnone/communecheck/verify"
)

// Run describes one verification of a table.
type Run struct {
	ID            int64     `json:"id"`
	Source        string    `json:"source"`
	AddressColumn string    `json:"address_column"`
	CommuneColumn string    `json:"commune_column"`
	Provider      string    `json:"provider"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

// RunSummary is a run with its row count per verification status.
type RunSummary struct {
	Run
	Total  int            `json:"total"`
	Counts map[string]int `json:"counts"`
}

// ResultRepository handles persistence of verification runs.
type ResultRepository interface {
	// CreateSchema creates the runs and verifications tables
	CreateSchema() error

	// SaveRun stores the run and its rows, assigning run.ID
	SaveRun(run *Run, header []string, rows []verify.OutputRow) error

	// ListRuns returns every run, most recent first
	ListRuns() ([]*RunSummary, error)

	// DB returns the underlying database connection
	DB() *sql.DB
}

type sqlResultRepository struct {
	db *sql.DB
}

// NewResultRepository creates a new result repository.
func NewResultRepository(db *sql.DB) ResultRepository {
	return &sqlResultRepository{db: db}
}

func (r *sqlResultRepository) DB() *sql.DB {
	return r.db
}

func (r *sqlResultRepository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE SEQUENCE IF NOT EXISTS runs_seq START 1;

		CREATE TABLE IF NOT EXISTS runs (
			id BIGINT PRIMARY KEY DEFAULT nextval('runs_seq'),
			source VARCHAR NOT NULL,
			address_column VARCHAR NOT NULL,
			commune_column VARCHAR NOT NULL,
			provider VARCHAR NOT NULL,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS verifications (
			run_id BIGINT NOT NULL,
			row_index INTEGER NOT NULL,
			address VARCHAR NOT NULL,
			expected_commune VARCHAR NOT NULL,
			lat DOUBLE,
			lng DOUBLE,
			h3_res8 UBIGINT,
			geocoded_commune VARCHAR,
			status VARCHAR NOT NULL,
			outcome VARCHAR NOT NULL,
			PRIMARY KEY (run_id, row_index)
		);
	`)

	return err
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}

	return -1
}

func valueAt(values []string, idx int) string {
	if idx < 0 || idx >= len(values) {
		return ""
	}

	return values[idx]
}

func (r *sqlResultRepository) SaveRun(run *Run, header []string, rows []verify.OutputRow) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	err = tx.QueryRow(`
		INSERT INTO runs (source, address_column, commune_column, provider, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`,
		run.Source,
		run.AddressColumn,
		run.CommuneColumn,
		run.Provider,
		run.StartedAt,
		run.FinishedAt,
	).Scan(&run.ID)
	if err != nil {
		return rollback(tx, fmt.Errorf("inserting run: %w", err))
	}

	stmt, err := tx.Prepare(`
		INSERT INTO verifications (
			run_id,
			row_index,
			address,
			expected_commune,
			lat,
			lng,
			h3_res8,
			geocoded_commune,
			status,
			outcome
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return rollback(tx, err)
	}
	defer stmt.Close()

	addressIdx := indexOf(header, run.AddressColumn)
	communeIdx := indexOf(header, run.CommuneColumn)

	for _, row := range rows {
		var lat, lng, cell, commune any

		if p := row.Position.Point; p != nil {
			lat, lng = p.Lat, p.Lng

			h3Cell, err := p.Cell(spatial.IndexResolution)
			if err != nil {
				return rollback(tx, err)
			}

			cell = h3Cell
		}

		if row.Locality.Failure == verify.NoFailure && row.Position.Point != nil {
			commune = row.Locality.Name
		}

		if _, err := stmt.Exec(
			run.ID,
			row.Index,
			valueAt(row.Values, addressIdx),
			valueAt(row.Values, communeIdx),
			lat,
			lng,
			cell,
			commune,
			row.Outcome.Status.String(),
			row.Outcome.String(),
		); err != nil {
			return rollback(tx, fmt.Errorf("inserting row %d: %w", row.Index, err))
		}
	}

	return tx.Commit()
}

func rollback(tx *sql.Tx, err error) error {
	if rErr := tx.Rollback(); rErr != nil {
		return fmt.Errorf("%w (rollback: %w)", err, rErr)
	}

	return err
}

func (r *sqlResultRepository) ListRuns() ([]*RunSummary, error) {
	rows, err := r.db.Query(`
		SELECT
			r.id,
			r.source,
			r.address_column,
			r.commune_column,
			r.provider,
			r.started_at,
			r.finished_at,
			v.status,
			count(v.row_index)
		FROM runs r
		LEFT JOIN verifications v ON v.run_id = r.id
		GROUP BY ALL
		ORDER BY r.id DESC, v.status
	`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var summaries []*RunSummary

	for rows.Next() {
		var (
			run    Run
			status sql.NullString
			count  int
		)

		if err := rows.Scan(
			&run.ID,
			&run.Source,
			&run.AddressColumn,
			&run.CommuneColumn,
			&run.Provider,
			&run.StartedAt,
			&run.FinishedAt,
			&status,
			&count,
		); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}

		if len(summaries) == 0 || summaries[len(summaries)-1].ID != run.ID {
			summaries = append(summaries, &RunSummary{Run: run, Counts: make(map[string]int)})
		}

		current := summaries[len(summaries)-1]
		if status.Valid {
			current.Counts[status.String] = count
			current.Total += count
		}
	}

	return summaries, rows.Err()
}
