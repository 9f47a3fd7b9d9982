// Copyright 2026 The CommuneCheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package verify geocodes a table of addresses and checks the commune
// returned by the geocoding service against the expected one.
package verify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/jcodagnone/communecheck/geocoding"
	"github.com/jcodagnone/communecheck/table"
	"golang.org/x/time/rate"
)

// ProgressFunc is called after each row with the number of completed rows.
type ProgressFunc func(done, total int)

// Runner verifies tables row by row.
type Runner struct {
	geocoder geocoding.Geocoder
	timeout  time.Duration
	limiter  *rate.Limiter
	progress ProgressFunc
}

// NewRunner creates a runner. A non positive timeout selects
// geocoding.DefaultTimeout; progress may be nil.
func NewRunner(geocoder geocoding.Geocoder, timeout time.Duration, progress ProgressFunc) *Runner {
	if timeout <= 0 {
		timeout = geocoding.DefaultTimeout
	}

	return &Runner{
		geocoder: geocoder,
		timeout:  timeout,
		progress: progress,
	}
}

// WithRateLimit paces geocoding calls to at most rps per second; a non
// positive rps disables pacing. The wait for a turn happens before the per-call
// timeout starts, so only the request itself is bounded by it.
func (r *Runner) WithRateLimit(rps float64) *Runner {
	r.limiter = nil
	if rps > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	return r
}

// Run verifies every row of tbl, in order, and returns one OutputRow per
// input row. A row that fails never stops the batch: the failure is recorded
// in its own fields. The only error returned is an unknown field name.
func (r *Runner) Run(ctx context.Context, tbl *table.Table, addressField, localityField string) ([]OutputRow, error) {
	addressIdx, err := tbl.Index(addressField)
	if err != nil {
		return nil, fmt.Errorf("address field: %w", err)
	}

	localityIdx, err := tbl.Index(localityField)
	if err != nil {
		return nil, fmt.Errorf("commune field: %w", err)
	}

	total := tbl.Len()
	rows := make([]OutputRow, total)

	for i, values := range tbl.Rows {
		rows[i] = r.Verify(ctx, i, slices.Clone(values), field(values, addressIdx), field(values, localityIdx))

		if r.progress != nil {
			r.progress(i+1, total)
		}
	}

	return rows, nil
}

// Verify geocodes a single address and classifies the commune found.
func (r *Runner) Verify(ctx context.Context, index int, values []string, address, expected string) (row OutputRow) {
	row = OutputRow{
		Index:   index,
		Values:  values,
		Outcome: Outcome{Status: StatusNotVerified},
	}

	defer func() {
		if p := recover(); p != nil {
			log.Printf("⚠️  Row %d: recovered from panic: %v", index, p)

			row = row.failed(FailureUnknown, Outcome{Status: StatusUnknownError, Detail: fmt.Sprint(p)})
		}
	}()

	if strings.TrimSpace(address) == "" {
		return row.failed(FailureNotFound, Outcome{Status: StatusAddressNotFound})
	}

	result, err := r.geocode(ctx, address)
	if err != nil {
		return row.failed(failureOutcome(err))
	}

	if result == nil {
		return row.failed(FailureNotFound, Outcome{Status: StatusAddressNotFound})
	}

	row.Position = Located(result.Point)

	name, found := ExtractLocality(result.Components)
	if !found {
		row.Locality = Locality{Failure: FailureNotFound}
	} else {
		row.Locality = Locality{Name: name}
	}

	row.Outcome = Classify(expected, name, found)

	return row
}

func (r *Runner) geocode(ctx context.Context, address string) (*geocoding.GeocodingResult, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, pacingError(ctx, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.geocoder.Geocode(ctx, address)
}

// pacingError reports a call that was never sent because ctx ended, or would
// end, before its turn.
func pacingError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return &geocoding.GeocodingError{
			Type:    geocoding.ErrorTypeUnknown,
			Message: "geocoding request cancelled",
			Err:     ctx.Err(),
		}
	}

	return &geocoding.GeocodingError{
		Type:    geocoding.ErrorTypeTimeout,
		Message: "deadline reached before the request could be sent",
		Err:     err,
	}
}

// failureOutcome maps a geocoding error onto the failure sentinel and outcome
// of a row.
func failureOutcome(err error) (Failure, Outcome) {
	var geoErr *geocoding.GeocodingError
	if !errors.As(err, &geoErr) {
		return FailureUnknown, Outcome{Status: StatusUnknownError, Detail: err.Error()}
	}

	switch geoErr.Type {
	case geocoding.ErrorTypeTimeout:
		return FailureTimeout, Outcome{Status: StatusTimeoutError}
	case geocoding.ErrorTypeService:
		return FailureService, Outcome{Status: StatusServiceError, Detail: geoErr.Error()}
	default:
		return FailureUnknown, Outcome{Status: StatusUnknownError, Detail: geoErr.Error()}
	}
}

func field(values []string, idx int) string {
	if idx < len(values) {
		return values[idx]
	}

	return ""
}
