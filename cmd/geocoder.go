// Copyright 2026 The CommuneCheck Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/jcodagnone/communecheck/geocoding"
	"github.com/jcodagnone/communecheck/store"
	"github.com/spf13/cobra"
)

// geocoderOptions configures the geocoding provider.
type geocoderOptions struct {
	// Provider is either nominatim or google
	Provider string

	// Endpoint overrides the provider URL
	Endpoint string

	// UserAgent identifies the application to the provider
	UserAgent string

	// Language of the returned names
	Language string

	// Region biases Google Maps results (ccTLD, e.g. fr)
	Region string

	// GoogleKeyName is the display name of the API key looked up through ADC
	GoogleKeyName string

	// RequestsPerSecond paces the requests; 0 disables pacing
	RequestsPerSecond float64

	// Timeout of each geocoding request
	Timeout time.Duration

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool

	// DbPath of the DuckDB run history; empty disables it
	DbPath string
}

func addGeocoderFlags(c *cobra.Command, opts *geocoderOptions) {
	flags := c.Flags()
	flags.StringVar(&opts.Provider, "provider", "nominatim", "Geocoding provider: nominatim or google")
	flags.StringVar(&opts.Endpoint, "endpoint", "", "Overrides the provider URL")
	flags.StringVar(&opts.UserAgent, "user-agent", "", "Client identifier sent to the provider")
	flags.StringVar(&opts.Language, "language", "fr", "Language of the names returned by the provider")
	flags.StringVar(&opts.Region, "region", "fr", "Region bias for Google Maps")
	flags.StringVar(&opts.GoogleKeyName, "google-key-name", "CommuneCheck Geocoding Key",
		"Display name of the Google Maps API key looked up via ADC when "+geocoding.GoogleMapsAPIKeyEnv+" is not set")
	flags.Float64Var(&opts.RequestsPerSecond, "rate", 1, "Maximum requests per second, 0 disables pacing")
	flags.DurationVar(&opts.Timeout, "timeout", geocoding.DefaultTimeout, "Timeout of each geocoding request")
	flags.BoolVar(&opts.EnableHTTPTrace, "trace-http", false, "Display HTTP requests-responses")
	flags.BoolVar(&opts.EnableHTTPBodyTrace, "trace-http-body", false, "Display HTTP requests-responses bodies")
	flags.StringVar(&opts.DbPath, "db", "", "DuckDB file where runs are recorded, disabled when empty")
}

// newGeocoder builds the configured provider and returns its name.
func newGeocoder(ctx context.Context, opts *geocoderOptions) (geocoding.Geocoder, string, error) {
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = fmt.Sprintf("communecheck/%s (+https://github.com/jcodagnone/communecheck)", Version)
	}

	var trace io.Writer
	if opts.EnableHTTPTrace || opts.EnableHTTPBodyTrace {
		trace = os.Stderr
	}

	client := geocoding.NewHTTPClient(geocoding.ClientOptions{
		UserAgent:   userAgent,
		TraceWriter: trace,
		TraceBody:   opts.EnableHTTPBodyTrace,
	})

	switch opts.Provider {
	case "nominatim":
		g, err := geocoding.NewNominatimGeocoder(opts.Endpoint, opts.Language, client)

		return g, "nominatim", err
	case "google":
		apiKey, err := geocoding.GoogleMapsAPIKey(ctx, opts.GoogleKeyName)
		if err != nil {
			return nil, "", err
		}

		g, err := geocoding.NewGoogleMapsGeocoder(apiKey, opts.Endpoint, opts.Language, opts.Region, client)

		return g, "google_maps", err
	default:
		return nil, "", fmt.Errorf("unknown provider %q", opts.Provider)
	}
}

// openResultRepository opens the run history, or returns nil when disabled.
func openResultRepository(dbPath string) (store.ResultRepository, func() error, error) {
	if dbPath == "" {
		return nil, func() error { return nil }, nil
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	repo := store.NewResultRepository(db)
	if err := repo.CreateSchema(); err != nil {
		db.Close()

		return nil, nil, fmt.Errorf("creating schema: %w", err)
	}

	return repo, db.Close, nil
}
