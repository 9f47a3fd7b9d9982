// Copyright 2026 The CommuneCheck Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/jcodagnone/communecheck/server"
	"github.com/jcodagnone/communecheck/verify"
	"github.com/spf13/cobra"
)

var serveOpts = struct {
	geocoderOptions

	Addr string
}{}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the verification HTTP API (local only by default)",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		repo, closeRepo, err := openResultRepository(serveOpts.DbPath)
		if err != nil {
			return err
		}
		defer closeRepo()

		geocoder, provider, err := newGeocoder(c.Context(), &serveOpts.geocoderOptions)
		if err != nil {
			return fmt.Errorf("setting up geocoder: %w", err)
		}

		runner := verify.NewRunner(geocoder, serveOpts.Timeout, nil).WithRateLimit(serveOpts.RequestsPerSecond)
		srv := server.NewServer(runner, repo, provider)

		fmt.Printf("🗺️  Verification API starting with %s...\n", provider)
		fmt.Printf("📍 POST http://%s/api/verify or /api/batch\n", serveOpts.Addr)

		return srv.Run(serveOpts.Addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addGeocoderFlags(serveCmd, &serveOpts.geocoderOptions)
	serveCmd.Flags().StringVar(&serveOpts.Addr, "addr", "localhost:8080", "Listen address")
}
