// Copyright 2026 The CommuneCheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes commune verification over HTTP.
package server

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/communecheck/store"
	"github.com/jcodagnone/communecheck/table"
	"github.com/jcodagnone/communecheck/verify"
)

type Server struct {
	runner   *verify.Runner
	repo     store.ResultRepository
	provider string
}

// NewServer creates a server. repo may be nil, runs are then not recorded.
func NewServer(runner *verify.Runner, repo store.ResultRepository, provider string) *Server {
	return &Server{
		runner:   runner,
		repo:     repo,
		provider: provider,
	}
}

// Routes registers the API on r.
func (s *Server) Routes(r gin.IRoutes) {
	r.POST("/api/verify", s.verifyAddress)
	r.POST("/api/batch", s.verifyBatch)
	r.GET("/api/runs", s.listRuns)
}

func (s *Server) Run(addr string) error {
	r := gin.Default()
	s.Routes(r)

	return r.Run(addr)
}

type VerifyRequest struct {
	Address string `json:"address" binding:"required"`
	Commune string `json:"commune"`
}

type VerifyResponse struct {
	Latitude        string         `json:"latitude"`
	Longitude       string         `json:"longitude"`
	CommuneGeocoded string         `json:"commune_geocoded"`
	Outcome         verify.Outcome `json:"outcome"`
	Verification    string         `json:"verification"`
}

func (s *Server) verifyAddress(ctx *gin.Context) {
	var req VerifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	row := s.runner.Verify(ctx.Request.Context(), 0, []string{req.Address, req.Commune}, req.Address, req.Commune)
	lat, lng := row.Position.Cells()

	ctx.JSON(http.StatusOK, VerifyResponse{
		Latitude:        lat,
		Longitude:       lng,
		CommuneGeocoded: row.Locality.String(),
		Outcome:         row.Outcome,
		Verification:    row.Outcome.String(),
	})
}

func (s *Server) verifyBatch(ctx *gin.Context) {
	addressColumn := ctx.Query("address_column")
	communeColumn := ctx.Query("commune_column")

	if addressColumn == "" || communeColumn == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "address_column and commune_column query parameters are required"})

		return
	}

	separator := ','

	if sep := ctx.Query("separator"); sep != "" {
		var err error
		if separator, err = table.ParseSeparator(sep); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

			return
		}
	}

	tbl, err := table.Load(ctx.Request.Body, table.LoadOptions{
		Separator: separator,
		Charset:   ctx.Query("charset"),
	})
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	started := time.Now()

	rows, err := s.runner.Run(ctx.Request.Context(), tbl, addressColumn, communeColumn)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, table.ErrUnknownField) {
			status = http.StatusBadRequest
		}

		ctx.JSON(status, gin.H{"error": err.Error()})

		return
	}

	if s.repo != nil {
		run := &store.Run{
			Source:        "api",
			AddressColumn: addressColumn,
			CommuneColumn: communeColumn,
			Provider:      s.provider,
			StartedAt:     started,
			FinishedAt:    time.Now(),
		}
		if err := s.repo.SaveRun(run, tbl.Header, rows); err != nil {
			log.Printf("Failed to record batch run: %v", err)
		} else {
			ctx.Header("X-Run-Id", fmt.Sprint(run.ID))
		}
	}

	var buf bytes.Buffer
	if err := table.Write(&buf, verify.Records(tbl.Header, rows), separator); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="adresses_geocoded_verified.csv"`)
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (s *Server) listRuns(ctx *gin.Context) {
	if s.repo == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "run history is not enabled"})

		return
	}

	runs, err := s.repo.ListRuns()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, runs)
}
