// Copyright 2026 The CommuneCheck Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"fmt"
	"strconv"

	"github.com/uber/h3-go/v4"
)

// IndexResolution is the H3 resolution used to index geocoded points.
// Resolution 8 cells are roughly 0.7 km², close to a city block group.
const IndexResolution = 8

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// FormatCoordinate renders a coordinate without losing precision and without
// trailing zeros, the way it should appear in an exported table.
func FormatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Cell returns the H3 cell containing the point at the given resolution.
func (p Point) Cell(res int) (int64, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), res)
	if err != nil {
		return 0, fmt.Errorf("error converting to h3 cell at res %d: %w", res, err)
	}

	return int64(cell), nil
}
