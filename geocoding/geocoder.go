// Copyright 2026 The CommuneCheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocoding resolves free-text addresses into coordinates and address
// components through external geocoding services.
package geocoding

import (
	"context"
	"time"

	"github.com/jcodagnone/communecheck/spatial"
)

// DefaultTimeout bounds a single geocoding request.
const DefaultTimeout = 10 * time.Second

// GeocodingResult represents a geocoding match from any provider.
type GeocodingResult struct {
	Point       spatial.Point
	DisplayName string
	Provider    string
	// Components maps an address component kind (city, town, village,
	// county, municipality, ...) to its name, as returned by the provider.
	Components map[string]string
}

// Geocoder interface for different geocoding providers.
//
// Geocode returns (nil, nil) when the provider understood the request but
// found no match. Any failure is reported as a *GeocodingError whose type is
// ErrorTypeTimeout, ErrorTypeService or ErrorTypeUnknown. Implementations
// perform exactly one request per call and honor the deadline of ctx.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*GeocodingResult, error)
}
