// Copyright 2026 The CommuneCheck Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jcodagnone/communecheck/spatial"
)

// DefaultNominatimURL is the public OpenStreetMap Nominatim instance.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// NominatimGeocoder uses the OpenStreetMap Nominatim search API.
type NominatimGeocoder struct {
	baseURL    string
	language   string
	httpClient *http.Client
}

// NewNominatimGeocoder creates a new Nominatim geocoder. The client is
// expected to identify the application through its User-Agent, as required
// by the Nominatim usage policy (see NewHTTPClient).
func NewNominatimGeocoder(baseURL, language string, client *http.Client) (*NominatimGeocoder, error) {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}

	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parsing nominatim url: %w", err)
	}

	if client == nil {
		return nil, errors.New("empty HTTP client")
	}

	return &NominatimGeocoder{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		language:   language,
		httpClient: client,
	}, nil
}

type nominatimPlace struct {
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, address string) (*GeocodingResult, error) {
	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("limit", "1")

	if g.language != "" {
		params.Set("accept-language", g.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeUnknown, Message: "building request", Err: err}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		if ctx.Err() != nil {
			return nil, classifyTransportError(ctx.Err())
		}

		return nil, malformedResponse(err)
	}

	if len(places) == 0 {
		return nil, nil
	}

	place := places[0]

	lat, err := strconv.ParseFloat(place.Lat, 64)
	if err != nil {
		return nil, malformedResponse(fmt.Errorf("latitude %q: %w", place.Lat, err))
	}

	lng, err := strconv.ParseFloat(place.Lon, 64)
	if err != nil {
		return nil, malformedResponse(fmt.Errorf("longitude %q: %w", place.Lon, err))
	}

	components := place.Address
	if components == nil {
		components = map[string]string{}
	}

	return &GeocodingResult{
		Point:       spatial.Point{Lat: lat, Lng: lng},
		DisplayName: place.DisplayName,
		Provider:    "nominatim",
		Components:  components,
	}, nil
}
