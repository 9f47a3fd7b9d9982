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
	"strings"

	"github.com/jcodagnone/communecheck/spatial"
)

// DefaultGoogleMapsURL is the Google Maps Geocoding API endpoint.
const DefaultGoogleMapsURL = "https://maps.googleapis.com/maps/api/geocode/json"

// googleComponentKinds maps Google address component types onto the
// component kinds shared by every provider.
var googleComponentKinds = map[string]string{
	"locality":                    "city",
	"postal_town":                 "town",
	"administrative_area_level_2": "county",
	"administrative_area_level_3": "municipality",
	"country":                     "country",
	"postal_code":                 "postcode",
	"route":                       "road",
	"street_number":               "house_number",
}

// GoogleMapsGeocoder uses Google Maps Geocoding API.
type GoogleMapsGeocoder struct {
	apiKey     string
	baseURL    string
	language   string
	region     string
	httpClient *http.Client
}

// NewGoogleMapsGeocoder creates a new Google Maps geocoder.
func NewGoogleMapsGeocoder(apiKey, baseURL, language, region string, client *http.Client) (*GoogleMapsGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("empty Google Maps API key")
	}

	if client == nil {
		return nil, errors.New("empty HTTP client")
	}

	if baseURL == "" {
		baseURL = DefaultGoogleMapsURL
	}

	return &GoogleMapsGeocoder{
		apiKey:     apiKey,
		baseURL:    baseURL,
		language:   language,
		region:     region,
		httpClient: client,
	}, nil
}

type googleMapsResponse struct {
	Results []struct {
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status       string `json:"status"` // OK, ZERO_RESULTS, etc.
	ErrorMessage string `json:"error_message"`
}

func (g *GoogleMapsGeocoder) Geocode(ctx context.Context, address string) (*GeocodingResult, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("key", g.apiKey)

	if g.language != "" {
		params.Set("language", g.language)
	}

	if g.region != "" {
		params.Set("region", g.region)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
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

	var gmResp googleMapsResponse
	if err := json.NewDecoder(resp.Body).Decode(&gmResp); err != nil {
		if ctx.Err() != nil {
			return nil, classifyTransportError(ctx.Err())
		}

		return nil, malformedResponse(err)
	}

	switch gmResp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, nil
	default:
		msg := "google maps status: " + gmResp.Status
		if gmResp.ErrorMessage != "" {
			msg = fmt.Sprintf("%s (%s)", msg, gmResp.ErrorMessage)
		}

		return nil, &GeocodingError{Type: ErrorTypeService, Message: msg}
	}

	if len(gmResp.Results) == 0 {
		return nil, nil
	}

	result := gmResp.Results[0]

	components := make(map[string]string)

	for _, c := range result.AddressComponents {
		for _, typ := range c.Types {
			if _, ok := components[typ]; !ok {
				components[typ] = c.LongName
			}

			if kind, ok := googleComponentKinds[typ]; ok {
				if _, exists := components[kind]; !exists {
					components[kind] = c.LongName
				}
			}
		}
	}

	return &GeocodingResult{
		Point: spatial.Point{
			Lat: result.Geometry.Location.Lat,
			Lng: result.Geometry.Location.Lng,
		},
		DisplayName: strings.TrimSpace(result.FormattedAddress),
		Provider:    "google_maps",
		Components:  components,
	}, nil
}
