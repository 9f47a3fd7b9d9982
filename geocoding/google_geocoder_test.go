// Copyright 2026 The CommuneCheck Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const googleParisResponse = `{
  "status": "OK",
  "results": [{
    "formatted_address": "10 Rue de Rivoli, 75004 Paris, France",
    "geometry": {"location": {"lat": 48.8556, "lng": 2.3588}},
    "address_components": [
      {"long_name": "10", "types": ["street_number"]},
      {"long_name": "Rue de Rivoli", "types": ["route"]},
      {"long_name": "Paris", "types": ["locality", "political"]},
      {"long_name": "Département de Paris", "types": ["administrative_area_level_2", "political"]},
      {"long_name": "France", "types": ["country", "political"]}
    ]
  }]
}`

func newGoogleTest(t *testing.T, handler http.HandlerFunc) *GoogleMapsGeocoder {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := NewGoogleMapsGeocoder("test-key", srv.URL, "fr", "fr", http.DefaultClient)
	require.NoError(t, err)

	return g
}

func TestGoogleMapsGeocodeMatch(t *testing.T) {
	g := newGoogleTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "10 Rue de Rivoli, Paris", r.URL.Query().Get("address"))
		assert.Equal(t, "fr", r.URL.Query().Get("region"))

		_, _ = w.Write([]byte(googleParisResponse))
	})

	res, err := g.Geocode(context.Background(), "10 Rue de Rivoli, Paris")
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.InDelta(t, 48.8556, res.Point.Lat, 1e-9)
	assert.InDelta(t, 2.3588, res.Point.Lng, 1e-9)
	assert.Equal(t, "google_maps", res.Provider)
	assert.Equal(t, "Paris", res.Components["city"])
	assert.Equal(t, "Paris", res.Components["locality"])
	assert.Equal(t, "Département de Paris", res.Components["county"])
	assert.Equal(t, "France", res.Components["country"])
	assert.Equal(t, "Rue de Rivoli", res.Components["road"])
}

func TestGoogleMapsGeocodeZeroResults(t *testing.T) {
	g := newGoogleTest(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	})

	res, err := g.Geocode(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestGoogleMapsGeocodeStatusErrors(t *testing.T) {
	g := newGoogleTest(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "OVER_QUERY_LIMIT", "error_message": "You have exceeded your daily request quota"}`))
	})

	_, err := g.Geocode(context.Background(), "somewhere")
	require.Error(t, err)
	assert.True(t, IsServiceError(err))
	assert.True(t, IsRateLimitError(err))
	assert.Contains(t, err.Error(), "daily request quota")
}

func TestNewGoogleMapsGeocoder(t *testing.T) {
	_, err := NewGoogleMapsGeocoder("", "", "", "", http.DefaultClient)
	require.Error(t, err)

	_, err = NewGoogleMapsGeocoder("key", "", "", "", nil)
	require.Error(t, err)

	g, err := NewGoogleMapsGeocoder("key", "", "", "", http.DefaultClient)
	require.NoError(t, err)
	assert.Equal(t, DefaultGoogleMapsURL, g.baseURL)
}
