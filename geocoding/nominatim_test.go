// Copyright 2026 The CommuneCheck Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jcodagnone/communecheck/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNominatimTest(t *testing.T, handler http.HandlerFunc) *NominatimGeocoder {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := NewNominatimGeocoder(srv.URL, "fr", NewHTTPClient(ClientOptions{UserAgent: "communecheck-test"}))
	require.NoError(t, err)

	return g
}

func TestNominatimGeocodeMatch(t *testing.T) {
	g := newNominatimTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "10 Rue de Rivoli, Paris", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("addressdetails"))
		assert.Equal(t, "fr", r.URL.Query().Get("accept-language"))
		assert.Equal(t, "communecheck-test", r.Header.Get("User-Agent"))

		_, _ = w.Write([]byte(`[{
			"lat": "48.8556475",
			"lon": "2.3588091",
			"display_name": "10, Rue de Rivoli, Paris",
			"address": {"road": "Rue de Rivoli", "city": "Paris", "county": "Île-de-France"}
		}]`))
	})

	res, err := g.Geocode(context.Background(), "10 Rue de Rivoli, Paris")
	require.NoError(t, err)
	require.NotNil(t, res)

	want := &GeocodingResult{
		Point:       spatial.Point{Lat: 48.8556475, Lng: 2.3588091},
		DisplayName: "10, Rue de Rivoli, Paris",
		Provider:    "nominatim",
		Components: map[string]string{
			"road":   "Rue de Rivoli",
			"city":   "Paris",
			"county": "Île-de-France",
		},
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("Geocode() mismatch (-want +got):\n%s", diff)
	}
}

func TestNominatimGeocodeNoMatch(t *testing.T) {
	g := newNominatimTest(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	res, err := g.Geocode(context.Background(), "nowhere at all")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestNominatimGeocodeMissingAddress(t *testing.T) {
	g := newNominatimTest(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"lat": "1.5", "lon": "2.5"}]`))
	})

	res, err := g.Geocode(context.Background(), "somewhere")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Empty(t, res.Components)
	assert.NotNil(t, res.Components)
}

func TestNominatimGeocodeFailures(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		timeout  time.Duration
		wantType ErrorType
	}{
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			wantType: ErrorTypeService,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantType: ErrorTypeService,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"error": "unexpected"}`))
			},
			wantType: ErrorTypeService,
		},
		{
			name: "bad coordinates",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`[{"lat": "north", "lon": "2.5"}]`))
			},
			wantType: ErrorTypeService,
		},
		{
			name: "slow server",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
				_, _ = w.Write([]byte(`[]`))
			},
			timeout:  50 * time.Millisecond,
			wantType: ErrorTypeTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newNominatimTest(t, tt.handler)

			ctx := context.Background()
			if tt.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, tt.timeout)
				defer cancel()
			}

			res, err := g.Geocode(ctx, "10 Rue de Rivoli, Paris")
			assert.Nil(t, res)

			var geoErr *GeocodingError
			require.ErrorAs(t, err, &geoErr)
			assert.Equal(t, tt.wantType, geoErr.Type, "error: %v", err)
		})
	}
}

func TestNominatimGeocodeConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g, err := NewNominatimGeocoder(url, "", NewHTTPClient(ClientOptions{}))
	require.NoError(t, err)

	_, err = g.Geocode(context.Background(), "anything")

	var geoErr *GeocodingError
	require.ErrorAs(t, err, &geoErr)
	assert.Equal(t, ErrorTypeUnknown, geoErr.Type)
}

func TestNewNominatimGeocoder(t *testing.T) {
	_, err := NewNominatimGeocoder("", "", nil)
	require.Error(t, err)

	g, err := NewNominatimGeocoder("", "", http.DefaultClient)
	require.NoError(t, err)
	assert.Equal(t, DefaultNominatimURL, g.baseURL)
}
