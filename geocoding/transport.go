// Copyright 2026 The CommuneCheck Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"io"
	"net/http"
	"time"

	"github.com/jcodagnone/communecheck/utils/httputils"
)

// ClientOptions configures the HTTP client shared by the providers.
type ClientOptions struct {
	// UserAgent identifies the application to the geocoding service.
	UserAgent string

	// TraceWriter, when set, receives a dump of every request and response.
	TraceWriter io.Writer

	// TraceBody includes bodies in the trace.
	TraceBody bool
}

// NewHTTPClient builds the client used by the geocoders. Timeouts are not set
// on the client: each call carries its own deadline in its context. Pacing is
// left to the caller (see verify.Runner.WithRateLimit) so that waiting for a
// turn never eats into that deadline.
func NewHTTPClient(options ClientOptions) *http.Client {
	var transport http.RoundTripper = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          4,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	}

	transport = &httputils.LoggingRoundTripper{
		Transport: transport,
		Writer:    options.TraceWriter,
		DumpBody:  options.TraceBody,
	}

	if options.UserAgent != "" {
		transport = &httputils.AppendRequestHeadersRoundTripper{
			Transport: transport,
			Headers:   map[string]string{"User-Agent": options.UserAgent},
		}
	}

	return &http.Client{Transport: transport}
}
