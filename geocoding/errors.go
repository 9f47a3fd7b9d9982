// Copyright 2026 The CommuneCheck Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// GeocodingError represents a failed geocoding request.
type GeocodingError struct {
	Type    ErrorType
	Message string
	Err     error
}

// ErrorType classifies geocoding failures.
type ErrorType int

const (
	// ErrorTypeUnknown any failure that is neither a timeout nor a service error,
	// including transport level faults.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeTimeout the request exceeded its deadline.
	ErrorTypeTimeout
	// ErrorTypeService the service answered with an error, a rate limit
	// rejection or a malformed response.
	ErrorTypeService
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeTimeout:
		return "timeout"
	case ErrorTypeService:
		return "service"
	default:
		return "unknown"
	}
}

func (e *GeocodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *GeocodingError) Unwrap() error {
	return e.Err
}

// IsTimeoutError reports whether err is a geocoding timeout.
func IsTimeoutError(err error) bool {
	var geoErr *GeocodingError
	if errors.As(err, &geoErr) {
		return geoErr.Type == ErrorTypeTimeout
	}

	return false
}

// IsServiceError reports whether err was raised by the geocoding service itself.
func IsServiceError(err error) bool {
	var geoErr *GeocodingError
	if errors.As(err, &geoErr) {
		return geoErr.Type == ErrorTypeService
	}

	return false
}

// IsRateLimitError reports whether the service rejected the request because
// of its rate limit.
func IsRateLimitError(err error) bool {
	if err == nil || !IsServiceError(err) {
		return false
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "over_query_limit") ||
		strings.Contains(errStr, "429")
}

// ClassifyHTTPError turns a non 200 HTTP status into a service error.
func ClassifyHTTPError(statusCode int) *GeocodingError {
	switch statusCode {
	case http.StatusTooManyRequests:
		return &GeocodingError{
			Type:    ErrorTypeService,
			Message: "rate limit reached (429)",
		}
	case http.StatusForbidden:
		return &GeocodingError{
			Type:    ErrorTypeService,
			Message: "access denied or quota exceeded (403)",
		}
	case http.StatusBadRequest:
		return &GeocodingError{
			Type:    ErrorTypeService,
			Message: "invalid request (400)",
		}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return &GeocodingError{
			Type:    ErrorTypeService,
			Message: fmt.Sprintf("service unavailable (%d)", statusCode),
		}
	default:
		return &GeocodingError{
			Type:    ErrorTypeService,
			Message: fmt.Sprintf("HTTP error %d", statusCode),
		}
	}
}

// classifyTransportError converts an error returned by an HTTP client into a
// GeocodingError. Deadlines become timeouts, everything else is unknown.
func classifyTransportError(err error) *GeocodingError {
	var geoErr *GeocodingError
	if errors.As(err, &geoErr) {
		return geoErr
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &GeocodingError{
			Type:    ErrorTypeTimeout,
			Message: "geocoding request timed out",
			Err:     err,
		}
	}

	return &GeocodingError{
		Type:    ErrorTypeUnknown,
		Message: "geocoding request failed",
		Err:     err,
	}
}

// malformedResponse reports a response body that could not be understood.
func malformedResponse(err error) *GeocodingError {
	return &GeocodingError{
		Type:    ErrorTypeService,
		Message: "malformed response",
		Err:     err,
	}
}
