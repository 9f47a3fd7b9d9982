// Copyright 2026 The CommuneCheck Authors
// SPDX-License-Identifier: Apache-2.0

package verify

import (
	"fmt"

	"github.com/jcodagnone/communecheck/spatial"
)

// Status is the verification outcome of a row.
type Status int

const (
	// StatusNotVerified the row has not been processed yet.
	StatusNotVerified Status = iota
	// StatusOK the geocoded commune matches the expected one.
	StatusOK
	// StatusMismatch the geocoded commune differs from the expected one.
	StatusMismatch
	// StatusLocalityNotFound the address was geocoded but carries no commune.
	StatusLocalityNotFound
	// StatusAddressNotFound the service found no match for the address.
	StatusAddressNotFound
	// StatusTimeoutError the geocoding request timed out.
	StatusTimeoutError
	// StatusServiceError the geocoding service failed.
	StatusServiceError
	// StatusUnknownError any other failure.
	StatusUnknownError
)

// Statuses lists every status in display order.
var Statuses = []Status{
	StatusOK,
	StatusMismatch,
	StatusLocalityNotFound,
	StatusAddressNotFound,
	StatusTimeoutError,
	StatusServiceError,
	StatusUnknownError,
	StatusNotVerified,
}

var statusNames = map[Status]string{
	StatusNotVerified:      "not_verified",
	StatusOK:               "ok",
	StatusMismatch:         "mismatch",
	StatusLocalityNotFound: "locality_not_found",
	StatusAddressNotFound:  "address_not_found",
	StatusTimeoutError:     "timeout_error",
	StatusServiceError:     "service_error",
	StatusUnknownError:     "unknown_error",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}

	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome is the verification result of a row. Found is only set for
// StatusMismatch and Detail only for StatusServiceError and StatusUnknownError.
type Outcome struct {
	Status Status `json:"status"`
	Found  string `json:"found,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// String renders the outcome for the exported table.
func (o Outcome) String() string {
	switch o.Status {
	case StatusOK:
		return "OK"
	case StatusMismatch:
		return fmt.Sprintf("Different (%s)", o.Found)
	case StatusLocalityNotFound:
		return "Geocoded commune not found"
	case StatusAddressNotFound:
		return "Address not geocoded"
	case StatusTimeoutError:
		return "Network error (Timeout)"
	case StatusServiceError:
		return fmt.Sprintf("Service error (%s)", o.Detail)
	case StatusUnknownError:
		return fmt.Sprintf("Unexpected error (%s)", o.Detail)
	default:
		return "Not verified"
	}
}

// Failure marks a derived field that could not be computed.
type Failure int

const (
	// NoFailure the field holds a value.
	NoFailure Failure = iota
	FailureNotFound
	FailureTimeout
	FailureService
	FailureUnknown
)

func (f Failure) String() string {
	switch f {
	case FailureNotFound:
		return "Not found"
	case FailureTimeout:
		return "Timeout error"
	case FailureService:
		return "Service error"
	case FailureUnknown:
		return "Unknown error"
	default:
		return ""
	}
}

// Position holds either the geocoded point or the reason it is missing.
type Position struct {
	Point   *spatial.Point `json:"point,omitempty"`
	Failure Failure        `json:"-"`
}

// Located returns a position holding p.
func Located(p spatial.Point) Position {
	return Position{Point: &p}
}

// Cells renders latitude and longitude for the exported table.
func (p Position) Cells() (string, string) {
	if p.Point == nil {
		return p.Failure.String(), p.Failure.String()
	}

	return spatial.FormatCoordinate(p.Point.Lat), spatial.FormatCoordinate(p.Point.Lng)
}

// Locality holds either the geocoded commune or the reason it is missing.
type Locality struct {
	Name    string  `json:"name"`
	Failure Failure `json:"-"`
}

func (l Locality) String() string {
	if l.Failure != NoFailure {
		return l.Failure.String()
	}

	return l.Name
}

// OutputRow is an input row extended with the verification results.
type OutputRow struct {
	Index    int      `json:"index"`
	Values   []string `json:"values"`
	Position Position `json:"position"`
	Locality Locality `json:"locality"`
	Outcome  Outcome  `json:"outcome"`
}

// failed returns the row with every derived field set to f.
func (r OutputRow) failed(f Failure, outcome Outcome) OutputRow {
	r.Position = Position{Failure: f}
	r.Locality = Locality{Failure: f}
	r.Outcome = outcome

	return r
}

// Columns appended to the input columns in the exported table.
var Columns = []string{"Latitude", "Longitude", "Commune_Geocoded", "Verifie_Commune"}

// Records renders the rows as a table: the input header followed by Columns.
func Records(header []string, rows []OutputRow) [][]string {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, append(append([]string{}, header...), Columns...))

	for _, row := range rows {
		lat, lng := row.Position.Cells()

		record := make([]string, 0, len(header)+len(Columns))
		record = append(record, row.Values[:min(len(row.Values), len(header))]...)

		for len(record) < len(header) {
			record = append(record, "")
		}

		record = append(record, lat, lng, row.Locality.String(), row.Outcome.String())
		records = append(records, record)
	}

	return records
}

// Tally counts rows per status.
func Tally(rows []OutputRow) map[Status]int {
	counts := make(map[Status]int, len(Statuses))
	for _, row := range rows {
		counts[row.Outcome.Status]++
	}

	return counts
}
