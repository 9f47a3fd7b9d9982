// Copyright 2026 The CommuneCheck Authors
// SPDX-License-Identifier: Apache-2.0

package verify

import (
	"strings"

	"golang.org/x/text/cases"
)

// normalize trims spaces and applies a locale independent case folding.
func normalize(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// Classify compares the expected commune with the geocoded one. The
// mismatch outcome carries resolved as returned by the service.
func Classify(expected, resolved string, found bool) Outcome {
	if !found {
		return Outcome{Status: StatusLocalityNotFound}
	}

	if normalize(expected) == normalize(resolved) {
		return Outcome{Status: StatusOK}
	}

	return Outcome{Status: StatusMismatch, Found: resolved}
}
